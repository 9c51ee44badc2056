package tasks

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/shortlist-ai/shortlist/pkg/engine"
	"github.com/shortlist-ai/shortlist/pkg/scaffold"
)

// pathSpec sanitizes a generated file path through the scaffold path filter.
// Rejected paths report non-conformance, which drops the whole file from the
// enclosing array.
type pathSpec struct{}

// Sanitize validates and normalizes a file path.
func (pathSpec) Sanitize(v any, path string, diags *engine.Diagnostics) (out any, conformed bool) {
	raw, isString := v.(string)
	if !isString {
		if v != nil {
			diags.Record(path, "defaulted", "not a string")
		}
		return "", false
	}
	clean, ok := scaffold.SanitizePath(raw)
	if !ok {
		diags.Record(path, "dropped", fmt.Sprintf("unsafe path %q", raw))
		return "", false
	}
	out = clean
	conformed = true
	return out, conformed
}

// fileListSpec sanitizes the generated files array and then enforces the
// cumulative content budget over the surviving files.
type fileListSpec struct {
	inner engine.Array
}

// Sanitize normalizes the file list.
func (f fileListSpec) Sanitize(v any, path string, diags *engine.Diagnostics) (out any, conformed bool) {
	sanitized, conformed := f.inner.Sanitize(v, path, diags)
	items := sanitized.([]any)

	files := make([]scaffold.GeneratedFile, 0, len(items))
	for _, item := range items {
		file, isMap := item.(map[string]any)
		if !isMap {
			continue
		}
		filePath, _ := file["path"].(string)
		if filePath == "" {
			// The path filter rejected this entry; the whole file goes.
			continue
		}
		files = append(files, scaffold.GeneratedFile{
			Path:        filePath,
			Content:     file["content"].(string),
			Language:    file["language"].(string),
			Description: file["description"].(string),
		})
	}

	kept := scaffold.EnforceBudget(files, scaffold.MaxContentBytes)
	if len(kept) < len(files) {
		diags.Record(path, "truncated",
			fmt.Sprintf("%d files over content budget %d bytes", len(files)-len(kept), scaffold.MaxContentBytes))
	}

	result := make([]any, 0, len(kept))
	for _, file := range kept {
		result = append(result, map[string]any{
			"path":        file.Path,
			"content":     file.Content,
			"language":    file.Language,
			"description": file.Description,
		})
	}

	out = result
	return out, conformed
}

// slugPattern strips everything that is not safe in a kebab-case project name.
var slugPattern = regexp.MustCompile(`[^a-z0-9-]+`)

// slugSpec normalizes the generated project name into a kebab-case slug.
type slugSpec struct{}

// defaultProjectSlug names a scaffold whose project name could not be used.
const defaultProjectSlug = "scaffold-project"

// Sanitize normalizes a project name.
func (slugSpec) Sanitize(v any, path string, diags *engine.Diagnostics) (out any, conformed bool) {
	raw, isString := v.(string)
	if !isString {
		if v != nil {
			diags.Record(path, "defaulted", "not a string")
		}
		return defaultProjectSlug, false
	}

	slug := strings.ToLower(strings.TrimSpace(raw))
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ReplaceAll(slug, "_", "-")
	slug = slugPattern.ReplaceAllString(slug, "")
	slug = strings.Trim(slug, "-")
	if len(slug) > 60 {
		slug = strings.Trim(slug[:60], "-")
	}
	if slug == "" {
		diags.Record(path, "defaulted", fmt.Sprintf("unusable project name %q", raw))
		return defaultProjectSlug, false
	}
	if slug != raw {
		diags.Record(path, "normalized", "project name slugified")
	}

	out = slug
	conformed = true
	return out, conformed
}

// scaffoldSchema is the sanitization schema for a generated repository
// scaffold.
func scaffoldSchema() (schema *engine.Object) {
	file := &engine.Object{Fields: []engine.Field{
		{Name: "path", Spec: pathSpec{}},
		{Name: "content", Spec: engine.String{MaxLen: scaffold.MaxContentBytes}},
		{Name: "language", Spec: engine.String{MaxLen: 40}},
		{Name: "description", Spec: engine.String{MaxLen: 300}},
	}}

	schema = &engine.Object{Fields: []engine.Field{
		{Name: "project_name", Spec: slugSpec{}},
		{Name: "files", Spec: fileListSpec{inner: engine.Array{MaxItems: 50, Elem: file}}},
		{Name: "file_tree", Spec: engine.String{MaxLen: 20000}},
	}}
	return schema
}

// newScaffoldTask builds the scaffold generation task descriptor.
func newScaffoldTask() (task *engine.Task) {
	task = &engine.Task{
		Name:         "scaffold_generation",
		SystemPrompt: scaffoldSystemPrompt,
		Temperature:  0.4,
		MaxTokens:    8000,
		Schema:       scaffoldSchema(),
		Accept: func(doc string, value any) bool {
			return gjson.Get(doc, "files").IsArray()
		},
	}
	return task
}
