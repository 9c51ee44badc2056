package tasks

import (
	"github.com/tidwall/gjson"

	"github.com/shortlist-ai/shortlist/pkg/engine"
)

// capstoneSchema is the sanitization schema for generated project ideas.
func capstoneSchema() (schema *engine.Object) {
	architecture := &engine.Object{Fields: []engine.Field{
		{Name: "description", Spec: engine.String{MaxLen: 2000}},
		{Name: "components", Spec: engine.StringList(15, 200)},
		{Name: "data_flow", Spec: engine.String{MaxLen: 1000}},
		{Name: "diagram_mermaid", Spec: engine.String{MaxLen: 3000}},
	}}

	project := &engine.Object{Fields: []engine.Field{
		{Name: "title", Spec: engine.String{MaxLen: 200}},
		{Name: "problem_statement", Spec: engine.String{MaxLen: 1500}},
		{Name: "recruiter_match_reasoning", Spec: engine.String{MaxLen: 1000}},
		{Name: "architecture", Spec: engine.Nested{Object: architecture, AltStringField: "description"}},
		{Name: "tech_stack", Spec: engine.StringList(20, 80)},
		{Name: "complexity_level", Spec: engine.Int{Min: 1, Max: 5, Default: 3}},
		{Name: "estimated_days", Spec: engine.Int{Min: 1, Max: 90, Default: 45}},
		{Name: "resume_bullet", Spec: engine.String{MaxLen: 300}},
		{Name: "key_features", Spec: engine.StringList(12, 300)},
		{Name: "differentiator", Spec: engine.String{MaxLen: 500}},
	}}

	schema = &engine.Object{Fields: []engine.Field{
		{Name: "projects", Spec: engine.Array{MaxItems: 5, Elem: project}},
	}}
	return schema
}

// newCapstoneTask builds the capstone generation task descriptor. Models
// occasionally return the projects array bare at the top level; Normalize
// wraps it back into the named field.
func newCapstoneTask() (task *engine.Task) {
	task = &engine.Task{
		Name:         "capstone_generation",
		SystemPrompt: capstoneSystemPrompt,
		Temperature:  0.8,
		MaxTokens:    6000,
		Schema:       capstoneSchema(),
		Accept: func(doc string, value any) bool {
			if _, isList := value.([]any); isList {
				return true
			}
			return gjson.Get(doc, "projects").IsArray()
		},
		Normalize: func(value any) any {
			if list, isList := value.([]any); isList {
				return map[string]any{"projects": list}
			}
			return value
		},
	}
	return task
}
