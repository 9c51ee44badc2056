package tasks

import (
	"github.com/tidwall/gjson"

	"github.com/shortlist-ai/shortlist/pkg/engine"
)

// Experience levels and skill metadata accepted from the model. Values outside
// these sets are replaced by the defaults during sanitization.
var (
	experienceLevels = []string{"intern", "junior", "mid", "senior", "staff", "principal"}
	skillCategories  = []string{"language", "framework", "concept", "tool", "soft_skill"}
	skillSources     = []string{"required", "preferred", "inferred"}
)

// jdSchema is the sanitization schema for the structured skill profile.
func jdSchema() (schema *engine.Object) {
	skill := &engine.Object{Fields: []engine.Field{
		{Name: "name", Spec: engine.String{MaxLen: 120}},
		{Name: "category", Spec: engine.Enum{Allowed: skillCategories, Default: "concept"}},
		{Name: "weight", Spec: engine.Number{Min: 0, Max: 10, Default: 5}},
		{Name: "source", Spec: engine.Enum{Allowed: skillSources, Default: "inferred"}},
	}}

	expectation := &engine.Object{Fields: []engine.Field{
		{Name: "dimension", Spec: engine.String{MaxLen: 120}},
		{Name: "importance", Spec: engine.Number{Min: 0, Max: 10, Default: 5}},
		{Name: "description", Spec: engine.String{MaxLen: 500}},
	}}

	schema = &engine.Object{Fields: []engine.Field{
		{Name: "skills", Spec: engine.Array{MaxItems: 40, Elem: skill}},
		{Name: "experience_level", Spec: engine.Enum{Allowed: experienceLevels, Default: "mid"}},
		{Name: "domain", Spec: engine.String{MaxLen: 80, Default: "Backend"}},
		{Name: "engineering_expectations", Spec: engine.Array{MaxItems: 10, Elem: expectation}},
		{Name: "key_responsibilities", Spec: engine.StringList(15, 300)},
		{Name: "summary", Spec: engine.String{MaxLen: 8000}},
	}}
	return schema
}

// newJDTask builds the JD analysis task descriptor.
func newJDTask() (task *engine.Task) {
	task = &engine.Task{
		Name:         "jd_analysis",
		SystemPrompt: jdSystemPrompt,
		Temperature:  0.3,
		MaxTokens:    4000,
		Schema:       jdSchema(),
		Accept: func(doc string, value any) bool {
			return gjson.Get(doc, "skills").IsArray()
		},
	}
	return task
}
