package tasks

import (
	"github.com/tidwall/gjson"

	"github.com/shortlist-ai/shortlist/pkg/engine"
)

// Verdicts and classifications accepted in a fitness evaluation.
var (
	fitnessVerdicts   = []string{"strong_fit", "good_fit", "partial_fit", "weak_fit"}
	skillImportances  = []string{"critical", "important", "nice_to_have"}
	improvementImpact = []string{"high", "medium", "low"}
)

// fitnessSchema is the sanitization schema for a resume fitness evaluation.
func fitnessSchema() (schema *engine.Object) {
	matched := &engine.Object{Fields: []engine.Field{
		{Name: "name", Spec: engine.String{MaxLen: 120}},
		{Name: "evidence", Spec: engine.String{MaxLen: 500}},
	}}

	missing := &engine.Object{Fields: []engine.Field{
		{Name: "name", Spec: engine.String{MaxLen: 120}},
		{Name: "importance", Spec: engine.Enum{Allowed: skillImportances, Default: "important"}},
		{Name: "suggestion", Spec: engine.String{MaxLen: 500}},
	}}

	improvement := &engine.Object{Fields: []engine.Field{
		{Name: "area", Spec: engine.String{MaxLen: 120}},
		{Name: "current_state", Spec: engine.String{MaxLen: 500}},
		{Name: "recommended_action", Spec: engine.String{MaxLen: 500}},
		{Name: "impact", Spec: engine.Enum{Allowed: improvementImpact, Default: "medium"}},
	}}

	schema = &engine.Object{Fields: []engine.Field{
		{Name: "fitness_score", Spec: engine.Number{Min: 0, Max: 100, Default: 50}},
		{Name: "verdict", Spec: engine.Enum{Allowed: fitnessVerdicts, Default: "partial_fit"}},
		{Name: "matched_skills", Spec: engine.Array{MaxItems: 20, Elem: matched}},
		{Name: "missing_skills", Spec: engine.Array{MaxItems: 15, Elem: missing}},
		{Name: "strengths", Spec: engine.StringList(10, 300)},
		{Name: "improvements", Spec: engine.Array{MaxItems: 10, Elem: improvement}},
		{Name: "detailed_feedback", Spec: engine.String{MaxLen: 5000, Default: "Unable to parse evaluation response."}},
	}}
	return schema
}

// newFitnessTask builds the resume fitness evaluation task descriptor.
func newFitnessTask() (task *engine.Task) {
	task = &engine.Task{
		Name:         "fitness_evaluation",
		SystemPrompt: fitnessSystemPrompt,
		Temperature:  0.3,
		MaxTokens:    4000,
		Schema:       fitnessSchema(),
		Accept: func(doc string, value any) bool {
			return gjson.Get(doc, "fitness_score").Exists()
		},
	}
	return task
}
