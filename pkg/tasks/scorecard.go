package tasks

import (
	"github.com/tidwall/gjson"

	"github.com/shortlist-ai/shortlist/pkg/engine"
)

// scoreDimensions are the five scored aspects of a repository, in report
// order.
var scoreDimensions = []string{
	"code_quality", "test_coverage", "complexity", "structure", "deployment_readiness",
}

// scorecardSchema is the sanitization schema for the recruiter scorecard.
// Missing dimension details default to an explicit placeholder so a partially
// parsed scorecard is still readable.
func scorecardSchema() (schema *engine.Object) {
	dimension := &engine.Object{Fields: []engine.Field{
		{Name: "score", Spec: engine.Number{Min: 0, Max: 10, Default: 5}},
		{Name: "details", Spec: engine.String{MaxLen: 2000, Default: "Unable to parse"}},
		{Name: "suggestions", Spec: engine.StringList(8, 300)},
	}}

	fields := make([]engine.Field, 0, len(scoreDimensions)+3)
	for _, name := range scoreDimensions {
		fields = append(fields, engine.Field{Name: name, Spec: engine.Nested{Object: dimension}})
	}
	fields = append(fields,
		engine.Field{Name: "overall_score", Spec: engine.Number{Min: 0, Max: 10, Default: 5}},
		engine.Field{Name: "summary", Spec: engine.String{MaxLen: 2000, Default: "Unable to parse"}},
		engine.Field{Name: "top_improvements", Spec: engine.StringList(5, 300)},
	)

	schema = &engine.Object{Fields: fields}
	return schema
}

// newScorecardTask builds the repository scoring task descriptor.
func newScorecardTask() (task *engine.Task) {
	task = &engine.Task{
		Name:         "repo_scorecard",
		SystemPrompt: scorecardSystemPrompt,
		Temperature:  0.2,
		MaxTokens:    4000,
		Schema:       scorecardSchema(),
		Accept: func(doc string, value any) bool {
			parsed := gjson.Parse(doc)
			return parsed.IsObject() && len(parsed.Map()) > 0
		},
	}
	return task
}
