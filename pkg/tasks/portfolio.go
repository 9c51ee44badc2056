package tasks

import (
	"github.com/tidwall/gjson"

	"github.com/shortlist-ai/shortlist/pkg/engine"
)

// impactTypes classify resume bullets for ATS tooling.
var impactTypes = []string{"quantitative", "qualitative", "technical"}

// portfolioSchema is the sanitization schema for generated portfolio
// materials.
func portfolioSchema() (schema *engine.Object) {
	bullet := &engine.Object{Fields: []engine.Field{
		{Name: "bullet", Spec: engine.String{MaxLen: 300}},
		{Name: "keywords", Spec: engine.StringList(8, 60)},
		{Name: "impact_type", Spec: engine.Enum{Allowed: impactTypes, Default: "technical"}},
	}}

	demoStep := &engine.Object{Fields: []engine.Field{
		{Name: "timestamp", Spec: engine.String{MaxLen: 40}},
		{Name: "action", Spec: engine.String{MaxLen: 300}},
		{Name: "narration", Spec: engine.String{MaxLen: 600}},
	}}

	demoScript := &engine.Object{Fields: []engine.Field{
		{Name: "total_duration_seconds", Spec: engine.Int{Min: 10, Max: 600, Default: 120}},
		{Name: "opening_hook", Spec: engine.String{MaxLen: 500}},
		{Name: "steps", Spec: engine.Array{MaxItems: 15, Elem: demoStep}},
		{Name: "closing_cta", Spec: engine.String{MaxLen: 300}},
	}}

	linkedinPost := &engine.Object{Fields: []engine.Field{
		{Name: "hook", Spec: engine.String{MaxLen: 200}},
		{Name: "body", Spec: engine.String{MaxLen: 3000}},
		{Name: "hashtags", Spec: engine.StringList(10, 50)},
		{Name: "call_to_action", Spec: engine.String{MaxLen: 200}},
	}}

	schema = &engine.Object{Fields: []engine.Field{
		{Name: "readme_markdown", Spec: engine.String{MaxLen: 20000}},
		{Name: "resume_bullets", Spec: engine.Array{MaxItems: 10, Elem: bullet}},
		{Name: "demo_script", Spec: engine.Nested{Object: demoScript}},
		{Name: "linkedin_post", Spec: engine.Nested{Object: linkedinPost}},
	}}
	return schema
}

// newPortfolioTask builds the portfolio optimization task descriptor.
func newPortfolioTask() (task *engine.Task) {
	task = &engine.Task{
		Name:         "portfolio_optimization",
		SystemPrompt: portfolioSystemPrompt,
		Temperature:  0.7,
		MaxTokens:    8000,
		Schema:       portfolioSchema(),
		Accept: func(doc string, value any) bool {
			return gjson.Get(doc, "readme_markdown").Exists()
		},
	}
	return task
}
