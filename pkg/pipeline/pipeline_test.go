package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlist-ai/shortlist/pkg/engine"
	"github.com/shortlist-ai/shortlist/pkg/github"
	"github.com/shortlist-ai/shortlist/pkg/llm"
	"github.com/shortlist-ai/shortlist/pkg/store"
	"github.com/shortlist-ai/shortlist/pkg/tasks"
)

// scriptedGenerator replays canned responses in order and counts calls.
type scriptedGenerator struct {
	responses []string
	calls     int
}

func (g *scriptedGenerator) Invoke(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) (text string, err error) {
	g.calls++
	if len(g.responses) == 0 {
		err = &llm.TransportError{Provider: "test", StatusCode: 503}
		return text, err
	}
	text = g.responses[0]
	g.responses = g.responses[1:]
	return text, err
}

func newTestPipeline(t *testing.T, gen llm.Generator) (p *Pipeline, st *store.Store) {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck // test cleanup

	eng := engine.New(gen, nil)
	p = New(eng, tasks.NewRegistry(), github.NewAnalyzer("", "", nil), st, nil)
	return p, st
}

const profileWithSkills = `{"skills": [{"name": "Go", "category": "language", "weight": 8, "source": "required"}], "experience_level": "senior", "domain": "Backend", "summary": "s"}`

func TestAnalyzeJDSkipsCapstoneWithoutSkills(t *testing.T) {
	// The profile extracts cleanly but contains no skills, so the capstone
	// model call must not happen.
	gen := &scriptedGenerator{responses: []string{
		`{"skills": [], "experience_level": "mid", "summary": "nothing found"}`,
	}}
	p, _ := newTestPipeline(t, gen)

	record, err := p.AnalyzeJD(context.Background(), AnalyzeRequest{
		JDText: "vague text", Role: "Engineer", CompanyType: "startup",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, store.StatusComplete, record.Status)

	projects, isList := record.Payload["capstone_projects"].([]any)
	require.True(t, isList)
	assert.Empty(t, projects)
}

func TestAnalyzeJDRunsCapstone(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		profileWithSkills,
		`{"projects": [{"title": "CLI Tool", "complexity_level": 2}]}`,
	}}
	p, _ := newTestPipeline(t, gen)

	record, err := p.AnalyzeJD(context.Background(), AnalyzeRequest{
		JDText: "Go role", Role: "Engineer", CompanyType: "faang",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, gen.calls)

	projects := record.Payload["capstone_projects"].([]any)
	require.Len(t, projects, 1)
	assert.Equal(t, "CLI Tool", projects[0].(map[string]any)["title"])
}

func TestAnalyzeJDTransportFailureRecordsFailed(t *testing.T) {
	gen := &scriptedGenerator{}
	p, st := newTestPipeline(t, gen)

	_, err := p.AnalyzeJD(context.Background(), AnalyzeRequest{
		JDText: "text", Role: "Engineer", CompanyType: "startup",
	})
	require.Error(t, err)
	assert.True(t, llm.IsTransport(err))

	records, err := st.List(context.Background(), store.KindAnalysis, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, store.StatusFailed, records[0].Status)
	assert.NotEmpty(t, records[0].Error)
}

func TestGenerateScaffoldFiltersFiles(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`{"project_name": "Demo App", "files": [
			{"path": "src/app.py", "content": "x = 1", "language": "python", "description": "entry"},
			{"path": "../../etc/passwd", "content": "root", "language": "", "description": ""}
		], "file_tree": "src/"}`,
	}}
	p, _ := newTestPipeline(t, gen)

	record, err := p.GenerateScaffold(context.Background(), ScaffoldRequest{
		Title: "Demo", Description: "demo app", TechStack: []string{"python"},
	})
	require.NoError(t, err)

	assert.Equal(t, "demo-app", record.Payload["project_name"])
	files := record.Payload["files"].([]any)
	require.Len(t, files, 1)
	assert.Equal(t, "src/app.py", files[0].(map[string]any)["path"])
}

func TestScoreFitnessUsesStoredAnalysis(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		profileWithSkills,
		`{"projects": [{"title": "P"}]}`,
		`{"fitness_score": 81, "verdict": "good_fit", "detailed_feedback": "solid"}`,
	}}
	p, _ := newTestPipeline(t, gen)

	analysis, err := p.AnalyzeJD(context.Background(), AnalyzeRequest{
		JDText: "Go role", Role: "Engineer", CompanyType: "mid_level",
	})
	require.NoError(t, err)

	fitness, err := p.ScoreFitness(context.Background(), FitnessRequest{
		AnalysisID: analysis.ID, ResumeText: "I write Go services.",
	})
	require.NoError(t, err)
	assert.Equal(t, store.KindFitness, fitness.Kind)
	assert.Equal(t, analysis.ID, fitness.AnalysisID)
	assert.Equal(t, 81.0, fitness.Payload["fitness_score"])
	assert.Equal(t, "good_fit", fitness.Payload["verdict"])
}

func TestScoreFitnessRejectsMissingAnalysis(t *testing.T) {
	p, _ := newTestPipeline(t, &scriptedGenerator{})

	_, err := p.ScoreFitness(context.Background(), FitnessRequest{
		AnalysisID: "nope", ResumeText: "resume",
	})
	assert.Error(t, err)
}

func TestGetResanitizesStoredPayload(t *testing.T) {
	p, st := newTestPipeline(t, &scriptedGenerator{})
	ctx := context.Background()

	// Simulate a payload written before stricter bounds: score out of range.
	id, err := st.Create(ctx, store.KindFitness, "")
	require.NoError(t, err)
	err = st.Complete(ctx, id, map[string]any{
		"fitness_score": 400.0,
		"verdict":       "amazing_fit",
	}, 0)
	require.NoError(t, err)

	record, err := p.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 100.0, record.Payload["fitness_score"])
	assert.Equal(t, "partial_fit", record.Payload["verdict"])
}

func TestOptimizePortfolio(t *testing.T) {
	gen := &scriptedGenerator{responses: []string{
		`{"readme_markdown": "# Demo", "resume_bullets": [
			{"bullet": "Built a demo", "keywords": ["go"], "impact_type": "technical"}
		], "demo_script": {"total_duration_seconds": 120}, "linkedin_post": {"hook": "h"}}`,
	}}
	p, _ := newTestPipeline(t, gen)

	record, err := p.OptimizePortfolio(context.Background(), PortfolioRequest{
		Title: "Demo", Description: "demo", TechStack: []string{"go"},
	})
	require.NoError(t, err)
	assert.Equal(t, "# Demo", record.Payload["readme_markdown"])

	bullets := record.Payload["resume_bullets"].([]any)
	require.Len(t, bullets, 1)
}
