package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shortlist-ai/shortlist/pkg/llm"
)

// scriptedGenerator replays canned responses in order. A nil entry produces a
// transport error.
type scriptedGenerator struct {
	responses []*string
	calls     [][]llm.Message
}

func (g *scriptedGenerator) Invoke(ctx context.Context, messages []llm.Message, temperature float64, maxTokens int) (text string, err error) {
	g.calls = append(g.calls, messages)
	if len(g.responses) == 0 {
		err = &llm.TransportError{Provider: "test", Err: context.DeadlineExceeded}
		return text, err
	}
	next := g.responses[0]
	g.responses = g.responses[1:]
	if next == nil {
		err = &llm.TransportError{Provider: "test", StatusCode: 503}
		return text, err
	}
	text = *next
	return text, err
}

func strp(s string) (p *string) {
	p = &s
	return p
}

func testTask() (task *Task) {
	task = &Task{
		Name:   "test_task",
		Schema: testSchema(),
	}
	return task
}

func TestGenerateFirstAttemptSucceeds(t *testing.T) {
	gen := &scriptedGenerator{responses: []*string{strp(`{"weight": 8, "title": "ok"}`)}}
	eng := New(gen, nil)

	result, err := eng.Generate(context.Background(), testTask(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, 8.0, result["weight"])
	assert.Equal(t, "ok", result["title"])
	assert.Len(t, gen.calls, 1)
}

func TestGenerateRetriesWithCorrectiveMessage(t *testing.T) {
	gen := &scriptedGenerator{responses: []*string{
		strp("I cannot answer that in JSON, sorry."),
		strp(`{"weight": 4.0, "category": "language"}`),
	}}
	eng := New(gen, nil)

	result, err := eng.Generate(context.Background(), testTask(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "language", result["category"])
	require.Len(t, gen.calls, 2)

	// Second attempt carries the first response and the corrective nudge.
	second := gen.calls[1]
	require.Len(t, second, 4)
	assert.Equal(t, llm.RoleAssistant, second[2].Role)
	assert.Equal(t, "I cannot answer that in JSON, sorry.", second[2].Content)
	assert.Equal(t, llm.RoleUser, second[3].Role)
	assert.Contains(t, second[3].Content, "not valid JSON")
}

func TestGenerateFallsBackAfterMaxAttempts(t *testing.T) {
	gen := &scriptedGenerator{responses: []*string{
		strp("still not json"),
		strp("nope, definitely prose again"),
	}}
	eng := New(gen, nil)

	result, err := eng.Generate(context.Background(), testTask(), "prompt")
	require.NoError(t, err)
	assert.Len(t, gen.calls, 2)
	assert.Equal(t, Fallback(testSchema()), result)
}

func TestGenerateAcceptRejectionTriggersRetry(t *testing.T) {
	task := testTask()
	task.Accept = func(doc string, value any) bool { return false }

	gen := &scriptedGenerator{responses: []*string{
		strp(`{"weight": 1.0, "padding": "xxxxx"}`),
		strp(`{"weight": 2.0, "padding": "xxxxx"}`),
	}}
	eng := New(gen, nil)

	result, err := eng.Generate(context.Background(), task, "prompt")
	require.NoError(t, err)
	assert.Len(t, gen.calls, 2)
	assert.Equal(t, Fallback(task.Schema), result)
}

func TestGenerateTransportThenSuccess(t *testing.T) {
	gen := &scriptedGenerator{responses: []*string{
		nil,
		strp(`{"weight": 6.5, "active": false}`),
	}}
	eng := New(gen, nil)

	result, err := eng.Generate(context.Background(), testTask(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, 6.5, result["weight"])
	assert.Equal(t, false, result["active"])
}

func TestGenerateTransportOnFinalAttemptSurfaces(t *testing.T) {
	gen := &scriptedGenerator{responses: []*string{nil, nil}}
	eng := New(gen, nil)

	_, err := eng.Generate(context.Background(), testTask(), "prompt")
	require.Error(t, err)
	assert.True(t, llm.IsTransport(err))
}

func TestGenerateBadThenTransportSurfaces(t *testing.T) {
	gen := &scriptedGenerator{responses: []*string{
		strp("not json at all here"),
		nil,
	}}
	eng := New(gen, nil)

	_, err := eng.Generate(context.Background(), testTask(), "prompt")
	require.Error(t, err)
	assert.True(t, llm.IsTransport(err))
}

func TestGenerateCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := &scriptedGenerator{responses: []*string{strp(`{"weight": 5}`)}}
	eng := New(gen, nil)

	_, err := eng.Generate(ctx, testTask(), "prompt")
	require.Error(t, err)
	assert.Empty(t, gen.calls)
}

func TestGenerateClampsFencedPayload(t *testing.T) {
	task := &Task{
		Name: "skill_test",
		Schema: &Object{Fields: []Field{
			{Name: "skills", Spec: Array{MaxItems: 40, Elem: &Object{Fields: []Field{
				{Name: "name", Spec: String{MaxLen: 120}},
				{Name: "weight", Spec: Number{Min: 0, Max: 10, Default: 5}},
			}}}},
		}},
	}

	gen := &scriptedGenerator{responses: []*string{
		strp("```json\n{\"skills\":[{\"name\":\"Python\",\"weight\":15}]}\n```"),
	}}
	eng := New(gen, nil)

	result, err := eng.Generate(context.Background(), task, "prompt")
	require.NoError(t, err)

	skills := result["skills"].([]any)
	require.Len(t, skills, 1)
	skill := skills[0].(map[string]any)
	assert.Equal(t, "Python", skill["name"])
	assert.Equal(t, 10.0, skill["weight"])
}

func TestGenerateNormalizeReshapesValue(t *testing.T) {
	task := &Task{
		Name: "wrap_test",
		Schema: &Object{Fields: []Field{
			{Name: "tags", Spec: StringList(5, 20)},
		}},
		Normalize: func(value any) any {
			if list, isList := value.([]any); isList {
				return map[string]any{"tags": list}
			}
			return value
		},
	}

	gen := &scriptedGenerator{responses: []*string{strp(`["alpha", "beta"]`)}}
	eng := New(gen, nil)

	result, err := eng.Generate(context.Background(), task, "prompt")
	require.NoError(t, err)
	assert.Equal(t, []any{"alpha", "beta"}, result["tags"])
}
