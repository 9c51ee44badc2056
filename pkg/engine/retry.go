package engine

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/shortlist-ai/shortlist/pkg/llm"
)

const (
	// DefaultMaxAttempts bounds the retry loop. Attempt n+1 depends on the
	// output of attempt n, so attempts are strictly sequential.
	DefaultMaxAttempts = 2
	// DefaultAttemptTimeout is the per-attempt ceiling on the generator call.
	DefaultAttemptTimeout = 60 * time.Second

	// correctiveMessage is appended to the conversation after a failed
	// attempt to steer the model back to raw JSON.
	correctiveMessage = "Your response was not valid JSON. Return ONLY the raw JSON object as specified, with no markdown fences, no explanation, no extra text."
)

// Task is the immutable descriptor of one generation task: prompt template,
// output schema, and acceptance rules. Tasks are created once at startup and
// read-only thereafter.
type Task struct {
	Name         string
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	MaxAttempts  int
	Schema       *Object

	// Accept is the structural acceptance check applied to the extracted
	// JSON before sanitization. doc is the canonical JSON text (for gjson
	// queries), value the parsed form. Nil means any extracted value passes.
	Accept func(doc string, value any) bool

	// Normalize optionally reshapes the extracted value before sanitization
	// (e.g. wrapping a bare top-level array into its named field).
	Normalize func(value any) any
}

// Engine runs generation tasks through the retry/extract/sanitize pipeline.
// It holds no per-call state; concurrent invocations are safe.
type Engine struct {
	gen            llm.Generator
	logger         *zap.Logger
	attemptTimeout time.Duration
}

// New creates an engine around a generator.
func New(gen llm.Generator, logger *zap.Logger) (e *Engine) {
	if logger == nil {
		logger = zap.NewNop()
	}
	e = &Engine{
		gen:            gen,
		logger:         logger,
		attemptTimeout: DefaultAttemptTimeout,
	}
	return e
}

// retryState tracks one invocation's progress through the attempt machine.
// It is discarded when the invocation completes.
type retryState struct {
	attempt      int
	messages     []llm.Message
	transportErr error
}

// Generate runs one task invocation: build the conversation, attempt the
// generator up to MaxAttempts times, extract and sanitize the first
// acceptable response, and fall back to the task's deterministic default
// when all attempts produce unusable content. Only a transport failure on
// the final attempt is surfaced as an error; the model answering badly never
// is.
func (e *Engine) Generate(ctx context.Context, task *Task, userPrompt string) (result map[string]any, err error) {
	maxAttempts := task.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	state := &retryState{
		messages: []llm.Message{
			{Role: llm.RoleSystem, Content: task.SystemPrompt},
			{Role: llm.RoleUser, Content: userPrompt},
		},
	}

	for state.attempt = 0; state.attempt < maxAttempts; state.attempt++ {
		// Abandon immediately if the caller's request was cancelled.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Wrapf(ctxErr, "task %s abandoned before attempt %d", task.Name, state.attempt+1)
			return result, err
		}

		raw, invokeErr := e.invoke(ctx, task, state.messages)
		if invokeErr != nil {
			// Transport-level failure: counts against the attempt budget,
			// surfaced only if it happens on the final attempt.
			state.transportErr = invokeErr
			e.logger.Warn("generator attempt failed at transport level",
				zap.String("task", task.Name),
				zap.Int("attempt", state.attempt+1),
				zap.Error(invokeErr))
			continue
		}
		state.transportErr = nil

		value, doc, extracted := ExtractJSON(raw)
		if extracted && (task.Accept == nil || task.Accept(doc, value)) {
			if task.Normalize != nil {
				value = task.Normalize(value)
			}
			sanitized, diags := Sanitize(value, task.Schema)
			e.logDiagnostics(task.Name, diags)
			result = sanitized
			return result, err
		}

		e.logger.Warn("generator returned unusable output",
			zap.String("task", task.Name),
			zap.Int("attempt", state.attempt+1),
			zap.Bool("extracted", extracted))

		if state.attempt < maxAttempts-1 {
			state.messages = append(state.messages,
				llm.Message{Role: llm.RoleAssistant, Content: raw},
				llm.Message{Role: llm.RoleUser, Content: correctiveMessage},
			)
		}
	}

	if state.transportErr != nil {
		// The final attempt never reached the model at all.
		err = errors.Wrapf(state.transportErr, "task %s could not be attempted", task.Name)
		return result, err
	}

	e.logger.Warn("all attempts exhausted, returning fallback result",
		zap.String("task", task.Name))
	result = Fallback(task.Schema)
	return result, err
}

// invoke runs one bounded generator call.
func (e *Engine) invoke(ctx context.Context, task *Task, messages []llm.Message) (raw string, err error) {
	attemptCtx, cancel := context.WithTimeout(ctx, e.attemptTimeout)
	defer cancel()

	raw, err = e.gen.Invoke(attemptCtx, messages, task.Temperature, task.MaxTokens)
	return raw, err
}

// logDiagnostics emits one structured record per clamped/dropped field.
func (e *Engine) logDiagnostics(taskName string, diags Diagnostics) {
	for _, d := range diags {
		e.logger.Debug("field sanitized",
			zap.String("task", taskName),
			zap.String("field", d.Field),
			zap.String("action", d.Action),
			zap.String("detail", d.Detail))
	}
}
