package llm

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// Message roles understood by chat-completion style APIs.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents a single turn in a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generator is the abstract text generation service the engine talks to.
// Implementations return the raw model text, or a *TransportError when the
// provider itself could not be reached or refused the request.
type Generator interface {
	Invoke(ctx context.Context, messages []Message, temperature float64, maxTokens int) (text string, err error)
}

// TransportError indicates the generation service was unreachable or rejected
// the request at the protocol level (network failure, auth, timeout). It is
// distinct from the model merely answering badly, which is never an error.
type TransportError struct {
	Provider   string
	StatusCode int
	Err        error
}

// Error implements the error interface.
func (e *TransportError) Error() (msg string) {
	if e.StatusCode > 0 {
		msg = fmt.Sprintf("%s request failed with status %d: %v", e.Provider, e.StatusCode, e.Err)
		return msg
	}
	msg = fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
	return msg
}

// Unwrap exposes the underlying cause.
func (e *TransportError) Unwrap() (err error) {
	err = e.Err
	return err
}

// IsTransport reports whether err is (or wraps) a TransportError.
func IsTransport(err error) (ok bool) {
	var te *TransportError
	ok = errors.As(err, &te)
	return ok
}

// chatRequest is the OpenAI-compatible chat completion request format.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

// chatResponse is the OpenAI-compatible chat completion response format.
type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

// chatChoice holds one candidate completion.
type chatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// chatUsage reports token consumption.
type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
