package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// GroqAPIEndpoint is the default OpenAI-compatible chat completions endpoint.
	GroqAPIEndpoint = "https://api.groq.com/openai/v1/chat/completions"
	// DefaultModel is the model to use when none is configured.
	DefaultModel = "llama-3.3-70b-versatile"
)

// Client talks to an OpenAI-compatible chat completions API (Groq, OpenAI,
// or anything wire-compatible). It implements Generator.
type Client struct {
	apiKey     string
	model      string
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a chat completions client. The endpoint and model fall
// back to Groq defaults when empty.
func NewClient(apiKey, endpoint, model string, logger *zap.Logger) (client *Client) {
	if endpoint == "" {
		endpoint = GroqAPIEndpoint
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	client = &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
	return client
}

// Invoke sends the conversation to the provider and returns the raw text of
// the first completion. All protocol-level failures come back as *TransportError.
func (c *Client) Invoke(ctx context.Context, messages []Message, temperature float64, maxTokens int) (text string, err error) {
	req := chatRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var reqBody []byte
	reqBody, err = json.Marshal(req)
	if err != nil {
		err = errors.Wrap(err, "failed to marshal chat request")
		return text, err
	}

	var httpReq *http.Request
	httpReq, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(reqBody))
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return text, err
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	var resp *http.Response
	resp, err = c.httpClient.Do(httpReq)
	if err != nil {
		err = &TransportError{Provider: "chat", Err: err}
		return text, err
	}
	defer resp.Body.Close()

	var respBody []byte
	respBody, err = io.ReadAll(resp.Body)
	if err != nil {
		err = &TransportError{Provider: "chat", Err: errors.Wrap(err, "failed to read response body")}
		return text, err
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("chat completion request rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("model", c.model))
		err = &TransportError{
			Provider:   "chat",
			StatusCode: resp.StatusCode,
			Err:        errors.Errorf("%s", truncateBody(respBody, 500)),
		}
		return text, err
	}

	var chatResp chatResponse
	err = json.Unmarshal(respBody, &chatResp)
	if err != nil {
		err = &TransportError{Provider: "chat", Err: errors.Wrap(err, "failed to parse completion response")}
		return text, err
	}

	if len(chatResp.Choices) == 0 {
		err = &TransportError{Provider: "chat", Err: errors.New("no choices in completion response")}
		return text, err
	}

	text = chatResp.Choices[0].Message.Content

	c.logger.Debug("chat completion succeeded",
		zap.String("model", chatResp.Model),
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens))

	return text, err
}

// truncateBody keeps error payloads loggable without flooding.
func truncateBody(body []byte, max int) (s string) {
	s = string(body)
	if len(s) > max {
		s = s[:max]
	}
	return s
}
