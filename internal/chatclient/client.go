package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"yai.app/assessment-assistant/internal/telemetry"
)

const (
	// DefaultPath is the assistant route served by the backend.
	DefaultPath = "/api/gemini"

	FallbackReply = "I apologize, but I received an unexpected response format. Please try rephrasing your question."

	defaultAPIErrorMessage = "API returned an error"
	measureName            = "chatbot_api_call"
	maxResponseBytes       = 1 << 20
)

// Completer turns a prompt into the assistant's reply text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

type Client struct {
	endpoint   string
	httpClient *http.Client
	harness    *telemetry.Harness
}

type ClientOption func(*Client)

func WithHTTPClient(c *http.Client) ClientOption {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

func WithHarness(h *telemetry.Harness) ClientOption {
	return func(cl *Client) {
		cl.harness = h
	}
}

// NewClient targets the chat route under baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + DefaultPath,
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type promptRequest struct {
	Prompt string `json:"prompt"`
}

// Complete posts the prompt and extracts the reply. Bodies that match no
// known shape yield FallbackReply rather than an error.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	outcome := <-telemetry.MeasureAsync(c.harness, measureName, func() (*http.Response, error) {
		return c.post(ctx, prompt)
	})
	if outcome.Err != nil {
		return "", outcome.Err
	}
	resp := outcome.Value
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return "", &HTTPError{StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read chat response: %w", err)
	}
	return parseReply(raw)
}

func (c *Client) post(ctx context.Context, prompt string) (*http.Response, error) {
	payload, err := json.Marshal(promptRequest{Prompt: prompt})
	if err != nil {
		return nil, fmt.Errorf("failed to encode prompt: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Err: err}
	}
	return resp, nil
}

// parseReply reads the three accepted shapes in order: {response},
// {candidates[0].content.parts[0].text}, then {error}. A field that is
// missing, empty or of the wrong type does not match. Only a body that is
// not JSON, or is JSON null, is an error.
func parseReply(raw []byte) (string, error) {
	var body any
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("failed to decode chat response: %w", err)
	}
	if body == nil {
		return "", errors.New("chat response body was null")
	}
	obj, ok := body.(map[string]any)
	if !ok {
		return FallbackReply, nil
	}

	if text, ok := obj["response"].(string); ok && text != "" {
		return text, nil
	}
	if text, ok := candidateText(obj["candidates"]); ok {
		return text, nil
	}
	if payload, ok := obj["error"]; ok && truthy(payload) {
		return "", &APIError{Message: errorMessage(payload)}
	}
	return FallbackReply, nil
}

func candidateText(v any) (string, bool) {
	candidates, ok := v.([]any)
	if !ok || len(candidates) == 0 {
		return "", false
	}
	first, ok := candidates[0].(map[string]any)
	if !ok {
		return "", false
	}
	content, ok := first["content"].(map[string]any)
	if !ok {
		return "", false
	}
	parts, ok := content["parts"].([]any)
	if !ok || len(parts) == 0 {
		return "", false
	}
	part, ok := parts[0].(map[string]any)
	if !ok {
		return "", false
	}
	text, ok := part["text"].(string)
	return text, ok && text != ""
}

// truthy follows the usual JSON falsy set: null, false, 0 and "".
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	default:
		return true
	}
}

func errorMessage(payload any) string {
	if obj, ok := payload.(map[string]any); ok {
		if msg, ok := obj["message"].(string); ok && msg != "" {
			return msg
		}
	}
	return defaultAPIErrorMessage
}
