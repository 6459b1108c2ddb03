// Package providers implements the LLM backends used to structure
// citation batches, behind a single LLMClient interface.
//
// Clients make exactly one attempt per Chat call and classify failures
// via IsRetryable; the retry policy lives with the caller so backoff and
// attempt budgets stay in one place.
package providers

import (
	"context"
	"encoding/json"
	"time"
)

// LLMClient is the interface the batch orchestrator depends on.
type LLMClient interface {
	// Chat sends one chat completion request. One network attempt only.
	Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error)

	// Name returns the client identifier (e.g. "openrouter").
	Name() string
}

// Message is one chat message.
type Message struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

// ResponseFormat requests a structured response from the backend.
type ResponseFormat struct {
	Type string `json:"type"` // "json_object"
}

// JSONObjectFormat asks the backend for a JSON-object-typed response.
func JSONObjectFormat() *ResponseFormat {
	return &ResponseFormat{Type: "json_object"}
}

// ChatRequest is a request to an LLM.
type ChatRequest struct {
	Messages []Message

	// Model overrides the client default when non-empty.
	Model string

	// Temperature is always sent, so zero means zero.
	Temperature float64

	ResponseFormat *ResponseFormat

	// RequestID is generated when empty.
	RequestID string
}

// ChatResult is the response from an LLM call.
type ChatResult struct {
	Content    string
	ParsedJSON json.RawMessage // set when ResponseFormat was requested

	PromptTokens     int
	CompletionTokens int
	TotalTokens      int

	Provider  string
	ModelUsed string
	RequestID string

	ExecutionTime time.Duration
}
