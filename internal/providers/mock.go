package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

const MockClientName = "mock"

// MockResponse scripts one Chat call of a MockClient.
type MockResponse struct {
	JSON json.RawMessage
	Err  error
}

// MockClient is an LLMClient for testing.
type MockClient struct {
	// Configurable behavior
	Latency      time.Duration
	ShouldFail   bool            // every call fails
	FailFirst    int             // first N calls fail (then succeed)
	FailErr      error           // error returned by failing calls (default: retryable APIError)
	ResponseJSON json.RawMessage // default response body

	// Script, when non-empty, drives calls one by one and takes
	// precedence over the fields above. Calls past the end of the
	// script fall back to ResponseJSON.
	Script []MockResponse

	mu           sync.Mutex
	requestCount atomic.Int64
	requests     []*ChatRequest
}

// NewMockClient creates a mock client with a trivially valid response.
func NewMockClient() *MockClient {
	return &MockClient{
		ResponseJSON: json.RawMessage(`{"items": []}`),
	}
}

// Name returns the client identifier.
func (c *MockClient) Name() string {
	return MockClientName
}

// Chat replays the configured behavior for one call.
func (c *MockClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	count := int(c.requestCount.Add(1))

	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.mu.Unlock()

	if c.Latency > 0 {
		select {
		case <-time.After(c.Latency):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if len(c.Script) >= count {
		scripted := c.Script[count-1]
		if scripted.Err != nil {
			return nil, scripted.Err
		}
		return c.result(req, scripted.JSON), nil
	}

	if c.ShouldFail || count <= c.FailFirst {
		if c.FailErr != nil {
			return nil, c.FailErr
		}
		return nil, &APIError{Provider: MockClientName, Status: 429, Body: "mock rate limit"}
	}

	return c.result(req, c.ResponseJSON), nil
}

func (c *MockClient) result(req *ChatRequest, body json.RawMessage) *ChatResult {
	res := &ChatResult{
		Content:   string(body),
		Provider:  MockClientName,
		ModelUsed: req.Model,
		RequestID: fmt.Sprintf("mock-%d", c.requestCount.Load()),
	}
	if req.ResponseFormat != nil {
		res.ParsedJSON = body
	}
	return res
}

// RequestCount returns the number of Chat calls made.
func (c *MockClient) RequestCount() int64 {
	return c.requestCount.Load()
}

// Requests returns the requests seen so far.
func (c *MockClient) Requests() []*ChatRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*ChatRequest, len(c.requests))
	copy(out, c.requests)
	return out
}

// Reset clears the call history.
func (c *MockClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestCount.Store(0)
	c.requests = nil
}

// Verify interface
var _ LLMClient = (*MockClient)(nil)
