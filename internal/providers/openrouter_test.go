package providers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func openRouterTestServer(t *testing.T, handler http.HandlerFunc) (*OpenRouterClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := NewOpenRouterClient(OpenRouterConfig{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		DefaultModel: "test/model",
		RPS:          1000, // no pacing in tests
	})
	return client, srv
}

func TestOpenRouterChat(t *testing.T) {
	t.Run("successful completion", func(t *testing.T) {
		var gotReq openRouterRequest
		client, _ := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/chat/completions" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
				t.Errorf("unexpected auth header: %s", auth)
			}
			if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			resp := map[string]any{
				"id":    "gen-1",
				"model": "test/model",
				"choices": []map[string]any{
					{"message": map[string]any{"role": "assistant", "content": `{"items": [{"title": "A"}]}`}},
				},
				"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
			}
			json.NewEncoder(w).Encode(resp)
		})

		res, err := client.Chat(context.Background(), &ChatRequest{
			Messages: []Message{
				{Role: "system", Content: "structure citations"},
				{Role: "user", Content: "- Smith, John. 1950. Title."},
			},
			ResponseFormat: JSONObjectFormat(),
		})
		if err != nil {
			t.Fatalf("Chat failed: %v", err)
		}

		if gotReq.Model != "test/model" {
			t.Errorf("expected default model, got %q", gotReq.Model)
		}
		if gotReq.ResponseFormat == nil || gotReq.ResponseFormat.Type != "json_object" {
			t.Error("expected json_object response format on the wire")
		}
		if res.ParsedJSON == nil {
			t.Fatal("expected ParsedJSON to be set")
		}
		if res.TotalTokens != 15 {
			t.Errorf("expected 15 total tokens, got %d", res.TotalTokens)
		}
		if res.RequestID == "" {
			t.Error("expected a generated request ID")
		}
	})

	t.Run("temperature zero is sent", func(t *testing.T) {
		var body map[string]json.RawMessage
		client, _ := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Fatalf("decode request: %v", err)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]any{"content": "ok"}}},
			})
		})

		if _, err := client.Chat(context.Background(), &ChatRequest{Temperature: 0}); err != nil {
			t.Fatalf("Chat failed: %v", err)
		}
		if _, ok := body["temperature"]; !ok {
			t.Error("temperature must be serialized even when zero")
		}
	})

	t.Run("rate limit is retryable", func(t *testing.T) {
		client, _ := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "rate limited", http.StatusTooManyRequests)
		})

		_, err := client.Chat(context.Background(), &ChatRequest{})
		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("expected APIError, got %v", err)
		}
		if apiErr.Status != http.StatusTooManyRequests {
			t.Errorf("expected status 429, got %d", apiErr.Status)
		}
		if !IsRetryable(err) {
			t.Error("429 should be retryable")
		}
	})

	t.Run("bad request is not retryable", func(t *testing.T) {
		client, _ := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "bad model", http.StatusBadRequest)
		})

		_, err := client.Chat(context.Background(), &ChatRequest{})
		if err == nil {
			t.Fatal("expected error")
		}
		if IsRetryable(err) {
			t.Error("400 should not be retryable")
		}
	})

	t.Run("empty choices is a shape error", func(t *testing.T) {
		client, _ := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
		})

		_, err := client.Chat(context.Background(), &ChatRequest{})
		if !errors.Is(err, ErrBadResponseShape) {
			t.Errorf("expected ErrBadResponseShape, got %v", err)
		}
	})

	t.Run("non-JSON content with json_object format is a shape error", func(t *testing.T) {
		client, _ := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]any{"content": "sorry, I cannot help"}}},
			})
		})

		_, err := client.Chat(context.Background(), &ChatRequest{ResponseFormat: JSONObjectFormat()})
		if !errors.Is(err, ErrBadResponseShape) {
			t.Errorf("expected ErrBadResponseShape, got %v", err)
		}
		if IsRetryable(err) {
			t.Error("shape errors must not be retryable")
		}
	})

	t.Run("model override", func(t *testing.T) {
		var gotReq openRouterRequest
		client, _ := openRouterTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewDecoder(r.Body).Decode(&gotReq)
			json.NewEncoder(w).Encode(map[string]any{
				"choices": []map[string]any{{"message": map[string]any{"content": "ok"}}},
			})
		})

		if _, err := client.Chat(context.Background(), &ChatRequest{Model: "other/model"}); err != nil {
			t.Fatalf("Chat failed: %v", err)
		}
		if gotReq.Model != "other/model" {
			t.Errorf("expected model override, got %q", gotReq.Model)
		}
	})
}

func TestRegistry(t *testing.T) {
	t.Run("config-driven registration", func(t *testing.T) {
		reg := NewRegistryFromConfig(RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"openrouter": {Type: "openrouter", APIKey: "k1", Enabled: true},
				"openai":     {Type: "openai", APIKey: "k2", Enabled: true},
				"disabled":   {Type: "openai", APIKey: "k3", Enabled: false},
				"keyless":    {Type: "openrouter", Enabled: true},
			},
		}, nil)

		if !reg.Has("openrouter") || !reg.Has("openai") {
			t.Error("expected both enabled providers registered")
		}
		if reg.Has("disabled") {
			t.Error("disabled provider should not be registered")
		}
		if reg.Has("keyless") {
			t.Error("provider without API key should not be registered")
		}
	})

	t.Run("get missing client", func(t *testing.T) {
		reg := NewRegistry()
		if _, err := reg.Get("nope"); err == nil {
			t.Error("expected error for unknown client")
		}
	})

	t.Run("dynamic client follows replacement", func(t *testing.T) {
		first := NewMockClient()
		second := NewMockClient()
		reg := NewRegistry()
		reg.Register("backend", first)

		client := reg.Dynamic("backend")
		if _, err := client.Chat(context.Background(), &ChatRequest{}); err != nil {
			t.Fatalf("Chat failed: %v", err)
		}
		if first.RequestCount() != 1 {
			t.Errorf("expected first client to serve the call, got %d", first.RequestCount())
		}

		reg.Register("backend", second)
		if _, err := client.Chat(context.Background(), &ChatRequest{}); err != nil {
			t.Fatalf("Chat after replacement failed: %v", err)
		}
		if second.RequestCount() != 1 || first.RequestCount() != 1 {
			t.Errorf("expected second client to serve the call, got first=%d second=%d",
				first.RequestCount(), second.RequestCount())
		}

		reg.Reload(RegistryConfig{})
		if _, err := client.Chat(context.Background(), &ChatRequest{}); err == nil {
			t.Error("expected error once the provider is unregistered")
		}
	})

	t.Run("reload removes stale clients", func(t *testing.T) {
		reg := NewRegistryFromConfig(RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"openrouter": {Type: "openrouter", APIKey: "k1", Enabled: true},
			},
		}, nil)

		reg.Reload(RegistryConfig{
			LLMProviders: map[string]LLMProviderConfig{
				"openai": {Type: "openai", APIKey: "k2", Enabled: true},
			},
		})

		if reg.Has("openrouter") {
			t.Error("stale client should be removed on reload")
		}
		if !reg.Has("openai") {
			t.Error("new client should be registered on reload")
		}
	})
}
