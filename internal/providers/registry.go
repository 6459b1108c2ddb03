package providers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Registry holds the configured LLM clients. It supports config-driven
// instantiation and hot-reload.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]LLMClient
	logger  *slog.Logger
}

// RegistryConfig defines the clients to instantiate from config.
type RegistryConfig struct {
	// LLMProviders maps provider names to their config.
	LLMProviders map[string]LLMProviderConfig
}

// LLMProviderConfig holds one provider's settings with a resolved API key.
type LLMProviderConfig struct {
	Type      string  // "openrouter", "openai"
	Model     string  // default model
	APIKey    string  // resolved API key
	RateLimit float64 // requests per second
	Enabled   bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]LLMClient),
		logger:  slog.Default(),
	}
}

// NewRegistryFromConfig creates a registry and registers every enabled
// provider that has an API key.
func NewRegistryFromConfig(cfg RegistryConfig, logger *slog.Logger) *Registry {
	r := NewRegistry()
	if logger != nil {
		r.logger = logger
	}
	r.Reload(cfg)
	return r
}

// Register adds or replaces a client by name.
func (r *Registry) Register(name string, client LLMClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[name] = client
	r.logger.Info("registered LLM client", "name", name)
}

// Get returns a client by name.
func (r *Registry) Get(name string) (LLMClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	client, ok := r.clients[name]
	if !ok {
		return nil, fmt.Errorf("LLM client not found: %s", name)
	}
	return client, nil
}

// Has checks whether a client is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.clients[name]
	return ok
}

// List returns all registered client names.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.clients))
	for name := range r.clients {
		names = append(names, name)
	}
	return names
}

// Reload rebuilds the registry from new configuration. Providers no
// longer configured are removed.
func (r *Registry) Reload(cfg RegistryConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]bool)
	for name, provCfg := range cfg.LLMProviders {
		if !provCfg.Enabled || provCfg.APIKey == "" {
			continue
		}
		client := createLLMClient(provCfg)
		if client == nil {
			r.logger.Warn("unknown LLM provider type", "name", name, "type", provCfg.Type)
			continue
		}
		want[name] = true
		r.clients[name] = client
		r.logger.Info("registered LLM client", "name", name, "type", provCfg.Type)
	}

	for name := range r.clients {
		if !want[name] {
			delete(r.clients, name)
			r.logger.Info("unregistered LLM client", "name", name)
		}
	}
}

// Dynamic returns a client that resolves name against the registry on
// every call, so Reload takes effect between calls instead of only at
// startup.
func (r *Registry) Dynamic(name string) LLMClient {
	return &dynamicClient{registry: r, name: name}
}

type dynamicClient struct {
	registry *Registry
	name     string
}

func (d *dynamicClient) Name() string {
	return d.name
}

func (d *dynamicClient) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	client, err := d.registry.Get(d.name)
	if err != nil {
		return nil, err
	}
	return client.Chat(ctx, req)
}

// createLLMClient creates a client based on provider type.
func createLLMClient(cfg LLMProviderConfig) LLMClient {
	switch cfg.Type {
	case "openrouter":
		return NewOpenRouterClient(OpenRouterConfig{
			APIKey:       cfg.APIKey,
			DefaultModel: cfg.Model,
			RPS:          cfg.RateLimit,
		})
	case "openai":
		return NewOpenAIClient(OpenAIConfig{
			APIKey:       cfg.APIKey,
			DefaultModel: cfg.Model,
			RPS:          cfg.RateLimit,
		})
	default:
		return nil
	}
}
