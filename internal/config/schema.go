package config

// Config holds bibzot configuration.
// Loaded from ./config.yaml or ~/.bibzot/config.yaml.
type Config struct {
	LLMProviders map[string]LLMProviderCfg `mapstructure:"llm_providers" yaml:"llm_providers"`
	Defaults     DefaultsCfg               `mapstructure:"defaults" yaml:"defaults"`
}

// LLMProviderCfg configures a structuring backend.
type LLMProviderCfg struct {
	Type      string  `mapstructure:"type" yaml:"type"`             // "openrouter", "openai"
	Model     string  `mapstructure:"model" yaml:"model"`           // Model name
	APIKey    string  `mapstructure:"api_key" yaml:"api_key"`       // API key (supports ${ENV_VAR} syntax)
	RateLimit float64 `mapstructure:"rate_limit" yaml:"rate_limit"` // Requests per second
	Enabled   bool    `mapstructure:"enabled" yaml:"enabled"`
}

// DefaultsCfg holds pipeline defaults.
type DefaultsCfg struct {
	LLMProvider        string `mapstructure:"llm_provider" yaml:"llm_provider"`                 // Default backend name
	BatchSize          int    `mapstructure:"batch_size" yaml:"batch_size"`                     // Entries per structuring call
	PacingSeconds      int    `mapstructure:"pacing_seconds" yaml:"pacing_seconds"`             // Pause between batches
	CallTimeoutSeconds int    `mapstructure:"call_timeout_seconds" yaml:"call_timeout_seconds"` // Per-attempt timeout
	MaxAttempts        int    `mapstructure:"max_attempts" yaml:"max_attempts"`                 // Attempts per batch
	MinEntryLength     int    `mapstructure:"min_entry_length" yaml:"min_entry_length"`         // Segmenter length filter
	OutputFormat       string `mapstructure:"output_format" yaml:"output_format"`               // "csljson" or "ris"
}

// DefaultConfig returns configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:    "openrouter",
				Model:   "anthropic/claude-3.5-sonnet",
				APIKey:  "${OPENROUTER_API_KEY}",
				Enabled: true,
			},
			"openai": {
				Type:    "openai",
				Model:   "gpt-4o-mini",
				APIKey:  "${OPENAI_API_KEY}",
				Enabled: true,
			},
		},
		Defaults: DefaultsCfg{
			LLMProvider:        "openrouter",
			BatchSize:          25,
			PacingSeconds:      1,
			CallTimeoutSeconds: 180,
			MaxAttempts:        3,
			MinEntryLength:     20,
			OutputFormat:       "csljson",
		},
	}
}

// GetLLMProvider returns a backend config by name.
func (c *Config) GetLLMProvider(name string) (LLMProviderCfg, bool) {
	cfg, ok := c.LLMProviders[name]
	return cfg, ok
}

// EnabledLLMProviders returns all enabled backends.
func (c *Config) EnabledLLMProviders() map[string]LLMProviderCfg {
	result := make(map[string]LLMProviderCfg)
	for name, cfg := range c.LLMProviders {
		if cfg.Enabled {
			result[name] = cfg
		}
	}
	return result
}
