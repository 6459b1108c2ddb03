package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if len(cfg.LLMProviders) == 0 {
		t.Fatal("expected default LLM providers")
	}
	or, ok := cfg.GetLLMProvider("openrouter")
	if !ok {
		t.Fatal("expected openrouter provider")
	}
	if or.APIKey != "${OPENROUTER_API_KEY}" {
		t.Error("expected openrouter API key placeholder")
	}
	if cfg.Defaults.BatchSize != 25 {
		t.Errorf("expected batch size 25, got %d", cfg.Defaults.BatchSize)
	}
	if cfg.Defaults.MaxAttempts != 3 {
		t.Errorf("expected 3 attempts, got %d", cfg.Defaults.MaxAttempts)
	}
	if cfg.Defaults.MinEntryLength != 20 {
		t.Errorf("expected min entry length 20, got %d", cfg.Defaults.MinEntryLength)
	}
	if cfg.Defaults.OutputFormat != "csljson" {
		t.Errorf("expected csljson default, got %q", cfg.Defaults.OutputFormat)
	}
}

func TestResolveEnvVars(t *testing.T) {
	t.Run("resolves environment variable", func(t *testing.T) {
		t.Setenv("TEST_API_KEY", "secret123")

		result := ResolveEnvVars("${TEST_API_KEY}")
		if result != "secret123" {
			t.Errorf("expected secret123, got %s", result)
		}
	})

	t.Run("returns empty for missing env var", func(t *testing.T) {
		result := ResolveEnvVars("${DEFINITELY_NOT_SET_12345}")
		if result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})

	t.Run("leaves literal values unchanged", func(t *testing.T) {
		result := ResolveEnvVars("literal-value")
		if result != "literal-value" {
			t.Errorf("expected literal-value, got %s", result)
		}
	})

	t.Run("empty string", func(t *testing.T) {
		if result := ResolveEnvVars(""); result != "" {
			t.Errorf("expected empty string, got %s", result)
		}
	})
}

func TestToRegistryConfig(t *testing.T) {
	t.Setenv("TEST_OPENROUTER_KEY", "or-key-123")

	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"openrouter": {
				Type:    "openrouter",
				Model:   "some/model",
				APIKey:  "${TEST_OPENROUTER_KEY}",
				Enabled: true,
			},
			"literal": {
				Type:   "openai",
				APIKey: "direct-key",
			},
		},
	}

	reg := cfg.ToRegistryConfig()
	if got := reg.LLMProviders["openrouter"].APIKey; got != "or-key-123" {
		t.Errorf("expected resolved key, got %q", got)
	}
	if got := reg.LLMProviders["literal"].APIKey; got != "direct-key" {
		t.Errorf("literal key should pass through, got %q", got)
	}
	if reg.LLMProviders["openrouter"].Model != "some/model" {
		t.Error("model should carry over")
	}
}

func TestEnabledLLMProviders(t *testing.T) {
	cfg := &Config{
		LLMProviders: map[string]LLMProviderCfg{
			"on":  {Type: "openai", Enabled: true},
			"off": {Type: "openai", Enabled: false},
		},
	}
	enabled := cfg.EnabledLLMProviders()
	if len(enabled) != 1 {
		t.Fatalf("expected 1 enabled provider, got %d", len(enabled))
	}
	if _, ok := enabled["on"]; !ok {
		t.Error("expected provider 'on'")
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := WriteDefault(path); err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.HasPrefix(content, "# bibzot configuration") {
		t.Error("expected explanatory header")
	}
	for _, want := range []string{"llm_providers", "openrouter", "batch_size: 25", "${OPENROUTER_API_KEY}"} {
		if !strings.Contains(content, want) {
			t.Errorf("config file missing %q", want)
		}
	}
}
