package llm

import (
	"testing"

	"github.com/avolkov/deepscout/internal/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantNil  bool
		wantErr  bool
		wantName string
	}{
		{"disabled", Config{Provider: ""}, true, false, ""},
		{"openai", Config{Provider: "openai", APIKey: "k"}, false, false, "openai"},
		{"anthropic", Config{Provider: "anthropic", APIKey: "k"}, false, false, "anthropic"},
		{"claude alias", Config{Provider: "claude", APIKey: "k"}, false, false, "anthropic"},
		{"ollama", Config{Provider: "ollama"}, false, false, "ollama"},
		{"case insensitive", Config{Provider: "OpenAI", APIKey: "k"}, false, false, "openai"},
		{"unknown", Config{Provider: "bard"}, true, true, ""},
		{"openai missing key", Config{Provider: "openai"}, true, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider error = %v, wantErr %v", err, tt.wantErr)
			}
			if (p == nil) != tt.wantNil {
				t.Fatalf("NewProvider nil = %v, want %v", p == nil, tt.wantNil)
			}
			if p != nil && p.Name() != tt.wantName {
				t.Errorf("Name() = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestConfigFromModel_EnvFallback(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "env-key")

	cfg := ConfigFromModel(model.LLMConfig{Provider: "openai"})
	if cfg.APIKey != "env-key" {
		t.Errorf("APIKey = %q, want env-key", cfg.APIKey)
	}

	// Explicit key wins over the environment
	cfg = ConfigFromModel(model.LLMConfig{Provider: "openai", APIKey: "explicit"})
	if cfg.APIKey != "explicit" {
		t.Errorf("APIKey = %q, want explicit", cfg.APIKey)
	}
}

func TestConfigFromModel_OllamaBaseURL(t *testing.T) {
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")

	cfg := ConfigFromModel(model.LLMConfig{Provider: "ollama"})
	if cfg.BaseURL != "http://gpu-box:11434" {
		t.Errorf("BaseURL = %q", cfg.BaseURL)
	}
}
