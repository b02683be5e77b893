package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/avolkov/deepscout/internal/model"
)

// NewProvider creates a new LLM provider based on configuration
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil

	case "anthropic", "claude":
		p, err := NewAnthropicProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil

	case "ollama":
		p, err := NewOllamaProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil

	case "":
		// No provider configured - return nil (LLM disabled)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config, filling API keys
// from the environment when the config leaves them empty.
func ConfigFromModel(modelConfig model.LLMConfig) Config {
	cfg := Config{
		Provider:   modelConfig.Provider,
		Model:      modelConfig.Model,
		APIKey:     modelConfig.APIKey,
		BaseURL:    modelConfig.BaseURL,
		Timeout:    modelConfig.Timeout,
		MaxTokens:  modelConfig.MaxTokens,
		HTTPProxy:  modelConfig.HTTPProxy,
		HTTPSProxy: modelConfig.HTTPSProxy,
		NoProxy:    modelConfig.NoProxy,
	}

	if cfg.APIKey == "" {
		switch strings.ToLower(cfg.Provider) {
		case "openai":
			cfg.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if cfg.BaseURL == "" && strings.ToLower(cfg.Provider) == "ollama" {
		cfg.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}

	return cfg
}
