package cli

import (
	"testing"
	"time"

	"github.com/avolkov/deepscout/internal/model"
	"github.com/spf13/viper"
)

func TestApplyViperConfig(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("http.user_agent", "scout-test/1.0")
	viper.Set("http.max_body_bytes", 512)
	viper.Set("search.max_results", 9)
	viper.Set("llm.model", "llama3")
	viper.Set("concurrency.angle_timeout", "90s")
	viper.Set("cache.enabled", false)

	cfg := model.DefaultConfig()
	applyViperConfig(cfg)

	if cfg.HTTP.UserAgent != "scout-test/1.0" {
		t.Errorf("UserAgent = %q, want scout-test/1.0", cfg.HTTP.UserAgent)
	}
	if cfg.HTTP.MaxBodyBytes != 512 {
		t.Errorf("MaxBodyBytes = %d, want 512", cfg.HTTP.MaxBodyBytes)
	}
	if cfg.Search.MaxResults != 9 {
		t.Errorf("MaxResults = %d, want 9", cfg.Search.MaxResults)
	}
	if cfg.LLM.Model != "llama3" {
		t.Errorf("Model = %q, want llama3", cfg.LLM.Model)
	}
	if cfg.Concurrency.AngleTimeout != 90*time.Second {
		t.Errorf("AngleTimeout = %v, want 90s", cfg.Concurrency.AngleTimeout)
	}
	if cfg.Cache.Enabled {
		t.Error("Cache.Enabled = true, want false")
	}

	// Keys absent from viper keep their defaults
	def := model.DefaultConfig()
	if cfg.Search.FetchTop != def.Search.FetchTop {
		t.Errorf("FetchTop = %d, want default %d", cfg.Search.FetchTop, def.Search.FetchTop)
	}
	if cfg.HTTP.Timeout != def.HTTP.Timeout {
		t.Errorf("HTTP.Timeout = %v, want default %v", cfg.HTTP.Timeout, def.HTTP.Timeout)
	}
}

func TestBuildConfigFlagBeatsConfigFile(t *testing.T) {
	viper.Reset()
	defer viper.Reset()

	viper.Set("http.user_agent", "from-config-file/1.0")
	viper.Set("search.max_results", 9)

	flags := researchCmd.Flags()
	if err := flags.Set("ua", "from-flag/2.0"); err != nil {
		t.Fatalf("set ua flag: %v", err)
	}
	if err := flags.Set("no-llm", "true"); err != nil {
		t.Fatalf("set no-llm flag: %v", err)
	}
	t.Cleanup(func() {
		noLLM = false
	})

	cfg, err := buildConfig(flags)
	if err != nil {
		t.Fatalf("buildConfig() error: %v", err)
	}

	// An explicitly set flag wins over the config file
	if cfg.HTTP.UserAgent != "from-flag/2.0" {
		t.Errorf("UserAgent = %q, want from-flag/2.0", cfg.HTTP.UserAgent)
	}
	// A key only present in the config file wins over the default
	if cfg.Search.MaxResults != 9 {
		t.Errorf("MaxResults = %d, want 9", cfg.Search.MaxResults)
	}
	if cfg.LLM.Provider != "" {
		t.Errorf("Provider = %q, want empty with --no-llm", cfg.LLM.Provider)
	}
}
