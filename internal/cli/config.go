package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/avolkov/deepscout/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage Deepscout configuration",
	Long: `Manage Deepscout configuration files and settings.

Configuration hierarchy (highest to lowest priority):
1. CLI flags
2. Environment variables (DEEPSCOUT_*)
3. Config file (~/.deepscout/config.yaml)
4. Defaults`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the effective configuration after merging defaults, the config file, and DEEPSCOUT_* environment variables.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := model.DefaultConfig()
		applyViperConfig(cfg)

		configFile := viper.ConfigFileUsed()
		if configFile != "" {
			fmt.Fprintf(os.Stderr, "Configuration file: %s\n\n", configFile)
		} else {
			fmt.Fprintf(os.Stderr, "No configuration file found (using defaults)\n\n")
		}

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("  Current Configuration")
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()

		yamlData, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		fmt.Println(string(yamlData))

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()
		fmt.Println("Configuration hierarchy (highest to lowest priority):")
		fmt.Println("  1. CLI flags")
		fmt.Println("  2. Environment variables (DEEPSCOUT_*, OPENAI_API_KEY, ANTHROPIC_API_KEY)")
		fmt.Println("  3. Config file (~/.deepscout/config.yaml)")
		fmt.Println("  4. Defaults")
		fmt.Println()

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize default configuration file",
	Long:  `Create a default configuration file at ~/.deepscout/config.yaml with all available options.`,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error finding home directory: %w", err)
		}

		configDir := filepath.Join(home, ".deepscout")
		configPath := filepath.Join(configDir, "config.yaml")

		// Check if config already exists
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("config file already exists: %s\nUse 'deepscout config show' to view it, or delete it first to recreate", configPath)
		}

		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}

		f, err := os.Create(configPath)
		if err != nil {
			return fmt.Errorf("error creating config file: %w", err)
		}
		defer func() {
			if closeErr := f.Close(); closeErr != nil && err == nil {
				err = fmt.Errorf("close config file: %w", closeErr)
			}
		}()

		// Helper for writing with error checking
		printf := func(format string, a ...interface{}) {
			if err != nil {
				return
			}
			_, err = fmt.Fprintf(f, format, a...)
		}

		defaultCfg := model.DefaultConfig()

		printf("# Deepscout Configuration File\n")
		printf("# See https://github.com/avolkov/deepscout for full documentation\n")
		printf("#\n")
		printf("# Configuration hierarchy (highest to lowest priority):\n")
		printf("#   1. CLI flags\n")
		printf("#   2. Environment variables (DEEPSCOUT_*)\n")
		printf("#   3. This config file\n")
		printf("#   4. Built-in defaults\n\n")

		yamlData, err := yaml.Marshal(defaultCfg)
		if err != nil {
			return fmt.Errorf("error marshaling config: %w", err)
		}

		if err == nil {
			if _, wErr := f.Write(yamlData); wErr != nil {
				return fmt.Errorf("error writing config: %w", wErr)
			}
		}

		printf("\n# API Keys (recommended to use environment variables instead):\n")
		printf("#   export OPENAI_API_KEY=sk-...\n")
		printf("#   export ANTHROPIC_API_KEY=sk-ant-...\n")
		printf("#   export OLLAMA_BASE_URL=http://localhost:11434\n")

		if err != nil {
			return err
		}

		fmt.Printf("✓ Created default configuration: %s\n", configPath)
		fmt.Printf("\nTo view the configuration:\n")
		fmt.Printf("  deepscout config show\n")
		fmt.Printf("\nTo customize, edit the file with your preferred editor:\n")
		fmt.Printf("  $EDITOR %s\n", configPath)
		fmt.Printf("\n")

		return nil
	},
}

// applyViperConfig overlays values from the config file and DEEPSCOUT_*
// environment variables onto cfg. Keys that viper has never seen leave
// the defaults untouched, so flag handling can layer on top afterwards.
func applyViperConfig(cfg *model.Config) {
	if viper.IsSet("http.timeout") {
		cfg.HTTP.Timeout = viper.GetDuration("http.timeout")
	}
	if viper.IsSet("http.user_agent") {
		cfg.HTTP.UserAgent = viper.GetString("http.user_agent")
	}
	if viper.IsSet("http.max_body_bytes") {
		cfg.HTTP.MaxBodyBytes = viper.GetInt64("http.max_body_bytes")
	}
	if viper.IsSet("http.max_text_chars") {
		cfg.HTTP.MaxTextChars = viper.GetInt("http.max_text_chars")
	}
	if viper.IsSet("http.respect_robots") {
		cfg.HTTP.RespectRobots = viper.GetBool("http.respect_robots")
	}

	if viper.IsSet("search.max_results") {
		cfg.Search.MaxResults = viper.GetInt("search.max_results")
	}
	if viper.IsSet("search.fetch_top") {
		cfg.Search.FetchTop = viper.GetInt("search.fetch_top")
	}
	if viper.IsSet("search.requests_per_sec") {
		cfg.Search.RequestsPerSec = viper.GetFloat64("search.requests_per_sec")
	}
	if viper.IsSet("search.burst") {
		cfg.Search.Burst = viper.GetInt("search.burst")
	}

	if viper.IsSet("llm.provider") {
		cfg.LLM.Provider = viper.GetString("llm.provider")
	}
	if viper.IsSet("llm.model") {
		cfg.LLM.Model = viper.GetString("llm.model")
	}
	if viper.IsSet("llm.api_key") {
		cfg.LLM.APIKey = viper.GetString("llm.api_key")
	}
	if viper.IsSet("llm.base_url") {
		cfg.LLM.BaseURL = viper.GetString("llm.base_url")
	}
	if viper.IsSet("llm.timeout") {
		cfg.LLM.Timeout = viper.GetInt("llm.timeout")
	}
	if viper.IsSet("llm.max_tokens") {
		cfg.LLM.MaxTokens = viper.GetInt("llm.max_tokens")
	}

	if viper.IsSet("concurrency.workers") {
		cfg.Concurrency.Workers = viper.GetInt("concurrency.workers")
	}
	if viper.IsSet("concurrency.angle_timeout") {
		cfg.Concurrency.AngleTimeout = viper.GetDuration("concurrency.angle_timeout")
	}
	if viper.IsSet("concurrency.extract_timeout") {
		cfg.Concurrency.ExtractTimeout = viper.GetDuration("concurrency.extract_timeout")
	}
	if viper.IsSet("concurrency.synth_timeout") {
		cfg.Concurrency.SynthTimeout = viper.GetDuration("concurrency.synth_timeout")
	}

	if viper.IsSet("cache.enabled") {
		cfg.Cache.Enabled = viper.GetBool("cache.enabled")
	}
	if viper.IsSet("cache.dir") {
		cfg.Cache.Dir = viper.GetString("cache.dir")
	}
	if viper.IsSet("cache.memory_ttl") {
		cfg.Cache.MemoryTTL = viper.GetDuration("cache.memory_ttl")
	}
	if viper.IsSet("cache.disk_ttl") {
		cfg.Cache.DiskTTL = viper.GetDuration("cache.disk_ttl")
	}

	if viper.IsSet("output.include_footer") {
		cfg.Output.IncludeFooter = viper.GetBool("output.include_footer")
	}
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
}
