package model

import "time"

// Config is the complete deepscout configuration, threaded explicitly
// through the pipeline instead of living in globals.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Search      SearchConfig      `yaml:"search"`
	LLM         LLMConfig         `yaml:"llm"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
	Cache       CacheConfig       `yaml:"cache"`
	Output      OutputConfig      `yaml:"output"`
}

// HTTPConfig controls page fetching
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
	MaxTextChars int           `yaml:"max_text_chars"` // Cap on extracted page text
	HTTPProxy    string        `yaml:"http_proxy,omitempty"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty"`
	NoProxy      string        `yaml:"no_proxy,omitempty"`
	RespectRobots bool         `yaml:"respect_robots"`
}

// SearchConfig controls the evidence source adapter
type SearchConfig struct {
	MaxResults     int     `yaml:"max_results"` // Per-angle source cap (K)
	FetchTop       int     `yaml:"fetch_top"`   // How many sources per angle get a page fetch
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	Burst          int     `yaml:"burst"`
}

// LLMConfig configures the language-model collaborator
type LLMConfig struct {
	Provider   string `yaml:"provider"` // openai, anthropic, ollama, "" = disabled
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key,omitempty"`
	BaseURL    string `yaml:"base_url,omitempty"`
	Timeout    int    `yaml:"timeout"` // seconds
	MaxTokens  int    `yaml:"max_tokens"`
	HTTPProxy  string `yaml:"http_proxy,omitempty"`
	HTTPSProxy string `yaml:"https_proxy,omitempty"`
	NoProxy    string `yaml:"no_proxy,omitempty"`
}

// ConcurrencyConfig controls fan-out and per-stage timeouts
type ConcurrencyConfig struct {
	Workers        int           `yaml:"workers"`         // Batch workers (one research run per worker)
	AngleTimeout   time.Duration `yaml:"angle_timeout"`   // Per-angle evidence gathering budget
	ExtractTimeout time.Duration `yaml:"extract_timeout"` // Per-angle extraction budget
	SynthTimeout   time.Duration `yaml:"synth_timeout"`   // Summary/conflict generation budget
}

// CacheConfig controls the layered fetch cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose       bool `yaml:"verbose"`
	IncludeFooter bool `yaml:"include_footer"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       10 * time.Second,
			UserAgent:     "Deepscout/0.1 (+https://github.com/avolkov/deepscout)",
			MaxBodyBytes:  2_000_000,
			MaxTextChars:  10_000,
			RespectRobots: true,
		},
		Search: SearchConfig{
			MaxResults:     5,
			FetchTop:       2,
			RequestsPerSec: 1,
			Burst:          1,
		},
		LLM: LLMConfig{
			Provider:  "openai",
			Model:     "gpt-4o-mini",
			Timeout:   30,
			MaxTokens: 1500,
		},
		Concurrency: ConcurrencyConfig{
			Workers:        4,
			AngleTimeout:   60 * time.Second,
			ExtractTimeout: 45 * time.Second,
			SynthTimeout:   60 * time.Second,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       "", // Resolved to ~/.deepscout/cache at startup
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Output: OutputConfig{
			Verbose:       false,
			IncludeFooter: true,
		},
	}
}
