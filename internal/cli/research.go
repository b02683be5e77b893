package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/avolkov/deepscout/internal/model"
	"github.com/avolkov/deepscout/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	outJSON     string
	outMD       string
	timeout     time.Duration
	userAgent   string
	maxBytes    int64
	maxResults  int
	fetchTop    int
	noCache     bool
	noFooter    bool
	noLLM       bool
	llmProvider string
	llmModel    string
)

// researchCmd represents the research command
var researchCmd = &cobra.Command{
	Use:   "research <input>",
	Short: "Research a subject and generate a cited report",
	Long: `Research takes a short input (a company name, a stock ticker, or a
free-form question), plans several research angles, gathers web evidence
for every angle in parallel, and produces a structured report:
- Executive summary
- One section per research angle, with source-backed claims
- Globally numbered references
- Risks, uncertainties and conflicting information
- A "what to watch next" checklist

A failing angle degrades to a "no evidence found" section; the report is
produced even when every angle fails.

Example:
  deepscout research "Volkswagen"
  deepscout research "VLKAF" --json report.json --md report.md
  deepscout research "What is driving EV adoption in Europe?" --llm-provider ollama`,
	Args: cobra.ExactArgs(1),
	RunE: runResearch,
}

func init() {
	rootCmd.AddCommand(researchCmd)

	// Output flags
	researchCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	researchCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// HTTP and search flags
	researchCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall research timeout")
	researchCmd.Flags().StringVar(&userAgent, "ua", "Deepscout/0.1 (+https://github.com/avolkov/deepscout)", "HTTP User-Agent")
	researchCmd.Flags().Int64Var(&maxBytes, "max-bytes", 2_000_000, "max response bytes to read per page")
	researchCmd.Flags().IntVar(&maxResults, "max-results", 5, "max search results per angle")
	researchCmd.Flags().IntVar(&fetchTop, "fetch-top", 2, "how many sources per angle get a full page fetch")
	researchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable cache (force fresh fetches)")
	researchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")

	// LLM flags
	researchCmd.Flags().BoolVar(&noLLM, "no-llm", false, "disable the LLM (templated planning and summary only)")
	researchCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "LLM provider (openai, anthropic, ollama)")
	researchCmd.Flags().StringVar(&llmModel, "llm-model", "gpt-4o-mini", "LLM model name")
}

func runResearch(cmd *cobra.Command, args []string) error {
	input := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if verbose {
		fmt.Fprintf(os.Stderr, "Researching: %s\n", input)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", timeout)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", !noCache)
		fmt.Fprintln(os.Stderr)
	}

	cfg, err := buildConfig(cmd.Flags())
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(cfg)

	report, err := p.ProduceReport(ctx, input)
	if err != nil {
		return fmt.Errorf("research failed: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "✓ Planned %d angles\n", len(report.Sections))
		fmt.Fprintf(os.Stderr, "✓ Collected %d references\n", len(report.References))
		for _, note := range report.Degraded {
			fmt.Fprintf(os.Stderr, "⚠ Degraded: %s\n", note)
		}
		fmt.Fprintln(os.Stderr)
	}

	if err := p.RenderReport(report, outJSON, outMD, verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	return nil
}

// buildConfig assembles the pipeline configuration: defaults, then config
// file and environment via viper, then whichever flags the user actually set.
func buildConfig(flags *pflag.FlagSet) (*model.Config, error) {
	cfg := model.DefaultConfig()
	applyViperConfig(cfg)

	if flags.Changed("ua") {
		cfg.HTTP.UserAgent = userAgent
	}
	if flags.Changed("max-bytes") {
		cfg.HTTP.MaxBodyBytes = maxBytes
	}
	if flags.Changed("max-results") {
		cfg.Search.MaxResults = maxResults
	}
	if flags.Changed("fetch-top") {
		cfg.Search.FetchTop = fetchTop
	}
	if flags.Changed("no-cache") {
		cfg.Cache.Enabled = !noCache
	}
	if flags.Changed("no-footer") {
		cfg.Output.IncludeFooter = !noFooter
	}
	cfg.Output.Verbose = verbose

	if noLLM {
		cfg.LLM.Provider = ""
		return cfg, nil
	}
	if flags.Changed("llm-provider") {
		cfg.LLM.Provider = llmProvider
	}
	if flags.Changed("llm-model") {
		cfg.LLM.Model = llmModel
	}

	// Fail early on missing credentials rather than degrading every stage
	switch strings.ToLower(cfg.LLM.Provider) {
	case "":
		return cfg, nil
	case "openai":
		if cfg.LLM.APIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set (use --no-llm for a degraded run)")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" && os.Getenv("ANTHROPIC_API_KEY") == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set (use --no-llm for a degraded run)")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.LLM.BaseURL == "" {
			cfg.LLM.BaseURL = baseURL
		}
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.LLM.Provider)
	}

	return cfg, nil
}
