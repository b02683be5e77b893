// Package pipeline orchestrates the research flow: classify the input, plan
// research angles, gather evidence for every angle concurrently, extract
// claims per angle, and synthesize everything into one report.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/avolkov/deepscout/internal/cache"
	"github.com/avolkov/deepscout/internal/classify"
	"github.com/avolkov/deepscout/internal/extract"
	"github.com/avolkov/deepscout/internal/llm"
	"github.com/avolkov/deepscout/internal/model"
	"github.com/avolkov/deepscout/internal/plan"
	"github.com/avolkov/deepscout/internal/search"
	"github.com/avolkov/deepscout/internal/synth"
	"github.com/avolkov/deepscout/internal/worker"
)

// Pipeline wires the research stages together. All collaborator clients and
// timeouts live in the configuration threaded through here; stages never
// reach for global state.
type Pipeline struct {
	planner     *plan.Planner
	runner      *Runner
	extractor   *extract.Extractor
	synthesizer *synth.Synthesizer
	renderer    *Renderer
	config      *model.Config
}

// NewPipeline creates a new pipeline from the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	provider, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize LLM provider: %v\n", err)
		provider = nil
	}

	var pageCache cache.Cache
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			if home, err := os.UserHomeDir(); err == nil {
				dir = filepath.Join(home, ".deepscout", "cache")
			}
		}
		if dir != "" {
			pageCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
		}
	}

	limiter := worker.NewLimiter(cfg.Search.RequestsPerSec, cfg.Search.Burst)
	fetcher := NewFetcher(cfg.HTTP, pageCache, limiter)
	searcher := search.NewDuckDuckGo(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.Search.RequestsPerSec, cfg.Search.Burst)

	runner := NewRunner(searcher, fetcher, cfg.Search, cfg.Concurrency.AngleTimeout)
	runner.verbose = cfg.Output.Verbose

	return &Pipeline{
		planner:     plan.NewPlanner(provider),
		runner:      runner,
		extractor:   extract.NewExtractor(provider, cfg.Concurrency.ExtractTimeout),
		synthesizer: synth.NewSynthesizer(provider, cfg.Concurrency.SynthTimeout),
		renderer:    NewRenderer(cfg.Output.IncludeFooter),
		config:      cfg,
	}
}

// ProduceReport runs the full pipeline for one raw input. Collaborator
// failures degrade inside the returned report; the only hard failure is
// invalid input or internal state.
func (p *Pipeline) ProduceReport(ctx context.Context, rawInput string) (*model.Report, error) {
	if strings.TrimSpace(rawInput) == "" {
		return nil, fmt.Errorf("empty research input")
	}

	topic := classify.Classify(rawInput)
	p.progress("Topic: %q (force SWOT: %v)", topic.Subject, topic.ForceSwotAngle)

	angles := p.planner.Plan(ctx, topic)
	if len(angles) == 0 {
		// The planner guarantees a fallback plan; an empty one is a bug.
		return nil, fmt.Errorf("planner returned no angles for %q", topic.Subject)
	}
	p.progress("Planned %d angles", len(angles))

	results := p.runner.Run(ctx, topic, angles)
	if len(results) != len(angles) {
		return nil, fmt.Errorf("runner returned %d results for %d angles", len(results), len(angles))
	}

	p.extractAll(ctx, topic, results)

	report := p.synthesizer.Synthesize(ctx, topic, results)
	p.progress("Report ready: %d references, %d sections", len(report.References), len(report.Sections))

	return report, nil
}

// extractAll runs claim extraction for every usable angle concurrently. Each
// goroutine writes only its own slot; failed angles keep empty claim lists.
func (p *Pipeline) extractAll(ctx context.Context, topic model.Topic, results []model.AngleResult) {
	var wg sync.WaitGroup
	for i := range results {
		if results[i].Status == model.AngleFailed {
			continue
		}
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			results[idx].Claims = p.extractor.Extract(ctx, topic, results[idx])
		}(i)
	}
	wg.Wait()
}

// progress prints verbose progress to stderr
func (p *Pipeline) progress(format string, args ...interface{}) {
	if p.config != nil && p.config.Output.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}

// RenderReport renders the report to the configured outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Printf("Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Printf("Wrote Markdown: %s\n", mdPath)
		}
	}

	p.renderer.RenderSummary(report)

	return nil
}
