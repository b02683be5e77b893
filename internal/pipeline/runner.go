package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/avolkov/deepscout/internal/model"
	"github.com/avolkov/deepscout/internal/search"
)

// TextFetcher retrieves cleaned page text for a URL
type TextFetcher interface {
	FetchText(ctx context.Context, rawURL string) (string, error)
}

// Runner gathers evidence for all angles concurrently. One goroutine per
// angle, no shared mutable state between them: each angle writes only its
// own slot of the results slice, and the WaitGroup is the single join point.
// A failing or timed-out angle never cancels or fails its siblings.
type Runner struct {
	searcher     search.Searcher
	fetcher      TextFetcher
	maxResults   int
	fetchTop     int
	angleTimeout time.Duration
	verbose      bool
}

// NewRunner creates a new angle runner
func NewRunner(searcher search.Searcher, fetcher TextFetcher, cfg model.SearchConfig, angleTimeout time.Duration) *Runner {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}
	fetchTop := cfg.FetchTop
	if fetchTop < 0 {
		fetchTop = 0
	}

	return &Runner{
		searcher:     searcher,
		fetcher:      fetcher,
		maxResults:   maxResults,
		fetchTop:     fetchTop,
		angleTimeout: angleTimeout,
	}
}

// Run gathers evidence for every angle and returns one AngleResult per
// input angle, in input order. It blocks until every angle has reached a
// terminal state (ok, partial or failed).
func (r *Runner) Run(ctx context.Context, topic model.Topic, angles []model.Angle) []model.AngleResult {
	results := make([]model.AngleResult, len(angles))

	var wg sync.WaitGroup
	for i, angle := range angles {
		wg.Add(1)
		go func(idx int, a model.Angle) {
			defer wg.Done()
			results[idx] = r.gatherAngle(ctx, topic, a)
		}(i, angle)
	}

	wg.Wait()

	return results
}

// gatherAngle runs search and page fetches for one angle under its own
// timeout. The timeout marks this angle failed (or partial, if usable
// sources were already gathered) without touching the others.
func (r *Runner) gatherAngle(ctx context.Context, topic model.Topic, angle model.Angle) model.AngleResult {
	result := model.AngleResult{Angle: angle, Status: model.AngleFailed}

	if r.angleTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.angleTimeout)
		defer cancel()
	}

	query := fmt.Sprintf("%s %s", topic.Subject, angle.Label)

	sources, err := r.searcher.Search(ctx, query, r.maxResults)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: search failed for angle %q: %v\n", angle.Label, err)
		return result
	}

	sources = dedupeByURL(sources)
	if len(sources) > r.maxResults {
		sources = sources[:r.maxResults]
	}
	if len(sources) == 0 {
		return result
	}

	// Fetch page text for the top sources lacking inline content. A fetch
	// failure marks only that source and never aborts the angle.
	fetchFailures := 0
	for i := range sources {
		if i >= r.fetchTop {
			break
		}
		if sources[i].Content != "" {
			sources[i].Fetched = true
			continue
		}

		text, err := r.fetcher.FetchText(ctx, sources[i].URL)
		if err != nil {
			fetchFailures++
			if r.verbose {
				fmt.Fprintf(os.Stderr, "Warning: fetch failed for %s: %v\n", sources[i].URL, err)
			}
			continue
		}
		sources[i].Content = text
		sources[i].Fetched = true
	}

	result.Sources = sources
	if fetchFailures == 0 {
		result.Status = model.AngleOK
	} else {
		result.Status = model.AnglePartial
	}

	return result
}

// dedupeByURL drops sources whose URL was already seen, keeping first occurrences
func dedupeByURL(sources []model.Source) []model.Source {
	seen := make(map[string]bool, len(sources))
	var out []model.Source
	for _, s := range sources {
		if s.URL == "" || seen[s.URL] {
			continue
		}
		seen[s.URL] = true
		out = append(out, s)
	}
	return out
}
