// Package synth merges all angle results into the final report: global
// citation numbering, conflict detection, executive summary and the
// "what to watch next" checklist.
package synth

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/avolkov/deepscout/internal/llm"
	"github.com/avolkov/deepscout/internal/model"
)

const summarySystem = "You are a senior research editor. You are given claims collected for " +
	"several research angles, each with citation indices. Write an objective, " +
	"professional executive summary and a short 'what to watch next' checklist. " +
	"Respond with JSON only."

const conflictSystem = "You are a research reviewer. You are given claims from several research " +
	"angles. Identify pairs of claims from different angles that assert " +
	"contradictory facts about the same subject matter. Only use the provided " +
	"claims; never invent facts. Respond with JSON only."

type summaryResponse struct {
	Summary   string   `json:"summary"`
	WatchNext []string `json:"watch_next"`
}

type conflictResponse struct {
	Conflicts []struct {
		Description string   `json:"description"`
		Angles      []string `json:"angles"`
		URLs        []string `json:"urls"`
	} `json:"conflicts"`
}

// Synthesizer builds the final report from angle results
type Synthesizer struct {
	provider  llm.Provider
	maxTokens int
	timeout   time.Duration
	clock     func() time.Time // injectable for tests
}

// NewSynthesizer creates a new synthesizer. A nil provider degrades the
// summary and conflict sections to templated output.
func NewSynthesizer(provider llm.Provider, timeout time.Duration) *Synthesizer {
	return &Synthesizer{
		provider:  provider,
		maxTokens: 1500,
		timeout:   timeout,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// Synthesize merges the angle results into one report. It never fails:
// collaborator errors degrade individual sections, never the whole report.
func (s *Synthesizer) Synthesize(ctx context.Context, topic model.Topic, results []model.AngleResult) *model.Report {
	report := &model.Report{
		Subject:     topic.Subject,
		GeneratedAt: s.clock(),
	}

	// Global citation numbering: scan sources in angle order, assigning each
	// distinct URL the next unused index. The same URL seen in two angles
	// shares one index.
	indexByURL := make(map[string]int)
	for _, ar := range results {
		for _, src := range ar.Sources {
			if _, seen := indexByURL[src.URL]; seen {
				continue
			}
			idx := len(report.References) + 1
			indexByURL[src.URL] = idx
			report.References = append(report.References, model.Citation{
				Index: idx,
				URL:   src.URL,
				Title: src.Title,
			})
		}
	}

	// Rewrite every claim's citations to the global indices
	report.Sections = make([]model.AngleResult, len(results))
	for i, ar := range results {
		section := ar
		section.Claims = make([]model.Claim, 0, len(ar.Claims))
		for _, claim := range ar.Claims {
			rewritten := claim
			rewritten.Citations = citationIndices(claim.URLs, indexByURL)
			if len(rewritten.Citations) == 0 {
				// Should not happen for validated claims; drop rather than
				// emit a claim with dangling citations.
				continue
			}
			section.Claims = append(section.Claims, rewritten)
		}
		report.Sections[i] = section
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	allClaims := collectClaims(report.Sections)

	report.Risks = s.detectConflicts(ctx, allClaims, indexByURL, report)
	s.generateSummary(ctx, topic, allClaims, report)

	return report
}

// citationIndices maps claim URLs to global indices, preserving URL order
func citationIndices(urls []string, indexByURL map[string]int) []int {
	var out []int
	for _, u := range urls {
		if idx, ok := indexByURL[u]; ok {
			out = append(out, idx)
		}
	}
	return out
}

// collectClaims flattens all sections' claims in angle order
func collectClaims(sections []model.AngleResult) []model.Claim {
	var claims []model.Claim
	for _, sec := range sections {
		claims = append(claims, sec.Claims...)
	}
	return claims
}

// detectConflicts asks the model for contradictory claims across angles,
// operating only on the already-extracted claims. Any failure leaves the
// risks section empty and is noted as degradation.
func (s *Synthesizer) detectConflicts(ctx context.Context, claims []model.Claim, indexByURL map[string]int, report *model.Report) []model.Conflict {
	if s.provider == nil || len(claims) < 2 {
		return nil
	}

	var resp conflictResponse
	err := llm.CompleteJSON(ctx, s.provider, llm.CompletionRequest{
		System:    conflictSystem,
		Prompt:    buildConflictPrompt(claims),
		MaxTokens: s.maxTokens,
	}, &resp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: conflict detection degraded: %v\n", err)
		report.Degraded = append(report.Degraded, "conflict detection unavailable")
		return nil
	}

	var conflicts []model.Conflict
	for _, c := range resp.Conflicts {
		desc := strings.TrimSpace(c.Description)
		if desc == "" {
			continue
		}
		conflicts = append(conflicts, model.Conflict{
			Description: desc,
			Angles:      c.Angles,
			Citations:   citationIndices(c.URLs, indexByURL),
		})
	}
	return conflicts
}

// generateSummary fills Summary and WatchNext, degrading to templated text
// assembled from angle statuses when the collaborator fails.
func (s *Synthesizer) generateSummary(ctx context.Context, topic model.Topic, claims []model.Claim, report *model.Report) {
	if s.provider != nil && len(claims) > 0 {
		var resp summaryResponse
		err := llm.CompleteJSON(ctx, s.provider, llm.CompletionRequest{
			System:    summarySystem,
			Prompt:    buildSummaryPrompt(topic, claims),
			MaxTokens: s.maxTokens,
		}, &resp)
		if err == nil && strings.TrimSpace(resp.Summary) != "" {
			report.Summary = strings.TrimSpace(resp.Summary)
			report.WatchNext = resp.WatchNext
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: summary generation degraded: %v\n", err)
		}
		report.Degraded = append(report.Degraded, "summary generation fell back to template")
	}

	report.Summary = templatedSummary(topic, report.Sections)
	report.WatchNext = templatedWatchNext(report.Sections)
}

// buildSummaryPrompt assembles the synthesis prompt over the full claim set
func buildSummaryPrompt(topic model.Topic, claims []model.Claim) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", topic.Subject)
	if topic.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", topic.Context)
	}
	b.WriteString("\nCollected claims:\n")
	writeClaims(&b, claims)
	b.WriteString("\nRespond with JSON of the form ")
	b.WriteString(`{"summary": "...", "watch_next": ["..."]}`)
	return b.String()
}

// buildConflictPrompt lists every claim with its angle and citations
func buildConflictPrompt(claims []model.Claim) string {
	var b strings.Builder
	b.WriteString("Claims:\n")
	writeClaims(&b, claims)
	b.WriteString("\nRespond with JSON of the form ")
	b.WriteString(`{"conflicts": [{"description": "...", "angles": ["..."], "urls": ["..."]}]}`)
	return b.String()
}

func writeClaims(b *strings.Builder, claims []model.Claim) {
	for _, c := range claims {
		fmt.Fprintf(b, "- [%s] %s (sources: %s)\n", c.Angle, c.Text, strings.Join(c.URLs, ", "))
	}
}

// templatedSummary is the degraded fallback assembled from angle statuses
func templatedSummary(topic model.Topic, sections []model.AngleResult) string {
	ok, partial, failed := 0, 0, 0
	totalClaims := 0
	for _, sec := range sections {
		switch sec.Status {
		case model.AngleOK:
			ok++
		case model.AnglePartial:
			partial++
		case model.AngleFailed:
			failed++
		}
		totalClaims += len(sec.Claims)
	}

	if ok+partial == 0 {
		return fmt.Sprintf("No evidence was found for %q: all %d research angles failed to retrieve usable sources.",
			topic.Subject, len(sections))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Research on %q covered %d angles: %d completed, %d returned partial evidence, %d found no evidence. ",
		topic.Subject, len(sections), ok, partial, failed)
	fmt.Fprintf(&b, "%d claims were extracted in total.", totalClaims)
	for _, sec := range sections {
		if sec.Status == model.AngleFailed {
			fmt.Fprintf(&b, " No evidence found for angle %q.", sec.Angle.Label)
		}
	}
	return b.String()
}

// templatedWatchNext suggests follow-ups for degraded angles
func templatedWatchNext(sections []model.AngleResult) []string {
	var items []string
	for _, sec := range sections {
		if sec.Status != model.AngleOK {
			items = append(items, fmt.Sprintf("Re-run research for angle %q once sources become available", sec.Angle.Label))
		}
	}
	if len(items) == 0 {
		items = append(items, "Monitor the listed sources for updates")
	}
	return items
}
