// Package extract converts an angle's gathered sources into claims with
// citations, using the LLM collaborator behind a strict validation gate.
package extract

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/avolkov/deepscout/internal/llm"
	"github.com/avolkov/deepscout/internal/model"
	"github.com/avolkov/deepscout/internal/util"
)

// promptContentChars caps how much fetched page text goes into the prompt
// for a single source.
const promptContentChars = 2000

const extractSystem = "You are a research analyst. You are given one research angle and a list of " +
	"search results, some with page content. Extract short factual claims relevant " +
	"to the angle and pair every claim with the URLs of the sources that support it. " +
	"Only quote URLs that appear in the provided list. Prefer primary sources and " +
	"reputable news. Respond with JSON only."

// extractResponse is the schema accepted from the model
type extractResponse struct {
	Claims []struct {
		Text string   `json:"text"`
		URLs []string `json:"urls"`
	} `json:"claims"`
}

// Extractor turns an angle's source set into validated claims
type Extractor struct {
	provider  llm.Provider
	maxTokens int
	timeout   time.Duration
}

// NewExtractor creates a new extractor. A nil provider is allowed; extraction
// then yields no claims, degrading report completeness but not correctness.
func NewExtractor(provider llm.Provider, timeout time.Duration) *Extractor {
	return &Extractor{
		provider:  provider,
		maxTokens: 1200,
		timeout:   timeout,
	}
}

// Extract returns the claims found in one angle's sources. Failed angles and
// collaborator failures both yield an empty claim list; the claims that are
// returned are guaranteed to cite only URLs from the angle's own source set.
func (e *Extractor) Extract(ctx context.Context, topic model.Topic, ar model.AngleResult) []model.Claim {
	if ar.Status == model.AngleFailed || len(ar.Sources) == 0 {
		return nil
	}
	if e.provider == nil {
		return nil
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var resp extractResponse
	err := llm.CompleteJSON(ctx, e.provider, llm.CompletionRequest{
		System:    extractSystem,
		Prompt:    buildExtractPrompt(topic, ar),
		MaxTokens: e.maxTokens,
	}, &resp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: extraction yielded nothing for angle %q: %v\n", ar.Angle.Label, err)
		return nil
	}

	return validateClaims(resp, ar)
}

// buildExtractPrompt assembles the per-angle extraction prompt from the
// angle's sources, trimming page content to keep the prompt manageable.
func buildExtractPrompt(topic model.Topic, ar model.AngleResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Topic: %s\n", topic.Subject)
	fmt.Fprintf(&b, "Angle: %s - %s\n\nSearch results:\n", ar.Angle.Label, ar.Angle.Description)

	for _, s := range ar.Sources {
		fmt.Fprintf(&b, "- Title: %s\n  URL: %s\n  Snippet: %s\n", s.Title, s.URL, s.Snippet)
		if s.Content != "" {
			content := s.Content
			if len(content) > promptContentChars {
				content = util.TruncateText(content, promptContentChars) + "..."
			}
			fmt.Fprintf(&b, "  Content: %s\n", content)
		}
		b.WriteString("\n")
	}

	b.WriteString("Respond with JSON of the form ")
	b.WriteString(`{"claims": [{"text": "...", "urls": ["..."]}]}`)
	return b.String()
}

// validateClaims is the gate between model output and the typed data model:
// claims citing URLs outside the angle's source set lose those citations,
// and claims left with zero valid citations are dropped entirely.
func validateClaims(resp extractResponse, ar model.AngleResult) []model.Claim {
	allowed := make(map[string]bool, len(ar.Sources))
	for _, s := range ar.Sources {
		allowed[s.URL] = true
	}

	var claims []model.Claim
	for _, c := range resp.Claims {
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}

		var urls []string
		seen := make(map[string]bool)
		for _, u := range c.URLs {
			u = strings.TrimSpace(u)
			if !allowed[u] || seen[u] {
				continue
			}
			seen[u] = true
			urls = append(urls, u)
		}
		if len(urls) == 0 {
			// A claim without a verifiable citation is fabricated as far
			// as the report is concerned.
			continue
		}

		claims = append(claims, model.Claim{
			Text:  text,
			Angle: ar.Angle.Label,
			URLs:  urls,
		})
	}

	return claims
}
