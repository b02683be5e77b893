package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// CompleteJSON runs a completion and decodes the response into out. It is the
// validation gate between the model's free-form output and the pipeline's
// typed data: anything that does not decode is an error the caller must
// handle with its degraded fallback.
func CompleteJSON(ctx context.Context, p Provider, req CompletionRequest, out interface{}) error {
	if p == nil {
		return fmt.Errorf("no LLM provider configured")
	}

	resp, err := p.Complete(ctx, req)
	if err != nil {
		return fmt.Errorf("complete: %w", err)
	}

	raw := ExtractJSON(resp.Text)
	if raw == "" {
		return fmt.Errorf("no JSON object in completion")
	}

	if err := json.Unmarshal([]byte(raw), out); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}

	return nil
}

// ExtractJSON pulls the outermost JSON object out of model output, tolerating
// markdown code fences and surrounding prose. Returns "" when no object is found.
func ExtractJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip a ```json ... ``` fence if present
	if strings.HasPrefix(text, "```") {
		if idx := strings.Index(text, "\n"); idx >= 0 {
			text = text[idx+1:]
		}
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return ""
	}

	return text[start : end+1]
}
