// Package plan produces the set of research angles for a topic.
package plan

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/avolkov/deepscout/internal/llm"
	"github.com/avolkov/deepscout/internal/model"
)

const (
	// MinAngles and MaxAngles bound every plan
	MinAngles = 3
	MaxAngles = 4

	// SwotLabel is the label used when the planner has to substitute a SWOT angle
	SwotLabel = "SWOT analysis"
)

const planSystem = "You are a research planner. You analyze a research subject and " +
	"produce distinct, non-overlapping research angles to investigate. " +
	"Respond with JSON only."

// planResponse is the schema the planner accepts from the model
type planResponse struct {
	Angles []struct {
		Label       string `json:"label"`
		Description string `json:"description"`
	} `json:"angles"`
}

// Planner generates research angles, delegating to the LLM collaborator and
// falling back to a fixed default set when the model fails or misbehaves.
type Planner struct {
	provider  llm.Provider
	maxTokens int
}

// NewPlanner creates a new planner. A nil provider is allowed; planning then
// always uses the default angle set.
func NewPlanner(provider llm.Provider) *Planner {
	return &Planner{
		provider:  provider,
		maxTokens: 800,
	}
}

// Plan returns 3-4 angles for the topic. It never fails: on model error,
// timeout or malformed output it falls back to DefaultAngles. When the topic
// forces a SWOT angle, exactly one SWOT angle is guaranteed in the result.
func (p *Planner) Plan(ctx context.Context, topic model.Topic) []model.Angle {
	angles := p.planWithModel(ctx, topic)
	if angles == nil {
		angles = DefaultAngles(topic)
	}

	if topic.ForceSwotAngle {
		angles = ensureSwotAngle(angles)
	}

	return angles
}

// planWithModel asks the LLM for a plan; returns nil on any failure
func (p *Planner) planWithModel(ctx context.Context, topic model.Topic) []model.Angle {
	if p.provider == nil {
		return nil
	}

	prompt := buildPlanPrompt(topic)

	var resp planResponse
	err := llm.CompleteJSON(ctx, p.provider, llm.CompletionRequest{
		System:    planSystem,
		Prompt:    prompt,
		MaxTokens: p.maxTokens,
	}, &resp)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: angle planning degraded to defaults: %v\n", err)
		return nil
	}

	angles := normalizeAngles(resp)
	if len(angles) < MinAngles {
		fmt.Fprintf(os.Stderr, "Warning: model returned %d usable angles, using defaults\n", len(angles))
		return nil
	}

	return angles
}

// buildPlanPrompt constructs the planning prompt
func buildPlanPrompt(topic model.Topic) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Subject: %s\n", topic.Subject)
	if topic.Context != "" {
		fmt.Fprintf(&b, "Context: %s\n", topic.Context)
	}
	fmt.Fprintf(&b, "\nGenerate %d to %d distinct, non-overlapping research angles for this subject.\n", MinAngles, MaxAngles)
	if topic.ForceSwotAngle {
		b.WriteString("The subject is a company or stock; include angles such as SWOT analysis, recent performance, market positioning, guidance.\n")
	} else {
		b.WriteString("Break the subject down into its key sub-topics.\n")
	}
	b.WriteString("\nRespond with JSON of the form ")
	b.WriteString(`{"angles": [{"label": "...", "description": "..."}]}`)
	return b.String()
}

// normalizeAngles validates the model output against the plan constraints:
// trimmed non-empty labels, unique labels (case-insensitive), at most
// MaxAngles entries in model order.
func normalizeAngles(resp planResponse) []model.Angle {
	var angles []model.Angle
	seen := make(map[string]bool)

	for _, a := range resp.Angles {
		label := strings.TrimSpace(a.Label)
		desc := strings.TrimSpace(a.Description)
		if label == "" {
			continue
		}
		if desc == "" {
			desc = label
		}
		key := strings.ToLower(label)
		if seen[key] {
			continue
		}
		seen[key] = true

		angles = append(angles, model.Angle{Label: label, Description: desc})
		if len(angles) == MaxAngles {
			break
		}
	}

	return angles
}

// ensureSwotAngle guarantees exactly one SWOT angle in the plan. Extra SWOT
// angles beyond the first are removed; a missing one is appended, evicting
// the last (lowest-priority) angle if the plan is already full.
func ensureSwotAngle(angles []model.Angle) []model.Angle {
	var kept []model.Angle
	found := false
	for _, a := range angles {
		if isSwot(a.Label) {
			if found {
				continue
			}
			found = true
		}
		kept = append(kept, a)
	}

	if found {
		return kept
	}

	swot := model.Angle{
		Label:       SwotLabel,
		Description: "Strengths, weaknesses, opportunities and threats",
	}

	if len(kept) >= MaxAngles {
		kept[len(kept)-1] = swot
	} else {
		kept = append(kept, swot)
	}

	return kept
}

// isSwot reports whether an angle label denotes a SWOT analysis
func isSwot(label string) bool {
	return strings.Contains(strings.ToLower(label), "swot")
}

// DefaultAngles is the fixed fallback plan used when the model is
// unavailable or returns unusable output.
func DefaultAngles(topic model.Topic) []model.Angle {
	return []model.Angle{
		{Label: "overview", Description: fmt.Sprintf("General overview of %s", topic.Subject)},
		{Label: "recent developments", Description: fmt.Sprintf("Recent news and developments about %s", topic.Subject)},
		{Label: "competitive context", Description: fmt.Sprintf("Competitive and market context of %s", topic.Subject)},
	}
}
