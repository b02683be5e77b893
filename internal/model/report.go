package model

import "time"

// Citation maps a global citation index to exactly one retrieved source.
// Indices are assigned in first-seen URL order across angles and every
// index used anywhere in the report resolves to one entry in References.
type Citation struct {
	Index int    `json:"index"` // 1-based, stable across the whole report
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// Conflict flags claims from different angles that assert contradictory facts
type Conflict struct {
	Description string   `json:"description"`
	Angles      []string `json:"angles,omitempty"`    // Labels of the angles involved
	Citations   []int    `json:"citations,omitempty"` // Supporting citation indices
}

// Report is the terminal artifact of a pipeline run. It is created once by
// the synthesis stage and immutable afterward.
type Report struct {
	Subject     string    `json:"subject"`
	GeneratedAt time.Time `json:"generated_at"`

	Summary    string        `json:"summary"`              // Executive summary
	Sections   []AngleResult `json:"sections"`             // One per planned angle, input order
	References []Citation    `json:"references"`           // Flat ordered citation list
	Risks      []Conflict    `json:"risks,omitempty"`      // Risks / uncertainties / conflicting info
	WatchNext  []string      `json:"watch_next,omitempty"` // "What to watch next" checklist

	// Degraded notes why parts of the report fell back to templated output
	// (e.g., summary generation failed). Informational only.
	Degraded []string `json:"degraded,omitempty"`
}

// EvidenceFound reports whether any angle produced usable sources
func (r *Report) EvidenceFound() bool {
	for _, sec := range r.Sections {
		if sec.Status != AngleFailed {
			return true
		}
	}
	return false
}
