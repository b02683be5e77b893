package model

// Angle is one independent research direction within a plan.
// Angles never depend on each other's output.
type Angle struct {
	Label       string `json:"label"`       // Short identifier (e.g., "SWOT analysis")
	Description string `json:"description"` // What this angle investigates
}

// AngleStatus is the terminal state of an angle's evidence gathering
type AngleStatus string

const (
	AngleOK      AngleStatus = "ok"      // At least one source searched and fetched successfully
	AnglePartial AngleStatus = "partial" // Some searches/fetches failed but usable sources remain
	AngleFailed  AngleStatus = "failed"  // Zero usable sources after all attempts
)

// AngleResult bundles an angle with the evidence gathered for it.
// A failed angle keeps an empty claim list but still appears in the report.
type AngleResult struct {
	Angle   Angle       `json:"angle"`
	Sources []Source    `json:"sources"`
	Claims  []Claim     `json:"claims"`
	Status  AngleStatus `json:"status"`
}
