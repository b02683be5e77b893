package model

// Topic is the normalized research subject produced by the classifier.
// It is created once and never mutated afterward.
type Topic struct {
	Subject string `json:"subject"`           // Normalized subject string (e.g., "Volkswagen")
	Context string `json:"context,omitempty"` // Extra context (sector, industry, domain)

	// ForceSwotAngle is set when the input looks like a company or ticker;
	// the planner must then guarantee exactly one SWOT angle in the plan.
	ForceSwotAngle bool `json:"force_swot_angle"`
}
