package model

// Claim is a short factual statement extracted for one angle.
// At extraction time it carries the URLs of the supporting sources; the
// synthesis stage rewrites those into global citation indices. A claim
// without at least one valid supporting source is dropped, never emitted.
type Claim struct {
	Text  string `json:"text"`
	Angle string `json:"angle"` // Label of the angle the claim came from

	// URLs are the supporting source URLs as returned by extraction,
	// already validated against the angle's source set.
	URLs []string `json:"urls,omitempty"`

	// Citations are the global citation indices assigned at synthesis time.
	Citations []int `json:"citations,omitempty"`
}
