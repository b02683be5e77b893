package model

// Source is one candidate evidence document retrieved for an angle.
// URLs are unique within an angle's source set; read-only once produced.
type Source struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
	Content string `json:"content,omitempty"` // Fetched page text, empty if never fetched or fetch failed
	Fetched bool   `json:"fetched"`           // Whether a page fetch for this source succeeded
}
