// Package search provides the web-search half of the evidence source
// adapter: given a query it returns a bounded set of candidate sources.
package search

import (
	"context"

	"github.com/avolkov/deepscout/internal/model"
)

// Searcher executes a query and returns up to maxResults candidate sources.
// Implementations fail with an error on provider outage or throttling; the
// caller treats that as non-fatal for the angle.
type Searcher interface {
	Search(ctx context.Context, query string, maxResults int) ([]model.Source, error)
}
