package driven

import (
	"context"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// ContentFetcher retrieves a document over the network.
type ContentFetcher interface {
	// Fetch downloads the URL and returns the raw document with a
	// format hint derived from the response content type.
	Fetch(ctx context.Context, url string) (domain.RawDocument, error)
}
