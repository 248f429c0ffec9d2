package driving

import (
	"context"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// Ingest loads documents into the library: fetch/read, parse, chunk,
// store. Chunking and storage happen as one atomic step after parsing
// succeeds, so a stored book is always fully chunked.
type Ingest interface {
	// AddFromURL fetches the URL and ingests the response.
	AddFromURL(ctx context.Context, url string) (*domain.Book, error)

	// AddFromFile reads a local file and ingests it.
	AddFromFile(ctx context.Context, path string) (*domain.Book, error)

	// AddText ingests already-extracted plain text.
	AddText(ctx context.Context, title, sourceURL, text string) (*domain.Book, error)

	// AddDocument ingests a raw document with an explicit format hint.
	AddDocument(ctx context.Context, raw domain.RawDocument) (*domain.Book, error)
}
