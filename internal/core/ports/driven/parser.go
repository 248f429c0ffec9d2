package driven

import (
	"context"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

// DocumentParser turns raw document bytes into a title and plain text.
// One parser handles one or more formats; the ingest pipeline picks the
// first parser that accepts the document's format.
type DocumentParser interface {
	// Formats lists the formats this parser accepts.
	Formats() []domain.Format

	// Parse extracts the title and full text from the raw document.
	// The text is plain UTF-8 with Unix line endings, ready for the
	// chunker.
	Parse(ctx context.Context, raw domain.RawDocument) (domain.ParsedDocument, error)
}
