package plaintext

import (
	"context"
	"strings"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser handles plain text documents.
type Parser struct{}

// New creates a new plain text parser.
func New() *Parser {
	return &Parser{}
}

// Formats returns the formats this parser accepts.
func (p *Parser) Formats() []domain.Format {
	return []domain.Format{domain.FormatText}
}

// Parse passes the text through with line endings normalised. The
// title comes from the file name since plain text carries no metadata.
func (p *Parser) Parse(_ context.Context, raw domain.RawDocument) (domain.ParsedDocument, error) {
	text := string(raw.Data)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	return domain.ParsedDocument{
		Title: raw.FallbackTitle(),
		Text:  text,
	}, nil
}
