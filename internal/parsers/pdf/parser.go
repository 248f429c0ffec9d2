package pdf

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser extracts text from PDF documents.
type Parser struct{}

// New creates a new PDF parser.
func New() *Parser {
	return &Parser{}
}

// Formats returns the formats this parser accepts.
func (p *Parser) Formats() []domain.Format {
	return []domain.Format{domain.FormatPDF}
}

// Parse walks every page and joins the extracted text with blank
// lines. Pages that fail to decode are skipped so one broken page does
// not lose the whole book.
func (p *Parser) Parse(_ context.Context, raw domain.RawDocument) (domain.ParsedDocument, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw.Data), int64(len(raw.Data)))
	if err != nil {
		return domain.ParsedDocument{}, fmt.Errorf("opening pdf: %w", err)
	}

	var pages []string
	for pageIndex := 1; pageIndex <= reader.NumPage(); pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			pages = append(pages, text)
		}
	}

	return domain.ParsedDocument{
		Title: raw.FallbackTitle(),
		Text:  strings.Join(pages, "\n\n"),
	}, nil
}
