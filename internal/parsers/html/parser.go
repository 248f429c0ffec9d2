package html

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
	"github.com/custodia-labs/bookfeed/internal/parsers/htmltext"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser handles web pages and standalone HTML documents.
type Parser struct{}

// New creates a new HTML parser.
func New() *Parser {
	return &Parser{}
}

// Formats returns the formats this parser accepts.
func (p *Parser) Formats() []domain.Format {
	return []domain.Format{domain.FormatHTML}
}

// Parse runs the page through readability extraction to shed
// navigation and boilerplate, then flattens the remaining markup to
// plain text. Pages readability cannot make sense of fall back to a
// flatten of the whole document.
func (p *Parser) Parse(_ context.Context, raw domain.RawDocument) (domain.ParsedDocument, error) {
	if article, err := readability.FromReader(bytes.NewReader(raw.Data), pageURL(raw.SourceURL)); err == nil {
		if doc, err := htmltext.Parse(strings.NewReader(article.Content)); err == nil && doc.Text != "" {
			title := strings.TrimSpace(article.Title)
			if title == "" {
				title = doc.Title
			}
			if title == "" {
				title = raw.FallbackTitle()
			}
			return domain.ParsedDocument{Title: title, Text: doc.Text}, nil
		}
	}

	doc, err := htmltext.Parse(bytes.NewReader(raw.Data))
	if err != nil {
		return domain.ParsedDocument{}, fmt.Errorf("parsing html: %w", err)
	}

	title := doc.Title
	if title == "" {
		title = raw.FallbackTitle()
	}
	return domain.ParsedDocument{Title: title, Text: doc.Text}, nil
}

// pageURL parses the source URL for readability's relative link
// resolution. Local paths and unparseable sources get an empty base.
func pageURL(source string) *url.URL {
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" {
		return &url.URL{}
	}
	return u
}
