package markdown

import (
	"context"
	"regexp"
	"strings"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser handles Markdown documents.
type Parser struct{}

// New creates a new Markdown parser.
func New() *Parser {
	return &Parser{}
}

// Formats returns the formats this parser accepts.
func (p *Parser) Formats() []domain.Format {
	return []domain.Format{domain.FormatMarkdown}
}

// Parse simplifies Markdown formatting to plain text. Heading lines
// keep their text so chapter headings stay detectable; only the
// markers are removed.
func (p *Parser) Parse(_ context.Context, raw domain.RawDocument) (domain.ParsedDocument, error) {
	content := string(raw.Data)
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	title := extractTitle(content)
	if title == "" {
		title = raw.FallbackTitle()
	}

	return domain.ParsedDocument{
		Title: title,
		Text:  stripMarkdown(content),
	}, nil
}

// extractTitle returns the text of the first H1 heading, if any.
func extractTitle(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}

// Pre-compiled regular expressions for Markdown simplification.
var (
	codeFence    = regexp.MustCompile("(?m)^```[^\n]*$\n?")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquotes  = regexp.MustCompile(`(?m)^>\s*`)
	rules        = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	blankRuns    = regexp.MustCompile(`\n{3,}`)
)

// stripMarkdown removes common Markdown formatting, keeping the text
// itself. Code block contents survive; only the fence lines go.
func stripMarkdown(content string) string {
	content = codeFence.ReplaceAllString(content, "")
	content = inlineCode.ReplaceAllString(content, "$1")

	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")

	// Heading text stays on its own line.
	content = headings.ReplaceAllString(content, "")

	content = strings.ReplaceAll(content, "**", "")
	content = strings.ReplaceAll(content, "__", "")
	content = strings.ReplaceAll(content, "*", "")

	content = blockquotes.ReplaceAllString(content, "")
	content = rules.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")

	content = blankRuns.ReplaceAllString(content, "\n\n")
	return strings.TrimSpace(content)
}
