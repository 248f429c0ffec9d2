package html

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

const articlePage = `<!DOCTYPE html>
<html>
<head><title>The Lighthouse - Weekly Fiction</title></head>
<body>
<nav><a href="/">home</a> <a href="/archive">archive</a></nav>
<article>
<h1>The Lighthouse</h1>
<p>The keeper climbed the spiral stairs every evening at six, counting the
one hundred and twelve steps the way other people count their blessings.</p>
<p>On the night the storm came in from the north, the lamp flickered twice
and went dark, and for the first time in forty years he was afraid.</p>
<p>He lit the backup wick with shaking hands and watched the beam sweep out
across the water, searching for ships that might be searching for him.</p>
</article>
<footer>Copyright 2025 Weekly Fiction</footer>
<script>trackPageView();</script>
</body>
</html>`

func TestNew(t *testing.T) {
	parser := New()
	require.NotNil(t, parser)
	assert.IsType(t, &Parser{}, parser)
}

func TestFormats(t *testing.T) {
	parser := New()
	assert.Equal(t, []domain.Format{domain.FormatHTML}, parser.Formats())
}

func TestParse_Article(t *testing.T) {
	parser := New()

	raw := domain.RawDocument{
		SourceURL: "https://fiction.example.com/lighthouse",
		Name:      "lighthouse.html",
		Data:      []byte(articlePage),
	}

	doc, err := parser.Parse(context.Background(), raw)
	require.NoError(t, err)

	assert.NotEmpty(t, doc.Title)
	assert.Contains(t, doc.Text, "counting the")
	assert.Contains(t, doc.Text, "flickered twice")
	assert.NotContains(t, doc.Text, "trackPageView")
}

func TestParse_PreservesParagraphBreaks(t *testing.T) {
	parser := New()

	raw := domain.RawDocument{
		SourceURL: "https://fiction.example.com/lighthouse",
		Data:      []byte(articlePage),
	}

	doc, err := parser.Parse(context.Background(), raw)
	require.NoError(t, err)

	// Paragraphs must stay separated by blank lines for chunking.
	assert.GreaterOrEqual(t, strings.Count(doc.Text, "\n\n"), 2)
}

func TestParse_Fragment(t *testing.T) {
	parser := New()

	raw := domain.RawDocument{
		Name: "snippet.html",
		Data: []byte("<p>just a fragment</p>"),
	}

	doc, err := parser.Parse(context.Background(), raw)
	require.NoError(t, err)

	assert.Equal(t, "snippet", doc.Title)
	assert.Contains(t, doc.Text, "just a fragment")
}

func TestParse_TitleFromTitleTag(t *testing.T) {
	parser := New()

	page := `<html><head><title>Night Thoughts</title></head><body>` +
		`<p>a single short paragraph that readability may well reject</p></body></html>`

	doc, err := parser.Parse(context.Background(), domain.RawDocument{Data: []byte(page)})
	require.NoError(t, err)

	assert.Equal(t, "Night Thoughts", doc.Title)
}

func TestParse_EmptyInput(t *testing.T) {
	parser := New()

	doc, err := parser.Parse(context.Background(), domain.RawDocument{Name: "empty.html"})
	require.NoError(t, err)

	assert.Empty(t, doc.Text)
}
