// Package htmltext flattens HTML markup into readable plain text.
// Block-level elements become paragraph breaks so downstream chunking
// can split on blank lines.
package htmltext

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// skipElements are subtrees that never contribute readable text.
var skipElements = map[string]bool{
	"head":     true,
	"script":   true,
	"style":    true,
	"noscript": true,
	"template": true,
	"svg":      true,
	"iframe":   true,
}

// blockElements end the current paragraph when their subtree closes.
var blockElements = map[string]bool{
	"p":          true,
	"div":        true,
	"section":    true,
	"article":    true,
	"blockquote": true,
	"pre":        true,
	"ul":         true,
	"ol":         true,
	"li":         true,
	"table":      true,
	"tr":         true,
	"figure":     true,
	"figcaption": true,
	"header":     true,
	"footer":     true,
	"main":       true,
	"aside":      true,
	"h1":         true,
	"h2":         true,
	"h3":         true,
	"h4":         true,
	"h5":         true,
	"h6":         true,
}

var (
	spaceRuns = regexp.MustCompile(`[ \t]+`)
	blankRuns = regexp.MustCompile(`\n{3,}`)
)

// Document is the readable content of one HTML document.
type Document struct {
	// Title is the text of the <title> element, if any.
	Title string

	// Text is the flattened body text with blank lines between
	// paragraphs.
	Text string
}

// Parse reads an HTML or XHTML document and flattens it to plain text.
func Parse(r io.Reader) (Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return Document{}, fmt.Errorf("parsing html: %w", err)
	}

	var b strings.Builder
	collect(root, &b)

	return Document{
		Title: findTitle(root),
		Text:  tidy(b.String()),
	}, nil
}

// collect walks the node tree appending text content, inserting line
// breaks at <br> and paragraph breaks after block elements.
func collect(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skipElements[n.Data] {
			return
		}
		if n.Data == "br" {
			b.WriteString("\n")
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collect(c, b)
	}

	if n.Type == html.ElementNode && blockElements[n.Data] {
		b.WriteString("\n\n")
	}
}

// findTitle returns the text of the first <title> element outside of
// any inline SVG.
func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode {
		if n.Data == "svg" {
			return ""
		}
		if n.Data == "title" {
			var b strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					b.WriteString(c.Data)
				}
			}
			return strings.TrimSpace(b.String())
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if title := findTitle(c); title != "" {
			return title
		}
	}
	return ""
}

// tidy normalises the collected text: Unix line endings, single spaces
// within lines, trimmed lines, and at most one blank line between
// paragraphs.
func tidy(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(spaceRuns.ReplaceAllString(line, " "))
	}

	s = strings.Join(lines, "\n")
	s = blankRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
