package domain

import (
	"bytes"
	"path/filepath"
	"strings"
)

// Format identifies how a raw document should be parsed.
type Format string

// Supported document formats.
const (
	// FormatAuto asks the ingest pipeline to detect the format.
	FormatAuto Format = "auto"

	// FormatText is plain UTF-8 text.
	FormatText Format = "text"

	// FormatMarkdown is Markdown source.
	FormatMarkdown Format = "markdown"

	// FormatHTML is a web page or HTML fragment.
	FormatHTML Format = "html"

	// FormatPDF is a PDF document.
	FormatPDF Format = "pdf"

	// FormatEPUB is an EPUB container.
	FormatEPUB Format = "epub"
)

// IsValid returns true if the format is recognised.
func (f Format) IsValid() bool {
	switch f {
	case FormatAuto, FormatText, FormatMarkdown, FormatHTML, FormatPDF, FormatEPUB:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (f Format) String() string {
	return string(f)
}

// RawDocument is the opaque input to parsing: bytes plus enough
// context to pick a parser and derive a fallback title.
type RawDocument struct {
	// SourceURL is the provenance of the bytes (URL or file path).
	SourceURL string

	// Name is a file-ish name used for extension sniffing and as a
	// title fallback. May be empty.
	Name string

	// Data is the raw content.
	Data []byte

	// Hint is the caller-provided format. FormatAuto triggers detection.
	Hint Format
}

// FallbackTitle derives a display title from the document name for
// parsers that cannot extract one from the content itself.
func (r RawDocument) FallbackTitle() string {
	name := filepath.Base(strings.TrimSpace(r.Name))
	if name == "." || name == "/" {
		return ""
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.ReplaceAll(name, "_", " ")
	name = strings.ReplaceAll(name, "-", " ")
	return strings.TrimSpace(name)
}

// ParsedDocument is the parser output handed to the chunker.
type ParsedDocument struct {
	// Title is the extracted or derived display title.
	Title string

	// Text is the full plain text of the document.
	Text string
}

// epubMagic is the zip local-file-header signature. EPUB files are zip
// containers whose first entry is the mimetype declaration.
var epubMagic = []byte("PK\x03\x04")

// DetectFormat guesses the format of a document from its name and a
// prefix of its content. Extension wins over content sniffing; unknown
// inputs fall back to plain text.
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".text":
		return FormatText
	case ".md", ".markdown":
		return FormatMarkdown
	case ".html", ".htm", ".xhtml":
		return FormatHTML
	case ".pdf":
		return FormatPDF
	case ".epub":
		return FormatEPUB
	}

	if bytes.HasPrefix(data, []byte("%PDF-")) {
		return FormatPDF
	}
	if bytes.HasPrefix(data, epubMagic) && bytes.Contains(data[:min(len(data), 512)], []byte("epub+zip")) {
		return FormatEPUB
	}

	head := bytes.ToLower(bytes.TrimSpace(data[:min(len(data), 1024)]))
	if bytes.HasPrefix(head, []byte("<!doctype html")) || bytes.HasPrefix(head, []byte("<html")) {
		return FormatHTML
	}

	return FormatText
}
