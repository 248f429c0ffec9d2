package epub

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/taylorskalyo/goreader/epub"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
	"github.com/custodia-labs/bookfeed/internal/parsers/htmltext"
)

// Ensure Parser implements the interface.
var _ driven.DocumentParser = (*Parser)(nil)

// Parser handles EPUB containers.
type Parser struct{}

// New creates a new EPUB parser.
func New() *Parser {
	return &Parser{}
}

// Formats returns the formats this parser accepts.
func (p *Parser) Formats() []domain.Format {
	return []domain.Format{domain.FormatEPUB}
}

// chapterLine matches navigation labels that already read as chapter
// headings, so they are not prefixed a second time.
var chapterLine = regexp.MustCompile(`(?i)^(?:chapter|part|book)\s+[0-9]`)

// Parse walks the spine in reading order and flattens each section to
// plain text. Sections get a synthesised chapter heading, named from
// the NCX table of contents when one is present, so chapter boundaries
// survive into the chunked text.
func (p *Parser) Parse(_ context.Context, raw domain.RawDocument) (domain.ParsedDocument, error) {
	// goreader opens files, so spool the bytes to a temporary one.
	tmp, err := os.CreateTemp("", "bookfeed-*.epub")
	if err != nil {
		return domain.ParsedDocument{}, fmt.Errorf("spooling epub: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw.Data); err != nil {
		tmp.Close()
		return domain.ParsedDocument{}, fmt.Errorf("spooling epub: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return domain.ParsedDocument{}, fmt.Errorf("spooling epub: %w", err)
	}

	rc, err := epub.OpenReader(tmp.Name())
	if err != nil {
		return domain.ParsedDocument{}, fmt.Errorf("opening epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return domain.ParsedDocument{}, fmt.Errorf("opening epub: no rootfiles in container")
	}
	book := rc.Rootfiles[0]

	zr, err := zip.NewReader(bytes.NewReader(raw.Data), int64(len(raw.Data)))
	if err != nil {
		return domain.ParsedDocument{}, fmt.Errorf("opening epub: %w", err)
	}
	labels := chapterLabels(zr, book)

	type section struct {
		heading string
		text    string
	}
	var sections []section

	chapterNo := 0
	for _, ref := range book.Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}

		text := itemText(ref.Item)
		if text == "" {
			continue
		}

		chapterNo++
		heading := fmt.Sprintf("Chapter %d", chapterNo)
		if label := lookupLabel(labels, ref.Item.HREF); label != "" {
			if chapterLine.MatchString(label) {
				heading = label
			} else {
				heading = fmt.Sprintf("Chapter %d: %s", chapterNo, label)
			}
		}

		sections = append(sections, section{heading: heading, text: text})
	}

	title := bookTitle(zr)
	if title == "" {
		title = raw.FallbackTitle()
	}

	// A single-section book keeps its own in-text headings; only
	// multi-section spines need synthesised boundaries.
	var text string
	switch len(sections) {
	case 0:
	case 1:
		text = sections[0].text
	default:
		parts := make([]string, len(sections))
		for i, s := range sections {
			parts[i] = s.heading + "\n\n" + s.text
		}
		text = strings.Join(parts, "\n\n")
	}

	return domain.ParsedDocument{Title: title, Text: text}, nil
}

// itemText flattens one spine item to plain text. Items that fail to
// open or decode are treated as empty.
func itemText(item *epub.Item) string {
	r, err := item.Open()
	if err != nil {
		return ""
	}
	defer r.Close()

	doc, err := htmltext.Parse(r)
	if err != nil {
		return ""
	}
	return doc.Text
}

// NCX structures for the table of contents.
type ncx struct {
	NavMap navMap `xml:"navMap"`
}

type navMap struct {
	NavPoints []navPoint `xml:"navPoint"`
}

type navPoint struct {
	Label    navLabel   `xml:"navLabel"`
	Content  navContent `xml:"content"`
	Children []navPoint `xml:"navPoint"`
}

type navLabel struct {
	Text string `xml:"text"`
}

type navContent struct {
	Src string `xml:"src,attr"`
}

// container locates the package document inside the archive.
type container struct {
	Rootfiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// packageDoc carries the metadata of interest from the package file.
type packageDoc struct {
	Title string `xml:"metadata>title"`
}

// chapterLabels parses the NCX and maps content hrefs to their
// navigation labels. Missing or malformed NCX yields an empty map.
func chapterLabels(zr *zip.Reader, book *epub.Rootfile) map[string]string {
	labels := make(map[string]string)

	var ncxPath string
	for _, item := range book.Manifest.Items {
		if item.MediaType == "application/x-dtbncx+xml" {
			ncxPath = item.HREF
			break
		}
	}
	if ncxPath == "" {
		return labels
	}

	data, err := readArchiveFile(zr, ncxPath)
	if err != nil {
		return labels
	}

	var toc ncx
	if err := xml.Unmarshal(data, &toc); err != nil {
		return labels
	}

	var walk func(points []navPoint)
	walk = func(points []navPoint) {
		for _, np := range points {
			src := np.Content.Src
			if idx := strings.Index(src, "#"); idx != -1 {
				src = src[:idx]
			}
			label := strings.TrimSpace(np.Label.Text)
			if src != "" && label != "" {
				if _, exists := labels[src]; !exists {
					labels[src] = label
				}
				base := path.Base(src)
				if _, exists := labels[base]; !exists {
					labels[base] = label
				}
			}
			walk(np.Children)
		}
	}
	walk(toc.NavMap.NavPoints)

	return labels
}

// lookupLabel resolves an item href against the NCX label map, trying
// the exact href first and its base name second.
func lookupLabel(labels map[string]string, href string) string {
	if label, ok := labels[href]; ok {
		return label
	}
	return labels[path.Base(href)]
}

// bookTitle reads the title from the package document metadata.
func bookTitle(zr *zip.Reader) string {
	data, err := readArchiveFile(zr, "META-INF/container.xml")
	if err != nil {
		return ""
	}

	var c container
	if err := xml.Unmarshal(data, &c); err != nil || len(c.Rootfiles) == 0 {
		return ""
	}

	data, err = readArchiveFile(zr, c.Rootfiles[0].FullPath)
	if err != nil {
		return ""
	}

	var pkg packageDoc
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return ""
	}
	return strings.TrimSpace(pkg.Title)
}

// readArchiveFile reads one file from the archive by name, falling
// back to a path-suffix match for entries addressed relative to the
// package directory.
func readArchiveFile(zr *zip.Reader, name string) ([]byte, error) {
	for _, f := range zr.File {
		if f.Name == name || strings.HasSuffix(f.Name, "/"+name) {
			r, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer r.Close()
			return io.ReadAll(r)
		}
	}
	return nil, fmt.Errorf("no %s in archive", name)
}
