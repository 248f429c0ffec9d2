package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/bookfeed/internal/chunker"
	"github.com/custodia-labs/bookfeed/internal/core/domain"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driving"
	"github.com/custodia-labs/bookfeed/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingest = (*IngestService)(nil)

// IngestService loads documents into the library.
type IngestService struct {
	fetcher  driven.ContentFetcher
	parsers  []driven.DocumentParser
	library  driving.Library
	settings driving.Settings
}

// NewIngestService creates a new ingest service. Parsers are consulted
// in the given order; the first one accepting the document's format wins.
func NewIngestService(
	fetcher driven.ContentFetcher,
	parsers []driven.DocumentParser,
	library driving.Library,
	settings driving.Settings,
) *IngestService {
	return &IngestService{
		fetcher:  fetcher,
		parsers:  parsers,
		library:  library,
		settings: settings,
	}
}

// AddFromURL fetches the URL and ingests the response.
func (s *IngestService) AddFromURL(ctx context.Context, url string) (*domain.Book, error) {
	if s.fetcher == nil {
		return nil, domain.ErrNotImplemented
	}

	raw, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", url, err)
	}

	return s.AddDocument(ctx, raw)
}

// AddFromFile reads a local file and ingests it.
func (s *IngestService) AddFromFile(ctx context.Context, path string) (*domain.Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	raw := domain.RawDocument{
		SourceURL: path,
		Name:      filepath.Base(path),
		Data:      data,
		Hint:      domain.FormatAuto,
	}
	return s.AddDocument(ctx, raw)
}

// AddText ingests already-extracted plain text.
func (s *IngestService) AddText(ctx context.Context, title, sourceURL, text string) (*domain.Book, error) {
	return s.store(ctx, domain.ParsedDocument{Title: title, Text: text}, sourceURL)
}

// AddDocument ingests a raw document. The format hint is honoured when
// set; FormatAuto triggers detection from the name and content.
func (s *IngestService) AddDocument(ctx context.Context, raw domain.RawDocument) (*domain.Book, error) {
	if s.library == nil {
		return nil, domain.ErrNotImplemented
	}

	format := raw.Hint
	if format == "" || format == domain.FormatAuto {
		format = domain.DetectFormat(raw.Name, raw.Data)
	}
	if !format.IsValid() {
		return nil, fmt.Errorf("format %q: %w", format, domain.ErrUnsupportedFormat)
	}
	raw.Hint = format

	parser, err := s.parserFor(format)
	if err != nil {
		return nil, err
	}

	logger.Debug("parsing %s as %s", raw.Name, format)
	parsed, err := parser.Parse(ctx, raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", raw.Name, err)
	}

	return s.store(ctx, parsed, raw.SourceURL)
}

// store chunks the parsed document and adds it to the library as one
// atomic step. Nothing is persisted when chunking yields no content.
func (s *IngestService) store(ctx context.Context, parsed domain.ParsedDocument, sourceURL string) (*domain.Book, error) {
	size, err := s.chunkSize(ctx)
	if err != nil {
		return nil, err
	}

	chunks := chunker.New(chunker.WithChunkSize(size)).Split(parsed.Text)
	if len(chunks) == 0 {
		return nil, domain.ErrEmptyDocument
	}

	title := strings.TrimSpace(parsed.Title)
	if title == "" {
		title = "Untitled"
	}

	book, err := s.library.Add(ctx, domain.Book{
		Title:     title,
		SourceURL: sourceURL,
		Chunks:    chunks,
	})
	if err != nil {
		return nil, fmt.Errorf("storing book: %w", err)
	}

	logger.Info("added %q: %d chunks across %d chapters", book.Title, len(book.Chunks), len(book.Chapters()))
	return book, nil
}

// parserFor finds the first parser accepting the format.
func (s *IngestService) parserFor(format domain.Format) (driven.DocumentParser, error) {
	for _, p := range s.parsers {
		for _, f := range p.Formats() {
			if f == format {
				return p, nil
			}
		}
	}
	return nil, fmt.Errorf("no parser for %q: %w", format, domain.ErrUnsupportedFormat)
}

// chunkSize reads the configured limit, falling back to the default
// when no settings service is wired.
func (s *IngestService) chunkSize(ctx context.Context) (int, error) {
	if s.settings == nil {
		return domain.DefaultChunkSize, nil
	}

	settings, err := s.settings.Settings(ctx)
	if err != nil {
		return 0, fmt.Errorf("loading settings: %w", err)
	}
	return settings.ChunkSize, nil
}
