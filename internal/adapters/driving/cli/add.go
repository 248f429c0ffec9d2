package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

var (
	addTitle  string
	addFormat string
)

var addCmd = &cobra.Command{
	Use:   "add [url|path]",
	Short: "Add a book from a URL or local file",
	Long: `Fetches or reads a document, splits it into chapter-aware chunks and
stores it in the library.

Supported formats: plain text, Markdown, HTML, PDF and EPUB. The format
is detected from the name and content; use --format to override.`,
	Example: `  bookfeed add https://www.gutenberg.org/files/2701/2701-0.txt
  bookfeed add ~/books/moby-dick.epub --title "Moby Dick"`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addTitle, "title", "t", "", "override the detected title")
	addCmd.Flags().StringVarP(&addFormat, "format", "f", "", "format override (text, markdown, html, pdf, epub)")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	hint, err := formatFlag(addFormat)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	source := args[0]

	var book *domain.Book
	switch {
	case isURL(source):
		if hint == domain.FormatAuto {
			book, err = ingestService.AddFromURL(ctx, source)
			break
		}
		if contentFetcher == nil {
			return errors.New("content fetcher not configured")
		}
		var raw domain.RawDocument
		raw, err = contentFetcher.Fetch(ctx, source)
		if err != nil {
			break
		}
		raw.Hint = hint
		book, err = ingestService.AddDocument(ctx, raw)
	case hint == domain.FormatAuto:
		book, err = ingestService.AddFromFile(ctx, source)
	default:
		var data []byte
		data, err = os.ReadFile(source)
		if err != nil {
			err = fmt.Errorf("reading %s: %w", source, err)
			break
		}
		book, err = ingestService.AddDocument(ctx, domain.RawDocument{
			SourceURL: source,
			Name:      filepath.Base(source),
			Data:      data,
			Hint:      hint,
		})
	}
	if err != nil {
		return fmt.Errorf("adding book: %w", err)
	}

	if addTitle != "" {
		if libraryService == nil {
			return errors.New("library service not configured")
		}
		book, err = libraryService.Rename(ctx, book.ID, addTitle)
		if err != nil {
			return fmt.Errorf("setting title: %w", err)
		}
	}

	cmd.Printf("Added %q (%s)\n", book.Title, book.ID)
	cmd.Printf("  %d chunks across %d chapters\n", len(book.Chunks), len(book.Chapters()))
	cmd.Printf("  Send the first chunk with: bookfeed send %s\n", book.ID)
	return nil
}

// formatFlag parses the --format value. An empty flag means automatic
// detection.
func formatFlag(value string) (domain.Format, error) {
	if value == "" {
		return domain.FormatAuto, nil
	}
	format := domain.Format(strings.ToLower(value))
	if !format.IsValid() || format == domain.FormatAuto {
		return "", fmt.Errorf("%w: unknown format %q (use text, markdown, html, pdf or epub)", domain.ErrInvalidInput, value)
	}
	return format, nil
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
