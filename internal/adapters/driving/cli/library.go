package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	listJSON bool
	showJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List books in the library",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var showCmd = &cobra.Command{
	Use:   "show [book-id]",
	Short: "Show a book and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var renameCmd = &cobra.Command{
	Use:   "rename [book-id] [new-title]",
	Short: "Rename a book",
	Args:  cobra.ExactArgs(2),
	RunE:  runRename,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(renameCmd)
}

// bookSummary is the compact JSON view used by list. The full book,
// chunk contents included, is available from show --json.
type bookSummary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	SourceURL     string    `json:"sourceUrl"`
	ChunkCount    int       `json:"chunkCount"`
	SentCount     int       `json:"sentCount"`
	LastSentChunk int       `json:"lastSentChunk"`
	AddedAt       time.Time `json:"addedAt"`
}

func runList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	books, err := libraryService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("listing books: %w", err)
	}

	if listJSON {
		summaries := make([]bookSummary, 0, len(books))
		for _, b := range books {
			summaries = append(summaries, bookSummary{
				ID:            b.ID,
				Title:         b.Title,
				SourceURL:     b.SourceURL,
				ChunkCount:    len(b.Chunks),
				SentCount:     b.SentCount(),
				LastSentChunk: b.LastSentChunk,
				AddedAt:       b.AddedAt,
			})
		}
		return outputJSON(cmd, summaries)
	}

	if len(books) == 0 {
		cmd.Println("Library is empty. Add a book with 'bookfeed add <url|path>'.")
		return nil
	}

	cmd.Printf("Library (%d books)\n", len(books))
	cmd.Println("==================")
	for _, b := range books {
		cmd.Printf("\n%s\n", b.ID)
		cmd.Printf("  Title:    %s\n", b.Title)
		cmd.Printf("  Source:   %s\n", b.SourceURL)
		cmd.Printf("  Progress: %d/%d chunks sent\n", b.SentCount(), len(b.Chunks))
		cmd.Printf("  Added:    %s\n", b.AddedAt.Format("2006-01-02 15:04"))
	}
	return nil
}

func runShow(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	book, err := libraryService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("getting book: %w", err)
	}

	if showJSON {
		return outputJSON(cmd, book)
	}

	cmd.Printf("%s\n", book.Title)
	cmd.Printf("  ID:       %s\n", book.ID)
	cmd.Printf("  Source:   %s\n", book.SourceURL)
	cmd.Printf("  Added:    %s\n", book.AddedAt.Format("2006-01-02 15:04"))
	cmd.Printf("  Progress: %d/%d chunks sent\n", book.SentCount(), len(book.Chunks))
	if next, ok := book.NextPending(); ok {
		cmd.Printf("  Next:     chunk %d (%s)\n", next.Index+1, next.Chapter)
	}

	cmd.Println("\nChunks:")
	chapter := ""
	for _, c := range book.Chunks {
		if c.Chapter != chapter {
			chapter = c.Chapter
			cmd.Printf("  %s\n", chapter)
		}
		cmd.Printf("    [%d] %-7s %s\n", c.Index+1, c.Status, preview(c.Content, 60))
	}
	return nil
}

func runRename(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	book, err := libraryService.Rename(cmd.Context(), args[0], args[1])
	if err != nil {
		return fmt.Errorf("renaming book: %w", err)
	}

	cmd.Printf("Renamed to %q.\n", book.Title)
	return nil
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// preview returns the first n runes of content on a single line.
func preview(content string, n int) string {
	flat := make([]rune, 0, n)
	for _, r := range content {
		if r == '\n' || r == '\t' {
			r = ' '
		}
		flat = append(flat, r)
		if len(flat) == n {
			return string(flat) + "..."
		}
	}
	return string(flat)
}
