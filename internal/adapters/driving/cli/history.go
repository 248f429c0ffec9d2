package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyJSON bool

var historyCmd = &cobra.Command{
	Use:   "history [book-id]",
	Short: "Show confirmed deliveries for a book",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if deliveryService == nil {
		return errors.New("delivery service not configured")
	}

	receipts, err := deliveryService.History(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("reading history: %w", err)
	}

	if historyJSON {
		return outputJSON(cmd, receipts)
	}

	if len(receipts) == 0 {
		cmd.Println("No deliveries recorded for this book.")
		return nil
	}

	cmd.Printf("Deliveries (%d)\n", len(receipts))
	cmd.Println("===============")
	for _, r := range receipts {
		cmd.Printf("%s  chunk %d (%s)\n", r.DeliveredAt.Format("2006-01-02 15:04:05"), r.ChunkIndex+1, r.Chapter)
		cmd.Printf("  %s\n", r.PasteURL)
	}
	return nil
}
