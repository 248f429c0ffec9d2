package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var retryCmd = &cobra.Command{
	Use:   "retry [book-id] [chunk]",
	Short: "Resend a chunk that was already sent",
	Long: `Publishes a fresh paste for an already-sent chunk and delivers its link
message again. The chunk number is the one shown by 'bookfeed show' and
in send output, starting at 1.`,
	Args: cobra.ExactArgs(2),
	RunE: runRetry,
}

func init() {
	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, args []string) error {
	if deliveryService == nil {
		return errors.New("delivery service not configured")
	}

	number, err := strconv.Atoi(args[1])
	if err != nil || number < 1 {
		return fmt.Errorf("invalid chunk number %q", args[1])
	}

	receipt, err := deliveryService.Retry(cmd.Context(), args[0], number-1)
	if err != nil {
		return fmt.Errorf("retrying chunk: %w", err)
	}

	cmd.Printf("Resent chunk %d (%s)\n", receipt.ChunkIndex+1, receipt.Chapter)
	cmd.Printf("  Paste: %s\n", receipt.PasteURL)
	return nil
}
