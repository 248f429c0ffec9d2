package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bookfeed/internal/core/domain"
)

var sendAll bool

var sendCmd = &cobra.Command{
	Use:   "send [book-id]",
	Short: "Send the next pending chunk",
	Long: `Publishes the next pending chunk to the configured paste service and
delivers the link message to the chat channel.

With --all, bookfeed keeps going: after each send, press Enter once the
reply arrived and the next chunk goes out. Ctrl+C pauses the sequence.`,
	Args: cobra.ExactArgs(1),
	RunE: runSend,
}

func init() {
	sendCmd.Flags().BoolVarP(&sendAll, "all", "a", false, "send chunk after chunk, advancing on replies")
	rootCmd.AddCommand(sendCmd)
}

func runSend(cmd *cobra.Command, args []string) error {
	if deliveryService == nil {
		return errors.New("delivery service not configured")
	}

	bookID := args[0]
	if sendAll {
		return runSendAll(cmd, bookID)
	}

	receipt, err := deliveryService.SendNext(cmd.Context(), bookID)
	if errors.Is(err, domain.ErrNothingToSend) {
		cmd.Println("Nothing to send: every chunk is already sent.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("sending: %w", err)
	}

	if err := printProgress(cmd, receipt); err != nil {
		return err
	}
	cmd.Println("Run the command again after the reply arrives, or use --all to auto-advance.")
	return nil
}

func runSendAll(cmd *cobra.Command, bookID string) error {
	if chatChannel == nil {
		return errors.New("chat channel not configured")
	}

	ctx := cmd.Context()
	receipt, err := deliveryService.SendAll(ctx, bookID)
	if errors.Is(err, domain.ErrNothingToSend) {
		cmd.Println("Nothing to send: every chunk is already sent.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("sending: %w", err)
	}

	if err := printProgress(cmd, receipt); err != nil {
		return err
	}
	cmd.Println("Auto-advance is on. Press Enter after each reply to send the next chunk (Ctrl+C to pause).")

	for {
		select {
		case <-ctx.Done():
			// The command context is gone; pause with a fresh one so the
			// sequence does not auto-advance from another surface later.
			if err := deliveryService.Pause(context.Background(), bookID); err == nil {
				cmd.Printf("\nPaused. Resume with: bookfeed send %s --all\n", bookID)
			}
			return nil
		case <-chatChannel.Replies():
			receipt, err := deliveryService.ReplyObserved(ctx, bookID)
			if err != nil {
				return fmt.Errorf("sending next chunk: %w", err)
			}
			if receipt != nil {
				if err := printProgress(cmd, receipt); err != nil {
					return err
				}
				continue
			}

			snap, err := deliveryService.State(ctx, bookID)
			if err != nil {
				return fmt.Errorf("reading delivery state: %w", err)
			}
			if snap.State == domain.DeliveryDone {
				cmd.Println("All chunks sent.")
				return nil
			}
			if !snap.AutoAdvance {
				cmd.Println("Delivery paused.")
				return nil
			}
			// A reply arrived while nothing was awaiting one; ignore it.
		}
	}
}

// printProgress reports a confirmed dispatch together with the book's
// overall progress.
func printProgress(cmd *cobra.Command, receipt *domain.DeliveryReceipt) error {
	snap, err := deliveryService.State(cmd.Context(), receipt.BookID)
	if err != nil {
		return fmt.Errorf("reading delivery state: %w", err)
	}
	cmd.Printf("Sent chunk %d/%d (%s)\n", receipt.ChunkIndex+1, snap.TotalCount, receipt.Chapter)
	return nil
}
