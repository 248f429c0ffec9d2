package cli

import (
	"context"
	"errors"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bookfeed/internal/adapters/driven/inbox"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and add dropped documents",
	Long: `Watches a directory (default ~/.bookfeed/inbox) and adds every supported
document dropped into it to the library. Press Ctrl+C to stop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if ingestService == nil {
		return errors.New("ingest service not configured")
	}

	var dir string
	if len(args) == 1 {
		dir = args[0]
	} else {
		home, err := bookfeedHome()
		if err != nil {
			return err
		}
		dir = filepath.Join(home, "inbox")
	}

	watcher := inbox.New(inbox.Config{Dir: dir, Ingest: ingestService})
	cmd.Printf("Watching %s for new documents. Press Ctrl+C to stop.\n", dir)

	err := watcher.Start(cmd.Context())
	if errors.Is(err, context.Canceled) {
		cmd.Println("\nStopped.")
		return nil
	}
	return err
}
