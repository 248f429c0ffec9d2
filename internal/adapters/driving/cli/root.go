// Package cli implements the bookfeed command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/bookfeed/internal/adapters/driven/chat/capture"
	"github.com/custodia-labs/bookfeed/internal/adapters/driven/chat/console"
	"github.com/custodia-labs/bookfeed/internal/adapters/driven/config/file"
	"github.com/custodia-labs/bookfeed/internal/adapters/driven/fetch"
	"github.com/custodia-labs/bookfeed/internal/adapters/driven/publish"
	"github.com/custodia-labs/bookfeed/internal/adapters/driven/publish/dpaste"
	"github.com/custodia-labs/bookfeed/internal/adapters/driven/publish/gdrive"
	"github.com/custodia-labs/bookfeed/internal/adapters/driven/publish/gist"
	"github.com/custodia-labs/bookfeed/internal/adapters/driven/publish/sprunge"
	"github.com/custodia-labs/bookfeed/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driven"
	"github.com/custodia-labs/bookfeed/internal/core/ports/driving"
	"github.com/custodia-labs/bookfeed/internal/core/services"
	"github.com/custodia-labs/bookfeed/internal/logger"
	"github.com/custodia-labs/bookfeed/internal/parsers/epub"
	"github.com/custodia-labs/bookfeed/internal/parsers/html"
	"github.com/custodia-labs/bookfeed/internal/parsers/markdown"
	"github.com/custodia-labs/bookfeed/internal/parsers/pdf"
	"github.com/custodia-labs/bookfeed/internal/parsers/plaintext"
)

// version is set at build time via
// -ldflags "-X github.com/custodia-labs/bookfeed/internal/adapters/driving/cli.version=v1.2.3".
var version = "dev"

// Services the commands run against. Wired lazily on first use;
// tests replace them with mocks.
var (
	libraryService  driving.Library
	ingestService   driving.Ingest
	deliveryService driving.Delivery
	settingsService driving.Settings
	contentFetcher  driven.ContentFetcher
	chatChannel     driven.ChatChannel

	metaStore *sqlite.Store
)

// Persistent flags.
var (
	flagVerbose   bool
	flagDataDir   string
	flagConfigDir string
)

var rootCmd = &cobra.Command{
	Use:   "bookfeed",
	Short: "Drip-feed books into a chat, one chunk at a time",
	Long: `bookfeed feeds books into a chat conversation one chunk at a time.

Add a book from a URL or file and bookfeed splits it into chapter-aware
chunks. Each send uploads one chunk to a paste service and delivers a
short message with the link; the next chunk goes out once you confirm a
reply arrived.`,
	PersistentPreRunE: ensureServices,
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		if metaStore != nil {
			metaStore.Close() //nolint:errcheck // Best-effort close on exit
			metaStore = nil
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory (default ~/.bookfeed/data)")
	rootCmd.PersistentFlags().StringVar(&flagConfigDir, "config", "", "config directory (default ~/.bookfeed)")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion overrides the reported version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// ensureServices wires the real adapters on first use. Commands that
// never touch a service skip wiring so they work without touching the
// filesystem.
func ensureServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	switch cmd.Name() {
	case "version", "help", "completion", "__complete":
		return nil
	}

	if libraryService != nil && ingestService != nil && deliveryService != nil &&
		settingsService != nil && chatChannel != nil {
		return nil
	}

	return wireServices(cmd)
}

// wireServices builds the production adapter stack. The TUI and MCP
// surfaces render receipts themselves and feed reply signals straight
// into the sequencer, so they get a capture channel; everything else
// talks to the terminal.
func wireServices(cmd *cobra.Command) error {
	configStore, err := file.NewConfigStore(flagConfigDir)
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settingsService = services.NewSettingsService(configStore)

	metaStore, err = sqlite.NewStore(flagDataDir)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	libraryService = services.NewLibraryService(metaStore.KeyValueStore())

	contentFetcher = fetch.New(fetch.Config{})
	ingestService = services.NewIngestService(
		contentFetcher,
		[]driven.DocumentParser{plaintext.New(), markdown.New(), html.New(), pdf.New(), epub.New()},
		libraryService,
		settingsService,
	)

	publishers := publish.NewRegistry(
		dpaste.New(dpaste.Config{}),
		sprunge.New(sprunge.Config{}),
		gist.New(settingsService),
		gdrive.New(settingsService),
	)

	if wantsCaptureChannel(cmd) {
		chatChannel = capture.New()
	} else {
		chatChannel = console.New(console.Config{Out: cmd.OutOrStdout()})
	}

	deliveryService = services.NewDeliveryService(
		libraryService,
		settingsService,
		publishers,
		chatChannel,
		metaStore.DeliveryLogStore(),
	)

	return nil
}

// wantsCaptureChannel reports whether the command owns the terminal
// (TUI) or stdin (MCP stdio transport) and therefore must not share
// them with the console channel.
func wantsCaptureChannel(cmd *cobra.Command) bool {
	if cmd.Name() == "tui" {
		return true
	}
	return cmd.Name() == "serve" && cmd.Parent() != nil && cmd.Parent().Name() == "mcp"
}

// bookfeedHome returns the default application directory.
func bookfeedHome() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".bookfeed"), nil
}
