package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure chunking, publishing, and delivery options.

Keys:
  chunker.chunk_size       target chunk size in characters
  publish.service          paste service (dpaste, sprunge, gist, gdrive)
  delivery.message_format  delivered message template with {chunkIndex},
                           {chunkCount}, {title}, {chapter},
                           {chapterChunkIndex} and {url} placeholders
  publish.gist.token       GitHub token for the gist service
  publish.gdrive.token     Google Drive OAuth token`,
	RunE: runSettingsList,
}

var settingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsList,
}

var settingsGetCmd = &cobra.Command{
	Use:   "get [key]",
	Short: "Show one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change a setting",
	Long: `Change a setting. When the value is omitted, bookfeed prompts for it;
token keys are read without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsResetCmd = &cobra.Command{
	Use:   "reset [key]",
	Short: "Reset a setting to its default",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsReset,
}

func init() {
	settingsCmd.AddCommand(settingsListCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsResetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsList(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	for _, key := range settingsService.Keys() {
		value, err := settingsService.Get(cmd.Context(), key)
		if err != nil {
			return fmt.Errorf("failed to get %s: %w", key, err)
		}
		cmd.Printf("  %-25s %s\n", key+":", displayValue(key, value))
	}
	cmd.Println()

	settings, err := settingsService.Settings(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}
	if err := settings.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Fix it with 'bookfeed settings set <key> <value>'.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	value, err := settingsService.Get(cmd.Context(), key)
	if err != nil {
		return fmt.Errorf("failed to get %s: %w", key, err)
	}

	cmd.Println(displayValue(key, value))
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case settingsService.IsSecret(key):
		cmd.Print("Enter token: ")
		value = readPassword()
		cmd.Println()
	default:
		// Reject unknown keys before prompting.
		if _, err := settingsService.Get(cmd.Context(), key); err != nil {
			return fmt.Errorf("failed to get %s: %w", key, err)
		}
		reader := bufio.NewReader(os.Stdin)
		cmd.Printf("Enter value for %s: ", key)
		value = readLine(reader)
	}
	if value == "" {
		return errors.New("value must not be empty")
	}

	if err := settingsService.Set(cmd.Context(), key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if settingsService.IsSecret(key) {
		cmd.Printf("Set %s.\n", key)
	} else {
		cmd.Printf("Set %s to %s.\n", key, value)
	}
	return nil
}

func runSettingsReset(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	if err := settingsService.Reset(cmd.Context(), key); err != nil {
		return fmt.Errorf("failed to reset %s: %w", key, err)
	}

	cmd.Printf("Reset %s to its default.\n", key)
	return nil
}

// displayValue masks secrets and marks empty values.
func displayValue(key, value string) string {
	if value == "" {
		return "(not set)"
	}
	if settingsService.IsSecret(key) {
		return maskToken(value)
	}
	return value
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read the token without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return "****"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
