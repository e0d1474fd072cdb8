// Harpia-deck is a terminal control panel for a harpia streaming server.
//
// It shows the server's button decks as a 4x4 grid, runs buttons, edits
// them, and keeps an eye on the stream and the upstream OBS and VTube
// Studio connections.
//
// Usage:
//
//	harpia-deck [command] [flags]
//
// Running without arguments opens the control panel. The session cookie is
// read from HARPIA_SESSION.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/harpiadesk/harpia/internal/logging"
	"github.com/harpiadesk/harpia/internal/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "harpia-deck",
	Short: "Harpia stream deck control panel",
	Long: `A terminal control panel for a harpia streaming server.

Shows the configured button decks, runs buttons against OBS, VTube Studio
and the server's sound and hotkey injectors, and edits the deck layout.

The session cookie of a logged-in dashboard must be exported as
HARPIA_SESSION. It is never written to disk.

If no command is specified, the control panel opens.`,
	Version:           version.Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	RunE:              runPanel,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("harpia-deck %s\n", version.Full())
	},
}
