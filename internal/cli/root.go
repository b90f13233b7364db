// Package cli wires the textsort commands: run (sort a folder), inspect
// (classify a single image without moving it) and history (read the session
// journal).
package cli

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the textsort command tree.
func NewRootCmd(gitCommit string) *cobra.Command {
	var logLevel string

	cmd := &cobra.Command{
		Use:   "textsort",
		Short: "Sort images by whether they contain text",
		Long: `textsort classifies the images of a folder with Tesseract OCR and sorts
them: images whose recognized character count reaches the threshold move to
the output folder, the rest stay in place (or move to a no-text folder).

Moves are irreversible; every run writes a session log and, when configured,
a sqlite journal for later review.`,
		Annotations: map[string]string{"commit": gitCommit},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env if present (ignore errors)
			_ = godotenv.Load()
			setupLogging(logLevel)
		},
	}

	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newHistoryCmd())

	return cmd
}

// setupLogging points slog at stderr; stdout is reserved for progress
// output and the --json event stream.
func setupLogging(level string) {
	var l slog.Level
	switch level {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: l})))
}
