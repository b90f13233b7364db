package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mhaussmann/textsort/internal/config"
	"github.com/mhaussmann/textsort/internal/ocr"
	"github.com/mhaussmann/textsort/internal/session"
	"github.com/mhaussmann/textsort/internal/sorter"
)

func newRunCmd() *cobra.Command {
	var (
		configPath string
		jsonOut    bool

		inputDir   string
		outputDir  string
		noTextDir  string
		threshold  int
		countMode  string
		density    float64
		languages  []string
		binarize   bool
		recursive  bool
		dryRun     bool
		preview    bool
		dedup      bool
		noBlank    bool
		logPath    string
		historyDB  string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Classify the images of a folder and sort them",
		Example: `  textsort run -i ~/scans/inbox -o ~/scans/text
  textsort run -i ./inbox -o ./text --threshold 25 --lang deu --lang eng
  textsort run -c textsort.yml --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				var err error
				cfg, err = config.Load(configPath)
				if err != nil {
					return err
				}
			}

			// Flags override the file only when actually set.
			flags := cmd.Flags()
			if flags.Changed("input") {
				cfg.InputDir = inputDir
			}
			if flags.Changed("output") {
				cfg.OutputDir = outputDir
			}
			if flags.Changed("no-text-dir") {
				cfg.NoTextDir = noTextDir
			}
			if flags.Changed("threshold") {
				cfg.Threshold = threshold
			}
			if flags.Changed("count-mode") {
				cfg.CountMode = countMode
			}
			if flags.Changed("density") {
				cfg.DensityThreshold = density
			}
			if flags.Changed("lang") {
				cfg.Languages = languages
			}
			if flags.Changed("binarize") {
				cfg.Binarize = binarize
			}
			if flags.Changed("recursive") {
				cfg.Recursive = recursive
			}
			if flags.Changed("dry-run") {
				cfg.DryRun = dryRun
			}
			if flags.Changed("preview") {
				cfg.Preview = preview
			}
			if flags.Changed("dedup") {
				cfg.DetectDuplicates = dedup
			}
			if flags.Changed("no-blank-filter") {
				cfg.DetectBlank = !noBlank
			}
			if flags.Changed("log") {
				cfg.LogPath = logPath
			}
			if flags.Changed("history") {
				cfg.HistoryPath = historyDB
			}

			engine := ocr.NewTesseract(cfg.Languages, cfg.Binarize)
			defer engine.Close()

			sess, err := sorter.New(cfg, engine).Start(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOut {
				streamJSON(os.Stdout, sess)
			} else {
				streamText(cmd.OutOrStdout(), sess, cfg.Preview)
			}

			state := sess.Wait()
			p := sess.Snapshot()

			if !jsonOut {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d/%d processed, %d text, %d no-text, %d errors\n",
					state, p.Processed, p.Total, p.ContainsText, p.NoText, p.Errors)
			}

			switch state {
			case session.Failed:
				return fmt.Errorf("session failed: %w", sess.Err())
			case session.Cancelled:
				slog.Warn("session cancelled", "processed", p.Processed, "total", p.Total)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "input folder")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output folder for images containing text")
	cmd.Flags().StringVar(&noTextDir, "no-text-dir", "", "optional folder for images without text (default: leave in place)")
	cmd.Flags().IntVarP(&threshold, "threshold", "t", config.Default().Threshold, "minimum recognized characters to count as text")
	cmd.Flags().StringVar(&countMode, "count-mode", config.Default().CountMode, "which characters count: nonspace, all, letters")
	cmd.Flags().Float64Var(&density, "density", 0, "classify by characters per pixel instead of the absolute threshold")
	cmd.Flags().StringSliceVar(&languages, "lang", ocr.DefaultLanguages, "Tesseract language codes")
	cmd.Flags().BoolVar(&binarize, "binarize", false, "threshold images to black/white before OCR")
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "include subfolders of the input folder")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "classify and report without moving files")
	cmd.Flags().BoolVar(&preview, "preview", false, "print each file as processing starts")
	cmd.Flags().BoolVar(&dedup, "dedup", false, "reuse the verdict of perceptually identical images")
	cmd.Flags().BoolVar(&noBlank, "no-blank-filter", false, "disable the uniform-color shortcut")
	cmd.Flags().StringVar(&logPath, "log", config.Default().LogPath, "session log file (truncated at start)")
	cmd.Flags().StringVar(&historyDB, "history", "", "sqlite session journal")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "stream session events as NDJSON on stdout")

	return cmd
}

// streamJSON writes every session event as one JSON object per line,
// suitable for piping into other tools.
func streamJSON(w io.Writer, sess *session.Session) {
	encoder := json.NewEncoder(w)
	for ev := range sess.Events() {
		if err := encoder.Encode(ev); err != nil {
			slog.Error("failed to encode event", "error", err)
			return
		}
	}
}

// streamText renders the event stream as human-readable progress lines.
func streamText(w io.Writer, sess *session.Session, preview bool) {
	for ev := range sess.Events() {
		switch ev.Kind {
		case session.EventStarted:
			fmt.Fprintf(w, "sorting %d images\n", ev.Total)
		case session.EventProcessing:
			if preview {
				fmt.Fprintf(w, "processing %s (%d/%d)\n", ev.Path, ev.Processed+1, ev.Total)
			}
		case session.EventClassified:
			suffix := ""
			if ev.Duplicate {
				suffix = " (duplicate)"
			}
			if ev.MovedTo != "" {
				fmt.Fprintf(w, "[%d/%d] %-8s %s -> %s%s\n", ev.Processed, ev.Total, ev.Classification, ev.Path, ev.MovedTo, suffix)
			} else {
				fmt.Fprintf(w, "[%d/%d] %-8s %s%s\n", ev.Processed, ev.Total, ev.Classification, ev.Path, suffix)
			}
		case session.EventImageError:
			fmt.Fprintf(w, "[%d/%d] error    %s: %s\n", ev.Processed, ev.Total, ev.Path, ev.Error)
		}
	}
}
