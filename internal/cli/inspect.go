package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mhaussmann/textsort/internal/classify"
	"github.com/mhaussmann/textsort/internal/ocr"
)

func newInspectCmd() *cobra.Command {
	var (
		threshold int
		countMode string
		languages []string
		binarize  bool
		showText  bool
	)

	cmd := &cobra.Command{
		Use:   "inspect <image>",
		Short: "Classify a single image without moving it",
		Long: `Inspect runs OCR on one image and reports the recognized character count
and the classification the run command would apply. Nothing is moved. Useful
for calibrating the threshold before sorting a whole folder.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := classify.ParseCountMode(countMode)
			if err != nil {
				return err
			}

			engine := ocr.NewTesseract(languages, binarize)
			defer engine.Close()

			res, err := engine.Recognize(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("recognition failed: %w", err)
			}

			classifier := classify.Classifier{Threshold: threshold, Mode: mode}
			count := classifier.CharCount(res.Text)
			verdict := classifier.Classify(res.Text)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "file:           %s\n", args[0])
			fmt.Fprintf(out, "characters:     %d (mode %s)\n", count, mode)
			fmt.Fprintf(out, "threshold:      %d\n", threshold)
			fmt.Fprintf(out, "classification: %s\n", verdict)
			if showText {
				fmt.Fprintf(out, "--- recognized text ---\n%s\n", res.Text)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&threshold, "threshold", "t", 10, "minimum recognized characters to count as text")
	cmd.Flags().StringVar(&countMode, "count-mode", "nonspace", "which characters count: nonspace, all, letters")
	cmd.Flags().StringSliceVar(&languages, "lang", ocr.DefaultLanguages, "Tesseract language codes")
	cmd.Flags().BoolVar(&binarize, "binarize", false, "threshold the image to black/white before OCR")
	cmd.Flags().BoolVar(&showText, "show-text", false, "print the recognized text")

	return cmd
}
