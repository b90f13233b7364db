package ocr

import (
	"context"
	"fmt"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguages is the language set used when none is configured.
// German plus English covers mixed-language documents without a second pass.
var DefaultLanguages = []string{"deu", "eng"}

// Tesseract is an Engine backed by the native Tesseract library.
//
// Each Recognize call uses a fresh gosseract client; a client is not safe to
// share across recognitions, and client setup is cheap compared to
// recognition itself.
type Tesseract struct {
	// Languages are Tesseract language codes tried together (e.g. "deu",
	// "eng"). Empty means DefaultLanguages.
	Languages []string

	// TessdataPrefix overrides the directory Tesseract loads language data
	// from. Empty means the system default.
	TessdataPrefix string

	// Binarize enables black/white thresholding before recognition.
	Binarize bool
}

var _ Engine = (*Tesseract)(nil)

// NewTesseract returns a Tesseract engine for the given languages.
func NewTesseract(languages []string, binarize bool) *Tesseract {
	return &Tesseract{Languages: languages, Binarize: binarize}
}

// Recognize runs Tesseract over the image at path and returns the recognized
// text. The image is decoded, preprocessed (grayscale, optional
// binarization) and handed to Tesseract via a temporary PNG, since the
// native API wants a file path.
func (t *Tesseract) Recognize(ctx context.Context, path string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	imagePath, cleanup, err := t.prepare(path)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	client := gosseract.NewClient()
	defer client.Close()

	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	langs := t.Languages
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	if err := client.SetLanguage(langs...); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	return &Result{Text: text}, nil
}

// Close releases engine resources. Tesseract holds no long-lived state, so
// this is a no-op kept for the Engine contract.
func (t *Tesseract) Close() error { return nil }

// prepare decodes and preprocesses the source image and writes the result to
// a temporary PNG for Tesseract. The returned cleanup removes the file.
func (t *Tesseract) prepare(path string) (string, func(), error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image: %w", err)
	}

	processed := Preprocess(img, t.Binarize)

	tmpFile, err := os.CreateTemp("", "textsort-ocr-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	cleanup := func() { os.Remove(tmpPath) }

	if err := png.Encode(tmpFile, processed); err != nil {
		tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to write temp image: %w", err)
	}

	return tmpPath, cleanup, nil
}
