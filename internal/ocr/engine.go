// Package ocr wraps the Tesseract OCR engine (via gosseract/v2) behind a
// small interface so the sorting pipeline can be tested without a native
// Tesseract installation.
//
// Tesseract must be installed on the system together with the language data
// for every configured language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-deu tesseract-ocr-eng
//   - macOS: brew install tesseract tesseract-lang
package ocr

import "context"

// Result holds the outcome of recognizing one image.
type Result struct {
	// Text is all recognized text as a single string with original
	// spacing and newlines. May be empty.
	Text string
}

// Engine recognizes text in image files. Implementations must treat every
// failure as scoped to the single image being recognized; an Engine error
// never invalidates the engine for subsequent calls.
type Engine interface {
	// Recognize extracts text from the image at path. The context is
	// checked before recognition starts; a recognition already underway is
	// not interrupted.
	Recognize(ctx context.Context, path string) (*Result, error)

	// Close releases engine resources. The engine must not be used after.
	Close() error
}
