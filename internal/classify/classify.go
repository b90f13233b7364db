// Package classify implements the text-presence decision: given the text an
// OCR engine recognized in an image, decide whether the image "contains text".
//
// The primary policy counts recognized characters and compares the count
// against an integer threshold. A secondary density policy relates the count
// to the image's pixel area, which makes one threshold usable across image
// sizes (small thumbnails need fewer characters than a full-page scan).
package classify

import (
	"fmt"
	"unicode"
)

// Classification is the terminal verdict for a single image.
type Classification int

const (
	// Unclassified is the initial state before the image is processed.
	Unclassified Classification = iota

	// ContainsText means the recognized character count met the threshold.
	ContainsText

	// NoText means the recognized character count fell below the threshold.
	NoText
)

// String returns a stable lowercase name, used in logs, events and the
// session journal.
func (c Classification) String() string {
	switch c {
	case ContainsText:
		return "text"
	case NoText:
		return "no-text"
	default:
		return "unclassified"
	}
}

// CountMode selects which runes of the recognized text count toward the
// threshold.
type CountMode string

const (
	// CountNonSpace counts every rune that is not whitespace. This is the
	// default.
	CountNonSpace CountMode = "nonspace"

	// CountAll counts every rune including whitespace.
	CountAll CountMode = "all"

	// CountLetters counts only letters and digits, ignoring punctuation that
	// OCR engines tend to hallucinate on noisy photographs.
	CountLetters CountMode = "letters"
)

// Valid reports whether m is one of the known counting modes.
func (m CountMode) Valid() bool {
	switch m {
	case CountNonSpace, CountAll, CountLetters:
		return true
	}
	return false
}

// Classifier applies the threshold policy. The zero value counts non-space
// runes against a threshold of zero, which classifies everything as
// ContainsText.
type Classifier struct {
	// Threshold is the minimum character count for ContainsText.
	// A threshold of 0 classifies every successfully recognized image as
	// ContainsText, including images with no recognized text at all.
	Threshold int

	// Mode selects which runes are counted. Empty means CountNonSpace.
	Mode CountMode
}

// CharCount returns the number of runes in text that count toward the
// threshold under the classifier's mode.
func (c Classifier) CharCount(text string) int {
	mode := c.Mode
	if mode == "" {
		mode = CountNonSpace
	}

	n := 0
	for _, r := range text {
		switch mode {
		case CountAll:
			n++
		case CountLetters:
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				n++
			}
		default:
			if !unicode.IsSpace(r) {
				n++
			}
		}
	}
	return n
}

// Classify returns ContainsText when the counted characters reach the
// threshold, NoText otherwise.
func (c Classifier) Classify(text string) Classification {
	if c.CharCount(text) >= c.Threshold {
		return ContainsText
	}
	return NoText
}

// ClassifyDensity applies the density policy: counted characters divided by
// the image's pixel area, compared against minDensity. An image with zero
// pixels has density zero.
//
// The count always uses CountNonSpace regardless of the classifier's mode;
// density thresholds are calibrated against visible ink, and whitespace is
// not ink.
func (c Classifier) ClassifyDensity(text string, pixels int, minDensity float64) Classification {
	count := Classifier{Mode: CountNonSpace}.CharCount(text)
	if pixels <= 0 {
		return NoText
	}
	if float64(count)/float64(pixels) > minDensity {
		return ContainsText
	}
	return NoText
}

// ParseCountMode converts a configuration string into a CountMode.
func ParseCountMode(s string) (CountMode, error) {
	if s == "" {
		return CountNonSpace, nil
	}
	m := CountMode(s)
	if !m.Valid() {
		return "", fmt.Errorf("unknown count mode %q (want nonspace, all or letters)", s)
	}
	return m, nil
}
