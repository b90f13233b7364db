// Package prefilter provides cheap checks that run before OCR. OCR dominates
// per-image cost, so skipping it for images that obviously contain no text
// (blank frames, solid backgrounds) or that duplicate an already-classified
// image pays for the extra decode many times over.
//
// Every filter degrades gracefully: when a check cannot run or is not
// conclusive, the image falls through to the full OCR path.
package prefilter

import (
	"image"

	"github.com/lucasb-eyer/go-colorful"
)

// DefaultMaxDelta is the default Lab-space distance below which an image
// counts as uniform. 2.0 is roughly the just-noticeable difference; an image
// whose samples all sit within it of the mean is visually a single color.
const DefaultMaxDelta = 2.0

// maxSamplesPerAxis bounds the sampling grid so the check stays cheap on
// large images.
const maxSamplesPerAxis = 64

// Uniform detects images that are (near-)uniformly colored. Such images
// cannot contain readable text, so the sorter classifies them NoText without
// invoking OCR.
type Uniform struct {
	// MaxDelta is the maximum perceptual distance (CIE Lab) any sampled
	// pixel may have from the image's mean color. Zero means
	// DefaultMaxDelta.
	MaxDelta float64
}

// IsBlank reports whether img is visually a single color.
//
// Pixels are sampled on a grid of at most 64x64 points. The check compares
// each sample's Lab distance from the mean sample color against MaxDelta.
func (u Uniform) IsBlank(img image.Image) bool {
	maxDelta := u.MaxDelta
	if maxDelta == 0 {
		maxDelta = DefaultMaxDelta
	}

	bounds := img.Bounds()
	if bounds.Empty() {
		return true
	}

	stepX := bounds.Dx() / maxSamplesPerAxis
	if stepX < 1 {
		stepX = 1
	}
	stepY := bounds.Dy() / maxSamplesPerAxis
	if stepY < 1 {
		stepY = 1
	}

	var samples []colorful.Color
	var sumR, sumG, sumB float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stepY {
		for x := bounds.Min.X; x < bounds.Max.X; x += stepX {
			c := pixelColor(img, x, y)
			samples = append(samples, c)
			sumR += c.R
			sumG += c.G
			sumB += c.B
		}
	}

	n := float64(len(samples))
	mean := colorful.Color{R: sumR / n, G: sumG / n, B: sumB / n}

	for _, c := range samples {
		if c.DistanceLab(mean) > maxDelta {
			return false
		}
	}
	return true
}

// pixelColor converts the pixel at (x, y) to a colorful.Color with channels
// in [0, 1].
func pixelColor(img image.Image, x, y int) colorful.Color {
	r, g, b, _ := img.At(x, y).RGBA()
	return colorful.Color{
		R: float64(r) / 65535.0,
		G: float64(g) / 65535.0,
		B: float64(b) / 65535.0,
	}
}
