package ocr

import (
	"image"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// binarizeLevel is the luminance cutoff used when binarization is enabled.
// Scans and photographed documents are usually dark ink on a light
// background, so a fixed midpoint works well enough without Otsu's method.
const binarizeLevel = 128

// Preprocess prepares an image for recognition. The image is always
// converted to grayscale, which is what Tesseract works on internally and
// what removes color noise around printed text. With binarize set, the
// grayscale image is additionally thresholded to pure black and white,
// which helps on low-contrast scans but can destroy text on photographs
// with uneven lighting.
func Preprocess(img image.Image, binarize bool) image.Image {
	gray := imaging.Grayscale(img)
	if !binarize {
		return gray
	}
	return segment.Threshold(gray, binarizeLevel)
}
