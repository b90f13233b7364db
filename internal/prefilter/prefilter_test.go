package prefilter

import (
	"image"
	"image/color"
	"testing"

	"github.com/mhaussmann/textsort/internal/classify"
)

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// createTextPatternImage draws dark strokes on a white background.
func createTextPatternImage(width, height int) *image.RGBA {
	img := createTestImage(width, height, color.White)
	for y := 20; y < height-20; y += 10 {
		for x := 20; x < width-20; x++ {
			if x%15 < 5 {
				img.Set(x, y, color.Black)
				img.Set(x, y+1, color.Black)
			}
		}
	}
	return img
}

func TestUniform_IsBlank(t *testing.T) {
	u := Uniform{}

	if !u.IsBlank(createTestImage(100, 100, color.White)) {
		t.Error("solid white image should be blank")
	}
	if !u.IsBlank(createTestImage(100, 100, color.RGBA{R: 10, G: 80, B: 160, A: 255})) {
		t.Error("solid colored image should be blank")
	}
	if u.IsBlank(createTextPatternImage(100, 100)) {
		t.Error("image with strokes should not be blank")
	}
}

func TestUniform_NearUniformNoise(t *testing.T) {
	// One-step channel noise stays under the perceptual cutoff.
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(200 + (x+y)%2)
			img.Set(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	if !(Uniform{}).IsBlank(img) {
		t.Error("single-step noise should still count as blank")
	}
}

func TestUniform_EmptyImage(t *testing.T) {
	if !(Uniform{}).IsBlank(image.NewRGBA(image.Rect(0, 0, 0, 0))) {
		t.Error("empty image should be blank")
	}
}

func TestDedup_MatchAfterRemember(t *testing.T) {
	d := &Dedup{}
	img := createTextPatternImage(120, 120)

	h1 := d.Hash(img)
	if h1 == nil {
		t.Fatal("hashing failed")
	}

	if _, ok := d.Match(h1); ok {
		t.Fatal("empty filter should not match")
	}

	d.Remember(h1, classify.ContainsText)

	h2 := d.Hash(createTextPatternImage(120, 120))
	class, ok := d.Match(h2)
	if !ok {
		t.Fatal("identical image should match")
	}
	if class != classify.ContainsText {
		t.Errorf("matched class = %v, want ContainsText", class)
	}
}

func TestDedup_DistinctImagesDoNotMatch(t *testing.T) {
	d := &Dedup{}

	// Opposite gradients hash far apart.
	a := image.NewRGBA(image.Rect(0, 0, 64, 64))
	b := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			a.Set(x, y, color.Gray{Y: uint8(x * 4)})
			b.Set(x, y, color.Gray{Y: uint8(255 - y*4)})
		}
	}

	d.Remember(d.Hash(a), classify.NoText)

	if _, ok := d.Match(d.Hash(b)); ok {
		t.Error("distinct images should not match")
	}
}

func TestDedup_NilHash(t *testing.T) {
	d := &Dedup{}
	if _, ok := d.Match(nil); ok {
		t.Error("nil hash must not match")
	}
	d.Remember(nil, classify.ContainsText) // must not panic or store
	if _, ok := d.Match(d.Hash(createTestImage(32, 32, color.White))); ok {
		t.Error("nothing should have been remembered for a nil hash")
	}
}
