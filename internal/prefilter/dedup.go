package prefilter

import (
	"image"
	"sync"

	"github.com/corona10/goimagehash"

	"github.com/mhaussmann/textsort/internal/classify"
)

// DefaultHashDistance is the maximum Hamming distance between two dHash
// values below which images count as perceptually identical.
const DefaultHashDistance = 10

// Dedup remembers perceptual hashes of classified images within one session
// so that duplicates reuse the earlier verdict instead of re-running OCR.
// It is safe for concurrent use, though the sorting worker is its only
// writer in practice.
type Dedup struct {
	// MaxDistance is the Hamming distance cutoff. Zero means
	// DefaultHashDistance.
	MaxDistance int

	mu   sync.Mutex
	seen []dedupEntry
}

type dedupEntry struct {
	hash  *goimagehash.ImageHash
	class classify.Classification
}

// Hash computes the perceptual hash of img. Returns nil when hashing fails;
// a nil hash disables dedup for that image (graceful degradation).
func (d *Dedup) Hash(img image.Image) *goimagehash.ImageHash {
	hash, err := goimagehash.DifferenceHash(img)
	if err != nil {
		return nil
	}
	return hash
}

// Match looks up a previously remembered image perceptually identical to
// hash and returns its classification. A nil hash never matches.
func (d *Dedup) Match(hash *goimagehash.ImageHash) (classify.Classification, bool) {
	if hash == nil {
		return classify.Unclassified, false
	}

	cutoff := d.MaxDistance
	if cutoff == 0 {
		cutoff = DefaultHashDistance
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, e := range d.seen {
		dist, err := hash.Distance(e.hash)
		if err == nil && dist < cutoff {
			return e.class, true
		}
	}
	return classify.Unclassified, false
}

// Remember stores the classification verdict for hash so later duplicates
// can reuse it. Nil hashes are ignored.
func (d *Dedup) Remember(hash *goimagehash.ImageHash, class classify.Classification) {
	if hash == nil {
		return
	}
	d.mu.Lock()
	d.seen = append(d.seen, dedupEntry{hash: hash, class: class})
	d.mu.Unlock()
}
