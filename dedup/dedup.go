// Package dedup filters near- and exact-duplicate documents out of the
// ingestion stream using the main extracted text. It implements the
// exact-hash-plus-Jaccard-shingle variant the specification treats as
// canonical rather than the optional MinHash-LSH approximation: this
// corpus is small enough that the O(N^2) worst case of the exact
// pairwise comparison never becomes the bottleneck, and the simpler
// variant is exact rather than approximate.
package dedup

import (
	"crypto/md5"
	"strings"
)

// NearDuplicateThreshold is the Jaccard similarity above which a document
// is rejected as a near-duplicate of one already accepted.
const NearDuplicateThreshold = 0.9

// MinMainTextTokens is the minimum whitespace-token count a document's
// main text must reach to be considered for indexing at all.
const MinMainTextTokens = 5

// Detector tracks the hashes and shingle sets of every document accepted
// so far in one build. It is not safe for concurrent use; the build pass
// is single-threaded by design.
type Detector struct {
	exactHashes map[[16]byte]struct{}
	shingleSets []map[string]struct{}
}

// NewDetector returns an empty Detector.
func NewDetector() *Detector {
	return &Detector{
		exactHashes: make(map[[16]byte]struct{}),
	}
}

// TooShort reports whether mainText has too few tokens to be worth
// indexing, independent of duplicate status.
func TooShort(mainText string) bool {
	return len(strings.Fields(mainText)) < MinMainTextTokens
}

// IsDuplicate reports whether mainText is an exact or near-duplicate of a
// previously accepted document. It does not mutate state; call Accept
// once the caller has decided to keep the document.
func (d *Detector) IsDuplicate(mainText string) (exact bool, near bool) {
	hash := md5.Sum([]byte(mainText))
	if _, seen := d.exactHashes[hash]; seen {
		return true, false
	}

	shingles := shingleSet(mainText)
	for _, existing := range d.shingleSets {
		if jaccard(shingles, existing) > NearDuplicateThreshold {
			return false, true
		}
	}
	return false, false
}

// Accept records mainText as a newly accepted document's fingerprint, so
// subsequent calls to IsDuplicate detect it.
func (d *Detector) Accept(mainText string) {
	hash := md5.Sum([]byte(mainText))
	d.exactHashes[hash] = struct{}{}
	d.shingleSets = append(d.shingleSets, shingleSet(mainText))
}

// shingleSet is the set of whitespace-separated lowercase tokens of text
// — the specification's definition of a document's shingle set.
func shingleSet(text string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(text))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if _, ok := b[k]; ok {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
