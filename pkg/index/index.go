// Package index builds the reverse letter -> (word, position) index the
// Generator Loop samples from when extending a pivot cell.
package index

import (
	"errors"
	"math/rand"
)

// ErrNoCandidate is returned by Sample when the bucket for a letter is
// empty.
var ErrNoCandidate = errors.New("index: no candidate for letter")

// Entry pairs a dictionary word with the position of the indexed letter
// within it.
type Entry struct {
	Word string
	Pos  int
}

// WordSource is the minimal view of a dictionary the index is built from.
type WordSource interface {
	Words() []string
}

// Index maps each letter to every (word, position) pair in which that
// letter appears. Immutable once built.
type Index struct {
	buckets map[byte][]Entry
}

// Build scans every word in dict and, for each (position, letter) pair,
// appends (word, position) to the bucket keyed by letter. Insertion order
// within a bucket follows dict's word order.
func Build(dict WordSource) *Index {
	idx := &Index{buckets: make(map[byte][]Entry)}
	for _, word := range dict.Words() {
		for pos := 0; pos < len(word); pos++ {
			letter := word[pos]
			idx.buckets[letter] = append(idx.buckets[letter], Entry{Word: word, Pos: pos})
		}
	}
	return idx
}

// Sample uniformly selects one (word, position) pair from the bucket for
// letter, or ErrNoCandidate if that bucket is empty.
func (idx *Index) Sample(letter byte, rng *rand.Rand) (Entry, error) {
	bucket := idx.buckets[letter]
	if len(bucket) == 0 {
		return Entry{}, ErrNoCandidate
	}
	return bucket[rng.Intn(len(bucket))], nil
}

// Len returns the total number of (word, position) pairs indexed, for
// diagnostics.
func (idx *Index) Len() int {
	n := 0
	for _, b := range idx.buckets {
		n += len(b)
	}
	return n
}
