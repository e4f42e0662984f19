// Package dictionary loads the word list a build draws from and answers
// membership queries for it. It treats the word list as an opaque,
// immutable set once loaded.
package dictionary

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// MinWordLength is the minimum admitted word length.
const MinWordLength = 2

// Dictionary is an immutable, lowercase word set with O(len(word))
// membership tests via an internal trie.
type Dictionary struct {
	words []string
	set   *trie
}

// Has reports whether word (any case) is a dictionary member.
func (d *Dictionary) Has(word string) bool {
	return d.set.has(strings.ToLower(word))
}

// Words returns the sorted-by-insertion word list. Callers must not mutate
// the returned slice.
func (d *Dictionary) Words() []string {
	return d.words
}

// Len returns the number of words in the dictionary.
func (d *Dictionary) Len() int {
	return len(d.words)
}

// Load reads a UTF-8 text file with one word per line, trims whitespace,
// lowercases, and admits words of length in [MinWordLength, gridLen-6].
// Lines that don't fit the window, or that contain embedded whitespace, are
// discarded rather than erroring — only a missing/unreadable file is a
// setup failure.
func Load(path string, gridLen int) (*Dictionary, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dictionary: failed to open %q: %w", path, err)
	}
	defer file.Close()

	maxLen := gridLen - 6
	d := &Dictionary{set: newTrie()}
	seen := make(map[string]struct{})

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		word := strings.ToLower(strings.TrimSpace(scanner.Text()))
		if word == "" {
			continue
		}
		if strings.ContainsAny(word, " \t") {
			continue
		}
		if len(word) < MinWordLength || len(word) > maxLen {
			continue
		}
		if _, dup := seen[word]; dup {
			continue
		}
		seen[word] = struct{}{}
		d.words = append(d.words, word)
		d.set.insert(word)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("dictionary: error reading %q: %w", path, err)
	}
	if len(d.words) == 0 {
		return nil, fmt.Errorf("dictionary: %q yielded no words in length window [%d, %d]", path, MinWordLength, maxLen)
	}

	return d, nil
}
