// Package clues implements the Hint Binder: given a word the Word Scanner
// extracted from a committed grid, it produces a short clue for it, caching
// results locally and falling back to an LLM client on a cache miss.
package clues

import (
	"context"
	"fmt"

	"github.com/crossgen/crossword/pkg/clues/providers"
	"github.com/crossgen/crossword/pkg/grid"
)

// HintedWord pairs a scanned word with its bound hint.
type HintedWord struct {
	Word        string
	Origin      grid.Coordinate
	Orientation grid.Orientation
	Hint        string
}

// Generator binds hints to scanned words, consulting the cache before the
// LLM client and capping per-word retries rather than looping forever on a
// malformed or mismatched reply.
type Generator struct {
	cache     *ClueCache
	llmClient providers.LLMClient
}

// NewGenerator creates a Generator. cache may be nil to disable caching.
func NewGenerator(cache *ClueCache, llmClient providers.LLMClient) *Generator {
	return &Generator{cache: cache, llmClient: llmClient}
}

// GenerateHints binds a hint to every record in words. Records sharing the
// same word text share one LLM round trip and one cache entry.
func (g *Generator) GenerateHints(ctx context.Context, words []grid.WordRecord) ([]HintedWord, error) {
	hints := make(map[string]string, len(words))
	result := make([]HintedWord, 0, len(words))

	for _, rec := range words {
		hint, ok := hints[rec.Word]
		if !ok {
			var err error
			hint, err = g.hintFor(ctx, rec.Word)
			if err != nil {
				return nil, fmt.Errorf("clues: %s: %w", rec.Word, err)
			}
			hints[rec.Word] = hint
		}

		result = append(result, HintedWord{
			Word:        rec.Word,
			Origin:      rec.Origin,
			Orientation: rec.Orientation,
			Hint:        hint,
		})
	}

	return result, nil
}

// hintFor returns the cached hint for word if present, otherwise requests
// one from the LLM client, validating and caching the result.
func (g *Generator) hintFor(ctx context.Context, word string) (string, error) {
	if g.cache != nil {
		if hint, found := g.cache.GetClue(word); found {
			return hint, nil
		}
	}

	if g.llmClient == nil {
		return "", fmt.Errorf("no LLM client available and %q not in cache", word)
	}

	var lastErr error
	for attempt := 0; attempt < MaxAttempts; attempt++ {
		response, err := g.llmClient.Complete(ctx, buildPrompt(word), DefaultMaxTokens)
		if err != nil {
			return "", fmt.Errorf("LLM completion failed: %w", err)
		}

		hint, err := parseHintResponse(response, word)
		if err != nil {
			lastErr = err
			continue
		}

		if g.cache != nil {
			if err := g.cache.SaveClue(word, hint); err != nil {
				_ = err // cache save failure shouldn't stop the binder
			}
		}

		return hint, nil
	}

	return "", fmt.Errorf("exhausted %d attempts: %w", MaxAttempts, lastErr)
}
