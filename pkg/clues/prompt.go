package clues

import (
	"fmt"
	"strings"
)

// DefaultMaxTokens is the generation budget passed to the LLM client for
// each hint request. A hint is a single short clue, not a long completion.
const DefaultMaxTokens = 20

// MaxAttempts bounds retries of a malformed or mismatched response for a
// single word. The original generator looped forever on a bad reply; this
// implementation caps attempts and propagates failure instead.
const MaxAttempts = 3

// buildPrompt constructs the request sent to the LLM for a single word: an
// instruction line, then the word itself, uppercased, followed by a tab, so
// the model continues with a clue on the same line.
func buildPrompt(word string) string {
	return fmt.Sprintf("Write a crossword clue for the word. Respond with exactly one line: the word in capitals, a tab, then the clue. No other text.\n%s\t", strings.ToUpper(word))
}

// parseHintResponse validates and extracts the hint from response per the
// binder's contract: split on newline and keep the first line, split that
// line on tab, accept iff exactly two fields result and the first matches
// word case-insensitively.
func parseHintResponse(response, word string) (string, error) {
	firstLine := response
	if idx := strings.IndexByte(response, '\n'); idx >= 0 {
		firstLine = response[:idx]
	}
	firstLine = strings.TrimRight(firstLine, "\r")

	fields := strings.Split(firstLine, "\t")
	if len(fields) != 2 {
		return "", fmt.Errorf("clues: malformed response (want 2 tab-separated fields, got %d)", len(fields))
	}

	if !strings.EqualFold(strings.TrimSpace(fields[0]), word) {
		return "", fmt.Errorf("clues: response word %q does not match requested word %q", fields[0], word)
	}

	hint := strings.TrimSpace(fields[1])
	if hint == "" {
		return "", fmt.Errorf("clues: empty hint")
	}

	return hint, nil
}
