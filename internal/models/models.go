// Package models holds the persisted and transport shapes for generated
// puzzles. Interactive solving (accounts, rooms, live game state) is out of
// scope; this is an archive of generated documents, not a game store.
package models

import "time"

// PuzzleStatus tracks an asynchronously triggered build.
type PuzzleStatus string

const (
	StatusBuilding PuzzleStatus = "building"
	StatusReady    PuzzleStatus = "ready"
	StatusFailed   PuzzleStatus = "failed"
)

// WordEntry is the document representation of one scanned, hinted word.
type WordEntry struct {
	Word        string `json:"word"`
	WordOrigin  [2]int `json:"word_origin"`
	Orientation string `json:"orientation"`
	Hint        string `json:"hint"`
}

// Puzzle is a generated document plus its archive metadata.
type Puzzle struct {
	ID        string       `json:"id"`
	GridLen   int          `json:"-"`
	Grid      [][]*string  `json:"grid"`
	Words     []WordEntry  `json:"words"`
	Status    PuzzleStatus `json:"status"`
	Error     string       `json:"error,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}
