// Package output renders a generated puzzle into its native document
// format and into the ipuz/puz formats for compatibility with existing
// crossword solvers.
package output

import (
	"encoding/json"

	"github.com/crossgen/crossword/internal/models"
	"github.com/crossgen/crossword/pkg/clues"
	"github.com/crossgen/crossword/pkg/grid"
)

// Document is the native export shape: just the letter grid and the word
// list, no archive metadata.
type Document struct {
	Grid  [][]*string        `json:"grid"`
	Words []models.WordEntry `json:"words"`
}

// BuildDocument assembles the archive Puzzle record from a committed grid
// and its bound hints.
func BuildDocument(g *grid.Grid, hints []clues.HintedWord, id string) *models.Puzzle {
	letterGrid := make([][]*string, g.Size)
	for y := 0; y < g.Size; y++ {
		letterGrid[y] = make([]*string, g.Size)
		for x := 0; x < g.Size; x++ {
			letter, occupied, _ := g.Read(x, y)
			if !occupied {
				continue
			}
			s := string(letter)
			letterGrid[y][x] = &s
		}
	}

	words := make([]models.WordEntry, len(hints))
	for i, hw := range hints {
		words[i] = models.WordEntry{
			Word:        hw.Word,
			WordOrigin:  [2]int{hw.Origin.X, hw.Origin.Y},
			Orientation: hw.Orientation.String(),
			Hint:        hw.Hint,
		}
	}

	return &models.Puzzle{
		ID:      id,
		GridLen: g.Size,
		Grid:    letterGrid,
		Words:   words,
		Status:  models.StatusReady,
	}
}

// FormatJSON strips archive metadata down to the native document shape.
func FormatJSON(puzzle *models.Puzzle) *Document {
	return &Document{Grid: puzzle.Grid, Words: puzzle.Words}
}

// ToJSON renders the native document format as indented JSON.
func ToJSON(puzzle *models.Puzzle) ([]byte, error) {
	return json.MarshalIndent(FormatJSON(puzzle), "", "  ")
}

// FromJSON parses the native document format, round-tripping ToJSON's
// output back into grid and word list.
func FromJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
