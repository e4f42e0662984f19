// Package generator implements the stochastic, pivot-driven search that
// builds a crossword grid: seed a word, then repeatedly pick an occupied
// pivot cell, sample a crossing word from the Dictionary Index, and
// attempt to place it, until the target word count is reached or the time
// budget expires.
package generator

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/crossgen/crossword/pkg/grid"
	"github.com/crossgen/crossword/pkg/index"
)

// ErrSeedFailed is returned if no seed word could be placed after
// MaxSeedAttempts tries (e.g. every dictionary word is too long for the
// grid). This implementation resamples rather than placing off-grid — see
// DESIGN.md.
var ErrSeedFailed = errors.New("generator: failed to place a seed word")

// MaxSeedAttempts bounds seed resampling so a pathological dictionary (all
// words too long for the grid) fails loudly instead of looping forever.
const MaxSeedAttempts = 200

// Dictionary is the read-only word source the loop seeds from and
// validates placements against.
type Dictionary interface {
	Words() []string
	Has(word string) bool
}

// Progress is emitted after every successful placement, letting a caller
// (e.g. internal/realtime) observe an in-flight build without touching
// the loop's internals.
type Progress struct {
	WordCount int
	Elapsed   time.Duration
	Word      string
}

// Config holds the Generator Loop's inputs: the grid size and target word
// count, a time budget, a deterministic seed, and the dictionary/index it
// draws placements from.
type Config struct {
	GridLen    int
	NWords     int
	Budget     time.Duration
	Seed       int64 // 0 selects a nondeterministic seed
	Index      *index.Index
	Dict       Dictionary
	OnProgress func(Progress)
}

// Generate runs the loop to completion (word-count target reached or time
// budget expired) and returns the committed grid. Cancelling ctx stops the
// loop early, surfacing ctx.Err().
func Generate(ctx context.Context, cfg Config) (*grid.Grid, error) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	g := grid.New(cfg.GridLen)
	if err := seedGrid(g, cfg.Dict, cfg.GridLen, rng); err != nil {
		return nil, err
	}
	if cfg.OnProgress != nil {
		cfg.OnProgress(Progress{WordCount: len(grid.Words(g)), Elapsed: 0})
	}

	start := time.Now()
	for {
		select {
		case <-ctx.Done():
			return g, ctx.Err()
		default:
		}

		if cfg.Budget > 0 && time.Since(start) > cfg.Budget {
			return g, nil
		}

		pivot, err := g.PickRandomOccupied(rng)
		if err != nil {
			return nil, fmt.Errorf("generator: %w", err)
		}

		flow := g.Flow(pivot.X, pivot.Y)
		if flow == grid.FlowCrossed {
			continue
		}

		var orientation grid.Orientation
		switch flow {
		case grid.FlowHorizontal:
			orientation = grid.Vertical
		case grid.FlowVertical:
			orientation = grid.Horizontal
		default:
			// FlowNone shouldn't happen for an occupied cell, but treat it
			// as either axis being free to try.
			orientation = grid.Horizontal
		}

		letter, _, err := g.Read(pivot.X, pivot.Y)
		if err != nil {
			continue
		}

		entry, err := cfg.Index.Sample(letter, rng)
		if err != nil {
			continue // no candidate: try again
		}

		origin := shiftBack(pivot, orientation, entry.Pos)
		if err := grid.Place(g, cfg.Dict, origin, orientation, entry.Word); err != nil {
			continue // invalid placement: discard and continue
		}

		count := len(grid.Words(g))
		if cfg.OnProgress != nil {
			cfg.OnProgress(Progress{WordCount: count, Elapsed: time.Since(start), Word: entry.Word})
		}
		if count >= cfg.NWords {
			return g, nil
		}
	}
}

// shiftBack computes the origin of a word whose letter at position pos
// lands on pivot.
func shiftBack(pivot grid.Coordinate, orientation grid.Orientation, pos int) grid.Coordinate {
	if orientation == grid.Horizontal {
		return grid.Coordinate{X: pivot.X - pos, Y: pivot.Y}
	}
	return grid.Coordinate{X: pivot.X, Y: pivot.Y - pos}
}

// seedGrid places a uniform-random word horizontally at (3, gridLen/2). If
// the seed word's horizontal extent would run off the grid, or placement
// otherwise fails, a fresh seed word is resampled up to MaxSeedAttempts
// times.
func seedGrid(g *grid.Grid, dict Dictionary, gridLen int, rng *rand.Rand) error {
	words := dict.Words()
	if len(words) == 0 {
		return fmt.Errorf("generator: empty dictionary")
	}

	origin := grid.Coordinate{X: 3, Y: gridLen / 2}
	for attempt := 0; attempt < MaxSeedAttempts; attempt++ {
		word := words[rng.Intn(len(words))]
		if origin.X+len(word) > gridLen {
			continue
		}
		if err := grid.Place(g, dict, origin, grid.Horizontal, word); err == nil {
			return nil
		}
	}
	return ErrSeedFailed
}
