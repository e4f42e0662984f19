package grid

// ErrInvalidPlacement is the single error surfaced for all of phase 1/2's
// rejection reasons (out-of-bounds, letter mismatch, bad perpendicular
// word, parallel overrun). The Generator Loop treats all of them
// identically: discard the candidate and try again. The Message field
// distinguishes the reason for diagnostics only; callers must not branch
// on it.
type ErrInvalidPlacement struct {
	Message string
}

func (e *ErrInvalidPlacement) Error() string {
	return "grid: invalid placement: " + e.Message
}

func invalid(msg string) error {
	return &ErrInvalidPlacement{Message: msg}
}

// Dictionary is the read-only word membership check the Validator
// consults for perpendicular runs; a parallel overrun is rejected without
// a lookup. Satisfied by *dictionary.Dictionary.
type Dictionary interface {
	Has(word string) bool
}

// Place attempts to commit word to the grid starting at origin, running
// right (Horizontal) or down (Vertical). On success the grid is mutated
// and every cell's flow tag reflects the placement; on failure the grid is
// left completely unchanged.
//
// Phase 1 (cell compatibility + perpendicular check) and phase 2 (parallel
// extension check) are validation-only and never mutate g; phase 3 commits.
func Place(g *Grid, dict Dictionary, origin Coordinate, orientation Orientation, word string) error {
	if len(word) < 2 {
		return invalid("word too short")
	}

	cells := make([]Coordinate, len(word))
	for i := range word {
		if orientation == Horizontal {
			cells[i] = Coordinate{X: origin.X + i, Y: origin.Y}
		} else {
			cells[i] = Coordinate{X: origin.X, Y: origin.Y + i}
		}
	}

	// Phase 1: cell-wise compatibility and perpendicular-word check.
	for i, cell := range cells {
		letter := word[i]

		existingLetter, occupied, err := g.Read(cell.X, cell.Y)
		if err != nil {
			return invalid("out of bounds")
		}
		if occupied && existingLetter != letter {
			return invalid("letter mismatch")
		}

		perp := perpendicularRun(g, cell, orientation, letter)
		if len(perp) >= 2 && !dict.Has(perp) {
			return invalid("perpendicular run not a word: " + perp)
		}
	}

	// Phase 2: parallel-extension check — the candidate must not be a
	// strict substring of a longer run along its own axis.
	parallel := parallelRun(g, origin, orientation, word)
	if len(parallel) > len(word) {
		return invalid("parallel run overruns word: " + parallel)
	}

	// Phase 3: commit.
	for i, cell := range cells {
		letter := word[i]
		_, occupied, _ := g.Read(cell.X, cell.Y)
		if !occupied {
			g.Write(cell.X, cell.Y, letter)
		}
		g.SetFlow(cell.X, cell.Y, orientation)
	}

	return nil
}

// perpendicularRun assembles the run crossing cell in the axis
// perpendicular to orientation, treating letter as the virtual filler at
// cell even when cell is not yet occupied. It walks outward until an
// unoccupied cell or the grid boundary terminates each side.
func perpendicularRun(g *Grid, cell Coordinate, orientation Orientation, letter byte) string {
	dx, dy := 0, 1
	if orientation == Vertical {
		dx, dy = 1, 0
	}

	var before []byte
	for x, y := cell.X-dx, cell.Y-dy; ; x, y = x-dx, y-dy {
		l, occupied, err := g.Read(x, y)
		if err != nil || !occupied {
			break
		}
		before = append(before, l)
	}
	reverse(before)

	var after []byte
	for x, y := cell.X+dx, cell.Y+dy; ; x, y = x+dx, y+dy {
		l, occupied, err := g.Read(x, y)
		if err != nil || !occupied {
			break
		}
		after = append(after, l)
	}

	run := make([]byte, 0, len(before)+1+len(after))
	run = append(run, before...)
	run = append(run, letter)
	run = append(run, after...)
	return string(run)
}

// parallelRun assembles the run along orientation that the candidate word
// would belong to once committed: existing cells immediately before
// origin, the candidate word itself, and existing cells immediately after
// its end.
func parallelRun(g *Grid, origin Coordinate, orientation Orientation, word string) string {
	dx, dy := 1, 0
	if orientation == Vertical {
		dx, dy = 0, 1
	}

	var before []byte
	for x, y := origin.X-dx, origin.Y-dy; ; x, y = x-dx, y-dy {
		l, occupied, err := g.Read(x, y)
		if err != nil || !occupied {
			break
		}
		before = append(before, l)
	}
	reverse(before)

	endX, endY := origin.X+dx*len(word), origin.Y+dy*len(word)
	var after []byte
	for x, y := endX, endY; ; x, y = x+dx, y+dy {
		l, occupied, err := g.Read(x, y)
		if err != nil || !occupied {
			break
		}
		after = append(after, l)
	}

	run := make([]byte, 0, len(before)+len(word)+len(after))
	run = append(run, before...)
	run = append(run, word...)
	run = append(run, after...)
	return string(run)
}

func reverse(b []byte) {
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
}
