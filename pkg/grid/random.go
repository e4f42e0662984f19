package grid

import (
	"errors"
	"math/rand"
)

// ErrEmptyGrid is returned by PickRandomOccupied when no cell is occupied
// yet. Spec treats this as a programming error: it can only happen before
// the seed word is placed.
var ErrEmptyGrid = errors.New("grid: no occupied cells")

// PickRandomOccupied returns a uniformly random occupied coordinate.
func (g *Grid) PickRandomOccupied(rng *rand.Rand) (Coordinate, error) {
	var occupied []Coordinate
	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			if g.cells[y][x].Occupied {
				occupied = append(occupied, Coordinate{X: x, Y: y})
			}
		}
	}
	if len(occupied) == 0 {
		return Coordinate{}, ErrEmptyGrid
	}
	return occupied[rng.Intn(len(occupied))], nil
}
