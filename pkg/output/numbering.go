package output

import "github.com/crossgen/crossword/internal/models"

// number assigns standard crossword numbering to a generated document: scan
// the grid in reading order and number every occupied cell that starts an
// across or down run of length >= 2. Returns origin -> number.
func number(grid [][]*string) map[[2]int]int {
	height := len(grid)
	numbers := make(map[[2]int]int)
	next := 1

	occupied := func(x, y int) bool {
		if y < 0 || y >= height || x < 0 || x >= len(grid[y]) {
			return false
		}
		return grid[y][x] != nil
	}

	for y := 0; y < height; y++ {
		for x := 0; x < len(grid[y]); x++ {
			if !occupied(x, y) {
				continue
			}
			startsAcross := !occupied(x-1, y) && occupied(x+1, y)
			startsDown := !occupied(x, y-1) && occupied(x, y+1)
			if startsAcross || startsDown {
				numbers[[2]int{x, y}] = next
				next++
			}
		}
	}

	return numbers
}

// clueNumber looks up the crossword number for a word's origin, falling
// back to 0 if the cell was never numbered (shouldn't happen for any
// length->=2 run, but callers must not index out of range on it).
func clueNumber(numbers map[[2]int]int, entry models.WordEntry) int {
	return numbers[entry.WordOrigin]
}
