package grid

// WordRecord names one committed word: its text, the leftmost-or-topmost
// cell of its run, and its orientation.
type WordRecord struct {
	Word        string
	Origin      Coordinate
	Orientation Orientation
}

// Words enumerates every maximal run of length >= 2 on the grid, in both
// orientations, keyed by (word, origin, orientation) so that the two
// starting cells a crossing produces for the same run collapse to one
// record.
func Words(g *Grid) map[WordRecord]struct{} {
	found := make(map[WordRecord]struct{})

	for y := 0; y < g.Size; y++ {
		for x := 0; x < g.Size; x++ {
			_, occupied, _ := g.Read(x, y)
			if !occupied {
				continue
			}
			for _, orientation := range [...]Orientation{Horizontal, Vertical} {
				if !runStartsHere(g, x, y, orientation) {
					continue
				}
				word := walkRun(g, x, y, orientation)
				if len(word) >= 2 {
					found[WordRecord{Word: word, Origin: Coordinate{X: x, Y: y}, Orientation: orientation}] = struct{}{}
				}
			}
		}
	}

	return found
}

// runStartsHere reports whether (x, y) is the leftmost/topmost cell of its
// run in orientation, i.e. the preceding cell is unoccupied or off-grid.
func runStartsHere(g *Grid, x, y int, orientation Orientation) bool {
	dx, dy := 1, 0
	if orientation == Vertical {
		dx, dy = 0, 1
	}
	_, occupied, err := g.Read(x-dx, y-dy)
	return err != nil || !occupied
}

// walkRun reads the maximal contiguous occupied run starting at (x, y) and
// extending in orientation until an unoccupied cell or the boundary.
func walkRun(g *Grid, x, y int, orientation Orientation) string {
	dx, dy := 1, 0
	if orientation == Vertical {
		dx, dy = 0, 1
	}

	var letters []byte
	for cx, cy := x, y; ; cx, cy = cx+dx, cy+dy {
		letter, occupied, err := g.Read(cx, cy)
		if err != nil || !occupied {
			break
		}
		letters = append(letters, letter)
	}
	return string(letters)
}
