package output

import (
	"encoding/json"
	"fmt"

	"github.com/crossgen/crossword/internal/models"
)

// IPuzDimensions carries the puzzle's width and height.
type IPuzDimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IPuzClue is one clue entry: a [number, hint] pair.
type IPuzClue []interface{}

// IPuzClues groups clues by direction.
type IPuzClues struct {
	Across []IPuzClue `json:"Across"`
	Down   []IPuzClue `json:"Down"`
}

// IPuzPuzzle is the complete ipuz document. See http://ipuz.org/crossword.
type IPuzPuzzle struct {
	Version    string          `json:"version"`
	Kind       []string        `json:"kind"`
	Dimensions IPuzDimensions  `json:"dimensions"`
	Puzzle     [][]interface{} `json:"puzzle"`
	Solution   [][]interface{} `json:"solution"`
	Clues      IPuzClues       `json:"clues"`
}

// FormatIPuz converts an archive Puzzle into ipuz form, numbering cells the
// standard crossword way (§ numbering.go) since the native document has no
// numbers of its own.
func FormatIPuz(puzzle *models.Puzzle) (*IPuzPuzzle, error) {
	if puzzle == nil {
		return nil, fmt.Errorf("puzzle cannot be nil")
	}
	if puzzle.GridLen <= 0 {
		return nil, fmt.Errorf("invalid grid length: %d", puzzle.GridLen)
	}
	if len(puzzle.Grid) != puzzle.GridLen {
		return nil, fmt.Errorf("grid height mismatch: expected %d, got %d", puzzle.GridLen, len(puzzle.Grid))
	}

	numbers := number(puzzle.Grid)

	puzzleGrid := make([][]interface{}, puzzle.GridLen)
	solutionGrid := make([][]interface{}, puzzle.GridLen)
	for y := 0; y < puzzle.GridLen; y++ {
		if len(puzzle.Grid[y]) != puzzle.GridLen {
			return nil, fmt.Errorf("grid width mismatch at row %d: expected %d, got %d", y, puzzle.GridLen, len(puzzle.Grid[y]))
		}
		puzzleGrid[y] = make([]interface{}, puzzle.GridLen)
		solutionGrid[y] = make([]interface{}, puzzle.GridLen)
		for x := 0; x < puzzle.GridLen; x++ {
			cell := puzzle.Grid[y][x]
			if cell == nil {
				puzzleGrid[y][x] = "#"
				solutionGrid[y][x] = "#"
				continue
			}
			solutionGrid[y][x] = *cell
			if num, ok := numbers[[2]int{x, y}]; ok {
				puzzleGrid[y][x] = num
			} else {
				puzzleGrid[y][x] = 0
			}
		}
	}

	var across, down []IPuzClue
	for _, w := range puzzle.Words {
		num := clueNumber(numbers, w)
		clue := IPuzClue{num, w.Hint}
		if w.Orientation == "h" {
			across = append(across, clue)
		} else {
			down = append(down, clue)
		}
	}

	return &IPuzPuzzle{
		Version:    "http://ipuz.org/v2",
		Kind:       []string{"http://ipuz.org/crossword#1"},
		Dimensions: IPuzDimensions{Width: puzzle.GridLen, Height: puzzle.GridLen},
		Puzzle:     puzzleGrid,
		Solution:   solutionGrid,
		Clues:      IPuzClues{Across: across, Down: down},
	}, nil
}

// ToIPuz renders the ipuz form as indented JSON.
func ToIPuz(puzzle *models.Puzzle) ([]byte, error) {
	ipuz, err := FormatIPuz(puzzle)
	if err != nil {
		return nil, err
	}
	return json.MarshalIndent(ipuz, "", "  ")
}

// FromIPuz parses an ipuz document back into an archive Puzzle, re-deriving
// each word's text by walking the solution grid from its clue's origin.
func FromIPuz(data []byte) (*models.Puzzle, error) {
	var doc IPuzPuzzle
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse ipuz: %w", err)
	}

	size := doc.Dimensions.Height
	grid := make([][]*string, size)
	cellByNumber := make(map[int][2]int)

	for y := 0; y < size; y++ {
		grid[y] = make([]*string, doc.Dimensions.Width)
		for x := 0; x < doc.Dimensions.Width; x++ {
			if y < len(doc.Solution) && x < len(doc.Solution[y]) {
				if sol, ok := doc.Solution[y][x].(string); ok && sol != "#" {
					letter := sol
					grid[y][x] = &letter
				}
			}
			if y < len(doc.Puzzle) && x < len(doc.Puzzle[y]) {
				if num, ok := doc.Puzzle[y][x].(float64); ok && num > 0 {
					cellByNumber[int(num)] = [2]int{x, y}
				}
			}
		}
	}

	readWord := func(origin [2]int, dx, dy int) string {
		var letters []byte
		x, y := origin[0], origin[1]
		for x >= 0 && x < len(grid[0]) && y >= 0 && y < size && grid[y][x] != nil {
			letters = append(letters, (*grid[y][x])[0])
			x += dx
			y += dy
		}
		return string(letters)
	}

	var words []models.WordEntry
	for _, c := range doc.Clues.Across {
		words = append(words, ipuzClueToEntry(c, cellByNumber, readWord, 1, 0, "h"))
	}
	for _, c := range doc.Clues.Down {
		words = append(words, ipuzClueToEntry(c, cellByNumber, readWord, 0, 1, "v"))
	}

	return &models.Puzzle{
		GridLen: size,
		Grid:    grid,
		Words:   words,
		Status:  models.StatusReady,
	}, nil
}

func ipuzClueToEntry(c IPuzClue, cellByNumber map[int][2]int, readWord func([2]int, int, int) string, dx, dy int, orientation string) models.WordEntry {
	var entry models.WordEntry
	if len(c) < 2 {
		return entry
	}
	num, _ := c[0].(float64)
	hint, _ := c[1].(string)
	origin := cellByNumber[int(num)]

	entry.WordOrigin = origin
	entry.Orientation = orientation
	entry.Hint = hint
	entry.Word = readWord(origin, dx, dy)
	return entry
}
