package output

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/crossgen/crossword/internal/models"
)

// FormatPuz converts an archive Puzzle into AcrossLite's .puz binary
// format. The generator has no notion of title/author; placeholders are
// derived from the puzzle ID so the format's required strings are present.
func FormatPuz(puzzle *models.Puzzle) ([]byte, error) {
	if puzzle.GridLen <= 0 {
		return nil, fmt.Errorf("invalid grid length: %d", puzzle.GridLen)
	}

	solution := buildSolutionString(puzzle)
	state := strings.Repeat("-", len(solution))

	title := fmt.Sprintf("Crossword %s", puzzle.ID)
	author := "crossgen"
	copyright := fmt.Sprintf("© %s", author)
	clueStrings := buildClueStrings(puzzle)

	width := byte(puzzle.GridLen)
	height := byte(puzzle.GridLen)
	numClues := uint16(len(puzzle.Words))

	buf := new(bytes.Buffer)
	if err := writeHeader(buf, width, height, numClues, solution, state); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if err := writeStrings(buf, title, author, copyright, clueStrings); err != nil {
		return nil, fmt.Errorf("failed to write strings: %w", err)
	}

	return buf.Bytes(), nil
}

func buildSolutionString(puzzle *models.Puzzle) string {
	var solution strings.Builder
	for y := 0; y < puzzle.GridLen; y++ {
		for x := 0; x < puzzle.GridLen; x++ {
			if puzzle.Grid[y][x] == nil {
				solution.WriteByte('.')
			} else {
				solution.WriteString(*puzzle.Grid[y][x])
			}
		}
	}
	return solution.String()
}

// buildClueStrings orders clues by cell number, across before down at ties,
// matching AcrossLite's expected clue ordering.
func buildClueStrings(puzzle *models.Puzzle) []string {
	numbers := number(puzzle.Grid)

	type numberedClue struct {
		number int
		hint   string
		across bool
	}

	clues := make([]numberedClue, len(puzzle.Words))
	for i, w := range puzzle.Words {
		clues[i] = numberedClue{
			number: clueNumber(numbers, w),
			hint:   w.Hint,
			across: w.Orientation == "h",
		}
	}

	sort.SliceStable(clues, func(i, j int) bool {
		if clues[i].number != clues[j].number {
			return clues[i].number < clues[j].number
		}
		return clues[i].across && !clues[j].across
	})

	texts := make([]string, len(clues))
	for i, c := range clues {
		texts[i] = c.hint
	}
	return texts
}

func writeHeader(buf *bytes.Buffer, width, height byte, numClues uint16, solution, state string) error {
	buf.WriteString("ACROSS&DOWN\x00")
	binary.Write(buf, binary.LittleEndian, uint16(0)) // global checksum placeholder
	buf.WriteString("ICHEATED")
	binary.Write(buf, binary.LittleEndian, uint16(0)) // CIB masked checksum
	for i := 0; i < 4; i++ {
		binary.Write(buf, binary.LittleEndian, uint16(0))
	}
	buf.WriteString("1.3\x00")
	binary.Write(buf, binary.LittleEndian, uint16(0)) // reserved
	binary.Write(buf, binary.LittleEndian, uint16(0)) // scrambled checksum
	buf.Write(make([]byte, 4))
	buf.WriteByte(width)
	buf.WriteByte(height)
	binary.Write(buf, binary.LittleEndian, numClues)
	binary.Write(buf, binary.LittleEndian, uint16(0x0001))
	binary.Write(buf, binary.LittleEndian, uint16(0x0000))
	buf.WriteString(solution)
	buf.WriteString(state)
	return nil
}

func writeStrings(buf *bytes.Buffer, title, author, copyright string, clues []string) error {
	buf.WriteString(title)
	buf.WriteByte(0)
	buf.WriteString(author)
	buf.WriteByte(0)
	buf.WriteString(copyright)
	buf.WriteByte(0)
	for _, clue := range clues {
		buf.WriteString(clue)
		buf.WriteByte(0)
	}
	return nil
}
