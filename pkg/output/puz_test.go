package output

import (
	"bytes"
	"testing"

	"github.com/crossgen/crossword/internal/models"
)

func TestFormatPuz_BasicPuzzle(t *testing.T) {
	puzzle := sampleACEPuzzle()
	puzzle.ID = "test-puz-1"

	puzData, err := FormatPuz(puzzle)
	if err != nil {
		t.Fatalf("FormatPuz failed: %v", err)
	}

	if len(puzData) == 0 {
		t.Fatal("expected non-empty .puz data")
	}

	if !bytes.HasPrefix(puzData, []byte("ACROSS&DOWN\x00")) {
		t.Error("missing ACROSS&DOWN magic number")
	}

	if !bytes.Contains(puzData[0x0E:0x16], []byte("ICHEATED")) {
		t.Error("missing ICHEATED magic number")
	}

	if puzData[0x2C] != 3 {
		t.Errorf("expected width 3, got %d", puzData[0x2C])
	}
	if puzData[0x2D] != 3 {
		t.Errorf("expected height 3, got %d", puzData[0x2D])
	}

	solution := "ace" + "t.." + "e.."
	if !bytes.Contains(puzData, []byte(solution)) {
		t.Errorf("solution string %q not found in .puz data", solution)
	}

	if !bytes.Contains(puzData, []byte("Crossword test-puz-1\x00")) {
		t.Error("title not found in .puz data")
	}
	if !bytes.Contains(puzData, []byte("crossgen\x00")) {
		t.Error("author not found in .puz data")
	}

	if !bytes.Contains(puzData, []byte("Expert\x00")) {
		t.Error("clue 'Expert' not found in .puz data")
	}
	if !bytes.Contains(puzData, []byte("Consumed\x00")) {
		t.Error("clue 'Consumed' not found in .puz data")
	}
}

func TestFormatPuz_LargePuzzle(t *testing.T) {
	size := 15
	grid := make([][]*string, size)
	for y := 0; y < size; y++ {
		grid[y] = make([]*string, size)
		for x := 0; x < size; x++ {
			grid[y][x] = strPtr("a")
		}
	}
	grid[0][5] = nil
	grid[5][0] = nil

	puzzle := &models.Puzzle{
		ID:      "test-15x15",
		GridLen: size,
		Grid:    grid,
		Words: []models.WordEntry{
			{Word: "aaaaa", WordOrigin: [2]int{0, 0}, Orientation: "h", Hint: "First clue"},
		},
		Status: models.StatusReady,
	}

	puzData, err := FormatPuz(puzzle)
	if err != nil {
		t.Fatalf("FormatPuz failed: %v", err)
	}

	if puzData[0x2C] != 15 {
		t.Errorf("expected width 15, got %d", puzData[0x2C])
	}
	if puzData[0x2D] != 15 {
		t.Errorf("expected height 15, got %d", puzData[0x2D])
	}

	solutionStart := 0x34
	solutionEnd := solutionStart + 225
	if len(puzData) < solutionEnd {
		t.Fatalf("file too short, expected at least %d bytes", solutionEnd)
	}
}

func TestFormatPuz_EmptyPuzzle(t *testing.T) {
	puzzle := &models.Puzzle{
		ID:      "test-empty",
		GridLen: 1,
		Grid:    [][]*string{{nil}},
		Status:  models.StatusReady,
	}

	puzData, err := FormatPuz(puzzle)
	if err != nil {
		t.Fatalf("FormatPuz failed: %v", err)
	}

	if len(puzData) == 0 {
		t.Fatal("expected non-empty .puz data even for empty puzzle")
	}

	if puzData[0x2C] != 1 {
		t.Errorf("expected width 1, got %d", puzData[0x2C])
	}
	if puzData[0x2D] != 1 {
		t.Errorf("expected height 1, got %d", puzData[0x2D])
	}
}

func TestFormatPuz_InvalidGridLen(t *testing.T) {
	puzzle := &models.Puzzle{ID: "bad", GridLen: 0}

	if _, err := FormatPuz(puzzle); err == nil {
		t.Fatal("expected error for invalid grid length")
	}
}

func TestFormatPuz_MetadataEmbedded(t *testing.T) {
	puzzle := &models.Puzzle{
		ID:      "test-metadata",
		GridLen: 2,
		Grid:    [][]*string{{strPtr("h"), strPtr("i")}, {nil, nil}},
		Words: []models.WordEntry{
			{Word: "hi", WordOrigin: [2]int{0, 0}, Orientation: "h", Hint: "Greeting"},
		},
		Status: models.StatusReady,
	}

	puzData, err := FormatPuz(puzzle)
	if err != nil {
		t.Fatalf("FormatPuz failed: %v", err)
	}

	if !bytes.Contains(puzData, []byte("Crossword test-metadata\x00")) {
		t.Error("title not properly embedded")
	}
	if !bytes.Contains(puzData, []byte("crossgen\x00")) {
		t.Error("author not properly embedded")
	}
	if !bytes.Contains(puzData, []byte("© crossgen\x00")) {
		t.Error("copyright not properly embedded")
	}
}

func TestBuildSolutionString(t *testing.T) {
	puzzle := &models.Puzzle{
		GridLen: 2,
		Grid: [][]*string{
			{strPtr("a"), nil},
			{nil, strPtr("b")},
		},
	}

	solution := buildSolutionString(puzzle)
	expected := "a..b"

	if solution != expected {
		t.Errorf("expected solution %q, got %q", expected, solution)
	}
}

func TestBuildClueStrings(t *testing.T) {
	puzzle := sampleACEPuzzle()

	clues := buildClueStrings(puzzle)

	// numbering: (0,0) -> 1, shared by both "ace" (across) and "ate" (down).
	// Order: across before down at a tie.
	expected := []string{"Expert", "Consumed"}

	if len(clues) != len(expected) {
		t.Fatalf("expected %d clues, got %d", len(expected), len(clues))
	}
	for i, exp := range expected {
		if clues[i] != exp {
			t.Errorf("clue %d: expected %q, got %q", i, exp, clues[i])
		}
	}
}

func TestFormatPuz_SpecialCharacters(t *testing.T) {
	puzzle := &models.Puzzle{
		ID:      "test & special",
		GridLen: 1,
		Grid:    [][]*string{{strPtr("a")}},
		Words: []models.WordEntry{
			{Word: "a", WordOrigin: [2]int{0, 0}, Orientation: "h", Hint: "Letter"},
		},
		Status: models.StatusReady,
	}

	puzData, err := FormatPuz(puzzle)
	if err != nil {
		t.Fatalf("FormatPuz failed with special characters: %v", err)
	}

	if !bytes.Contains(puzData, []byte("Crossword test & special\x00")) {
		t.Error("ampersand in title not preserved")
	}
}
