package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crossgen/crossword/pkg/dictionary"
	"github.com/crossgen/crossword/pkg/grid"
	"github.com/crossgen/crossword/pkg/output"
	"github.com/spf13/cobra"
)

var (
	validateInput      string
	validateDictionary string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate generated puzzle documents",
	Long: `Validate one or more generated puzzle documents for Dictionary closure:
every maximal run on the grid must be a dictionary word, and the document's
word list must match exactly what the grid itself yields.

Examples:
  # Validate a single document
  crossgen validate --input puzzle.json --dictionary words.txt

  # Validate every document in a directory
  crossgen validate --input ./puzzles --dictionary words.txt`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "input file or directory to validate (required)")
	validateCmd.Flags().StringVarP(&validateDictionary, "dictionary", "w", "", "dictionary file the puzzle(s) were generated against (required)")
	validateCmd.MarkFlagRequired("input")
	validateCmd.MarkFlagRequired("dictionary")
}

func runValidate(cmd *cobra.Command, args []string) error {
	if verbosity > 0 {
		fmt.Printf("Validating: %s\n", validateInput)
	}

	// gridLen is unknown ahead of the document, so load the dictionary
	// with the widest plausible window; word lengths are not re-checked
	// against the document's grid size.
	dict, err := dictionary.Load(validateDictionary, dictionary.MinWordLength+64)
	if err != nil {
		return fmt.Errorf("failed to load dictionary: %w", err)
	}

	info, err := os.Stat(validateInput)
	if err != nil {
		return fmt.Errorf("failed to access input path: %w", err)
	}

	var filesToValidate []string
	if info.IsDir() {
		files, err := filepath.Glob(filepath.Join(validateInput, "*.json"))
		if err != nil {
			return fmt.Errorf("failed to list directory: %w", err)
		}
		if len(files) == 0 {
			return fmt.Errorf("no .json files found in directory: %s", validateInput)
		}
		filesToValidate = files
	} else {
		filesToValidate = []string{validateInput}
	}

	totalFiles := len(filesToValidate)
	invalidFiles := 0
	validFiles := 0

	for _, filePath := range filesToValidate {
		if verbosity > 0 {
			fmt.Printf("\nValidating: %s\n", filePath)
		}

		errs, err := validatePuzzleFile(filePath, dict)
		if err != nil {
			fmt.Printf("ERROR %s: %v\n", filepath.Base(filePath), err)
			invalidFiles++
			continue
		}
		if len(errs) > 0 {
			fmt.Printf("INVALID %s\n", filepath.Base(filePath))
			for _, e := range errs {
				fmt.Printf("   - %s\n", e)
			}
			invalidFiles++
			continue
		}
		if verbosity > 0 {
			fmt.Printf("VALID %s\n", filepath.Base(filePath))
		}
		validFiles++
	}

	fmt.Printf("\nValidation Summary:\n")
	fmt.Printf("  Total files:   %d\n", totalFiles)
	fmt.Printf("  Valid:         %d\n", validFiles)
	fmt.Printf("  Invalid:       %d\n", invalidFiles)

	if invalidFiles > 0 {
		os.Exit(1)
	}

	return nil
}

// validatePuzzleFile checks Dictionary closure and word-list consistency
// for one native JSON document, returning a list of human-readable
// problems (empty if the document is valid).
func validatePuzzleFile(filePath string, dict *dictionary.Dictionary) ([]string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	doc, err := output.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("invalid JSON format: %w", err)
	}

	if len(doc.Grid) == 0 {
		return []string{"empty grid"}, nil
	}

	g := rebuildGrid(doc.Grid)

	var errs []string

	// Every maximal run the grid actually contains must be a dictionary
	// word (testable property 4: Validator soundness / Dictionary closure).
	found := grid.Words(g)
	for rec := range found {
		if !dict.Has(rec.Word) {
			errs = append(errs, fmt.Sprintf("run %q at (%d,%d) %s is not a dictionary word", rec.Word, rec.Origin.X, rec.Origin.Y, rec.Orientation))
		}
	}

	// The document's word list must name exactly the runs the grid yields
	// — no phantom entries, no missing ones.
	declared := make(map[grid.WordRecord]bool, len(doc.Words))
	for _, w := range doc.Words {
		rec := grid.WordRecord{
			Word:   w.Word,
			Origin: grid.Coordinate{X: w.WordOrigin[0], Y: w.WordOrigin[1]},
		}
		if w.Orientation == "v" {
			rec.Orientation = grid.Vertical
		} else {
			rec.Orientation = grid.Horizontal
		}
		declared[rec] = true
		if _, ok := found[rec]; !ok {
			errs = append(errs, fmt.Sprintf("declared word %q at (%d,%d) %s has no matching grid run", w.Word, w.WordOrigin[0], w.WordOrigin[1], w.Orientation))
		}
	}
	for rec := range found {
		if !declared[rec] {
			errs = append(errs, fmt.Sprintf("grid run %q at (%d,%d) %s is undeclared", rec.Word, rec.Origin.X, rec.Origin.Y, rec.Orientation))
		}
	}

	return errs, nil
}

// rebuildGrid reconstructs a *grid.Grid from the native document's letter
// matrix, for re-scanning with grid.Words.
func rebuildGrid(letters [][]*string) *grid.Grid {
	size := len(letters)
	g := grid.New(size)
	for y, row := range letters {
		for x, cell := range row {
			if cell == nil || *cell == "" {
				continue
			}
			g.Write(x, y, (*cell)[0])
		}
	}
	return g
}
