package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crossgen/crossword/internal/models"
	"github.com/crossgen/crossword/pkg/clues"
	"github.com/crossgen/crossword/pkg/clues/providers"
	"github.com/crossgen/crossword/pkg/dictionary"
	"github.com/crossgen/crossword/pkg/generator"
	"github.com/crossgen/crossword/pkg/grid"
	"github.com/crossgen/crossword/pkg/index"
	"github.com/crossgen/crossword/pkg/output"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

var (
	genCount      int
	genGridLen    int
	genNWords     int
	genBudget     time.Duration
	genOutput     string
	genFormat     string
	genDictionary string
	genLLM        string
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate crossword puzzles",
	Long: `Generate one or more crossword puzzles by seeding a word and repeatedly
placing crossing words sampled from a dictionary index, then binding a hint
to every scanned word.

Examples:
  # Generate 10 puzzles in JSON format
  crossgen generate --count 10 --format json --output ./puzzles --dictionary words.txt

  # Generate a single puzzle in all formats
  crossgen generate --format all --output ./puzzle --dictionary words.txt

  # Generate using cache-only mode (no LLM API calls)
  crossgen generate --llm cache-only --count 5 --dictionary words.txt`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().IntVarP(&genCount, "count", "n", 1, "number of puzzles to generate")
	generateCmd.Flags().IntVar(&genGridLen, "grid-len", 15, "grid side length")
	generateCmd.Flags().IntVar(&genNWords, "words", 20, "target word count per puzzle")
	generateCmd.Flags().DurationVar(&genBudget, "budget", 30*time.Second, "time budget per puzzle build")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", ".", "output directory")
	generateCmd.Flags().StringVarP(&genFormat, "format", "f", "json", "output format (json, puz, ipuz, all)")
	generateCmd.Flags().StringVarP(&genDictionary, "dictionary", "w", "", "path to dictionary file, one word per line (required)")
	generateCmd.Flags().StringVarP(&genLLM, "llm", "l", "cache-only", "LLM provider (anthropic, ollama, cache-only)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	formats, err := parseFormats(genFormat)
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}

	if genDictionary == "" {
		return fmt.Errorf("--dictionary flag is required")
	}

	if verbosity > 0 {
		fmt.Printf("Loading dictionary from: %s\n", genDictionary)
	}

	dict, err := dictionary.Load(genDictionary, genGridLen)
	if err != nil {
		return fmt.Errorf("failed to load dictionary: %w", err)
	}

	if verbosity > 0 {
		fmt.Printf("Loaded %d words\n", dict.Len())
	}

	idx := index.Build(dict)

	clueGen, err := setupClueGenerator(genLLM)
	if err != nil {
		return fmt.Errorf("failed to set up clue generator: %w", err)
	}

	if err := os.MkdirAll(genOutput, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	fmt.Printf("Generating %d puzzle(s), grid %dx%d, target %d words\n", genCount, genGridLen, genGridLen, genNWords)

	for i := 1; i <= genCount; i++ {
		start := time.Now()
		fmt.Printf("[%d/%d] Generating puzzle... ", i, genCount)

		cfg := generator.Config{
			GridLen: genGridLen,
			NWords:  genNWords,
			Budget:  genBudget,
			Index:   idx,
			Dict:    dict,
		}
		if verbosity > 1 {
			cfg.OnProgress = func(p generator.Progress) {
				fmt.Printf("\n  [%d words, %v] placed %q", p.WordCount, p.Elapsed.Round(time.Millisecond), p.Word)
			}
		}

		g, err := generator.Generate(ctx, cfg)
		if err != nil {
			fmt.Printf("FAILED\n")
			return fmt.Errorf("failed to generate puzzle %d: %w", i, err)
		}

		hints, err := clueGen.GenerateHints(ctx, mapKeys(grid.Words(g)))
		if err != nil {
			fmt.Printf("FAILED\n")
			return fmt.Errorf("failed to generate hints for puzzle %d: %w", i, err)
		}

		puzzle := output.BuildDocument(g, hints, uuid.New().String())

		if err := writeOutputFiles(puzzle, genOutput, i, formats); err != nil {
			fmt.Printf("FAILED\n")
			return fmt.Errorf("failed to write output files for puzzle %d: %w", i, err)
		}

		fmt.Printf("OK (%.1fs)\n", time.Since(start).Seconds())
	}

	fmt.Printf("\nSuccessfully generated %d puzzle(s) in %s\n", genCount, genOutput)
	return nil
}

// mapKeys flattens the Word Scanner's output set into a slice for the
// Hint Binder, which needs an ordered list to iterate.
func mapKeys(words map[grid.WordRecord]struct{}) []grid.WordRecord {
	result := make([]grid.WordRecord, 0, len(words))
	for w := range words {
		result = append(result, w)
	}
	return result
}

// parseFormats converts format string to list of formats
func parseFormats(format string) ([]string, error) {
	format = strings.ToLower(format)
	if format == "all" {
		return []string{"json", "puz", "ipuz"}, nil
	}

	validFormats := map[string]bool{
		"json": true,
		"puz":  true,
		"ipuz": true,
	}

	if !validFormats[format] {
		return nil, fmt.Errorf("invalid format: %s (must be json, puz, ipuz, or all)", format)
	}

	return []string{format}, nil
}

// setupClueGenerator creates a clue generator based on the LLM provider
func setupClueGenerator(llmProvider string) (*clues.Generator, error) {
	cacheDB, err := sql.Open("sqlite3", "./clue_cache.db")
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}
	if err := clues.InitDB(cacheDB); err != nil {
		return nil, fmt.Errorf("failed to initialize cache schema: %w", err)
	}

	cache, err := clues.NewClueCache(cacheDB)
	if err != nil {
		return nil, fmt.Errorf("failed to create clue cache: %w", err)
	}

	var llmClient providers.LLMClient
	switch strings.ToLower(llmProvider) {
	case "cache-only":
		llmClient = nil
	case "anthropic":
		apiKey := os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
		llmClient, err = providers.NewAnthropicClient(providers.AnthropicConfig{
			APIKey: apiKey,
			Model:  providers.ModelHaiku,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Anthropic client: %w", err)
		}
	case "ollama":
		llmClient, err = providers.NewOllamaClient(providers.OllamaConfig{
			BaseURL: "http://localhost:11434/api/generate",
			Model:   providers.ModelLlama2,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Ollama client: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid LLM provider: %s (must be anthropic, ollama, or cache-only)", llmProvider)
	}

	return clues.NewGenerator(cache, llmClient), nil
}

// writeOutputFiles writes puzzle to disk in the specified formats
func writeOutputFiles(puz *models.Puzzle, outputDir string, puzzleNum int, formats []string) error {
	baseName := "crossword-" + puz.ID

	for _, format := range formats {
		var filePath string
		var data []byte
		var err error

		switch format {
		case "json":
			filePath = filepath.Join(outputDir, baseName+".json")
			data, err = output.ToJSON(puz)
		case "puz":
			filePath = filepath.Join(outputDir, baseName+".puz")
			data, err = output.FormatPuz(puz)
		case "ipuz":
			filePath = filepath.Join(outputDir, baseName+".ipuz")
			data, err = output.ToIPuz(puz)
		default:
			return fmt.Errorf("unsupported format: %s", format)
		}

		if err != nil {
			return fmt.Errorf("failed to format puzzle as %s: %w", format, err)
		}

		if err := os.WriteFile(filePath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s file: %w", format, err)
		}
	}

	return nil
}
