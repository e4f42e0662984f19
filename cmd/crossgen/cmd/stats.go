package cmd

import (
	"database/sql"
	"fmt"
	"os"

	_ "github.com/mattn/go-sqlite3"
	"github.com/spf13/cobra"
)

var (
	statsDB string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Display hint cache statistics",
	Long: `Display statistics about the Hint Binder's local cache database.

Shows information about:
  - Total cached hints
  - Hints added in the last 24 hours
  - Most recently cached words

Examples:
  # Show stats for default cache location
  crossgen stats

  # Show stats for custom cache database
  crossgen stats --db /path/to/cache.db`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)

	statsCmd.Flags().StringVarP(&statsDB, "db", "d", "", "path to hint cache database (default: ./clue_cache.db)")
}

func runStats(cmd *cobra.Command, args []string) error {
	dbPath := statsDB
	if dbPath == "" {
		dbPath = "./clue_cache.db"
	}

	if verbosity > 0 {
		fmt.Printf("Reading cache database: %s\n", dbPath)
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("cache database not found at %s", dbPath)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	fmt.Printf("\nHint Cache Statistics\n")
	fmt.Printf("======================\n")
	fmt.Printf("Database: %s\n\n", dbPath)

	if err := displayTotalHints(db); err != nil {
		return err
	}
	if err := displayRecentHints(db); err != nil {
		return err
	}

	return nil
}

func displayTotalHints(db *sql.DB) error {
	var total int
	var last24h int

	if err := db.QueryRow(`SELECT COUNT(*) FROM clue_cache`).Scan(&total); err != nil {
		return fmt.Errorf("failed to count cached hints: %w", err)
	}
	if err := db.QueryRow(`SELECT COUNT(*) FROM clue_cache WHERE created_at >= datetime('now', '-1 day')`).Scan(&last24h); err != nil {
		return fmt.Errorf("failed to count recent hints: %w", err)
	}

	fmt.Println("Cache Size:")
	fmt.Println("-----------")
	fmt.Printf("  Total hints:      %d\n", total)
	fmt.Printf("  Added last 24h:   %d\n", last24h)
	fmt.Println()

	return nil
}

func displayRecentHints(db *sql.DB) error {
	fmt.Println("Most Recently Cached Words:")
	fmt.Println("---------------------------")

	rows, err := db.Query(`
		SELECT word, hint, created_at
		FROM clue_cache
		ORDER BY created_at DESC
		LIMIT 10
	`)
	if err != nil {
		return fmt.Errorf("failed to query recent hints: %w", err)
	}
	defer rows.Close()

	hasRows := false
	for rows.Next() {
		hasRows = true
		var word, hint, createdAt string
		if err := rows.Scan(&word, &hint, &createdAt); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		fmt.Printf("  %-20s %s (%s)\n", word, hint, createdAt)
	}

	if !hasRows {
		fmt.Println("  No cached hints found")
	}
	fmt.Println()

	return rows.Err()
}
