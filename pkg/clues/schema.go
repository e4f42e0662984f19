package clues

import (
	"database/sql"
	"fmt"
)

// Schema defines the SQL schema for the hint cache database. One row per
// word: the binder asks the LLM for a single hint per word, so there is no
// batching or difficulty dimension to key on.
const Schema = `
CREATE TABLE IF NOT EXISTS clue_cache (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	word TEXT NOT NULL UNIQUE,
	hint TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_clue_cache_word ON clue_cache(word);
`

// InitDB initializes the database schema. Safe to call repeatedly.
func InitDB(db *sql.DB) error {
	if db == nil {
		return fmt.Errorf("database connection is nil")
	}

	if _, err := db.Exec(Schema); err != nil {
		return fmt.Errorf("failed to initialize database schema: %w", err)
	}

	return nil
}
