package clues

import (
	"database/sql"
	"fmt"
)

// ClueCache provides methods for saving and retrieving cached hints.
type ClueCache struct {
	db *sql.DB
}

// NewClueCache creates a new ClueCache instance.
func NewClueCache(db *sql.DB) (*ClueCache, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}
	return &ClueCache{db: db}, nil
}

// GetClue retrieves the cached hint for word, if any.
func (c *ClueCache) GetClue(word string) (string, bool) {
	if c.db == nil {
		return "", false
	}

	var hint string
	err := c.db.QueryRow(`SELECT hint FROM clue_cache WHERE word = ?`, word).Scan(&hint)
	if err != nil {
		return "", false
	}

	return hint, true
}

// SaveClue inserts or replaces the cached hint for word.
func (c *ClueCache) SaveClue(word, hint string) error {
	if c.db == nil {
		return fmt.Errorf("database connection is nil")
	}
	if word == "" {
		return fmt.Errorf("word cannot be empty")
	}
	if hint == "" {
		return fmt.Errorf("hint cannot be empty")
	}

	_, err := c.db.Exec(`
		INSERT INTO clue_cache (word, hint) VALUES (?, ?)
		ON CONFLICT(word) DO UPDATE SET hint = excluded.hint
	`, word, hint)
	if err != nil {
		return fmt.Errorf("failed to save hint: %w", err)
	}

	return nil
}
