// Package db archives generated puzzle documents in Postgres and uses Redis
// to fan progress events out between API instances watching the same build,
// and to cache built dictionary indexes keyed by the source file's hash.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/crossgen/crossword/internal/models"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
)

type Database struct {
	DB    *sql.DB
	Redis *redis.Client
}

func New(postgresURL, redisURL string) (*Database, error) {
	db, err := sql.Open("postgres", postgresURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &Database{DB: db, Redis: rdb}, nil
}

func (d *Database) Close() error {
	if err := d.DB.Close(); err != nil {
		return err
	}
	return d.Redis.Close()
}

// InitSchema creates the puzzle archive table.
func (d *Database) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS puzzles (
		id VARCHAR(36) PRIMARY KEY,
		grid_len INTEGER NOT NULL,
		grid JSONB NOT NULL,
		words JSONB NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'building',
		error TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_puzzles_status ON puzzles(status);
	CREATE INDEX IF NOT EXISTS idx_puzzles_created_at ON puzzles(created_at);
	`

	_, err := d.DB.Exec(schema)
	return err
}

// CreatePuzzle inserts a newly triggered build in the "building" state.
func (d *Database) CreatePuzzle(puzzle *models.Puzzle) error {
	gridJSON, err := json.Marshal(puzzle.Grid)
	if err != nil {
		return err
	}
	wordsJSON, err := json.Marshal(puzzle.Words)
	if err != nil {
		return err
	}

	_, err = d.DB.Exec(`
		INSERT INTO puzzles (id, grid_len, grid, words, status, error, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, puzzle.ID, puzzle.GridLen, gridJSON, wordsJSON, puzzle.Status, puzzle.Error, puzzle.CreatedAt)
	return err
}

// GetPuzzleByID fetches a stored document by its build id. Returns (nil, nil)
// if no such build exists.
func (d *Database) GetPuzzleByID(id string) (*models.Puzzle, error) {
	puzzle := &models.Puzzle{}
	var gridJSON, wordsJSON []byte
	var errText sql.NullString

	err := d.DB.QueryRow(`
		SELECT id, grid_len, grid, words, status, error, created_at
		FROM puzzles WHERE id = $1
	`, id).Scan(&puzzle.ID, &puzzle.GridLen, &gridJSON, &wordsJSON, &puzzle.Status, &errText, &puzzle.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	puzzle.Error = errText.String

	if err := json.Unmarshal(gridJSON, &puzzle.Grid); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(wordsJSON, &puzzle.Words); err != nil {
		return nil, err
	}

	return puzzle, nil
}

// UpdatePuzzleResult records a finished (or failed) build's final document.
func (d *Database) UpdatePuzzleResult(puzzle *models.Puzzle) error {
	gridJSON, err := json.Marshal(puzzle.Grid)
	if err != nil {
		return err
	}
	wordsJSON, err := json.Marshal(puzzle.Words)
	if err != nil {
		return err
	}

	_, err = d.DB.Exec(`
		UPDATE puzzles SET grid_len = $2, grid = $3, words = $4, status = $5, error = $6
		WHERE id = $1
	`, puzzle.ID, puzzle.GridLen, gridJSON, wordsJSON, puzzle.Status, puzzle.Error)
	return err
}

// UpdatePuzzleStatus transitions a build's status without touching its
// document (used for the building -> failed transition, which has no grid).
func (d *Database) UpdatePuzzleStatus(id string, status models.PuzzleStatus, errText string) error {
	_, err := d.DB.Exec(`
		UPDATE puzzles SET status = $2, error = $3 WHERE id = $1
	`, id, status, errText)
	return err
}

// ListPuzzles returns archived builds, optionally filtered by status, newest
// first.
func (d *Database) ListPuzzles(status string, limit, offset int) ([]*models.Puzzle, error) {
	query := `
		SELECT id, grid_len, grid, words, status, error, created_at
		FROM puzzles WHERE 1=1
	`
	args := []interface{}{}
	argNum := 1

	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, status)
		argNum++
	}

	query += " ORDER BY created_at DESC"
	query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argNum, argNum+1)
	args = append(args, limit, offset)

	rows, err := d.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var puzzles []*models.Puzzle
	for rows.Next() {
		puzzle := &models.Puzzle{}
		var gridJSON, wordsJSON []byte
		var errText sql.NullString

		if err := rows.Scan(&puzzle.ID, &puzzle.GridLen, &gridJSON, &wordsJSON, &puzzle.Status, &errText, &puzzle.CreatedAt); err != nil {
			return nil, err
		}
		puzzle.Error = errText.String

		if err := json.Unmarshal(gridJSON, &puzzle.Grid); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(wordsJSON, &puzzle.Words); err != nil {
			return nil, err
		}

		puzzles = append(puzzles, puzzle)
	}

	return puzzles, nil
}

// progressChannel names the Redis pub/sub channel a build's progress events
// are fanned out on, so any API instance can serve the WebSocket regardless
// of which instance is running the build.
func progressChannel(buildID string) string {
	return "progress:" + buildID
}

// PublishProgress fans a progress event out to any subscriber watching buildID.
func (d *Database) PublishProgress(ctx context.Context, buildID string, event []byte) error {
	return d.Redis.Publish(ctx, progressChannel(buildID), event).Err()
}

// SubscribeProgress returns a subscription to buildID's progress channel.
// Callers must Close it when done.
func (d *Database) SubscribeProgress(ctx context.Context, buildID string) *redis.PubSub {
	return d.Redis.Subscribe(ctx, progressChannel(buildID))
}

// indexCacheKey namespaces a dictionary index cache entry by the source
// file's content hash, so a changed dictionary never serves a stale index.
func indexCacheKey(dictHash string) string {
	return "index:" + dictHash
}

// GetCachedIndex returns a previously stored serialized dictionary index for
// dictHash, if any.
func (d *Database) GetCachedIndex(ctx context.Context, dictHash string) ([]byte, bool, error) {
	data, err := d.Redis.Get(ctx, indexCacheKey(dictHash)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// SetCachedIndex stores a serialized dictionary index under dictHash.
func (d *Database) SetCachedIndex(ctx context.Context, dictHash string, data []byte) error {
	return d.Redis.Set(ctx, indexCacheKey(dictHash), data, 0).Err()
}
