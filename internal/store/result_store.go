// Package store persists finished backtest RunResults to an embedded
// SQLite database, keyed by an opaque run id and the strategy's
// fingerprint.FullHash so repeat runs of an identical config over
// identical data can be recognized. Grounded on the teacher's
// pkg/backtester/results.go JSON export shape, adapted from a
// file-export sink to a queryable embedded store per
// original_source's leaderboard/cache usage.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ridopark/trendlab/domain"
	"github.com/ridopark/trendlab/engine/loop"
	"github.com/ridopark/trendlab/fingerprint"
)

// ResultStore owns a SQLite connection holding one row per persisted run.
type ResultStore struct {
	db *sql.DB
}

// Open creates/attaches the SQLite database at path and ensures its schema exists.
func Open(path string) (*ResultStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	const schema = `
	CREATE TABLE IF NOT EXISTS runs (
		id             TEXT PRIMARY KEY,
		config_hash    TEXT NOT NULL,
		full_hash      TEXT NOT NULL,
		schema_version INTEGER NOT NULL,
		final_equity   REAL NOT NULL,
		bar_count      INTEGER NOT NULL,
		created_at     TIMESTAMP NOT NULL,
		payload        TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_full_hash ON runs(full_hash);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &ResultStore{db: db}, nil
}

// Save persists result under a freshly minted run id, fingerprinted by
// cfg's ConfigHash/FullHash, and returns the run id.
func (s *ResultStore) Save(ctx context.Context, cfg domain.StrategyConfig, result loop.RunResult) (string, error) {
	payload, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("marshal run result: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, config_hash, full_hash, schema_version, final_equity, bar_count, created_at, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, fingerprint.ConfigHash(cfg), fingerprint.FullHash(cfg),
		result.SchemaVersion, result.FinalEquity, result.BarCount, time.Now().UTC(), payload,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Load returns the RunResult stored under runID.
func (s *ResultStore) Load(ctx context.Context, runID string) (loop.RunResult, error) {
	var payload []byte
	row := s.db.QueryRowContext(ctx, `SELECT payload FROM runs WHERE id = ?`, runID)
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return loop.RunResult{}, fmt.Errorf("run %s not found", runID)
		}
		return loop.RunResult{}, fmt.Errorf("load run %s: %w", runID, err)
	}

	var result loop.RunResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return loop.RunResult{}, fmt.Errorf("unmarshal run %s: %w", runID, err)
	}
	if result.SchemaVersion > loop.SchemaVersion {
		return loop.RunResult{}, fmt.Errorf("run %s has schema_version %d, newer than this reader's %d", runID, result.SchemaVersion, loop.SchemaVersion)
	}
	return result, nil
}

// FindByFullHash returns the most recent run id matching fullHash, if any.
func (s *ResultStore) FindByFullHash(ctx context.Context, fullHash string) (string, bool, error) {
	var id string
	row := s.db.QueryRowContext(ctx, `
		SELECT id FROM runs WHERE full_hash = ? ORDER BY created_at DESC LIMIT 1`, fullHash)
	if err := row.Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, fmt.Errorf("find run by full hash: %w", err)
	}
	return id, true, nil
}

// Close closes the underlying database connection.
func (s *ResultStore) Close() error {
	return s.db.Close()
}
