// Package sqlite persists the analytics log as one versioned blob row in a
// local SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/sikte/internal/analytics"
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// logKey is the single durable key the whole log lives under.
const logKey = "analytics_log"

// Repository stores the serialized log under one key. Each save replaces the
// full blob inside a transaction, so readers never observe a partial append.
type Repository struct {
	db *sql.DB
}

// Open opens the database file, creating directories and schema as needed.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// OpenInMemory opens a throwaway in-memory database.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:?cache=shared")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	repo := &Repository{db: db}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}

func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`PRAGMA journal_mode = WAL;`,
		`CREATE TABLE IF NOT EXISTS analytics_log (
			key TEXT PRIMARY KEY,
			version TEXT NOT NULL,
			payload TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// Save replaces the stored log blob.
func (r *Repository) Save(ctx context.Context, log analytics.Log) error {
	encoded, err := json.Marshal(log)
	if err != nil {
		return fmt.Errorf("encode log json: %w", err)
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save tx: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO analytics_log (key, version, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, logKey, analytics.LogVersion, string(encoded), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("save log row: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit log row: %w", err)
	}
	return nil
}

// Load reads the stored log blob. A missing row is not an error.
func (r *Repository) Load(ctx context.Context) (analytics.Log, bool, error) {
	var (
		version string
		payload string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT version, payload FROM analytics_log WHERE key = ?`, logKey,
	).Scan(&version, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return analytics.Log{}, false, nil
	}
	if err != nil {
		return analytics.Log{}, false, fmt.Errorf("read log row: %w", err)
	}
	if version != analytics.LogVersion {
		return analytics.Log{}, false, fmt.Errorf("%w: %q", analytics.ErrUnsupportedVersion, version)
	}
	var log analytics.Log
	if err := json.Unmarshal([]byte(payload), &log); err != nil {
		return analytics.Log{}, false, fmt.Errorf("decode log json: %w", err)
	}
	return log, true, nil
}
