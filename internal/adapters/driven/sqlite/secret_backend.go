package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

const defaultBusyTimeout = 5 * time.Second

// Verify interface compliance
var _ driven.SecretBackend = (*SecretBackend)(nil)

// SecretBackend stores secrets in a local SQLite file, the on-disk
// counterpart of browser-local storage.
type SecretBackend struct {
	db   *sql.DB
	path string
}

// Open creates or opens the store at path, creating parent directories
func Open(ctx context.Context, path string) (*SecretBackend, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open store: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		fmt.Sprintf("PRAGMA busy_timeout = %d", defaultBusyTimeout.Milliseconds()),
		"PRAGMA journal_mode = WAL",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite: apply %q: %w", p, err)
		}
	}

	const schema = `
		CREATE TABLE IF NOT EXISTS secrets (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: apply schema: %w", err)
	}

	return &SecretBackend{db: db, path: path}, nil
}

func (b *SecretBackend) Set(ctx context.Context, key, value string) error {
	_, err := b.db.ExecContext(ctx, `
		INSERT INTO secrets (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlite: save secret: %w", err)
	}
	return nil
}

func (b *SecretBackend) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM secrets WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", driven.ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("sqlite: get secret: %w", err)
	}
	return value, nil
}

func (b *SecretBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM secrets WHERE key = ?`, key); err != nil {
		return fmt.Errorf("sqlite: delete secret: %w", err)
	}
	return nil
}

func (b *SecretBackend) Name() string {
	return "sqlite"
}

// Path returns the database file location
func (b *SecretBackend) Path() string {
	return b.path
}

// Close closes the database
func (b *SecretBackend) Close() error {
	return b.db.Close()
}
