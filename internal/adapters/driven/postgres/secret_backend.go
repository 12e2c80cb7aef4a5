package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SecretBackend = (*SecretBackend)(nil)

// SecretBackend implements driven.SecretBackend using PostgreSQL.
// One row per namespaced key.
type SecretBackend struct {
	db *sql.DB
}

// NewSecretBackend creates a new PostgreSQL-backed secret backend
func NewSecretBackend(db *sql.DB) *SecretBackend {
	return &SecretBackend{db: db}
}

// Set stores or updates a value (upsert)
func (b *SecretBackend) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO credential_secrets (key, value, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := b.db.ExecContext(ctx, query, key, value, time.Now()); err != nil {
		return fmt.Errorf("save secret: %w", err)
	}
	return nil
}

// Get retrieves a value by key
func (b *SecretBackend) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := b.db.QueryRowContext(ctx, `SELECT value FROM credential_secrets WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", driven.ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get secret: %w", err)
	}
	return value, nil
}

// Delete removes a value. Deleting a missing key is not an error.
func (b *SecretBackend) Delete(ctx context.Context, key string) error {
	if _, err := b.db.ExecContext(ctx, `DELETE FROM credential_secrets WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete secret: %w", err)
	}
	return nil
}

func (b *SecretBackend) Name() string {
	return "postgres"
}
