package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

func openTestBackend(t *testing.T) (*SecretBackend, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "nested", "credentials.db")
	b, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { b.Close() })
	return b, path
}

func TestSecretBackend_RoundTrip(t *testing.T) {
	b, _ := openTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "fh_supabase_url", "one"))
	require.NoError(t, b.Set(ctx, "fh_supabase_url", "two"))

	got, err := b.Get(ctx, "fh_supabase_url")
	require.NoError(t, err)
	assert.Equal(t, "two", got)

	require.NoError(t, b.Set(ctx, "fh_empty", ""))
	got, err = b.Get(ctx, "fh_empty")
	require.NoError(t, err)
	assert.Equal(t, "", got)
}

func TestSecretBackend_NotFound(t *testing.T) {
	b, _ := openTestBackend(t)

	_, err := b.Get(context.Background(), "missing")
	assert.True(t, errors.Is(err, driven.ErrSecretNotFound))
}

func TestSecretBackend_Delete(t *testing.T) {
	b, _ := openTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "k", "v"))
	require.NoError(t, b.Delete(ctx, "k"))
	require.NoError(t, b.Delete(ctx, "k"))

	_, err := b.Get(ctx, "k")
	assert.ErrorIs(t, err, driven.ErrSecretNotFound)
}

func TestSecretBackend_SurvivesReopen(t *testing.T) {
	b, path := openTestBackend(t)
	ctx := context.Background()

	require.NoError(t, b.Set(ctx, "fh_database_provider", "c3VwYWJhc2U="))
	require.NoError(t, b.Close())

	reopened, err := Open(ctx, path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(ctx, "fh_database_provider")
	require.NoError(t, err)
	assert.Equal(t, "c3VwYWJhc2U=", got)
	assert.Equal(t, path, reopened.Path())
	assert.Equal(t, "sqlite", reopened.Name())
}
