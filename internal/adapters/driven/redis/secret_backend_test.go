package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

func TestSecretBackend_RoundTrip(t *testing.T) {
	client, mr := setupTestRedis(t)

	ctx := context.Background()
	b := NewSecretBackend(client)

	if err := b.Set(ctx, "fh_supabase_url", "aHR0cHM6Ly94LmV4YW1wbGUv"); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := b.Get(ctx, "fh_supabase_url")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "aHR0cHM6Ly94LmV4YW1wbGUv" {
		t.Errorf("expected stored value, got %q", got)
	}

	raw, err := mr.Get(secretPrefix + "fh_supabase_url")
	if err != nil || raw != got {
		t.Errorf("expected value under prefixed key, got %q (%v)", raw, err)
	}

	keys, err := b.keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "fh_supabase_url" {
		t.Errorf("unexpected keys %v", keys)
	}
}

func TestSecretBackend_EmptyValueIsPresent(t *testing.T) {
	client, _ := setupTestRedis(t)

	ctx := context.Background()
	b := NewSecretBackend(client)

	if err := b.Set(ctx, "k", ""); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if v, err := b.Get(ctx, "k"); err != nil || v != "" {
		t.Errorf("expected empty value, got %q (%v)", v, err)
	}
}

func TestSecretBackend_NotFound(t *testing.T) {
	client, _ := setupTestRedis(t)

	ctx := context.Background()
	b := NewSecretBackend(client)

	if _, err := b.Get(ctx, "missing"); !errors.Is(err, driven.ErrSecretNotFound) {
		t.Errorf("expected ErrSecretNotFound, got %v", err)
	}
}

func TestSecretBackend_Delete(t *testing.T) {
	client, _ := setupTestRedis(t)

	ctx := context.Background()
	b := NewSecretBackend(client)

	_ = b.Set(ctx, "k", "v")
	if err := b.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := b.Get(ctx, "k"); !errors.Is(err, driven.ErrSecretNotFound) {
		t.Errorf("expected ErrSecretNotFound after delete, got %v", err)
	}
	keys, _ := b.keys(ctx)
	if len(keys) != 0 {
		t.Errorf("expected index to be empty, got %v", keys)
	}

	// Deleting a missing key is not an error
	if err := b.Delete(ctx, "never-set"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
