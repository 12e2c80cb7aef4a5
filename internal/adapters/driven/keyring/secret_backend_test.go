package keyring

import (
	"context"
	"errors"
	"testing"

	"github.com/zalando/go-keyring"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

func TestSecretBackend(t *testing.T) {
	keyring.MockInit()
	ctx := context.Background()
	b := NewSecretBackend("")

	if b.service != DefaultService {
		t.Errorf("expected default service, got %q", b.service)
	}

	if _, err := b.Get(ctx, "fh_supabase_url"); !errors.Is(err, driven.ErrSecretNotFound) {
		t.Fatalf("expected ErrSecretNotFound, got %v", err)
	}

	if err := b.Set(ctx, "fh_supabase_url", "aHR0cHM6Ly94"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	got, err := b.Get(ctx, "fh_supabase_url")
	if err != nil || got != "aHR0cHM6Ly94" {
		t.Errorf("expected stored value, got %q (%v)", got, err)
	}

	if err := b.Delete(ctx, "fh_supabase_url"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := b.Delete(ctx, "fh_supabase_url"); err != nil {
		t.Errorf("deleting a missing key should succeed, got %v", err)
	}
}

func TestSecretBackend_CancelledContext(t *testing.T) {
	keyring.MockInit()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := NewSecretBackend("test").Set(ctx, "k", "v"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
