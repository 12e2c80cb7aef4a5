package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// setupTestDB connects to TEST_DATABASE_URL or skips the test
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := Connect(ctx, DefaultConfig(url))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		t.Fatalf("InitSchema: %v", err)
	}
	t.Cleanup(func() {
		_, _ = db.ExecContext(context.Background(), `DELETE FROM credential_secrets WHERE key LIKE 'test_%'`)
		db.Close()
	})
	return db
}

func TestSecretBackend_RoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	b := NewSecretBackend(db.DB)

	if err := b.Set(ctx, "test_supabase_url", "first"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := b.Set(ctx, "test_supabase_url", "second"); err != nil {
		t.Fatalf("Set (upsert): %v", err)
	}

	got, err := b.Get(ctx, "test_supabase_url")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "second" {
		t.Errorf("expected upserted value, got %q", got)
	}

	if err := b.Delete(ctx, "test_supabase_url"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := b.Get(ctx, "test_supabase_url"); !errors.Is(err, driven.ErrSecretNotFound) {
		t.Errorf("expected ErrSecretNotFound, got %v", err)
	}
}

func TestAdvisoryLock(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	lock1 := NewAdvisoryLock(db)
	lock2 := NewAdvisoryLock(db)

	if ok, err := lock1.Acquire(ctx, "test-switch", time.Minute); err != nil || !ok {
		t.Fatalf("expected acquire, got %v (%v)", ok, err)
	}
	if ok, _ := lock2.Acquire(ctx, "test-switch", time.Minute); ok {
		t.Error("expected second holder to be refused")
	}
	if err := lock1.Release(ctx, "test-switch"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if ok, _ := lock2.Acquire(ctx, "test-switch", time.Minute); !ok {
		t.Error("expected acquire after release")
	}
	_ = lock2.Release(ctx, "test-switch")
}

func TestHashLockName(t *testing.T) {
	if hashLockName("provider-switch") != hashLockName("provider-switch") {
		t.Error("expected stable hash")
	}
	if hashLockName("a") == hashLockName("b") {
		t.Error("expected distinct hashes")
	}
}
