package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SecretBackend = (*SecretBackend)(nil)

// SecretBackend keeps secrets in process memory. Values do not survive a restart.
type SecretBackend struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewSecretBackend creates an empty in-memory backend
func NewSecretBackend() *SecretBackend {
	return &SecretBackend{values: make(map[string]string)}
}

func (b *SecretBackend) Set(_ context.Context, key, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.values[key] = value
	return nil
}

func (b *SecretBackend) Get(_ context.Context, key string) (string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	v, ok := b.values[key]
	if !ok {
		return "", driven.ErrSecretNotFound
	}
	return v, nil
}

func (b *SecretBackend) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.values, key)
	return nil
}

func (b *SecretBackend) Name() string {
	return "memory"
}


