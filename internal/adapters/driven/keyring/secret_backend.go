package keyring

import (
	"context"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// DefaultService is the keyring service name entries are filed under
const DefaultService = "freelancer-hub"

// Verify interface compliance
var _ driven.SecretBackend = (*SecretBackend)(nil)

// SecretBackend stores secrets in the OS keychain via go-keyring.
// go-keyring calls are not cancellable; ctx is only checked before each call.
type SecretBackend struct {
	service string
}

// NewSecretBackend creates a backend filing entries under service
func NewSecretBackend(service string) *SecretBackend {
	if service == "" {
		service = DefaultService
	}
	return &SecretBackend{service: service}
}

func (b *SecretBackend) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := keyring.Set(b.service, key, value); err != nil {
		return fmt.Errorf("keyring: set %s: %w", key, err)
	}
	return nil
}

func (b *SecretBackend) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	value, err := keyring.Get(b.service, key)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", driven.ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("keyring: get %s: %w", key, err)
	}
	return value, nil
}

func (b *SecretBackend) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := keyring.Delete(b.service, key)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring: delete %s: %w", key, err)
	}
	return nil
}

func (b *SecretBackend) Name() string {
	return "keyring"
}
