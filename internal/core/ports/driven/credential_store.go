package driven

import (
	"context"
	"errors"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

// ErrSecretNotFound is returned by a SecretBackend when a key does not exist
var ErrSecretNotFound = errors.New("secret not found")

// CredentialStore persists provider selection and secrets across sessions.
// Reads never fail: absent, corrupt and unreadable values all come back as not found.
type CredentialStore interface {
	// Set stores an encoded copy of value under the namespaced key
	Set(ctx context.Context, key domain.StorageKey, value string) error

	// Get returns the decoded value and true, or "" and false
	Get(ctx context.Context, key domain.StorageKey) (string, bool)

	// Remove deletes the key
	Remove(ctx context.Context, key domain.StorageKey) error

	// Clear removes every key the store knows about
	Clear(ctx context.Context) error
}

// SecretBackend is the raw key-value persistence behind a CredentialStore
type SecretBackend interface {
	Set(ctx context.Context, key, value string) error
	// Get returns ErrSecretNotFound for a missing key
	Get(ctx context.Context, key string) (string, error)
	Delete(ctx context.Context, key string) error
	Name() string // for logging
}

// SecretCodec reversibly transforms values before they reach a SecretBackend
type SecretCodec interface {
	Encode(plain string) (string, error)
	Decode(encoded string) (string, error)
	Name() string
}
