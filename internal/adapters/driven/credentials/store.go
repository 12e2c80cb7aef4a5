package credentials

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// DefaultPrefix namespaces every key written by the store
const DefaultPrefix = "fh_"

// Verify interface compliance
var _ driven.CredentialStore = (*ObfuscatedStore)(nil)

// ObfuscatedStore persists credentials through a SecretBackend after passing
// them through a SecretCodec. With the default codec values are only
// obfuscated, not encrypted.
type ObfuscatedStore struct {
	backend driven.SecretBackend
	codec   driven.SecretCodec
	prefix  string
	logger  *slog.Logger

	mu    sync.Mutex
	known map[domain.StorageKey]struct{}
}

// Option configures an ObfuscatedStore
type Option func(*ObfuscatedStore)

// WithCodec replaces the default base64 codec
func WithCodec(codec driven.SecretCodec) Option {
	return func(s *ObfuscatedStore) {
		s.codec = codec
	}
}

// WithPrefix replaces the default key namespace
func WithPrefix(prefix string) Option {
	return func(s *ObfuscatedStore) {
		s.prefix = prefix
	}
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *ObfuscatedStore) {
		s.logger = logger
	}
}

// NewObfuscatedStore creates a store over backend
func NewObfuscatedStore(backend driven.SecretBackend, opts ...Option) *ObfuscatedStore {
	s := &ObfuscatedStore{
		backend: backend,
		codec:   NewObfuscatingCodec(),
		prefix:  DefaultPrefix,
		logger:  slog.Default(),
		known:   make(map[domain.StorageKey]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, key := range domain.AllStorageKeys() {
		s.known[key] = struct{}{}
	}
	return s
}

// Set encodes value and writes it under the namespaced key
func (s *ObfuscatedStore) Set(ctx context.Context, key domain.StorageKey, value string) error {
	encoded, err := s.codec.Encode(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	if err := s.backend.Set(ctx, s.namespaced(key), encoded); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}

	s.mu.Lock()
	s.known[key] = struct{}{}
	s.mu.Unlock()
	return nil
}

// Get returns the decoded value. Missing, unreadable and corrupt entries are
// all reported as absent.
func (s *ObfuscatedStore) Get(ctx context.Context, key domain.StorageKey) (string, bool) {
	encoded, err := s.backend.Get(ctx, s.namespaced(key))
	if err != nil {
		if !errors.Is(err, driven.ErrSecretNotFound) {
			s.logger.Warn("credential read failed, treating as absent",
				"key", key, "backend", s.backend.Name(), "error", err)
		}
		return "", false
	}

	value, err := s.codec.Decode(encoded)
	if err != nil {
		s.logger.Debug("credential could not be decoded, treating as absent",
			"key", key, "codec", s.codec.Name(), "error", err)
		return "", false
	}
	return value, true
}

// Remove deletes the namespaced key
func (s *ObfuscatedStore) Remove(ctx context.Context, key domain.StorageKey) error {
	if err := s.backend.Delete(ctx, s.namespaced(key)); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// Clear removes every key the store knows about
func (s *ObfuscatedStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	keys := make([]domain.StorageKey, 0, len(s.known))
	for key := range s.known {
		keys = append(keys, key)
	}
	s.mu.Unlock()

	var errs []error
	for _, key := range keys {
		if err := s.Remove(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Backend returns the name of the underlying backend
func (s *ObfuscatedStore) Backend() string {
	return s.backend.Name()
}

func (s *ObfuscatedStore) namespaced(key domain.StorageKey) string {
	return s.prefix + string(key)
}
