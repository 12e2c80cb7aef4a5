package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.SecretBackend = (*SecretBackend)(nil)

const (
	// Key prefixes for Redis
	secretPrefix   = "fh:secret:"
	secretIndexKey = "fh:secrets"
)

// SecretBackend implements driven.SecretBackend using Redis.
// Instances sharing one Redis see the same stored provider.
type SecretBackend struct {
	client *redis.Client
}

// NewSecretBackend creates a new Redis-backed SecretBackend
func NewSecretBackend(client *redis.Client) *SecretBackend {
	return &SecretBackend{client: client}
}

// Set stores the value and records the key in the index set
func (b *SecretBackend) Set(ctx context.Context, key, value string) error {
	pipe := b.client.TxPipeline()
	pipe.Set(ctx, secretPrefix+key, value, 0)
	pipe.SAdd(ctx, secretIndexKey, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save secret: %w", err)
	}
	return nil
}

// Get retrieves a value by key
func (b *SecretBackend) Get(ctx context.Context, key string) (string, error) {
	value, err := b.client.Get(ctx, secretPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", driven.ErrSecretNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get secret: %w", err)
	}
	return value, nil
}

// Delete removes a value and its index entry
func (b *SecretBackend) Delete(ctx context.Context, key string) error {
	pipe := b.client.TxPipeline()
	pipe.Del(ctx, secretPrefix+key)
	pipe.SRem(ctx, secretIndexKey, key)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete secret: %w", err)
	}
	return nil
}

// keys lists every stored key
func (b *SecretBackend) keys(ctx context.Context) ([]string, error) {
	keys, err := b.client.SMembers(ctx, secretIndexKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list secrets: %w", err)
	}
	return keys, nil
}

func (b *SecretBackend) Name() string {
	return "redis"
}
