package redis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*Lock)(nil)

const defaultLockPrefix = "fh:lock:"

// Lock implements DistributedLock with one Redis key per lock name.
// Every acquisition writes a fresh token and Release only deletes the key while
// that token is still stored, so a holder whose TTL ran out cannot free the
// lock of whoever took it next.
type Lock struct {
	client *redis.Client
	prefix string

	mu     sync.Mutex
	tokens map[string]string
}

// LockOption configures a Lock
type LockOption func(*Lock)

// WithLockPrefix overrides the key namespace (default "fh:lock:")
func WithLockPrefix(prefix string) LockOption {
	return func(l *Lock) {
		l.prefix = prefix
	}
}

// NewLock creates a new Redis-backed distributed lock
func NewLock(client *redis.Client, opts ...LockOption) *Lock {
	l := &Lock{
		client: client,
		prefix: defaultLockPrefix,
		tokens: make(map[string]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Lock) key(name string) string {
	return l.prefix + name
}

// Acquire attempts to take the named lock with the given TTL
func (l *Lock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, fmt.Errorf("acquire lock %s: ttl must be positive", name)
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.key(name), token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if ok {
		l.mu.Lock()
		l.tokens[name] = token
		l.mu.Unlock()
	}
	return ok, nil
}

// compareAndDelete removes KEYS[1] only when it still holds ARGV[1]
var compareAndDelete = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)

// Release drops the named lock if this instance took it
func (l *Lock) Release(ctx context.Context, name string) error {
	l.mu.Lock()
	token, held := l.tokens[name]
	delete(l.tokens, name)
	l.mu.Unlock()

	if !held {
		return nil
	}

	err := compareAndDelete.Run(ctx, l.client, []string{l.key(name)}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", name, err)
	}
	return nil
}

// holder returns the token currently stored for name, or "" when free
func (l *Lock) holder(ctx context.Context, name string) (string, error) {
	token, err := l.client.Get(ctx, l.key(name)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("inspect lock %s: %w", name, err)
	}
	return token, nil
}
