package memory

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DistributedLock = (*Lock)(nil)

// Lock is a process-local DistributedLock for single-instance deployments
type Lock struct {
	mu      sync.Mutex
	expires map[string]time.Time
	now     func() time.Time
}

// NewLock creates a process-local lock
func NewLock() *Lock {
	return &Lock{
		expires: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (l *Lock) Acquire(_ context.Context, name string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if exp, held := l.expires[name]; held && l.now().Before(exp) {
		return false, nil
	}
	l.expires[name] = l.now().Add(ttl)
	return true, nil
}

func (l *Lock) Release(_ context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.expires, name)
	return nil
}
