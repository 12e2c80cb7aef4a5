package driven

import (
	"context"
	"time"
)

// DistributedLock serializes provider switches across instances that share
// one credential store. A single instance does not need one.
type DistributedLock interface {
	// Acquire attempts to take the named lock for ttl.
	// Returns false if another instance holds it.
	Acquire(ctx context.Context, name string, ttl time.Duration) (acquired bool, err error)

	// Release drops the lock if this instance holds it. Safe to call after expiry.
	Release(ctx context.Context, name string) error
}
