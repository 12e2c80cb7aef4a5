package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

var _ driven.DistributedLock = (*MockDistributedLock)(nil)

// MockDistributedLock is an in-process lock that records how it was used.
// Hold simulates another instance owning a lock.
type MockDistributedLock struct {
	mu      sync.Mutex
	expiry  map[string]time.Time
	foreign map[string]bool

	// AcquireErr is returned by every Acquire when set
	AcquireErr error

	Acquired int
	Released int
}

// NewMockDistributedLock creates a new MockDistributedLock
func NewMockDistributedLock() *MockDistributedLock {
	return &MockDistributedLock{
		expiry:  make(map[string]time.Time),
		foreign: make(map[string]bool),
	}
}

func (m *MockDistributedLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AcquireErr != nil {
		return false, m.AcquireErr
	}
	if m.heldLocked(name) {
		return false, nil
	}
	m.expiry[name] = time.Now().Add(ttl)
	m.Acquired++
	return true, nil
}

// Release frees a lock taken through Acquire; foreign holds survive it
func (m *MockDistributedLock) Release(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.foreign[name] {
		return nil
	}
	delete(m.expiry, name)
	m.Released++
	return nil
}

// Hold marks name as owned by another instance until Drop is called
func (m *MockDistributedLock) Hold(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.foreign[name] = true
}

// Drop ends a Hold
func (m *MockDistributedLock) Drop(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.foreign, name)
}

// IsHeld reports whether name is currently locked by anyone
func (m *MockDistributedLock) IsHeld(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.heldLocked(name)
}

func (m *MockDistributedLock) heldLocked(name string) bool {
	if m.foreign[name] {
		return true
	}
	expiry, ok := m.expiry[name]
	return ok && time.Now().Before(expiry)
}
