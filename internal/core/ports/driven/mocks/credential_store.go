package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

// MockCredentialStore is an in-memory CredentialStore for testing
type MockCredentialStore struct {
	mu     sync.RWMutex
	values map[domain.StorageKey]string

	// SetErr, when non-nil, is returned by every Set
	SetErr error

	// ClearErr, when non-nil, is returned by Clear and nothing is removed
	ClearErr error
}

// NewMockCredentialStore creates a new MockCredentialStore
func NewMockCredentialStore() *MockCredentialStore {
	return &MockCredentialStore{
		values: make(map[domain.StorageKey]string),
	}
}

func (m *MockCredentialStore) Set(ctx context.Context, key domain.StorageKey, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	m.values[key] = value
	return nil
}

func (m *MockCredentialStore) Get(ctx context.Context, key domain.StorageKey) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok
}

func (m *MockCredentialStore) Remove(ctx context.Context, key domain.StorageKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

func (m *MockCredentialStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.values = make(map[domain.StorageKey]string)
	return nil
}

// Len returns the number of stored keys
func (m *MockCredentialStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.values)
}
