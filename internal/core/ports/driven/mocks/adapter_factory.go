package mocks

import (
	"context"
	"sync"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// MockAdapterFactory hands out MockDatabaseService instances
type MockAdapterFactory struct {
	mu      sync.Mutex
	created []*MockDatabaseService

	// CreateFn overrides the default behaviour when set
	CreateFn func(creds domain.ProviderCredentials) (driven.DatabaseService, error)

	// HealthErr is copied onto every created service
	HealthErr error
}

// NewMockAdapterFactory creates a new MockAdapterFactory
func NewMockAdapterFactory() *MockAdapterFactory {
	return &MockAdapterFactory{}
}

// Create validates creds and returns a fresh mock service
func (m *MockAdapterFactory) Create(ctx context.Context, creds domain.ProviderCredentials) (driven.DatabaseService, error) {
	if m.CreateFn != nil {
		return m.CreateFn(creds)
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if creds.Kind != domain.ProviderKindSupabase {
		return nil, domain.ErrProviderNotSupported
	}

	svc := NewMockDatabaseService()
	svc.Elevated = creds.HasElevated()
	svc.HealthErr = m.HealthErr

	m.mu.Lock()
	m.created = append(m.created, svc)
	m.mu.Unlock()
	return svc, nil
}

// Providers returns the declared kinds with only supabase available
func (m *MockAdapterFactory) Providers() []domain.ProviderInfo {
	var infos []domain.ProviderInfo
	for _, kind := range domain.AllProviderKinds() {
		infos = append(infos, domain.ProviderInfo{
			Kind:      kind,
			Name:      kind.DisplayName(),
			Available: kind == domain.ProviderKindSupabase,
		})
	}
	return infos
}

// Created returns every service built so far
func (m *MockAdapterFactory) Created() []*MockDatabaseService {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*MockDatabaseService(nil), m.created...)
}
