package driving

import (
	"context"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// ProviderService owns the single active database connection and its lifecycle
type ProviderService interface {
	// Initialize restores the connection from the credential store.
	// With nothing stored the service becomes ready but unconfigured.
	Initialize(ctx context.Context) error

	// InitializeWith builds the connection from deploy-time credentials without persisting them
	InitializeWith(ctx context.Context, creds domain.ProviderCredentials) error

	// Switch replaces the active connection. The previous connection is
	// discarded even when the switch fails.
	Switch(ctx context.Context, creds domain.ProviderCredentials) error

	// Reset clears stored credentials and drops the active connection
	Reset(ctx context.Context) error

	// TestConnection checks credentials against the backend without publishing them
	TestConnection(ctx context.Context, creds domain.ProviderCredentials) (*ConnectionTestResult, error)

	// Current returns the active adapter, or false when unconfigured
	Current() (driven.DatabaseService, bool)

	// Status returns a snapshot of the lifecycle state
	Status() domain.ConnectionStatus

	// Providers lists declared provider kinds
	Providers() []domain.ProviderInfo
}

// ConnectionTestResult reports the outcome of a connection test
type ConnectionTestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// HealthReporter exposes the last background health check of the active provider
type HealthReporter interface {
	// LastHealth returns false until a check has run against a configured provider
	LastHealth() (domain.ProviderHealth, bool)
}
