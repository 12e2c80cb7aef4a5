package driven

import (
	"context"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

// AdapterFactory builds DatabaseService adapters from credentials
type AdapterFactory interface {
	// Create validates credentials and builds the adapter for their kind.
	// Kinds without an adapter fail with domain.ErrProviderNotSupported.
	Create(ctx context.Context, creds domain.ProviderCredentials) (DatabaseService, error)

	// Providers describes every declared kind and whether it is available
	Providers() []domain.ProviderInfo
}
