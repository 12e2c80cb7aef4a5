package providers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/custodia-labs/freelancer-hub/internal/adapters/driven/supabase"
	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// Ensure Factory implements AdapterFactory
var _ driven.AdapterFactory = (*Factory)(nil)

// constructor builds the adapter for one provider kind
type constructor func(ctx context.Context, creds domain.ProviderCredentials) (driven.DatabaseService, error)

// Factory creates database adapters keyed by provider kind
type Factory struct {
	constructors map[domain.ProviderKind]constructor
	descriptions map[domain.ProviderKind]string
	httpClient   *http.Client
	logger       *slog.Logger
}

// Option configures the factory
type Option func(*Factory)

// WithHTTPClient shares one HTTP client between adapters
func WithHTTPClient(c *http.Client) Option {
	return func(f *Factory) { f.httpClient = c }
}

// WithLogger sets the logger handed to adapters
func WithLogger(l *slog.Logger) Option {
	return func(f *Factory) { f.logger = l }
}

// NewFactory creates a new adapter factory
func NewFactory(opts ...Option) *Factory {
	f := &Factory{
		logger: slog.Default(),
		descriptions: map[domain.ProviderKind]string{
			domain.ProviderKindSupabase: "Hosted Postgres with auth, storage and realtime",
			domain.ProviderKindFirebase: "Google Firebase (Firestore, Auth, Cloud Storage)",
			domain.ProviderKindMySQL:    "Self-hosted MySQL database",
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.constructors = map[domain.ProviderKind]constructor{
		domain.ProviderKindSupabase: f.newSupabase,
		domain.ProviderKindFirebase: newFirebase,
		domain.ProviderKindMySQL:    newMySQL,
	}
	return f
}

// Create validates creds and builds the adapter for their kind
func (f *Factory) Create(ctx context.Context, creds domain.ProviderCredentials) (driven.DatabaseService, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	build, ok := f.constructors[creds.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, creds.Kind)
	}
	return build(ctx, creds)
}

// Providers describes every declared kind
func (f *Factory) Providers() []domain.ProviderInfo {
	kinds := domain.AllProviderKinds()
	infos := make([]domain.ProviderInfo, 0, len(kinds))
	for _, kind := range kinds {
		infos = append(infos, domain.ProviderInfo{
			Kind:        kind,
			Name:        kind.DisplayName(),
			Description: f.descriptions[kind],
			Available:   kind == domain.ProviderKindSupabase,
		})
	}
	return infos
}

func (f *Factory) newSupabase(_ context.Context, creds domain.ProviderCredentials) (driven.DatabaseService, error) {
	opts := []supabase.Option{supabase.WithLogger(f.logger)}
	if f.httpClient != nil {
		opts = append(opts, supabase.WithHTTPClient(f.httpClient))
	}
	return supabase.New(*creds.Supabase, opts...)
}

// Declared kinds without an adapter fail closed

func newFirebase(context.Context, domain.ProviderCredentials) (driven.DatabaseService, error) {
	return nil, fmt.Errorf("%w: firebase adapter not yet implemented", domain.ErrProviderNotSupported)
}

func newMySQL(context.Context, domain.ProviderCredentials) (driven.DatabaseService, error) {
	return nil, fmt.Errorf("%w: mysql adapter not yet implemented", domain.ErrProviderNotSupported)
}
