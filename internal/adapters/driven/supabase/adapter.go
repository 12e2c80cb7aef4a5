// Package supabase implements driven.DatabaseService against a hosted
// Supabase project: PostgREST for tables and functions, GoTrue for auth,
// the Storage API for objects and Realtime for change subscriptions.
package supabase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/freelancer-hub/internal/adapters/driven/querykit"
	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DatabaseService = (*Adapter)(nil)

const defaultTimeout = 30 * time.Second

// Adapter is the Supabase implementation of driven.DatabaseService.
// The restricted client uses the anon key (or the signed-in user's token);
// the elevated client exists only when a service role key was supplied.
type Adapter struct {
	url        string
	anonKey    string
	httpClient *http.Client
	restricted *client
	elevated   *client
	logger     *slog.Logger

	*querykit.CRUD

	session atomic.Pointer[domain.AuthSession]

	subsMu sync.Mutex
	subs   map[string]*subscription
}

// Option configures an Adapter
type Option func(*options)

type options struct {
	httpClient       *http.Client
	logger           *slog.Logger
	batchConcurrency int
}

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithBatchConcurrency bounds parallel requests in batch operations
func WithBatchConcurrency(n int) Option {
	return func(o *options) { o.batchConcurrency = n }
}

// New creates an adapter for the project described by creds.
// An empty URL or anon key, a non-http(s) URL, or a service role key in the
// anon slot fails construction.
func New(creds domain.SupabaseCredentials, opts ...Option) (*Adapter, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: defaultTimeout}
	}

	projectURL, err := normaliseURL(creds.URL)
	if err != nil {
		return nil, err
	}
	anonKey := strings.TrimSpace(creds.AnonKey)
	if anonKey == "" {
		return nil, fmt.Errorf("%w: supabase.anon_key", domain.ErrMissingCredentials)
	}
	// Opaque test keys are allowed; only a key that is provably elevated is refused
	if info, err := InspectKey(anonKey); err == nil && info.Elevated() {
		return nil, fmt.Errorf("%w: the anon key slot holds a %s key", domain.ErrInvalidInput, info.Role)
	}

	a := &Adapter{
		url:        projectURL,
		anonKey:    anonKey,
		httpClient: o.httpClient,
		logger:     o.logger.With("provider", domain.ProviderKindSupabase),
		subs:       make(map[string]*subscription),
	}

	a.restricted = newClient(projectURL, anonKey, o.httpClient)
	a.restricted.bearer = a.userToken

	if serviceKey := strings.TrimSpace(creds.ServiceRoleKey); serviceKey != "" {
		a.elevated = newClient(projectURL, serviceKey, o.httpClient)
	}

	a.CRUD = querykit.New(a, querykit.WithBatchConcurrency(o.batchConcurrency))
	return a, nil
}

// normaliseURL requires an absolute http(s) URL and strips trailing slashes
func normaliseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: supabase.url", domain.ErrMissingCredentials)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: supabase url must be an absolute http(s) URL, got %q", domain.ErrInvalidInput, raw)
	}
	return strings.TrimRight(u.Scheme+"://"+u.Host+u.Path, "/"), nil
}

// Kind returns the provider kind
func (a *Adapter) Kind() domain.ProviderKind {
	return domain.ProviderKindSupabase
}


// Table returns a restricted query builder
func (a *Adapter) Table(name string) driven.TableQuery {
	return newTableQuery(a.restricted, name, domain.PrivilegeRestricted, false)
}

// TableAs returns a query builder for privilege. Without a service role key
// an elevated request is downgraded to restricted, logged, and reported by
// the query's Downgraded method.
func (a *Adapter) TableAs(name string, privilege domain.Privilege) driven.TableQuery {
	c, downgraded := a.clientFor(privilege, name)
	if c == a.elevated {
		return newTableQuery(c, name, domain.PrivilegeElevated, false)
	}
	return newTableQuery(c, name, domain.PrivilegeRestricted, downgraded)
}

// clientFor picks the client for privilege; target is only used for logging
func (a *Adapter) clientFor(privilege domain.Privilege, target string) (*client, bool) {
	if privilege != domain.PrivilegeElevated {
		return a.restricted, false
	}
	if a.elevated == nil {
		a.logger.Warn("elevated access requested without a service role key, using restricted credential",
			"target", target)
		return a.restricted, true
	}
	return a.elevated, false
}

// Storage returns the Storage API namespace, authorized like restricted queries
func (a *Adapter) Storage() driven.Storage {
	return &storage{client: a.restricted}
}

// HasElevatedAccess reports whether a service role key was supplied
func (a *Adapter) HasElevatedAccess() bool {
	return a.elevated != nil
}

// HealthCheck verifies the anon key looks like a usable project key and
// that the REST endpoint accepts it
func (a *Adapter) HealthCheck(ctx context.Context) error {
	info, err := InspectKey(a.anonKey)
	if err != nil {
		return fmt.Errorf("anon key: %w", err)
	}
	if info.Elevated() {
		return fmt.Errorf("%w: anon key has role %s", domain.ErrInvalidInput, info.Role)
	}
	if info.Expired(time.Now()) {
		return fmt.Errorf("%w: anon key expired at %s", domain.ErrUnauthorized, info.ExpiresAt.Format(time.RFC3339))
	}

	if err := a.restricted.do(ctx, request{method: http.MethodGet, path: restPath + "/", token: a.anonKey}, nil); err != nil {
		return fmt.Errorf("health check: %w", err)
	}
	return nil
}

// Close stops every subscription and releases idle connections
func (a *Adapter) Close() error {
	a.subsMu.Lock()
	subs := make([]*subscription, 0, len(a.subs))
	for _, s := range a.subs {
		subs = append(subs, s)
	}
	a.subsMu.Unlock()

	for _, s := range subs {
		s.unsubscribe()
	}
	a.httpClient.CloseIdleConnections()
	return nil
}
