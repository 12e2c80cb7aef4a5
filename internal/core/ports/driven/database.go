package driven

import (
	"context"
	"encoding/json"
	"io"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

// DatabaseService is the uniform surface every provider adapter implements.
// Consumers depend only on this interface, never on an adapter's native client.
type DatabaseService interface {
	// Kind returns the provider kind the adapter was built for
	Kind() domain.ProviderKind

	// Table returns a query builder using the restricted credential
	Table(name string) TableQuery

	// TableAs returns a query builder for the requested privilege.
	// Requesting elevated access without an elevated credential yields a
	// restricted query whose Downgraded() reports true.
	TableAs(name string, privilege domain.Privilege) TableQuery

	// Call invokes a named server-side procedure
	Call(ctx context.Context, fn string, params any) (json.RawMessage, error)

	// CallAs invokes a procedure with the requested privilege, downgrading
	// like TableAs when no elevated credential exists
	CallAs(ctx context.Context, privilege domain.Privilege, fn string, params any) (json.RawMessage, error)

	// SignIn authenticates with email and password. Under a context from
	// domain.WithAccessToken the session is returned but not retained.
	SignIn(ctx context.Context, email, password string) (*domain.AuthSession, error)

	// SignOut ends the current auth session, or revokes the caller's token
	// under a scoped context
	SignOut(ctx context.Context) error

	// User resolves the user behind the request's access token
	User(ctx context.Context) (*domain.AuthUser, error)

	// Storage returns the object storage namespace
	Storage() Storage

	// Create inserts a record, assigning an id when absent
	Create(ctx context.Context, table string, data domain.Record) (domain.Record, error)

	// Read returns the record with id, or domain.ErrNotFound
	Read(ctx context.Context, table, id string) (domain.Record, error)

	// Update patches the record with id and returns the new row
	Update(ctx context.Context, table, id string, data domain.Record) (domain.Record, error)

	// Delete removes the record with id
	Delete(ctx context.Context, table, id string) error

	// Query runs a declarative query
	Query(ctx context.Context, table string, opts domain.QueryOptions) ([]domain.Record, error)

	// BatchCreate inserts several records in one round trip
	BatchCreate(ctx context.Context, table string, records []domain.Record) ([]domain.Record, error)

	// BatchUpdate applies several patches; no ordering is guaranteed
	BatchUpdate(ctx context.Context, table string, patches []domain.RecordPatch) ([]domain.Record, error)

	// BatchDelete removes several records by id
	BatchDelete(ctx context.Context, table string, ids []string) error

	// Subscribe registers a live-update listener and returns its cancellation handle
	Subscribe(ctx context.Context, table string, callback func(domain.ChangeEvent), opts domain.SubscribeOptions) (func(), error)

	// HasElevatedAccess reports whether an elevated credential was supplied
	HasElevatedAccess() bool

	// HealthCheck verifies the backend is reachable with the configured credentials
	HealthCheck(ctx context.Context) error

	// Close releases idle connections and open subscriptions
	Close() error
}

// TableQuery is an immutable query builder: every chaining method returns a new
// query and leaves the receiver untouched, so chains never share state.
type TableQuery interface {
	Eq(column string, value any) TableQuery
	Neq(column string, value any) TableQuery
	Gt(column string, value any) TableQuery
	Lt(column string, value any) TableQuery
	Gte(column string, value any) TableQuery
	Lte(column string, value any) TableQuery
	Order(column string, ascending bool) TableQuery
	Limit(n int) TableQuery
	Offset(n int) TableQuery

	// Select returns matching rows; no columns means all columns
	Select(ctx context.Context, columns ...string) ([]domain.Record, error)

	// Insert adds rows and returns them as stored
	Insert(ctx context.Context, rows ...domain.Record) ([]domain.Record, error)

	// Upsert inserts rows, merging on primary-key conflict
	Upsert(ctx context.Context, rows ...domain.Record) ([]domain.Record, error)

	// Update patches every matching row. At least one filter is required.
	Update(ctx context.Context, patch domain.Record) ([]domain.Record, error)

	// Delete removes every matching row. At least one filter is required.
	Delete(ctx context.Context) ([]domain.Record, error)

	// Table returns the table name
	Table() string

	// Filters returns a copy of the accumulated predicates
	Filters() []domain.Filter

	// Privilege returns the credential the query will run with
	Privilege() domain.Privilege

	// Downgraded is true when elevated access was requested but is unavailable
	Downgraded() bool
}

// Storage is the object storage namespace of a provider
type Storage interface {
	Bucket(name string) StorageBucket
}

// StorageBucket operates on objects inside one bucket
type StorageBucket interface {
	// Upload stores the content at path
	Upload(ctx context.Context, path string, content io.Reader, contentType string) (*StoredObject, error)

	// PublicURL returns the public URL of path (no network call)
	PublicURL(path string) string

	// Remove deletes the objects at paths
	Remove(ctx context.Context, paths ...string) ([]StoredObject, error)
}

// StoredObject describes an object in a bucket
type StoredObject struct {
	Key  string `json:"key"`
	Name string `json:"name,omitempty"`
	ID   string `json:"id,omitempty"`
}
