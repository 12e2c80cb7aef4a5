// Package querykit implements the record-level CRUD operations of
// driven.DatabaseService on top of an adapter's table query builder, so every
// adapter gets identical CRUD semantics.
package querykit

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// DefaultBatchConcurrency bounds the requests a batch operation runs at once
const DefaultBatchConcurrency = 4

// Tables is the part of an adapter CRUD builds on
type Tables interface {
	Table(name string) driven.TableQuery
}

// CRUD provides id-keyed record operations over Tables
type CRUD struct {
	tables      Tables
	concurrency int
	newID       func() string
}

// Option configures CRUD
type Option func(*CRUD)

// WithBatchConcurrency sets how many batch requests run in parallel
func WithBatchConcurrency(n int) Option {
	return func(c *CRUD) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// WithIDGenerator replaces the UUID generator used by Create
func WithIDGenerator(fn func() string) Option {
	return func(c *CRUD) {
		c.newID = fn
	}
}

// New creates a CRUD layer over tables
func New(tables Tables, opts ...Option) *CRUD {
	c := &CRUD{
		tables:      tables,
		concurrency: DefaultBatchConcurrency,
		newID:       uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Create inserts a record, assigning an id when absent
func (c *CRUD) Create(ctx context.Context, table string, data domain.Record) (domain.Record, error) {
	rec := c.withID(data)
	rows, err := c.tables.Table(table).Insert(ctx, rec)
	if err != nil {
		return nil, err
	}
	// Row-level policies may hide the inserted row from the response
	if len(rows) == 0 {
		return rec, nil
	}
	return rows[0], nil
}

// Read returns the record with id, or domain.ErrNotFound
func (c *CRUD) Read(ctx context.Context, table, id string) (domain.Record, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	rows, err := c.tables.Table(table).Eq(domain.IDField, id).Limit(1).Select(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s %s: %w", table, id, domain.ErrNotFound)
	}
	return rows[0], nil
}

// Update patches the record with id and returns the new row
func (c *CRUD) Update(ctx context.Context, table, id string, data domain.Record) (domain.Record, error) {
	if err := requireID(id); err != nil {
		return nil, err
	}
	patch := data.Clone()
	delete(patch, domain.IDField)

	rows, err := c.tables.Table(table).Eq(domain.IDField, id).Update(ctx, patch)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s %s: %w", table, id, domain.ErrNotFound)
	}
	return rows[0], nil
}

// Delete removes the record with id. Deleting a missing id is not an error.
func (c *CRUD) Delete(ctx context.Context, table, id string) error {
	if err := requireID(id); err != nil {
		return err
	}
	_, err := c.tables.Table(table).Eq(domain.IDField, id).Delete(ctx)
	return err
}

// Query runs a declarative query
func (c *CRUD) Query(ctx context.Context, table string, opts domain.QueryOptions) ([]domain.Record, error) {
	q, err := Apply(c.tables.Table(table), opts)
	if err != nil {
		return nil, err
	}
	return q.Select(ctx)
}

// BatchCreate inserts records in a single request
func (c *CRUD) BatchCreate(ctx context.Context, table string, records []domain.Record) ([]domain.Record, error) {
	if len(records) == 0 {
		return nil, nil
	}
	rows := make([]domain.Record, len(records))
	for i, r := range records {
		rows[i] = c.withID(r)
	}
	return c.tables.Table(table).Insert(ctx, rows...)
}

// BatchUpdate applies patches concurrently. Results follow the patch order;
// the order in which the backend applies them is unspecified. On error some
// patches may already have been applied.
func (c *CRUD) BatchUpdate(ctx context.Context, table string, patches []domain.RecordPatch) ([]domain.Record, error) {
	results := make([]domain.Record, len(patches))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, p := range patches {
		g.Go(func() error {
			rec, err := c.Update(ctx, table, p.ID, p.Data)
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BatchDelete removes records by id concurrently
func (c *CRUD) BatchDelete(ctx context.Context, table string, ids []string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, id := range ids {
		g.Go(func() error {
			return c.Delete(ctx, table, id)
		})
	}
	return g.Wait()
}

// Apply chains opts onto q. Unknown operators fail as malformed.
func Apply(q driven.TableQuery, opts domain.QueryOptions) (driven.TableQuery, error) {
	for _, f := range opts.Where {
		switch f.Op {
		case domain.FilterEq:
			q = q.Eq(f.Field, f.Value)
		case domain.FilterNeq:
			q = q.Neq(f.Field, f.Value)
		case domain.FilterGt:
			q = q.Gt(f.Field, f.Value)
		case domain.FilterLt:
			q = q.Lt(f.Field, f.Value)
		case domain.FilterGte:
			q = q.Gte(f.Field, f.Value)
		case domain.FilterLte:
			q = q.Lte(f.Field, f.Value)
		default:
			return nil, fmt.Errorf("%w: unknown operator %q", domain.ErrMalformedQuery, f.Op)
		}
	}
	if opts.OrderBy != nil {
		q = q.Order(opts.OrderBy.Field, opts.OrderBy.Ascending)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	return q, nil
}

func (c *CRUD) withID(data domain.Record) domain.Record {
	rec := data.Clone()
	if rec.ID() == "" {
		rec[domain.IDField] = c.newID()
	}
	return rec
}

func requireID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: record id is empty", domain.ErrInvalidInput)
	}
	return nil
}
