package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TableQuery = (*tableQuery)(nil)

// tableQuery is an immutable PostgREST query. Chaining methods copy the
// receiver, so two chains started from one builder never share filters.
type tableQuery struct {
	client     *client
	table      string
	privilege  domain.Privilege
	downgraded bool

	filters []domain.Filter
	order   []domain.OrderBy
	limit   int
	offset  int
	err     error // first chaining error, reported by the terminal call
}

func newTableQuery(c *client, table string, privilege domain.Privilege, downgraded bool) *tableQuery {
	q := &tableQuery{
		client:     c,
		table:      table,
		privilege:  privilege,
		downgraded: downgraded,
		limit:      -1,
		offset:     -1,
	}
	if strings.TrimSpace(table) == "" {
		q.err = fmt.Errorf("%w: table name is empty", domain.ErrMalformedQuery)
	}
	return q
}

func (q *tableQuery) clone() *tableQuery {
	c := *q
	c.filters = slices.Clone(q.filters)
	c.order = slices.Clone(q.order)
	return &c
}

func (q *tableQuery) fail(format string, args ...any) *tableQuery {
	c := q.clone()
	if c.err == nil {
		c.err = fmt.Errorf("%w: "+format, append([]any{domain.ErrMalformedQuery}, args...)...)
	}
	return c
}

func (q *tableQuery) where(column string, op domain.FilterOp, value any) driven.TableQuery {
	if strings.TrimSpace(column) == "" {
		return q.fail("%s filter on empty column", op)
	}
	c := q.clone()
	c.filters = append(c.filters, domain.Filter{Field: column, Op: op, Value: value})
	return c
}

func (q *tableQuery) Eq(column string, value any) driven.TableQuery {
	return q.where(column, domain.FilterEq, value)
}

func (q *tableQuery) Neq(column string, value any) driven.TableQuery {
	return q.where(column, domain.FilterNeq, value)
}

func (q *tableQuery) Gt(column string, value any) driven.TableQuery {
	return q.where(column, domain.FilterGt, value)
}

func (q *tableQuery) Lt(column string, value any) driven.TableQuery {
	return q.where(column, domain.FilterLt, value)
}

func (q *tableQuery) Gte(column string, value any) driven.TableQuery {
	return q.where(column, domain.FilterGte, value)
}

func (q *tableQuery) Lte(column string, value any) driven.TableQuery {
	return q.where(column, domain.FilterLte, value)
}

func (q *tableQuery) Order(column string, ascending bool) driven.TableQuery {
	if strings.TrimSpace(column) == "" {
		return q.fail("order on empty column")
	}
	c := q.clone()
	c.order = append(c.order, domain.OrderBy{Field: column, Ascending: ascending})
	return c
}

func (q *tableQuery) Limit(n int) driven.TableQuery {
	if n < 0 {
		return q.fail("negative limit %d", n)
	}
	c := q.clone()
	c.limit = n
	return c
}

func (q *tableQuery) Offset(n int) driven.TableQuery {
	if n < 0 {
		return q.fail("negative offset %d", n)
	}
	c := q.clone()
	c.offset = n
	return c
}

func (q *tableQuery) Table() string { return q.table }

func (q *tableQuery) Filters() []domain.Filter { return slices.Clone(q.filters) }

func (q *tableQuery) Privilege() domain.Privilege { return q.privilege }

func (q *tableQuery) Downgraded() bool { return q.downgraded }

// Select returns matching rows; no columns means all columns
func (q *tableQuery) Select(ctx context.Context, columns ...string) ([]domain.Record, error) {
	if q.err != nil {
		return nil, q.err
	}

	params := q.params()
	sel := "*"
	if len(columns) > 0 {
		sel = strings.Join(columns, ",")
	}
	params.Set("select", sel)
	if len(q.order) > 0 {
		params.Set("order", q.orderParam())
	}
	if q.limit >= 0 {
		params.Set("limit", strconv.Itoa(q.limit))
	}
	if q.offset >= 0 {
		params.Set("offset", strconv.Itoa(q.offset))
	}

	var rows []domain.Record
	if err := q.client.do(ctx, request{method: http.MethodGet, path: q.path(), query: params}, &rows); err != nil {
		return nil, fmt.Errorf("select %s: %w", q.table, err)
	}
	return rows, nil
}

// Insert adds rows and returns them as stored. Filters are ignored.
func (q *tableQuery) Insert(ctx context.Context, rows ...domain.Record) ([]domain.Record, error) {
	return q.write(ctx, "insert", "return=representation", rows)
}

// Upsert inserts rows, merging into existing rows on primary-key conflict
func (q *tableQuery) Upsert(ctx context.Context, rows ...domain.Record) ([]domain.Record, error) {
	return q.write(ctx, "upsert", "resolution=merge-duplicates,return=representation", rows)
}

func (q *tableQuery) write(ctx context.Context, op, prefer string, rows []domain.Record) ([]domain.Record, error) {
	if q.err != nil {
		return nil, q.err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s into %s without rows", domain.ErrMalformedQuery, op, q.table)
	}

	var out []domain.Record
	err := q.client.do(ctx, request{
		method:  http.MethodPost,
		path:    q.path(),
		body:    rows,
		headers: map[string]string{"Prefer": prefer},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, q.table, err)
	}
	return out, nil
}

// Update patches every matching row and returns the new rows
func (q *tableQuery) Update(ctx context.Context, patch domain.Record) ([]domain.Record, error) {
	if q.err != nil {
		return nil, q.err
	}
	if len(q.filters) == 0 {
		return nil, fmt.Errorf("%w: update of %s without filters", domain.ErrMalformedQuery, q.table)
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("%w: empty update of %s", domain.ErrMalformedQuery, q.table)
	}

	var out []domain.Record
	err := q.client.do(ctx, request{
		method:  http.MethodPatch,
		path:    q.path(),
		query:   q.params(),
		body:    patch,
		headers: map[string]string{"Prefer": "return=representation"},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", q.table, err)
	}
	return out, nil
}

// Delete removes every matching row and returns the removed rows
func (q *tableQuery) Delete(ctx context.Context) ([]domain.Record, error) {
	if q.err != nil {
		return nil, q.err
	}
	if len(q.filters) == 0 {
		return nil, fmt.Errorf("%w: delete from %s without filters", domain.ErrMalformedQuery, q.table)
	}

	var out []domain.Record
	err := q.client.do(ctx, request{
		method:  http.MethodDelete,
		path:    q.path(),
		query:   q.params(),
		headers: map[string]string{"Prefer": "return=representation"},
	}, &out)
	if err != nil {
		return nil, fmt.Errorf("delete from %s: %w", q.table, err)
	}
	return out, nil
}

func (q *tableQuery) path() string {
	return restPath + "/" + url.PathEscape(q.table)
}

// params encodes the filters as PostgREST horizontal filters (col=op.value)
func (q *tableQuery) params() url.Values {
	params := url.Values{}
	for _, f := range q.filters {
		params.Add(f.Field, filterValue(f.Op, f.Value))
	}
	return params
}

func (q *tableQuery) orderParam() string {
	parts := make([]string, len(q.order))
	for i, o := range q.order {
		dir := "desc"
		if o.Ascending {
			dir = "asc"
		}
		parts[i] = o.Field + "." + dir
	}
	return strings.Join(parts, ",")
}

// filterValue renders op and value in PostgREST syntax. Null comparisons use "is".
func filterValue(op domain.FilterOp, value any) string {
	if value == nil {
		switch op {
		case domain.FilterEq:
			return "is.null"
		case domain.FilterNeq:
			return "not.is.null"
		}
	}
	return string(op) + "." + formatValue(value)
}

func formatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.UTC().Format(time.RFC3339Nano)
	case json.Number:
		return v.String()
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
