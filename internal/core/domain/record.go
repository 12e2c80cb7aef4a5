package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// Record is a single row keyed by column name. Records are identified by their "id" column.
type Record map[string]any

// IDField is the column used by the CRUD convenience operations
const IDField = "id"

// ID returns the record identifier as a string, or "" if absent
func (r Record) ID() string {
	v, ok := r[IDField]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Clone returns a shallow copy of the record
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// FilterOp is a comparison operator for query predicates
type FilterOp string

const (
	FilterEq  FilterOp = "eq"
	FilterNeq FilterOp = "neq"
	FilterGt  FilterOp = "gt"
	FilterLt  FilterOp = "lt"
	FilterGte FilterOp = "gte"
	FilterLte FilterOp = "lte"
)

// IsValid returns true for a known operator
func (op FilterOp) IsValid() bool {
	switch op {
	case FilterEq, FilterNeq, FilterGt, FilterLt, FilterGte, FilterLte:
		return true
	}
	return false
}

// Filter is a single column predicate
type Filter struct {
	Field string   `json:"field"`
	Op    FilterOp `json:"op"`
	Value any      `json:"value"`
}

// OrderBy sorts results by a column
type OrderBy struct {
	Field     string `json:"field"`
	Ascending bool   `json:"ascending"`
}

// QueryOptions describes a declarative query for the CRUD layer
type QueryOptions struct {
	Where   []Filter `json:"where,omitempty"`
	OrderBy *OrderBy `json:"order_by,omitempty"`
	Limit   int      `json:"limit,omitempty"`
	Offset  int      `json:"offset,omitempty"`
}

// RecordPatch pairs a record id with the columns to change
type RecordPatch struct {
	ID   string `json:"id"`
	Data Record `json:"data"`
}

// BackendError is a failure reported by the backend for a single operation.
// It is returned through the operation's error, never raised.
type BackendError struct {
	Status  int    `json:"status"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Hint    string `json:"hint,omitempty"`
	Details string `json:"details,omitempty"`
}

func (e *BackendError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend error %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("backend error %d: %s", e.Status, e.Message)
}

// Is maps backend failures onto the domain sentinels
func (e *BackendError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		// 42P01: undefined table, PGRST205: table not in schema cache
		return e.Status == http.StatusNotFound || e.Code == "42P01" || e.Code == "PGRST205"
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrForbidden:
		// 42501: insufficient privilege (row-level security)
		return e.Status == http.StatusForbidden || e.Code == "42501"
	case ErrInvalidCredentials:
		return e.Code == "invalid_grant" || e.Code == "invalid_credentials"
	case ErrServiceUnavailable:
		return e.Status == http.StatusServiceUnavailable || e.Status == http.StatusBadGateway
	}
	return false
}

// AsBackendError unwraps err into a BackendError if possible
func AsBackendError(err error) (*BackendError, bool) {
	var be *BackendError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}
