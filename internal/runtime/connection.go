package runtime

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

// ActiveConnection is the live adapter published by the registry.
// It is never mutated after publication; a new one replaces it wholesale.
type ActiveConnection struct {
	Service           driven.DatabaseService
	Kind              domain.ProviderKind
	IsConfigured      bool
	HasElevatedAccess bool
	ConnectedAt       time.Time
}

// NewActiveConnection wraps a successfully constructed adapter
func NewActiveConnection(svc driven.DatabaseService, now time.Time) *ActiveConnection {
	return &ActiveConnection{
		Service:           svc,
		Kind:              svc.Kind(),
		IsConfigured:      true,
		HasElevatedAccess: svc.HasElevatedAccess(),
		ConnectedAt:       now,
	}
}

// snapshot pairs the connection with the status it was published under
type snapshot struct {
	conn   *ActiveConnection
	status domain.ConnectionStatus
}

// Connection holds the single active connection.
// Reads are lock-free via an atomic pointer; writers are serialized by mu and
// always publish a complete snapshot, so readers observe either the old or the
// new connection, never a mix.
type Connection struct {
	mu      sync.Mutex
	current atomic.Pointer[snapshot]
	logger  *slog.Logger
	now     func() time.Time
}

// NewConnection creates a holder in the uninitialized state
func NewConnection(logger *slog.Logger) *Connection {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Connection{
		logger: logger,
		now:    time.Now,
	}
	c.current.Store(&snapshot{
		status: domain.ConnectionStatus{
			State:     domain.ConnectionStateUninitialized,
			UpdatedAt: c.now(),
		},
	})
	return c
}

// Active returns the published connection, or nil when unconfigured
func (c *Connection) Active() *ActiveConnection {
	return c.current.Load().conn
}

// Status returns the published status
func (c *Connection) Status() domain.ConnectionStatus {
	return c.current.Load().status
}

// Swap runs fn as the single writer. Every Writer call publishes immediately.
func (c *Connection) Swap(fn func(w *Writer) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn(&Writer{c: c})
}

// Close discards the active connection, leaving the holder unconfigured
func (c *Connection) Close() error {
	return c.Swap(func(w *Writer) error {
		w.Clear()
		return nil
	})
}

// Writer publishes snapshots while the writer lock is held
type Writer struct {
	c *Connection
}

// Previous returns the connection published before this write began
func (w *Writer) Previous() *ActiveConnection {
	return w.c.Active()
}

// Enter publishes a transient state, keeping the current connection readable
func (w *Writer) Enter(state domain.ConnectionState) {
	prev := w.c.current.Load()
	status := prev.status
	status.State = state
	status.Error = ""
	status.UpdatedAt = w.c.now()
	w.c.current.Store(&snapshot{conn: prev.conn, status: status})
}

// Publish installs conn as ready and discards the previous connection
func (w *Writer) Publish(conn *ActiveConnection) {
	w.replace(&snapshot{
		conn: conn,
		status: domain.ConnectionStatus{
			State:             domain.ConnectionStateReady,
			Kind:              conn.Kind,
			IsConfigured:      conn.IsConfigured,
			HasElevatedAccess: conn.HasElevatedAccess,
			UpdatedAt:         w.c.now(),
		},
	})
}

// Fail drops the connection and retains err for display
func (w *Writer) Fail(kind domain.ProviderKind, err error) {
	w.replace(&snapshot{
		status: domain.ConnectionStatus{
			State:     domain.ConnectionStateError,
			Kind:      kind,
			Error:     err.Error(),
			UpdatedAt: w.c.now(),
		},
	})
}

// Clear drops the connection and reports ready-but-unconfigured
func (w *Writer) Clear() {
	w.replace(&snapshot{
		status: domain.ConnectionStatus{
			State:     domain.ConnectionStateReady,
			UpdatedAt: w.c.now(),
		},
	})
}

// replace publishes next and closes the connection it displaced
func (w *Writer) replace(next *snapshot) {
	prev := w.c.current.Swap(next)
	if prev == nil || prev.conn == nil || prev.conn == next.conn {
		return
	}
	if err := prev.conn.Service.Close(); err != nil {
		w.c.logger.Warn("failed to close previous database connection",
			"provider", prev.conn.Kind, "error", err)
	}
}
