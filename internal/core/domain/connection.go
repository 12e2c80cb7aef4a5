package domain

import "time"

// ConnectionState is the lifecycle state of the provider registry
type ConnectionState string

const (
	ConnectionStateUninitialized ConnectionState = "uninitialized"
	ConnectionStateInitializing  ConnectionState = "initializing"
	ConnectionStateReady         ConnectionState = "ready"
	ConnectionStateSwitching     ConnectionState = "switching"
	ConnectionStateError         ConnectionState = "error"
)

// ConnectionStatus is a point-in-time view of the registry.
// It is recomputed on every transition, never patched in place.
type ConnectionStatus struct {
	State             ConnectionState `json:"state"`
	Kind              ProviderKind    `json:"provider,omitempty"`
	IsConfigured      bool            `json:"is_configured"`
	HasElevatedAccess bool            `json:"has_elevated_access"`
	Error             string          `json:"error,omitempty"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// IsSettled returns true once initialization has either succeeded or failed
func (s ConnectionStatus) IsSettled() bool {
	return s.State == ConnectionStateReady || s.State == ConnectionStateError
}

// ProviderHealth is the outcome of the most recent background health check
type ProviderHealth struct {
	Kind      ProviderKind  `json:"provider,omitempty"`
	Healthy   bool          `json:"healthy"`
	Error     string        `json:"error,omitempty"`
	Latency   time.Duration `json:"latency_ns"`
	CheckedAt time.Time     `json:"checked_at"`
	Failures  int           `json:"consecutive_failures"`
}
