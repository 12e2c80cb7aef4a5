package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driving"
)

// Verify interface compliance
var _ driving.HealthReporter = (*Monitor)(nil)

// Monitor periodically health-checks the active database provider.
// It only observes: the registry state is never changed by a failed check.
type Monitor struct {
	providers driving.ProviderService
	logger    *slog.Logger
	now       func() time.Time

	interval time.Duration
	timeout  time.Duration

	mu      sync.RWMutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}

	last    domain.ProviderHealth
	hasLast bool
	lastSvc driven.DatabaseService // failures only accumulate against the same connection
}

// MonitorConfig holds configuration for the monitor.
type MonitorConfig struct {
	Providers driving.ProviderService
	Logger    *slog.Logger
	Interval  time.Duration // Time between checks
	Timeout   time.Duration // Per-check deadline
}

// NewMonitor creates a new provider health monitor.
func NewMonitor(cfg MonitorConfig) *Monitor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	timeout := cfg.Timeout
	if timeout <= 0 || timeout > interval {
		timeout = min(10*time.Second, interval)
	}

	return &Monitor{
		providers: cfg.Providers,
		logger:    logger,
		now:       time.Now,
		interval:  interval,
		timeout:   timeout,
	}
}

// Start begins the check loop.
// It runs until Stop is called or context is cancelled.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.running {
		m.mu.Unlock()
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	stopCh, doneCh := m.stopCh, m.doneCh
	m.mu.Unlock()

	m.logger.Info("health monitor starting", "interval", m.interval)

	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.CheckNow(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-stopCh:
				return
			case <-ticker.C:
				m.CheckNow(ctx)
			}
		}
	}()
}

// Stop gracefully stops the monitor.
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	close(m.stopCh)
	doneCh := m.doneCh
	m.mu.Unlock()

	<-doneCh

	m.mu.Lock()
	m.running = false
	m.mu.Unlock()

	m.logger.Info("health monitor stopped")
}

// Wait blocks until the monitor loop exits.
func (m *Monitor) Wait() {
	m.mu.RLock()
	doneCh := m.doneCh
	m.mu.RUnlock()
	if doneCh != nil {
		<-doneCh
	}
}

// active reports whether the check loop is running
func (m *Monitor) active() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.running
}

// CheckNow runs a single check against the current provider.
// With no provider configured the previous result is discarded.
func (m *Monitor) CheckNow(ctx context.Context) (domain.ProviderHealth, bool) {
	svc, ok := m.providers.Current()
	if !ok {
		m.mu.Lock()
		m.last, m.hasLast, m.lastSvc = domain.ProviderHealth{}, false, nil
		m.mu.Unlock()
		return domain.ProviderHealth{}, false
	}

	checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := m.now()
	err := svc.HealthCheck(checkCtx)
	health := domain.ProviderHealth{
		Kind:      svc.Kind(),
		Healthy:   err == nil,
		Latency:   m.now().Sub(start),
		CheckedAt: m.now(),
	}
	if err != nil {
		health.Error = err.Error()
	}

	m.mu.Lock()
	prev, hadPrev := m.last, m.hasLast && m.lastSvc == svc
	if !health.Healthy {
		health.Failures = 1
		if hadPrev {
			health.Failures = prev.Failures + 1
		}
	}
	m.last, m.hasLast, m.lastSvc = health, true, svc
	m.mu.Unlock()

	logger := m.logger.With("provider", health.Kind)
	switch {
	case !health.Healthy && (!hadPrev || prev.Healthy):
		logger.Warn("database provider unhealthy", "error", err)
	case !health.Healthy:
		logger.Debug("database provider still unhealthy", "failures", health.Failures, "error", err)
	case hadPrev && !prev.Healthy:
		logger.Info("database provider recovered", "latency", health.Latency)
	}

	return health, true
}

// LastHealth returns the most recent check result.
func (m *Monitor) LastHealth() (domain.ProviderHealth, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.last, m.hasLast
}
