package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driving"
	"github.com/custodia-labs/freelancer-hub/internal/runtime"
)

// Ensure providerService implements ProviderService
var _ driving.ProviderService = (*providerService)(nil)

const switchLockName = "provider-switch"

// providerService is the provider registry. It owns the single active
// connection and drives the lifecycle state machine.
type providerService struct {
	conn    *runtime.Connection
	factory driven.AdapterFactory
	store   driven.CredentialStore
	lock    driven.DistributedLock
	logger  *slog.Logger
	lockTTL time.Duration
	now     func() time.Time
}

// ProviderServiceConfig holds the dependencies of the registry.
type ProviderServiceConfig struct {
	Connection *runtime.Connection // Optional: created when nil
	Factory    driven.AdapterFactory
	Store      driven.CredentialStore
	Lock       driven.DistributedLock // Optional: serializes Switch/Reset across instances
	Logger     *slog.Logger
	LockTTL    time.Duration // TTL for the switch lock (default: 30s)
}

// NewProviderService creates the registry in the uninitialized state
func NewProviderService(cfg ProviderServiceConfig) driving.ProviderService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn := cfg.Connection
	if conn == nil {
		conn = runtime.NewConnection(logger)
	}

	lockTTL := cfg.LockTTL
	if lockTTL == 0 {
		lockTTL = 30 * time.Second
	}

	return &providerService{
		conn:    conn,
		factory: cfg.Factory,
		store:   cfg.Store,
		lock:    cfg.Lock,
		logger:  logger,
		lockTTL: lockTTL,
		now:     time.Now,
	}
}

// Initialize restores the connection from the credential store
func (s *providerService) Initialize(ctx context.Context) error {
	return s.conn.Swap(func(w *runtime.Writer) error {
		w.Enter(domain.ConnectionStateInitializing)

		creds, ok, err := loadCredentials(ctx, s.store)
		if !ok {
			s.logger.Info("no database provider configured")
			w.Clear()
			return nil
		}
		if err != nil {
			s.logger.Error("stored database provider is unusable", "error", err)
			w.Fail(creds.Kind, err)
			return err
		}

		return s.connect(ctx, w, creds)
	})
}

// InitializeWith builds the connection from deploy-time credentials
func (s *providerService) InitializeWith(ctx context.Context, creds domain.ProviderCredentials) error {
	return s.conn.Swap(func(w *runtime.Writer) error {
		w.Enter(domain.ConnectionStateInitializing)
		return s.connect(ctx, w, creds)
	})
}

// connect builds and publishes an adapter; failures leave the registry in Error
func (s *providerService) connect(ctx context.Context, w *runtime.Writer, creds domain.ProviderCredentials) error {
	svc, err := s.factory.Create(ctx, creds)
	if err != nil {
		s.logger.Error("failed to initialize database provider", "provider", creds.Kind, "error", err)
		w.Fail(creds.Kind, err)
		return err
	}

	w.Publish(runtime.NewActiveConnection(svc, s.now()))
	summary := creds.Summary()
	s.logger.Info("database provider initialized",
		"provider", summary.Kind,
		"endpoint", summary.Endpoint,
		"elevated", summary.HasElevated)
	return nil
}

// Switch replaces the active connection with one built from creds.
// The previous connection is discarded whether or not the switch succeeds.
func (s *providerService) Switch(ctx context.Context, creds domain.ProviderCredentials) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	return s.conn.Swap(func(w *runtime.Writer) error {
		previous := w.Previous()
		w.Enter(domain.ConnectionStateSwitching)

		fail := func(err error) error {
			s.logger.Error("database provider switch failed", "provider", creds.Kind, "error", err)
			w.Fail(creds.Kind, err)
			return err
		}

		if err := creds.Validate(); err != nil {
			return fail(err)
		}

		svc, err := s.factory.Create(ctx, creds)
		if err != nil {
			return fail(err)
		}

		if err := saveCredentials(ctx, s.store, creds); err != nil {
			if cerr := svc.Close(); cerr != nil {
				s.logger.Warn("failed to close unpublished database connection", "error", cerr)
			}
			return fail(fmt.Errorf("persist credentials: %w", err))
		}

		w.Publish(runtime.NewActiveConnection(svc, s.now()))

		from := domain.ProviderKind("")
		if previous != nil {
			from = previous.Kind
		}
		summary := creds.Summary()
		s.logger.Info("database provider switched",
			"from", from,
			"to", summary.Kind,
			"endpoint", summary.Endpoint,
			"elevated", summary.HasElevated)
		return nil
	})
}

// Reset clears stored credentials and drops the active connection
func (s *providerService) Reset(ctx context.Context) error {
	release, err := s.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	return s.conn.Swap(func(w *runtime.Writer) error {
		// The store goes first so a failed clear is never reported as a reset
		if err := s.store.Clear(ctx); err != nil {
			err = fmt.Errorf("clear credentials: %w", err)
			s.logger.Error("failed to clear stored credentials", "error", err)
			kind := domain.ProviderKind("")
			if previous := w.Previous(); previous != nil {
				kind = previous.Kind
			}
			w.Fail(kind, err)
			return err
		}
		w.Clear()
		s.logger.Info("database provider reset")
		return nil
	})
}

// TestConnection builds a throwaway adapter and runs its health check
func (s *providerService) TestConnection(ctx context.Context, creds domain.ProviderCredentials) (*driving.ConnectionTestResult, error) {
	if err := creds.Validate(); err != nil {
		return &driving.ConnectionTestResult{Message: err.Error()}, nil
	}

	svc, err := s.factory.Create(ctx, creds)
	if err != nil {
		return &driving.ConnectionTestResult{Message: err.Error()}, nil
	}
	defer func() {
		if err := svc.Close(); err != nil {
			s.logger.Warn("failed to close test connection", "error", err)
		}
	}()

	if err := svc.HealthCheck(ctx); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return &driving.ConnectionTestResult{Message: err.Error()}, nil
	}

	return &driving.ConnectionTestResult{
		Success: true,
		Message: fmt.Sprintf("Connected to %s", creds.Kind.DisplayName()),
	}, nil
}

// Current returns the active adapter, or false when unconfigured
func (s *providerService) Current() (driven.DatabaseService, bool) {
	active := s.conn.Active()
	if active == nil {
		return nil, false
	}
	return active.Service, true
}

// Status returns a snapshot of the lifecycle state
func (s *providerService) Status() domain.ConnectionStatus {
	return s.conn.Status()
}

// Providers lists declared provider kinds
func (s *providerService) Providers() []domain.ProviderInfo {
	return s.factory.Providers()
}

// acquire takes the cross-instance switch lock when one is configured
func (s *providerService) acquire(ctx context.Context) (func(), error) {
	if s.lock == nil {
		return func() {}, nil
	}

	acquired, err := s.lock.Acquire(ctx, switchLockName, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire switch lock: %w", err)
	}
	if !acquired {
		s.logger.Debug("provider switch lock held by another instance")
		return nil, domain.ErrSwitchInProgress
	}

	return func() {
		// The caller's context may already be done
		if err := s.lock.Release(context.WithoutCancel(ctx), switchLockName); err != nil {
			s.logger.Warn("failed to release provider switch lock", "error", err)
		}
	}, nil
}
