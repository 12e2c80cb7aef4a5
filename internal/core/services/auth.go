package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// authService signs users in through whichever adapter is active.
// The current user belongs to the connection it signed in with; once the
// registry publishes a different connection the user is gone.
type authService struct {
	providers driving.ProviderService
	logger    *slog.Logger

	mu      sync.RWMutex
	user    *domain.AuthUser
	service driven.DatabaseService
}

// NewAuthService creates a new AuthService
func NewAuthService(providers driving.ProviderService, logger *slog.Logger) driving.AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &authService{
		providers: providers,
		logger:    logger,
	}
}

// SignIn authenticates against the active provider
func (s *authService) SignIn(ctx context.Context, req domain.SignInRequest) (*domain.AuthSession, error) {
	svc, session, err := s.signIn(ctx, req)
	if err != nil {
		return nil, err
	}

	user := session.User
	s.mu.Lock()
	s.user = &user
	s.service = svc
	s.mu.Unlock()

	s.logger.Info("user signed in", "provider", svc.Kind(), "user_id", user.ID)
	return session, nil
}

// SignOut ends the session and clears the current user
func (s *authService) SignOut(ctx context.Context) error {
	s.mu.Lock()
	svc := s.service
	s.user = nil
	s.service = nil
	s.mu.Unlock()

	if svc == nil || !s.isCurrent(svc) {
		return nil
	}
	if err := svc.SignOut(ctx); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

// CurrentUser returns the signed-in user, or nil
func (s *authService) CurrentUser() *domain.AuthUser {
	s.mu.RLock()
	user, svc := s.user, s.service
	s.mu.RUnlock()

	if user == nil || !s.isCurrent(svc) {
		return nil
	}
	cp := *user
	return &cp
}

// Login authenticates without touching shared state
func (s *authService) Login(ctx context.Context, req domain.SignInRequest) (*domain.AuthSession, error) {
	_, session, err := s.signIn(domain.WithAccessToken(ctx, ""), req)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// Authenticate asks the active provider who owns token. Every call reaches
// the backend, so a revoked token stops working immediately.
func (s *authService) Authenticate(ctx context.Context, token string) (*domain.AuthUser, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: missing access token", domain.ErrUnauthorized)
	}
	svc, ok := s.providers.Current()
	if !ok {
		return nil, domain.ErrNotConfigured
	}
	user, err := svc.User(domain.WithAccessToken(ctx, token))
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Logout revokes token without touching the current user
func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	svc, ok := s.providers.Current()
	if !ok {
		return domain.ErrNotConfigured
	}
	if err := svc.SignOut(domain.WithAccessToken(ctx, token)); err != nil {
		return fmt.Errorf("sign out: %w", err)
	}
	return nil
}

func (s *authService) signIn(ctx context.Context, req domain.SignInRequest) (driven.DatabaseService, *domain.AuthSession, error) {
	email := strings.TrimSpace(req.Email)
	if email == "" || req.Password == "" {
		return nil, nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	svc, ok := s.providers.Current()
	if !ok {
		return nil, nil, domain.ErrNotConfigured
	}

	session, err := svc.SignIn(ctx, email, req.Password)
	if err != nil {
		// A failed attempt leaves any existing user untouched
		s.logger.Info("sign in failed", "provider", svc.Kind(), "error", err)
		return nil, nil, err
	}
	return svc, session, nil
}

func (s *authService) isCurrent(svc driven.DatabaseService) bool {
	current, ok := s.providers.Current()
	return ok && current == svc
}
