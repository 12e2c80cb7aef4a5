package http

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driving"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *http.ServeMux
	version    string
	logger     *slog.Logger

	// Services
	providerService driving.ProviderService
	authService     driving.AuthService
	recordService   driving.RecordService
	healthReporter  driving.HealthReporter
	adminToken      string
}

// Config holds server configuration
type Config struct {
	Host    string
	Port    int
	Version string

	// AllowedOrigins lists cross-origin callers; empty means same-origin only
	AllowedOrigins []string

	// AdminToken guards the database settings routes. Empty restricts them
	// to loopback callers.
	AdminToken string
}

// DefaultConfig returns loopback-only defaults
func DefaultConfig() Config {
	return Config{
		Host:    "127.0.0.1",
		Port:    8080,
		Version: "dev",
	}
}

// NewServer creates a new HTTP server
func NewServer(
	cfg Config,
	providerService driving.ProviderService,
	authService driving.AuthService,
	recordService driving.RecordService,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		router:          http.NewServeMux(),
		version:         cfg.Version,
		logger:          logger,
		providerService: providerService,
		authService:     authService,
		recordService:   recordService,
		adminToken:      cfg.AdminToken,
	}

	s.setupRoutes()

	handler := RequestIDMiddleware{}.Handler(
		NewRecoveryMiddleware(logger).Handler(
			NewLoggingMiddleware(logger).Handler(
				NewCORSMiddleware(cfg.AllowedOrigins).Handler(s.router))))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	requireProvider := NewProviderMiddleware(s.providerService)
	auth := NewAuthMiddleware(s.authService, s.adminToken)

	// Signed-in routes run as the caller
	authed := func(h http.HandlerFunc) http.Handler {
		return requireProvider.Handler(auth.Authenticate(h))
	}

	// Health endpoints
	s.router.HandleFunc("GET /health", s.handleHealth)
	s.router.HandleFunc("GET /ready", s.handleReady)
	s.router.HandleFunc("GET /version", s.handleVersion)

	// Database settings
	s.router.HandleFunc("GET /api/v1/providers", s.handleListProviders)
	s.router.HandleFunc("GET /api/v1/database/status", s.handleDatabaseStatus)
	s.router.HandleFunc("GET /api/v1/database/health", s.handleDatabaseHealth)
	s.router.Handle("PUT /api/v1/database/provider",
		auth.RequireAdmin(http.HandlerFunc(s.handleSwitchProvider)))
	s.router.Handle("DELETE /api/v1/database/provider",
		auth.RequireAdmin(http.HandlerFunc(s.handleResetProvider)))
	s.router.Handle("POST /api/v1/database/test",
		auth.RequireAdmin(http.HandlerFunc(s.handleTestConnection)))

	// Auth endpoints
	s.router.Handle("POST /api/v1/auth/login",
		requireProvider.Handler(http.HandlerFunc(s.handleLogin)))
	s.router.Handle("POST /api/v1/auth/logout", authed(s.handleLogout))
	s.router.Handle("GET /api/v1/auth/me", authed(s.handleGetMe))

	// Record endpoints
	s.router.Handle("GET /api/v1/tables/{table}/records", authed(s.handleListRecords))
	s.router.Handle("POST /api/v1/tables/{table}/records", authed(s.handleCreateRecord))
	s.router.Handle("GET /api/v1/tables/{table}/records/{id}", authed(s.handleGetRecord))
	s.router.Handle("PATCH /api/v1/tables/{table}/records/{id}", authed(s.handleUpdateRecord))
	s.router.Handle("DELETE /api/v1/tables/{table}/records/{id}", authed(s.handleDeleteRecord))
}

// SetHealthReporter attaches the background health monitor
func (s *Server) SetHealthReporter(h driving.HealthReporter) {
	s.healthReporter = h
}

// Handler returns the fully wrapped handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if !ok {
			return nil // stopped via Stop
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// Stop stops the server
func (s *Server) Stop(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
