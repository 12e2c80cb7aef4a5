package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/freelancer-hub/internal/adapters/driving/http"
	"github.com/custodia-labs/freelancer-hub/internal/worker"
)

var (
	serveOrigins        []string
	serveHealthInterval time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server",
	Long: `Start the API server. The database provider is restored from the environment
when DATABASE_PROVIDER is set, otherwise from the credential store. A provider
that fails to initialize leaves the server running in the error state so it can
be reconfigured through the API.

The server binds 127.0.0.1 and answers same-origin requests unless told
otherwise. Database settings routes need the X-Admin-Token header matching
FH_ADMIN_TOKEN, or a loopback caller when no token is set.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringSliceVar(&serveOrigins, "cors-origin", nil, "Allowed CORS origins (default same-origin only)")
	serveCmd.Flags().DurationVar(&serveHealthInterval, "health-interval", 30*time.Second, "Provider health check interval (0 disables)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("failed to release resources", "error", err)
		}
	}()

	if err := a.initialize(ctx, cfg); err != nil {
		// Recoverable through PUT /api/v1/database/provider
		logger.Error("database provider unavailable", "error", err)
	}

	origins := cfg.HTTP.AllowedOrigins
	if cmd.Flags().Changed("cors-origin") {
		origins = serveOrigins
	}
	server := http.NewServer(http.Config{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		Version:        version,
		AllowedOrigins: origins,
		AdminToken:     cfg.HTTP.AdminToken,
	}, a.providers, a.auth, a.records, logger)

	logger.Info("api configured",
		"addr", server.Addr(),
		"credential_store", a.store.Backend(),
		"cors_origins", origins,
		"admin_token", cfg.HTTP.AdminToken != "")
	if cfg.HTTP.AdminToken == "" {
		logger.Info("FH_ADMIN_TOKEN not set, database settings accept loopback callers only")
	}

	if serveHealthInterval > 0 {
		monitor := worker.NewMonitor(worker.MonitorConfig{
			Providers: a.providers,
			Logger:    logger,
			Interval:  serveHealthInterval,
		})
		monitor.Start(ctx)
		defer monitor.Stop()
		server.SetHealthReporter(monitor)
	}

	return server.Start(ctx)
}

// contextOrBackground guards against commands run without a context
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
