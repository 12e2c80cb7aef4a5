package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/custodia-labs/freelancer-hub/internal/adapters/driven/credentials"
	"github.com/custodia-labs/freelancer-hub/internal/adapters/driven/keyring"
	"github.com/custodia-labs/freelancer-hub/internal/adapters/driven/memory"
	"github.com/custodia-labs/freelancer-hub/internal/adapters/driven/postgres"
	"github.com/custodia-labs/freelancer-hub/internal/adapters/driven/providers"
	redisadapter "github.com/custodia-labs/freelancer-hub/internal/adapters/driven/redis"
	"github.com/custodia-labs/freelancer-hub/internal/adapters/driven/sqlite"
	"github.com/custodia-labs/freelancer-hub/internal/config"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driving"
	"github.com/custodia-labs/freelancer-hub/internal/core/services"
	"github.com/custodia-labs/freelancer-hub/internal/runtime"
)

// app holds the wired services and the resources to release on exit
type app struct {
	providers driving.ProviderService
	auth      driving.AuthService
	records   driving.RecordService
	factory   *providers.Factory
	store     *credentials.ObfuscatedStore

	closers []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

// buildApp wires the store, lock and services from cfg.
// The registry is left uninitialized.
func buildApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	a := &app{}

	backend, lock, err := a.openBackend(ctx, cfg.Store, logger)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	opts := []credentials.Option{
		credentials.WithPrefix(cfg.Store.Prefix),
		credentials.WithLogger(logger),
	}
	if cfg.Store.Passphrase != "" {
		codec, err := credentials.NewSealedCodec(cfg.Store.Passphrase, "freelancer-hub:"+cfg.Store.Prefix)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		opts = append(opts, credentials.WithCodec(codec))
	}
	a.store = credentials.NewObfuscatedStore(backend, opts...)

	conn := runtime.NewConnection(logger)
	a.closers = append(a.closers, conn.Close)

	a.factory = providers.NewFactory(providers.WithLogger(logger))
	a.providers = services.NewProviderService(services.ProviderServiceConfig{
		Connection: conn,
		Factory:    a.factory,
		Store:      a.store,
		Lock:       lock,
		Logger:     logger,
	})
	a.auth = services.NewAuthService(a.providers, logger)
	a.records = services.NewRecordService(a.providers)

	return a, nil
}

// openBackend selects the secret backend and a matching switch lock
func (a *app) openBackend(ctx context.Context, sc config.StoreConfig, logger *slog.Logger) (driven.SecretBackend, driven.DistributedLock, error) {
	switch sc.Backend {
	case config.StoreMemory:
		return memory.NewSecretBackend(), memory.NewLock(), nil

	case config.StoreSQLite:
		backend, err := sqlite.Open(ctx, sc.Path)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, backend.Close)
		logger.Debug("using sqlite credential store", "path", backend.Path())
		return backend, memory.NewLock(), nil

	case config.StoreRedis:
		opts, err := redis.ParseURL(sc.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		client := redis.NewClient(opts)
		a.closers = append(a.closers, client.Close)
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		return redisadapter.NewSecretBackend(client), redisadapter.NewLock(client), nil

	case config.StorePostgres:
		db, err := postgres.Connect(ctx, postgres.DefaultConfig(sc.DatabaseURL))
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, db.Close)
		if err := db.InitSchema(ctx); err != nil {
			return nil, nil, err
		}
		return postgres.NewSecretBackend(db.DB), postgres.NewAdvisoryLock(db), nil

	case config.StoreKeyring:
		return keyring.NewSecretBackend(sc.KeyringService), memory.NewLock(), nil
	}
	return nil, nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalidConfig, sc.Backend)
}

// initialize restores the provider: deploy-time credentials win over stored ones
func (a *app) initialize(ctx context.Context, cfg *config.Config) error {
	creds, ok, err := cfg.Provider.Credentials()
	if err != nil {
		return err
	}
	if ok {
		return a.providers.InitializeWith(ctx, creds)
	}
	return a.providers.Initialize(ctx)
}
