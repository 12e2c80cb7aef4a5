package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven/mocks"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driving"
)

func validCreds() domain.ProviderCredentials {
	return domain.NewSupabaseCredentials("https://x.example/", "abc123", "")
}

func newTestProviderService(t *testing.T) (driving.ProviderService, *mocks.MockAdapterFactory, *mocks.MockCredentialStore) {
	t.Helper()
	factory := mocks.NewMockAdapterFactory()
	store := mocks.NewMockCredentialStore()
	svc := NewProviderService(ProviderServiceConfig{
		Factory: factory,
		Store:   store,
	})
	return svc, factory, store
}

func TestProviderService_StartsUninitialized(t *testing.T) {
	svc, _, _ := newTestProviderService(t)

	assert.Equal(t, domain.ConnectionStateUninitialized, svc.Status().State)
	_, ok := svc.Current()
	assert.False(t, ok)
}

func TestProviderService_Initialize_NothingStored(t *testing.T) {
	svc, factory, _ := newTestProviderService(t)

	require.NoError(t, svc.Initialize(context.Background()))

	status := svc.Status()
	assert.Equal(t, domain.ConnectionStateReady, status.State)
	assert.False(t, status.IsConfigured)
	assert.Empty(t, factory.Created())
}

func TestProviderService_Initialize_RestoresStoredProvider(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestProviderService(t)

	// Simulates a reload after a previous session saved these values
	require.NoError(t, store.Set(ctx, domain.StorageKeyDatabaseProvider, "supabase"))
	require.NoError(t, store.Set(ctx, domain.StorageKeySupabaseURL, "https://x.example/"))
	require.NoError(t, store.Set(ctx, domain.StorageKeySupabaseAnonKey, "abc123"))

	require.NoError(t, svc.Initialize(ctx))

	status := svc.Status()
	assert.Equal(t, domain.ConnectionStateReady, status.State)
	assert.True(t, status.IsConfigured)
	assert.False(t, status.HasElevatedAccess)
	assert.Equal(t, domain.ProviderKindSupabase, status.Kind)

	current, ok := svc.Current()
	require.True(t, ok)
	assert.False(t, current.HasElevatedAccess())
}

func TestProviderService_Initialize_StoredCredentialsIncomplete(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestProviderService(t)
	require.NoError(t, store.Set(ctx, domain.StorageKeyDatabaseProvider, "supabase"))
	require.NoError(t, store.Set(ctx, domain.StorageKeySupabaseURL, "https://x.example/"))

	err := svc.Initialize(ctx)
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)

	status := svc.Status()
	assert.Equal(t, domain.ConnectionStateError, status.State)
	assert.False(t, status.IsConfigured)
	assert.NotEmpty(t, status.Error)
	_, ok := svc.Current()
	assert.False(t, ok)
}

func TestProviderService_Initialize_UnknownStoredProvider(t *testing.T) {
	ctx := context.Background()
	svc, _, store := newTestProviderService(t)
	require.NoError(t, store.Set(ctx, domain.StorageKeyDatabaseProvider, "oracle"))

	err := svc.Initialize(ctx)
	assert.ErrorIs(t, err, domain.ErrInvalidProvider)
	assert.Equal(t, domain.ConnectionStateError, svc.Status().State)
}

func TestProviderService_Initialize_UnsupportedStoredProvider(t *testing.T) {
	ctx := context.Background()
	svc, factory, store := newTestProviderService(t)
	require.NoError(t, store.Set(ctx, domain.StorageKeyDatabaseProvider, "firebase"))

	err := svc.Initialize(ctx)
	assert.ErrorIs(t, err, domain.ErrProviderNotSupported)

	status := svc.Status()
	assert.Equal(t, domain.ConnectionStateError, status.State)
	assert.Equal(t, domain.ProviderKindFirebase, status.Kind, "the status names the failing provider")
	assert.Empty(t, factory.Created())
}

func TestProviderService_InitializeWith_DoesNotPersist(t *testing.T) {
	svc, _, store := newTestProviderService(t)

	require.NoError(t, svc.InitializeWith(context.Background(), validCreds()))

	assert.True(t, svc.Status().IsConfigured)
	assert.Zero(t, store.Len())
}

func TestProviderService_Switch_PersistsAndPublishes(t *testing.T) {
	ctx := context.Background()
	svc, factory, store := newTestProviderService(t)
	require.NoError(t, svc.Initialize(ctx))

	require.NoError(t, svc.Switch(ctx, domain.NewSupabaseCredentials("https://x.example/", "abc123", "service")))

	status := svc.Status()
	assert.Equal(t, domain.ConnectionStateReady, status.State)
	assert.True(t, status.IsConfigured)
	assert.True(t, status.HasElevatedAccess)

	v, ok := store.Get(ctx, domain.StorageKeyDatabaseProvider)
	assert.True(t, ok)
	assert.Equal(t, "supabase", v)
	v, _ = store.Get(ctx, domain.StorageKeySupabaseServiceRoleKey)
	assert.Equal(t, "service", v)

	current, ok := svc.Current()
	require.True(t, ok)
	assert.Same(t, factory.Created()[0], current)
}

func TestProviderService_Switch_ClosesPrevious(t *testing.T) {
	ctx := context.Background()
	svc, factory, _ := newTestProviderService(t)

	require.NoError(t, svc.Switch(ctx, validCreds()))
	require.NoError(t, svc.Switch(ctx, domain.NewSupabaseCredentials("https://y.example/", "def456", "")))

	created := factory.Created()
	require.Len(t, created, 2)
	assert.Equal(t, 1, created[0].Closed())
	assert.Equal(t, 0, created[1].Closed())
}

func TestProviderService_Switch_FailureDoesNotRollBack(t *testing.T) {
	ctx := context.Background()
	svc, factory, _ := newTestProviderService(t)
	require.NoError(t, svc.Switch(ctx, validCreds()))
	first := factory.Created()[0]

	err := svc.Switch(ctx, domain.NewSupabaseCredentials("https://y.example/", "", ""))
	assert.ErrorIs(t, err, domain.ErrMissingCredentials)

	status := svc.Status()
	assert.Equal(t, domain.ConnectionStateError, status.State)
	assert.False(t, status.IsConfigured)
	assert.NotEmpty(t, status.Error)

	_, ok := svc.Current()
	assert.False(t, ok, "no residual adapter from the previous configuration")
	assert.Equal(t, 1, first.Closed())
}

func TestProviderService_Switch_UnsupportedKind(t *testing.T) {
	svc, _, store := newTestProviderService(t)

	err := svc.Switch(context.Background(), domain.ProviderCredentials{
		Kind:  domain.ProviderKindMySQL,
		MySQL: &domain.MySQLCredentials{Host: "db", Database: "hub", Username: "root"},
	})
	assert.ErrorIs(t, err, domain.ErrProviderNotSupported)
	assert.Equal(t, domain.ConnectionStateError, svc.Status().State)
	assert.Zero(t, store.Len())
}

func TestProviderService_Switch_PersistFailure(t *testing.T) {
	svc, factory, store := newTestProviderService(t)
	store.SetErr = errors.New("disk full")

	err := svc.Switch(context.Background(), validCreds())
	require.Error(t, err)

	assert.Equal(t, domain.ConnectionStateError, svc.Status().State)
	_, ok := svc.Current()
	assert.False(t, ok)
	require.Len(t, factory.Created(), 1)
	assert.Equal(t, 1, factory.Created()[0].Closed(), "unpublished adapter must be closed")
}

func TestProviderService_Switch_LockHeldElsewhere(t *testing.T) {
	lock := mocks.NewMockDistributedLock()
	lock.Hold(switchLockName)
	svc := NewProviderService(ProviderServiceConfig{
		Factory: mocks.NewMockAdapterFactory(),
		Store:   mocks.NewMockCredentialStore(),
		Lock:    lock,
	})
	require.NoError(t, svc.Initialize(context.Background()))

	err := svc.Switch(context.Background(), validCreds())
	assert.ErrorIs(t, err, domain.ErrSwitchInProgress)
	assert.Equal(t, domain.ConnectionStateReady, svc.Status().State, "state untouched when the lock is not ours")
}

func TestProviderService_Switch_ReleasesLock(t *testing.T) {
	lock := mocks.NewMockDistributedLock()
	svc := NewProviderService(ProviderServiceConfig{
		Factory: mocks.NewMockAdapterFactory(),
		Store:   mocks.NewMockCredentialStore(),
		Lock:    lock,
	})

	require.NoError(t, svc.Switch(context.Background(), validCreds()))
	assert.False(t, lock.IsHeld(switchLockName))
	assert.Equal(t, 1, lock.Acquired)
	assert.Equal(t, 1, lock.Released)
}

func TestProviderService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, factory, store := newTestProviderService(t)
	require.NoError(t, svc.Switch(ctx, validCreds()))

	require.NoError(t, svc.Reset(ctx))

	status := svc.Status()
	assert.Equal(t, domain.ConnectionStateReady, status.State)
	assert.False(t, status.IsConfigured)
	assert.Zero(t, store.Len())
	assert.Equal(t, 1, factory.Created()[0].Closed())
}

func TestProviderService_Reset_StoreFailure(t *testing.T) {
	ctx := context.Background()
	svc, factory, store := newTestProviderService(t)
	require.NoError(t, svc.Switch(ctx, validCreds()))
	store.ClearErr = errors.New("disk full")

	err := svc.Reset(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	status := svc.Status()
	assert.Equal(t, domain.ConnectionStateError, status.State, "never reported as unconfigured")
	assert.Equal(t, domain.ProviderKindSupabase, status.Kind)
	assert.Contains(t, status.Error, "disk full")
	assert.Equal(t, 1, factory.Created()[0].Closed())

	// The credentials survive, so the next start restores them
	v, ok := store.Get(ctx, domain.StorageKeyDatabaseProvider)
	assert.True(t, ok)
	assert.Equal(t, "supabase", v)

	store.ClearErr = nil
	require.NoError(t, svc.Reset(ctx))
	assert.Equal(t, domain.ConnectionStateReady, svc.Status().State)
	assert.Zero(t, store.Len())
}

func TestProviderService_TestConnection(t *testing.T) {
	tests := []struct {
		name        string
		creds       domain.ProviderCredentials
		healthErr   error
		wantSuccess bool
	}{
		{name: "healthy", creds: validCreds(), wantSuccess: true},
		{name: "missing key", creds: domain.NewSupabaseCredentials("https://x.example/", "", "")},
		{name: "backend rejects", creds: validCreds(), healthErr: domain.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			factory := mocks.NewMockAdapterFactory()
			factory.HealthErr = tt.healthErr
			svc := NewProviderService(ProviderServiceConfig{Factory: factory, Store: mocks.NewMockCredentialStore()})

			result, err := svc.TestConnection(context.Background(), tt.creds)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSuccess, result.Success)
			assert.NotEmpty(t, result.Message)

			_, ok := svc.Current()
			assert.False(t, ok, "test connection never publishes")
			for _, created := range factory.Created() {
				assert.Equal(t, 1, created.Closed())
			}
		})
	}
}

func TestProviderService_TestConnection_ContextCanceled(t *testing.T) {
	factory := mocks.NewMockAdapterFactory()
	factory.HealthErr = context.Canceled
	svc := NewProviderService(ProviderServiceConfig{Factory: factory, Store: mocks.NewMockCredentialStore()})

	_, err := svc.TestConnection(context.Background(), validCreds())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestProviderService_Providers(t *testing.T) {
	svc, _, _ := newTestProviderService(t)
	assert.Len(t, svc.Providers(), 3)
}

func TestProviderService_ConcurrentReadsDuringSwitch(t *testing.T) {
	ctx := context.Background()
	factory := mocks.NewMockAdapterFactory()
	svc := NewProviderService(ProviderServiceConfig{Factory: factory, Store: mocks.NewMockCredentialStore()})
	require.NoError(t, svc.Switch(ctx, validCreds()))

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if current, ok := svc.Current(); ok {
					// A published connection is always complete
					_ = current.Kind()
				}
				_ = svc.Status()
			}
		}()
	}

	for i := 0; i < 20; i++ {
		require.NoError(t, svc.Switch(ctx, validCreds()))
	}
	close(stop)
	wg.Wait()

	var live []driven.DatabaseService
	for _, created := range factory.Created() {
		if created.Closed() == 0 {
			live = append(live, created)
		}
	}
	assert.Len(t, live, 1, "exactly one connection stays open")
}
