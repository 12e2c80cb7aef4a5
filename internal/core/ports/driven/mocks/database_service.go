package mocks

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/stretchr/testify/mock"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
)

var _ driven.DatabaseService = (*MockDatabaseService)(nil)

// MockDatabaseService is a testify mock of DatabaseService.
// Kind, HasElevatedAccess and Close are answered from fields so tests only
// set expectations for the calls they care about.
type MockDatabaseService struct {
	mock.Mock

	ProviderKind domain.ProviderKind
	Elevated     bool
	HealthErr    error

	closed atomic.Int32
}

// NewMockDatabaseService creates a supabase-kind mock
func NewMockDatabaseService() *MockDatabaseService {
	return &MockDatabaseService{ProviderKind: domain.ProviderKindSupabase}
}

func (m *MockDatabaseService) Kind() domain.ProviderKind { return m.ProviderKind }

func (m *MockDatabaseService) HasElevatedAccess() bool { return m.Elevated }

func (m *MockDatabaseService) HealthCheck(ctx context.Context) error { return m.HealthErr }

func (m *MockDatabaseService) Close() error {
	m.closed.Add(1)
	return nil
}

// Closed reports how many times Close was called
func (m *MockDatabaseService) Closed() int {
	return int(m.closed.Load())
}

func (m *MockDatabaseService) Table(name string) driven.TableQuery {
	args := m.Called(name)
	return args.Get(0).(driven.TableQuery)
}

func (m *MockDatabaseService) TableAs(name string, privilege domain.Privilege) driven.TableQuery {
	args := m.Called(name, privilege)
	return args.Get(0).(driven.TableQuery)
}

func (m *MockDatabaseService) Call(ctx context.Context, fn string, params any) (json.RawMessage, error) {
	args := m.Called(ctx, fn, params)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *MockDatabaseService) CallAs(ctx context.Context, privilege domain.Privilege, fn string, params any) (json.RawMessage, error) {
	args := m.Called(ctx, privilege, fn, params)
	raw, _ := args.Get(0).(json.RawMessage)
	return raw, args.Error(1)
}

func (m *MockDatabaseService) User(ctx context.Context) (*domain.AuthUser, error) {
	args := m.Called(ctx)
	user, _ := args.Get(0).(*domain.AuthUser)
	return user, args.Error(1)
}

func (m *MockDatabaseService) SignIn(ctx context.Context, email, password string) (*domain.AuthSession, error) {
	args := m.Called(ctx, email, password)
	session, _ := args.Get(0).(*domain.AuthSession)
	return session, args.Error(1)
}

func (m *MockDatabaseService) SignOut(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockDatabaseService) Storage() driven.Storage {
	args := m.Called()
	return args.Get(0).(driven.Storage)
}

func (m *MockDatabaseService) Create(ctx context.Context, table string, data domain.Record) (domain.Record, error) {
	args := m.Called(ctx, table, data)
	rec, _ := args.Get(0).(domain.Record)
	return rec, args.Error(1)
}

func (m *MockDatabaseService) Read(ctx context.Context, table, id string) (domain.Record, error) {
	args := m.Called(ctx, table, id)
	rec, _ := args.Get(0).(domain.Record)
	return rec, args.Error(1)
}

func (m *MockDatabaseService) Update(ctx context.Context, table, id string, data domain.Record) (domain.Record, error) {
	args := m.Called(ctx, table, id, data)
	rec, _ := args.Get(0).(domain.Record)
	return rec, args.Error(1)
}

func (m *MockDatabaseService) Delete(ctx context.Context, table, id string) error {
	return m.Called(ctx, table, id).Error(0)
}

func (m *MockDatabaseService) Query(ctx context.Context, table string, opts domain.QueryOptions) ([]domain.Record, error) {
	args := m.Called(ctx, table, opts)
	recs, _ := args.Get(0).([]domain.Record)
	return recs, args.Error(1)
}

func (m *MockDatabaseService) BatchCreate(ctx context.Context, table string, records []domain.Record) ([]domain.Record, error) {
	args := m.Called(ctx, table, records)
	recs, _ := args.Get(0).([]domain.Record)
	return recs, args.Error(1)
}

func (m *MockDatabaseService) BatchUpdate(ctx context.Context, table string, patches []domain.RecordPatch) ([]domain.Record, error) {
	args := m.Called(ctx, table, patches)
	recs, _ := args.Get(0).([]domain.Record)
	return recs, args.Error(1)
}

func (m *MockDatabaseService) BatchDelete(ctx context.Context, table string, ids []string) error {
	return m.Called(ctx, table, ids).Error(0)
}

func (m *MockDatabaseService) Subscribe(ctx context.Context, table string, callback func(domain.ChangeEvent), opts domain.SubscribeOptions) (func(), error) {
	args := m.Called(ctx, table, callback, opts)
	cancel, _ := args.Get(0).(func())
	return cancel, args.Error(1)
}
