package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven/mocks"
)

func TestRecordService_DelegatesToActiveProvider(t *testing.T) {
	ctx := context.Background()
	factory := mocks.NewMockAdapterFactory()
	providers := NewProviderService(ProviderServiceConfig{Factory: factory, Store: mocks.NewMockCredentialStore()})
	require.NoError(t, providers.Switch(ctx, validCreds()))
	db := factory.Created()[0]

	records := NewRecordService(providers)

	created := domain.Record{"id": "t-1", "title": "Fix login"}
	db.On("Create", mock.Anything, "tickets", domain.Record{"title": "Fix login"}).Return(created, nil)
	db.On("Read", mock.Anything, "tickets", "t-1").Return(created, nil)
	db.On("Update", mock.Anything, "tickets", "t-1", domain.Record{"status": "Closed"}).
		Return(domain.Record{"id": "t-1", "status": "Closed"}, nil)
	db.On("Delete", mock.Anything, "tickets", "t-1").Return(nil)
	opts := domain.QueryOptions{Where: []domain.Filter{{Field: "status", Op: domain.FilterEq, Value: "Open"}}, Limit: 10}
	db.On("Query", mock.Anything, "tickets", opts).Return([]domain.Record{created}, nil)

	got, err := records.Create(ctx, "tickets", domain.Record{"title": "Fix login"})
	require.NoError(t, err)
	assert.Equal(t, "t-1", got.ID())

	got, err = records.Get(ctx, "tickets", "t-1")
	require.NoError(t, err)
	assert.Equal(t, "Fix login", got["title"])

	got, err = records.Update(ctx, "tickets", "t-1", domain.Record{"status": "Closed"})
	require.NoError(t, err)
	assert.Equal(t, "Closed", got["status"])

	list, err := records.List(ctx, "tickets", opts)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, records.Delete(ctx, "tickets", "t-1"))
	db.AssertExpectations(t)
}

func TestRecordService_Errors(t *testing.T) {
	ctx := context.Background()
	providers := NewProviderService(ProviderServiceConfig{
		Factory: mocks.NewMockAdapterFactory(),
		Store:   mocks.NewMockCredentialStore(),
	})
	records := NewRecordService(providers)

	_, err := records.Get(ctx, "tickets", "t-1")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	require.NoError(t, providers.Switch(ctx, validCreds()))

	_, err = records.Get(ctx, " ", "t-1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = records.Create(ctx, "tickets", domain.Record{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = records.List(ctx, "tickets", domain.QueryOptions{Limit: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
