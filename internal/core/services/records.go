package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driven"
	"github.com/custodia-labs/freelancer-hub/internal/core/ports/driving"
)

// Ensure recordService implements RecordService
var _ driving.RecordService = (*recordService)(nil)

// recordService forwards CRUD calls to the active provider.
// The connection is resolved per call so a switch takes effect immediately.
type recordService struct {
	providers driving.ProviderService
}

// NewRecordService creates a new RecordService
func NewRecordService(providers driving.ProviderService) driving.RecordService {
	return &recordService{providers: providers}
}

func (s *recordService) Create(ctx context.Context, table string, data domain.Record) (domain.Record, error) {
	svc, err := s.service(table)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty record", domain.ErrInvalidInput)
	}
	return svc.Create(ctx, table, data)
}

func (s *recordService) Get(ctx context.Context, table, id string) (domain.Record, error) {
	svc, err := s.service(table)
	if err != nil {
		return nil, err
	}
	return svc.Read(ctx, table, id)
}

func (s *recordService) Update(ctx context.Context, table, id string, data domain.Record) (domain.Record, error) {
	svc, err := s.service(table)
	if err != nil {
		return nil, err
	}
	return svc.Update(ctx, table, id, data)
}

func (s *recordService) Delete(ctx context.Context, table, id string) error {
	svc, err := s.service(table)
	if err != nil {
		return err
	}
	return svc.Delete(ctx, table, id)
}

func (s *recordService) List(ctx context.Context, table string, opts domain.QueryOptions) ([]domain.Record, error) {
	svc, err := s.service(table)
	if err != nil {
		return nil, err
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, fmt.Errorf("%w: limit and offset must not be negative", domain.ErrInvalidInput)
	}
	return svc.Query(ctx, table, opts)
}

func (s *recordService) service(table string) (driven.DatabaseService, error) {
	if strings.TrimSpace(table) == "" {
		return nil, fmt.Errorf("%w: table name is required", domain.ErrInvalidInput)
	}
	svc, ok := s.providers.Current()
	if !ok {
		return nil, domain.ErrNotConfigured
	}
	return svc, nil
}
