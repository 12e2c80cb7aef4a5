package driving

import (
	"context"

	"github.com/custodia-labs/freelancer-hub/internal/core/domain"
)

// RecordService exposes the CRUD convenience operations of the active provider
type RecordService interface {
	Create(ctx context.Context, table string, data domain.Record) (domain.Record, error)
	Get(ctx context.Context, table, id string) (domain.Record, error)
	Update(ctx context.Context, table, id string, data domain.Record) (domain.Record, error)
	Delete(ctx context.Context, table, id string) error
	List(ctx context.Context, table string, opts domain.QueryOptions) ([]domain.Record, error)
}
