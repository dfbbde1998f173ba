package business

import (
	"context"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
)

// ListParams filters and pages the business list.
type ListParams struct {
	Offset     int
	Limit      int
	Search     string
	SortColumn string
	SortDesc   bool
}

// Repository persists business clients.
type Repository interface {
	Insert(ctx context.Context, q db.Querier, b domain.Business) (*domain.Business, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.Business, error)
	GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.Business, error)
	List(ctx context.Context, q db.Querier, p ListParams) ([]domain.Business, int, error)
	Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
}
