package shareholder

import (
	"context"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
)

// Repository persists shareholders of business clients.
type Repository interface {
	Insert(ctx context.Context, q db.Querier, s domain.Shareholder) (*domain.Shareholder, error)
	GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.Shareholder, error)
	ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.Shareholder, error)
	Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
}
