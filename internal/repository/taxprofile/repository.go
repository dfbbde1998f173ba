package taxprofile

import (
	"context"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
)

// Repository persists business tax registrations.
type Repository interface {
	Insert(ctx context.Context, q db.Querier, p domain.TaxProfile) (*domain.TaxProfile, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.TaxProfile, error)
	ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.TaxProfile, error)
	Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
}
