package dependant

import (
	"context"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
)

// Repository persists dependants of personal clients.
type Repository interface {
	Insert(ctx context.Context, q db.Querier, d domain.Dependant) (*domain.Dependant, error)
	GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.Dependant, error)
	ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.Dependant, error)
	Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
}
