package address

import (
	"context"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
)

// Repository persists addresses for clients and businesses.
type Repository interface {
	Insert(ctx context.Context, q db.Querier, a domain.Address) (*domain.Address, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.Address, error)
	// ListByClient and ListByBusiness order primary-first, mailing-first,
	// then by creation time.
	ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.Address, error)
	ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.Address, error)
	GetPrimaryByBusiness(ctx context.Context, q db.Querier, businessID string) (*domain.Address, error)
	GetMailingByBusiness(ctx context.Context, q db.Querier, businessID string) (*domain.Address, error)
	GetPrimaryByClient(ctx context.Context, q db.Querier, clientID string) (*domain.Address, error)
	Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error
	// ClearPrimary/ClearMailing implement the unset-then-set invariant.
	ClearPrimary(ctx context.Context, q db.Querier, clientID, businessID *string) error
	ClearMailing(ctx context.Context, q db.Querier, businessID string) error
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
}
