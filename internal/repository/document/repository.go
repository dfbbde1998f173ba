package document

import (
	"context"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
)

// Repository persists uploaded document metadata. File bytes live in the
// blob store; only key, checksum and filename are stored here.
type Repository interface {
	Insert(ctx context.Context, q db.Querier, d domain.Document) (*domain.Document, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.Document, error)
	ListByTaxRecord(ctx context.Context, q db.Querier, taxRecordID string) ([]domain.Document, error)
	ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.Document, error)
	ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.Document, error)
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
}
