package note

import (
	"context"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
)

// Repository persists free-text notes.
type Repository interface {
	Insert(ctx context.Context, q db.Querier, n domain.Note) (*domain.Note, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.Note, error)
	ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.Note, error)
	ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.Note, error)
	ListByTaxRecord(ctx context.Context, q db.Querier, taxRecordID string) ([]domain.Note, error)
	UpdateBody(ctx context.Context, q db.Querier, id, body string) (*domain.Note, error)
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
}
