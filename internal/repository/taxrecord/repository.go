package taxrecord

import (
	"context"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
)

// Repository persists tax filing records.
type Repository interface {
	Insert(ctx context.Context, q db.Querier, rec domain.TaxRecord) (*domain.TaxRecord, error)
	// UpsertPersonal inserts or replaces the yearly personal filing on
	// (client_id, tax_year).
	UpsertPersonal(ctx context.Context, q db.Querier, rec domain.TaxRecord) (*domain.TaxRecord, error)
	// BusinessRecordExists reports whether a record already occupies
	// (business, tax type, year, period). A NULL period on either side
	// matches any period.
	BusinessRecordExists(ctx context.Context, q db.Querier, businessID string, taxType domain.TaxType, year int, period *string) (bool, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.TaxRecord, error)
	GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.TaxRecord, error)
	ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.TaxRecord, error)
	ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.TaxRecord, error)
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
}
