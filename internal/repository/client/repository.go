package client

import (
	"context"
	"time"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
)

// ListParams filters and pages the client list.
type ListParams struct {
	Offset     int
	Limit      int
	Search     string
	SortColumn string
	SortDesc   bool
}

// Repository persists personal clients and their spouse links. Every method
// takes a db.Querier so calls compose into one orchestrator transaction.
// Spouse links are only exposed as write-both/delete-both operations to keep
// the two mirrored rows in lockstep.
type Repository interface {
	Insert(ctx context.Context, q db.Querier, c domain.Client) (*domain.Client, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.Client, error)
	GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.Client, error)
	GetBySINHash(ctx context.Context, q db.Querier, hash string) (*domain.Client, error)
	List(ctx context.Context, q db.Querier, p ListParams) ([]domain.Client, int, error)
	Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error
	SetMaritalStatus(ctx context.Context, q db.Querier, id string, status *string) error
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)

	LinkSpouses(ctx context.Context, q db.Querier, clientID, spouseID string, dateOfMarriage *time.Time) error
	UnlinkSpouses(ctx context.Context, q db.Querier, clientID, spouseID string) error
	GetSpouseLink(ctx context.Context, q db.Querier, clientID string) (*domain.SpouseLink, error)
}
