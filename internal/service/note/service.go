// Package note orchestrates free-text notes on clients, businesses and tax
// records.
package note

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
)

type noteRepo interface {
	Insert(ctx context.Context, q db.Querier, n domain.Note) (*domain.Note, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.Note, error)
	ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.Note, error)
	ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.Note, error)
	ListByTaxRecord(ctx context.Context, q db.Querier, taxRecordID string) ([]domain.Note, error)
	UpdateBody(ctx context.Context, q db.Querier, id, body string) (*domain.Note, error)
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
}

// Service drives note creation and editing.
type Service struct {
	pool   db.Pool
	notes  noteRepo
	logger *log.Logger
}

// New creates a Service.
func New(pool db.Pool, notes noteRepo, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{pool: pool, notes: notes, logger: logger}
}

// CreateInput carries a new note. Exactly one owner id must be set.
type CreateInput struct {
	ClientID    *string `json:"clientId,omitempty"`
	BusinessID  *string `json:"businessId,omitempty"`
	TaxRecordID *string `json:"taxRecordId,omitempty"`
	Body        string  `json:"body"`
}

// Create inserts a note after validating the single-owner rule.
func (s *Service) Create(ctx context.Context, in CreateInput, actorID string) (*domain.Note, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, fmt.Errorf("%w: note body required", domain.ErrInvalid)
	}
	owners := 0
	for _, id := range []*string{in.ClientID, in.BusinessID, in.TaxRecordID} {
		if id != nil && strings.TrimSpace(*id) != "" {
			owners++
		}
	}
	if owners != 1 {
		return nil, fmt.Errorf("%w: a note belongs to exactly one owner", domain.ErrInvalid)
	}

	return s.notes.Insert(ctx, s.pool, domain.Note{
		ClientID:    in.ClientID,
		BusinessID:  in.BusinessID,
		TaxRecordID: in.TaxRecordID,
		Body:        strings.TrimSpace(in.Body),
		CreatedBy:   actorID,
	})
}

// Update replaces a note's body and bumps updated_at.
func (s *Service) Update(ctx context.Context, id, body, actorID string) (*domain.Note, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(body) == "" {
		return nil, fmt.Errorf("%w: note body required", domain.ErrInvalid)
	}
	return s.notes.UpdateBody(ctx, s.pool, id, strings.TrimSpace(body))
}

// ListByClient returns a client's notes.
func (s *Service) ListByClient(ctx context.Context, clientID string) ([]domain.Note, error) {
	return nonNil(s.notes.ListByClient(ctx, s.pool, clientID))
}

// ListByBusiness returns a business's notes.
func (s *Service) ListByBusiness(ctx context.Context, businessID string) ([]domain.Note, error) {
	return nonNil(s.notes.ListByBusiness(ctx, s.pool, businessID))
}

// ListByTaxRecord returns a filing's notes.
func (s *Service) ListByTaxRecord(ctx context.Context, taxRecordID string) ([]domain.Note, error) {
	return nonNil(s.notes.ListByTaxRecord(ctx, s.pool, taxRecordID))
}

func nonNil(notes []domain.Note, err error) ([]domain.Note, error) {
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []domain.Note{}
	}
	return notes, nil
}

// Delete removes a note.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.ErrUnauthenticated
	}
	n, err := s.notes.Delete(ctx, s.pool, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
