// Package taxrecord orchestrates tax filing records for business and
// personal clients.
package taxrecord

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"github.com/jackc/pgx/v5"
)

const (
	minTaxYear = 1900
	maxTaxYear = 2100
)

type taxRecordRepo interface {
	Insert(ctx context.Context, q db.Querier, rec domain.TaxRecord) (*domain.TaxRecord, error)
	UpsertPersonal(ctx context.Context, q db.Querier, rec domain.TaxRecord) (*domain.TaxRecord, error)
	BusinessRecordExists(ctx context.Context, q db.Querier, businessID string, taxType domain.TaxType, year int, period *string) (bool, error)
	GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.TaxRecord, error)
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
}

type taxProfileRepo interface {
	ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.TaxProfile, error)
}

type businessRepo interface {
	GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.Business, error)
}

type clientRepo interface {
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.Client, error)
}

// Service drives tax record orchestration.
type Service struct {
	pool        db.Pool
	records     taxRecordRepo
	taxProfiles taxProfileRepo
	businesses  businessRepo
	clients     clientRepo
	logger      *log.Logger
}

// Deps collects the service's collaborators.
type Deps struct {
	Records     taxRecordRepo
	TaxProfiles taxProfileRepo
	Businesses  businessRepo
	Clients     clientRepo
}

// New creates a Service.
func New(pool db.Pool, deps Deps, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		pool:        pool,
		records:     deps.Records,
		taxProfiles: deps.TaxProfiles,
		businesses:  deps.Businesses,
		clients:     deps.Clients,
		logger:      logger,
	}
}

// CreateBusinessInput describes a business filing.
type CreateBusinessInput struct {
	TaxType   string  `json:"taxType"`
	TaxYear   int     `json:"taxYear"`
	TaxPeriod *string `json:"taxPeriod,omitempty"`
	Status    *string `json:"status,omitempty"`
}

// CreateBusiness records one filing for a business. The record is linked to
// the business's tax profile of the same type when one exists. A record
// already occupying the same (tax type, year, period) slot is a duplicate;
// a NULL period on either side matches any period. The business row is
// locked so concurrent creates for the same slot serialize on the
// existence check.
func (s *Service) CreateBusiness(ctx context.Context, businessID string, in CreateBusinessInput, actorID string) (*domain.TaxRecord, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	taxType := domain.TaxType(in.TaxType)
	if !taxType.Valid() {
		return nil, fmt.Errorf("%w: unknown tax type %q", domain.ErrInvalid, in.TaxType)
	}
	if err := validateYear(in.TaxYear); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.rollback(ctx, tx)

	if _, err := s.businesses.GetByIDForUpdate(ctx, tx, businessID); err != nil {
		return nil, err
	}

	exists, err := s.records.BusinessRecordExists(ctx, tx, businessID, taxType, in.TaxYear, in.TaxPeriod)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, fmt.Errorf("filing for %s %d already recorded: %w", taxType, in.TaxYear, domain.ErrAlreadyExists)
	}

	rec := domain.TaxRecord{
		BusinessID: &businessID,
		TaxType:    taxType,
		TaxYear:    in.TaxYear,
		TaxPeriod:  in.TaxPeriod,
		Status:     in.Status,
		CreatedBy:  actorID,
	}
	profiles, err := s.taxProfiles.ListByBusiness(ctx, tx, businessID)
	if err != nil {
		return nil, err
	}
	for _, p := range profiles {
		if p.TaxType == taxType {
			id := p.ID
			rec.TaxProfileID = &id
			break
		}
	}

	created, err := s.records.Insert(ctx, tx, rec)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// CreatePersonalInput describes a yearly personal filing.
type CreatePersonalInput struct {
	TaxYear int     `json:"taxYear"`
	Status  *string `json:"status,omitempty"`
}

// CreatePersonal records the yearly filing for a personal client. Personal
// filings are one per year, so a second submission for the same year
// replaces the first instead of erroring.
func (s *Service) CreatePersonal(ctx context.Context, clientID string, in CreatePersonalInput, actorID string) (*domain.TaxRecord, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	if err := validateYear(in.TaxYear); err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.rollback(ctx, tx)

	if _, err := s.clients.GetByID(ctx, tx, clientID); err != nil {
		return nil, err
	}

	rec, err := s.records.UpsertPersonal(ctx, tx, domain.TaxRecord{
		ClientID:  &clientID,
		TaxType:   domain.TaxPersonal,
		TaxYear:   in.TaxYear,
		Status:    in.Status,
		CreatedBy: actorID,
	})
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes a tax record under a row lock. Attached documents cascade
// away with it.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.ErrUnauthenticated
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.rollback(ctx, tx)

	if _, err := s.records.GetByIDForUpdate(ctx, tx, id); err != nil {
		return err
	}
	n, err := s.records.Delete(ctx, tx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrConflict
	}
	return tx.Commit(ctx)
}

func validateYear(year int) error {
	if year < minTaxYear || year > maxTaxYear {
		return fmt.Errorf("%w: tax year %d out of range", domain.ErrInvalid, year)
	}
	return nil
}

func (s *Service) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		s.logger.Printf("rollback failed: %v", err)
	}
}
