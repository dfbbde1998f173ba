// Package shareholder orchestrates shareholder use cases on an existing
// business: adding one after the fact, patching, and removal.
package shareholder

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
	"github.com/jackc/pgx/v5"
)

type sinCodec interface {
	Encrypt(plaintext string) (string, error)
	Fingerprint(plaintext string) string
}

type shareholderRepo interface {
	Insert(ctx context.Context, q db.Querier, s domain.Shareholder) (*domain.Shareholder, error)
	GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.Shareholder, error)
	Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
}

type businessRepo interface {
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.Business, error)
}

type clientRepo interface {
	Insert(ctx context.Context, q db.Querier, c domain.Client) (*domain.Client, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.Client, error)
}

// Service drives shareholder orchestration.
type Service struct {
	pool         db.Pool
	shareholders shareholderRepo
	businesses   businessRepo
	clients      clientRepo
	codec        sinCodec
	logger       *log.Logger
}

// Deps collects the service's collaborators.
type Deps struct {
	Shareholders shareholderRepo
	Businesses   businessRepo
	Clients      clientRepo
	Codec        sinCodec
}

// New creates a Service.
func New(pool db.Pool, deps Deps, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		pool:         pool,
		shareholders: deps.Shareholders,
		businesses:   deps.Businesses,
		clients:      deps.Clients,
		codec:        deps.Codec,
		logger:       logger,
	}
}

// Create adds a shareholder to an existing business. The identity mode is
// validated before the transaction opens; a referenced client must exist and
// an inline new client is created in the same transaction.
func (s *Service) Create(ctx context.Context, businessID string, in domain.ShareholderInput, actorID string) (string, error) {
	if strings.TrimSpace(actorID) == "" {
		return "", domain.ErrUnauthenticated
	}
	identity, err := in.Identity()
	if err != nil {
		return "", fmt.Errorf("%w: exactly one shareholder identity mode required", err)
	}
	if in.SharePercentage <= 0 {
		return "", fmt.Errorf("%w: share percentage must be positive", domain.ErrInvalid)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer s.rollback(ctx, tx)

	if _, err := s.businesses.GetByID(ctx, tx, businessID); err != nil {
		return "", err
	}

	row := domain.Shareholder{BusinessID: businessID, SharePercentage: in.SharePercentage}
	switch id := identity.(type) {
	case domain.ExistingClient:
		c, err := s.clients.GetByID(ctx, tx, id.ClientID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return "", fmt.Errorf("shareholder client %s: %w", id.ClientID, domain.ErrNotFound)
			}
			return "", err
		}
		row.ClientID = &c.ID
	case domain.NewClient:
		c := domain.Client{
			FirstName:   id.FirstName,
			LastName:    id.LastName,
			DateOfBirth: id.DateOfBirth,
			Email:       id.Email,
			Phone:       id.Phone,
			CreatedBy:   actorID,
		}
		if id.SIN != nil && strings.TrimSpace(*id.SIN) != "" {
			enc, err := s.codec.Encrypt(*id.SIN)
			if err != nil {
				return "", err
			}
			hash := s.codec.Fingerprint(*id.SIN)
			c.SINEncrypted = &enc
			c.SINHash = &hash
		}
		created, err := s.clients.Insert(ctx, tx, c)
		if err != nil {
			return "", err
		}
		row.ClientID = &created.ID
	case domain.Standalone:
		row.FullName = &id.FullName
	}

	created, err := s.shareholders.Insert(ctx, tx, row)
	if err != nil {
		return "", err
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return created.ID, nil
}

// PatchInput carries a partial shareholder update.
type PatchInput struct {
	FullName        *string  `json:"fullName,omitempty"`
	SharePercentage *float64 `json:"sharePercentage,omitempty"`
}

// Patch updates a shareholder row under a row lock.
func (s *Service) Patch(ctx context.Context, businessID, id string, in PatchInput, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.ErrUnauthenticated
	}
	if in.SharePercentage != nil && *in.SharePercentage <= 0 {
		return fmt.Errorf("%w: share percentage must be positive", domain.ErrInvalid)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.rollback(ctx, tx)

	sh, err := s.shareholders.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if sh.BusinessID != businessID {
		return fmt.Errorf("shareholder %s: %w", id, domain.ErrNotFound)
	}

	b := patch.New()
	b.Text("full_name", sh.FullName, in.FullName)
	pct := sh.SharePercentage
	b.Float("share_percentage", &pct, in.SharePercentage)
	if err := s.shareholders.Update(ctx, tx, id, b); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// Delete removes a shareholder. The backing personal client, when one
// exists, is left untouched.
func (s *Service) Delete(ctx context.Context, businessID, id, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.ErrUnauthenticated
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.rollback(ctx, tx)

	sh, err := s.shareholders.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return err
	}
	if sh.BusinessID != businessID {
		return fmt.Errorf("shareholder %s: %w", id, domain.ErrNotFound)
	}
	n, err := s.shareholders.Delete(ctx, tx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrConflict
	}
	return tx.Commit(ctx)
}

func (s *Service) rollback(ctx context.Context, tx pgx.Tx) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		s.logger.Printf("rollback failed: %v", err)
	}
}
