// Package business orchestrates business-client use cases. Every mutating
// operation runs inside one transaction: either the business row and all of
// its dependent rows land together, or none of them do.
package business

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
	businessrepo "clientdesk/internal/repository/business"
	"github.com/jackc/pgx/v5"
)

type sinCodec interface {
	Encrypt(plaintext string) (string, error)
	Fingerprint(plaintext string) string
}

type clientRepo interface {
	Insert(ctx context.Context, q db.Querier, c domain.Client) (*domain.Client, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.Client, error)
}

type businessRepo interface {
	Insert(ctx context.Context, q db.Querier, b domain.Business) (*domain.Business, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.Business, error)
	GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.Business, error)
	List(ctx context.Context, q db.Querier, p businessrepo.ListParams) ([]domain.Business, int, error)
	Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
}

type addressRepo interface {
	Insert(ctx context.Context, q db.Querier, a domain.Address) (*domain.Address, error)
	ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.Address, error)
	GetPrimaryByBusiness(ctx context.Context, q db.Querier, businessID string) (*domain.Address, error)
	GetMailingByBusiness(ctx context.Context, q db.Querier, businessID string) (*domain.Address, error)
	Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error
	ClearPrimary(ctx context.Context, q db.Querier, clientID, businessID *string) error
	ClearMailing(ctx context.Context, q db.Querier, businessID string) error
}

type shareholderRepo interface {
	Insert(ctx context.Context, q db.Querier, s domain.Shareholder) (*domain.Shareholder, error)
	ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.Shareholder, error)
}

type taxProfileRepo interface {
	Insert(ctx context.Context, q db.Querier, p domain.TaxProfile) (*domain.TaxProfile, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.TaxProfile, error)
	ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.TaxProfile, error)
	Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error
}

type taxRecordRepo interface {
	ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.TaxRecord, error)
}

type documentRepo interface {
	ListByBusiness(ctx context.Context, q db.Querier, businessID string) ([]domain.Document, error)
}

// Service drives business-client orchestration.
type Service struct {
	pool         db.Pool
	businesses   businessRepo
	clients      clientRepo
	addresses    addressRepo
	shareholders shareholderRepo
	taxProfiles  taxProfileRepo
	taxRecords   taxRecordRepo
	documents    documentRepo
	codec        sinCodec
	logger       *log.Logger
}

// Deps collects the service's collaborators.
type Deps struct {
	Businesses   businessRepo
	Clients      clientRepo
	Addresses    addressRepo
	Shareholders shareholderRepo
	TaxProfiles  taxProfileRepo
	TaxRecords   taxRecordRepo
	Documents    documentRepo
	Codec        sinCodec
}

// New creates a Service.
func New(pool db.Pool, deps Deps, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		pool:         pool,
		businesses:   deps.Businesses,
		clients:      deps.Clients,
		addresses:    deps.Addresses,
		shareholders: deps.Shareholders,
		taxProfiles:  deps.TaxProfiles,
		taxRecords:   deps.TaxRecords,
		documents:    deps.Documents,
		codec:        deps.Codec,
		logger:       logger,
	}
}

// AddressInput mirrors incoming address payloads.
type AddressInput struct {
	Line1      string  `json:"line1"`
	Line2      *string `json:"line2,omitempty"`
	City       *string `json:"city,omitempty"`
	Province   *string `json:"province,omitempty"`
	PostalCode *string `json:"postalCode,omitempty"`
	Country    *string `json:"country,omitempty"`
	IsPrimary  bool    `json:"isPrimary"`
	IsMailing  bool    `json:"isMailing"`
}

// CreateInput captures the fields expected by the business create endpoint.
type CreateInput struct {
	Name                string                    `json:"name"`
	BusinessNumber      *string                   `json:"businessNumber,omitempty"`
	IncorporationDate   *time.Time                `json:"incorporationDate,omitempty"`
	IncorporationNumber *string                   `json:"incorporationNumber,omitempty"`
	Email               *string                   `json:"email,omitempty"`
	Phone               *string                   `json:"phone,omitempty"`
	Addresses           []AddressInput            `json:"addresses,omitempty"`
	Shareholders        []domain.ShareholderInput `json:"shareholders,omitempty"`
	TaxProfiles         []TaxProfileInput         `json:"taxProfiles,omitempty"`
}

// Create inserts a business together with its addresses, shareholders and
// tax profiles in one transaction and returns the new business id.
func (s *Service) Create(ctx context.Context, in CreateInput, actorID string) (string, error) {
	if strings.TrimSpace(actorID) == "" {
		return "", domain.ErrUnauthenticated
	}
	if strings.TrimSpace(in.Name) == "" {
		return "", fmt.Errorf("%w: name required", domain.ErrInvalid)
	}

	// Validate everything that can fail before opening the transaction.
	mailing := 0
	for _, a := range in.Addresses {
		if a.IsMailing {
			mailing++
		}
	}
	if mailing > 1 {
		return "", fmt.Errorf("%w: at most one mailing address", domain.ErrInvalid)
	}
	identities := make([]domain.ShareholderIdentity, len(in.Shareholders))
	for i, sh := range in.Shareholders {
		identity, err := sh.Identity()
		if err != nil {
			return "", fmt.Errorf("shareholder %d: %w", i, err)
		}
		if sh.SharePercentage <= 0 {
			return "", fmt.Errorf("%w: shareholder %d: share percentage must be positive", domain.ErrInvalid, i)
		}
		identities[i] = identity
	}
	profiles, err := deriveTaxProfiles(in.TaxProfiles)
	if err != nil {
		return "", err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer s.rollback(ctx, tx)

	biz, err := s.businesses.Insert(ctx, tx, domain.Business{
		Name:                strings.TrimSpace(in.Name),
		BusinessNumber:      in.BusinessNumber,
		IncorporationDate:   in.IncorporationDate,
		IncorporationNumber: in.IncorporationNumber,
		Email:               in.Email,
		Phone:               in.Phone,
		CreatedBy:           actorID,
	})
	if err != nil {
		return "", err
	}

	for i, a := range in.Addresses {
		addr := domain.Address{
			BusinessID: &biz.ID,
			Line1:      a.Line1,
			Line2:      a.Line2,
			City:       a.City,
			Province:   a.Province,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			// The first address in the array is the primary one, by
			// position rather than by flag.
			IsPrimary: i == 0,
			IsMailing: a.IsMailing,
		}
		if _, err := s.addresses.Insert(ctx, tx, addr); err != nil {
			return "", err
		}
	}

	for i, identity := range identities {
		if err := s.insertShareholder(ctx, tx, biz.ID, identity, in.Shareholders[i].SharePercentage, actorID); err != nil {
			return "", err
		}
	}

	for _, p := range profiles {
		p.BusinessID = biz.ID
		if _, err := s.taxProfiles.Insert(ctx, tx, p); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return biz.ID, nil
}

// insertShareholder resolves the identity mode and writes the shareholder
// row, creating the backing personal client first when required.
func (s *Service) insertShareholder(ctx context.Context, q db.Querier, businessID string, identity domain.ShareholderIdentity, sharePct float64, actorID string) error {
	row := domain.Shareholder{BusinessID: businessID, SharePercentage: sharePct}

	switch id := identity.(type) {
	case domain.ExistingClient:
		c, err := s.clients.GetByID(ctx, q, id.ClientID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("shareholder client %s: %w", id.ClientID, domain.ErrNotFound)
			}
			return err
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
				return err
			}
			hash := s.codec.Fingerprint(*id.SIN)
			c.SINEncrypted = &enc
			c.SINHash = &hash
		}
		created, err := s.clients.Insert(ctx, q, c)
		if err != nil {
			return err
		}
		row.ClientID = &created.ID
	case domain.Standalone:
		row.FullName = &id.FullName
	default:
		return fmt.Errorf("%w: unknown shareholder identity", domain.ErrInvalid)
	}

	_, err := s.shareholders.Insert(ctx, q, row)
	return err
}

// ListInput pages and filters the business list.
type ListInput struct {
	Page   int
	Limit  int
	Search string
	Sort   string
}

var businessSortColumns = map[string]string{
	"name":           "name",
	"businessNumber": "business_number",
	"createdAt":      "created_at",
	"updatedAt":      "updated_at",
}

// List returns a page of businesses plus the unpaged total.
func (s *Service) List(ctx context.Context, in ListInput) ([]domain.Business, int, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	col, desc := resolveSort(in.Sort, businessSortColumns)

	return s.businesses.List(ctx, s.pool, businessrepo.ListParams{
		Offset:     (page - 1) * limit,
		Limit:      limit,
		Search:     strings.TrimSpace(in.Search),
		SortColumn: col,
		SortDesc:   desc,
	})
}

// Delete removes a business and, via cascade, its dependent rows. The row is
// locked first so two concurrent deletes serialize; losing the race is a
// conflict, not a silent success.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.ErrUnauthenticated
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.rollback(ctx, tx)

	if _, err := s.businesses.GetByIDForUpdate(ctx, tx, id); err != nil {
		return err
	}
	n, err := s.businesses.Delete(ctx, tx, id)
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

// resolveSort parses a "column:direction" sort spec against a whitelist,
// falling back to created_at descending for unknown columns.
func resolveSort(spec string, allowed map[string]string) (string, bool) {
	col, dir, _ := strings.Cut(strings.TrimSpace(spec), ":")
	mapped, ok := allowed[col]
	if !ok {
		return "created_at", true
	}
	return mapped, strings.EqualFold(dir, "desc")
}
