// Package client orchestrates personal-client use cases, including the
// symmetric spouse link and encryption of the SIN at the write boundary.
package client

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
	clientrepo "clientdesk/internal/repository/client"
	"github.com/jackc/pgx/v5"
)

type sinCodec interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(blob string) (string, bool)
	Fingerprint(plaintext string) string
}

type clientRepo interface {
	Insert(ctx context.Context, q db.Querier, c domain.Client) (*domain.Client, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.Client, error)
	GetByIDForUpdate(ctx context.Context, q db.Querier, id string) (*domain.Client, error)
	GetBySINHash(ctx context.Context, q db.Querier, hash string) (*domain.Client, error)
	List(ctx context.Context, q db.Querier, p clientrepo.ListParams) ([]domain.Client, int, error)
	Update(ctx context.Context, q db.Querier, id string, b *patch.Builder) error
	SetMaritalStatus(ctx context.Context, q db.Querier, id string, status *string) error
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
	LinkSpouses(ctx context.Context, q db.Querier, clientID, spouseID string, dateOfMarriage *time.Time) error
	UnlinkSpouses(ctx context.Context, q db.Querier, clientID, spouseID string) error
	GetSpouseLink(ctx context.Context, q db.Querier, clientID string) (*domain.SpouseLink, error)
}

type addressRepo interface {
	Insert(ctx context.Context, q db.Querier, a domain.Address) (*domain.Address, error)
	ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.Address, error)
	GetPrimaryByClient(ctx context.Context, q db.Querier, clientID string) (*domain.Address, error)
}

type dependantRepo interface {
	Insert(ctx context.Context, q db.Querier, d domain.Dependant) (*domain.Dependant, error)
	ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.Dependant, error)
}

type taxRecordRepo interface {
	ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.TaxRecord, error)
}

type documentRepo interface {
	ListByClient(ctx context.Context, q db.Querier, clientID string) ([]domain.Document, error)
}

// Service drives personal-client orchestration.
type Service struct {
	pool       db.Pool
	clients    clientRepo
	addresses  addressRepo
	dependants dependantRepo
	taxRecords taxRecordRepo
	documents  documentRepo
	codec      sinCodec
	logger     *log.Logger
}

// Deps collects the service's collaborators.
type Deps struct {
	Clients    clientRepo
	Addresses  addressRepo
	Dependants dependantRepo
	TaxRecords taxRecordRepo
	Documents  documentRepo
	Codec      sinCodec
}

// New creates a Service.
func New(pool db.Pool, deps Deps, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		pool:       pool,
		clients:    deps.Clients,
		addresses:  deps.Addresses,
		dependants: deps.Dependants,
		taxRecords: deps.TaxRecords,
		documents:  deps.Documents,
		codec:      deps.Codec,
		logger:     logger,
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
}

// DependantInput mirrors incoming dependant payloads. When SameAddress is
// set the dependant reuses the client's primary address; otherwise an own
// address row may be supplied.
type DependantInput struct {
	FirstName    string        `json:"firstName"`
	LastName     string        `json:"lastName"`
	DateOfBirth  *time.Time    `json:"dateOfBirth,omitempty"`
	Relationship *string       `json:"relationship,omitempty"`
	SameAddress  bool          `json:"sameAddress"`
	Address      *AddressInput `json:"address,omitempty"`
}

// CreateInput captures the fields expected by the client create endpoint.
type CreateInput struct {
	FirstName      string           `json:"firstName"`
	LastName       string           `json:"lastName"`
	DateOfBirth    *time.Time       `json:"dateOfBirth,omitempty"`
	Gender         *string          `json:"gender,omitempty"`
	Email          *string          `json:"email,omitempty"`
	Phone          *string          `json:"phone,omitempty"`
	SIN            *string          `json:"sin,omitempty"`
	MaritalStatus  *string          `json:"maritalStatus,omitempty"`
	Addresses      []AddressInput   `json:"addresses,omitempty"`
	Dependants     []DependantInput `json:"dependants,omitempty"`
	SpouseClientID *string          `json:"spouseClientId,omitempty"`
	DateOfMarriage *time.Time       `json:"dateOfMarriage,omitempty"`
}

// Create inserts a client with addresses, dependants and an optional spouse
// link in one transaction and returns the new client id.
func (s *Service) Create(ctx context.Context, in CreateInput, actorID string) (string, error) {
	if strings.TrimSpace(actorID) == "" {
		return "", domain.ErrUnauthenticated
	}
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return "", fmt.Errorf("%w: first and last name required", domain.ErrInvalid)
	}

	row := domain.Client{
		FirstName:     strings.TrimSpace(in.FirstName),
		LastName:      strings.TrimSpace(in.LastName),
		DateOfBirth:   in.DateOfBirth,
		Gender:        in.Gender,
		Email:         in.Email,
		Phone:         in.Phone,
		MaritalStatus: in.MaritalStatus,
		CreatedBy:     actorID,
	}

	if in.SIN != nil && strings.TrimSpace(*in.SIN) != "" {
		sin := strings.TrimSpace(*in.SIN)
		hash := s.codec.Fingerprint(sin)
		if existing, err := s.clients.GetBySINHash(ctx, s.pool, hash); err == nil && existing != nil {
			return "", fmt.Errorf("sin already on file: %w", domain.ErrAlreadyExists)
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return "", err
		}
		enc, err := s.codec.Encrypt(sin)
		if err != nil {
			return "", err
		}
		row.SINEncrypted = &enc
		row.SINHash = &hash
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer s.rollback(ctx, tx)

	created, err := s.clients.Insert(ctx, tx, row)
	if err != nil {
		return "", err
	}

	var primaryAddressID *string
	for i, a := range in.Addresses {
		addr, err := s.addresses.Insert(ctx, tx, domain.Address{
			ClientID:   &created.ID,
			Line1:      a.Line1,
			Line2:      a.Line2,
			City:       a.City,
			Province:   a.Province,
			PostalCode: a.PostalCode,
			Country:    a.Country,
			IsPrimary:  i == 0,
		})
		if err != nil {
			return "", err
		}
		if i == 0 {
			primaryAddressID = &addr.ID
		}
	}

	for _, d := range in.Dependants {
		if strings.TrimSpace(d.FirstName) == "" || strings.TrimSpace(d.LastName) == "" {
			return "", fmt.Errorf("%w: dependant name required", domain.ErrInvalid)
		}
		dep := domain.Dependant{
			ClientID:     created.ID,
			FirstName:    strings.TrimSpace(d.FirstName),
			LastName:     strings.TrimSpace(d.LastName),
			DateOfBirth:  d.DateOfBirth,
			Relationship: d.Relationship,
			SameAddress:  d.SameAddress,
		}
		switch {
		case d.SameAddress:
			dep.AddressID = primaryAddressID
		case d.Address != nil:
			addr, err := s.addresses.Insert(ctx, tx, domain.Address{
				ClientID:   &created.ID,
				Line1:      d.Address.Line1,
				Line2:      d.Address.Line2,
				City:       d.Address.City,
				Province:   d.Address.Province,
				PostalCode: d.Address.PostalCode,
				Country:    d.Address.Country,
			})
			if err != nil {
				return "", err
			}
			dep.AddressID = &addr.ID
		}
		if _, err := s.dependants.Insert(ctx, tx, dep); err != nil {
			return "", err
		}
	}

	if in.SpouseClientID != nil && strings.TrimSpace(*in.SpouseClientID) != "" {
		if err := s.linkSpouseTx(ctx, tx, created.ID, *in.SpouseClientID, in.DateOfMarriage); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return created.ID, nil
}

// PatchInput carries a partial client update.
type PatchInput struct {
	FirstName     *string    `json:"firstName,omitempty"`
	LastName      *string    `json:"lastName,omitempty"`
	DateOfBirth   *time.Time `json:"dateOfBirth,omitempty"`
	Gender        *string    `json:"gender,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	SIN           *string    `json:"sin,omitempty"`
	MaritalStatus *string    `json:"maritalStatus,omitempty"`
}

// Patch applies a column diff to the client. The SIN is matched through its
// fingerprint so an unchanged SIN never rewrites the ciphertext.
func (s *Service) Patch(ctx context.Context, id string, in PatchInput, actorID string) (*domain.Client, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.ErrUnauthenticated
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.rollback(ctx, tx)

	c, err := s.clients.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	first, last := c.FirstName, c.LastName
	b := patch.New()
	b.Text("first_name", &first, in.FirstName)
	b.Text("last_name", &last, in.LastName)
	b.Date("date_of_birth", c.DateOfBirth, in.DateOfBirth)
	b.Text("gender", c.Gender, in.Gender)
	b.Text("email", c.Email, in.Email)
	b.Text("phone", c.Phone, in.Phone)
	b.Text("marital_status", c.MaritalStatus, in.MaritalStatus)

	if in.SIN != nil {
		sin := strings.TrimSpace(*in.SIN)
		if sin == "" {
			if c.SINHash != nil {
				b.Set("sin_encrypted", nil)
				b.Set("sin_hash", nil)
			}
		} else {
			hash := s.codec.Fingerprint(sin)
			if c.SINHash == nil || *c.SINHash != hash {
				if other, err := s.clients.GetBySINHash(ctx, tx, hash); err == nil && other != nil && other.ID != id {
					return nil, fmt.Errorf("sin already on file: %w", domain.ErrAlreadyExists)
				} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
					return nil, err
				}
				enc, err := s.codec.Encrypt(sin)
				if err != nil {
					return nil, err
				}
				b.Set("sin_encrypted", enc)
				b.Set("sin_hash", hash)
			}
		}
	}

	if err := s.clients.Update(ctx, tx, id, b); err != nil {
		return nil, err
	}
	updated, err := s.clients.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a client. The client row is locked first to serialize
// concurrent deletes; an active spouse link is severed in both directions
// and the remaining spouse's marital status cleared in the same transaction.
// A delete that affects zero rows is reported as a conflict.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.ErrUnauthenticated
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.rollback(ctx, tx)

	if _, err := s.clients.GetByIDForUpdate(ctx, tx, id); err != nil {
		return err
	}

	link, err := s.clients.GetSpouseLink(ctx, tx, id)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if link != nil {
		if _, err := s.clients.GetByIDForUpdate(ctx, tx, link.LinkedClientID); err != nil {
			return err
		}
		if err := s.clients.SetMaritalStatus(ctx, tx, link.LinkedClientID, nil); err != nil {
			return err
		}
		if err := s.clients.UnlinkSpouses(ctx, tx, id, link.LinkedClientID); err != nil {
			return err
		}
	}

	n, err := s.clients.Delete(ctx, tx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrConflict
	}
	return tx.Commit(ctx)
}

// LinkSpouse links two clients symmetrically and marks both married.
func (s *Service) LinkSpouse(ctx context.Context, clientID, spouseID string, dateOfMarriage *time.Time, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.ErrUnauthenticated
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.rollback(ctx, tx)

	if err := s.linkSpouseTx(ctx, tx, clientID, spouseID, dateOfMarriage); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *Service) linkSpouseTx(ctx context.Context, q db.Querier, clientID, spouseID string, dateOfMarriage *time.Time) error {
	if clientID == spouseID {
		return fmt.Errorf("%w: a client cannot be their own spouse", domain.ErrInvalid)
	}
	if _, err := s.clients.GetByID(ctx, q, spouseID); err != nil {
		return err
	}
	if link, err := s.clients.GetSpouseLink(ctx, q, clientID); err == nil && link != nil {
		return fmt.Errorf("client already linked: %w", domain.ErrAlreadyExists)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	if link, err := s.clients.GetSpouseLink(ctx, q, spouseID); err == nil && link != nil {
		return fmt.Errorf("spouse already linked: %w", domain.ErrAlreadyExists)
	} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if err := s.clients.LinkSpouses(ctx, q, clientID, spouseID, dateOfMarriage); err != nil {
		return err
	}
	married := "married"
	if err := s.clients.SetMaritalStatus(ctx, q, clientID, &married); err != nil {
		return err
	}
	return s.clients.SetMaritalStatus(ctx, q, spouseID, &married)
}

// UnlinkSpouse severs a spouse pair in both directions and clears both
// marital statuses.
func (s *Service) UnlinkSpouse(ctx context.Context, clientID, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.ErrUnauthenticated
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer s.rollback(ctx, tx)

	link, err := s.clients.GetSpouseLink(ctx, tx, clientID)
	if err != nil {
		return err
	}
	if err := s.clients.UnlinkSpouses(ctx, tx, clientID, link.LinkedClientID); err != nil {
		return err
	}
	if err := s.clients.SetMaritalStatus(ctx, tx, clientID, nil); err != nil {
		return err
	}
	if err := s.clients.SetMaritalStatus(ctx, tx, link.LinkedClientID, nil); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// ListInput pages and filters the client list.
type ListInput struct {
	Page   int
	Limit  int
	Search string
	Sort   string
}

var clientSortColumns = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"email":     "email",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
}

// List returns a page of clients plus the unpaged total.
func (s *Service) List(ctx context.Context, in ListInput) ([]domain.Client, int, error) {
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
	col, desc := resolveSort(in.Sort, clientSortColumns)

	return s.clients.List(ctx, s.pool, clientrepo.ListParams{
		Offset:     (page - 1) * limit,
		Limit:      limit,
		Search:     strings.TrimSpace(in.Search),
		SortColumn: col,
		SortDesc:   desc,
	})
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
