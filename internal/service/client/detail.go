package client

import (
	"context"
	"errors"
	"time"

	"clientdesk/internal/domain"
)

// Detail is the hydrated personal-client aggregate. The SIN is decrypted at
// this read boundary only; an undecryptable value degrades to null rather
// than failing the whole read.
type Detail struct {
	Client     domain.Client      `json:"client"`
	Addresses  []domain.Address   `json:"addresses"`
	Dependants []domain.Dependant `json:"dependants"`
	TaxRecords []RecordDetail     `json:"taxRecords"`
	Spouse     *SpouseDetail      `json:"spouse,omitempty"`
}

// RecordDetail is one personal filing with its attached documents.
type RecordDetail struct {
	domain.TaxRecord
	Documents []domain.Document `json:"documents"`
}

// SpouseDetail is a summary of the linked spouse. It carries no spouse of
// its own, so hydration never recurses.
type SpouseDetail struct {
	ID             string     `json:"id"`
	FirstName      string     `json:"firstName"`
	LastName       string     `json:"lastName"`
	DateOfBirth    *time.Time `json:"dateOfBirth,omitempty"`
	SIN            *string    `json:"sin,omitempty"`
	DateOfMarriage *time.Time `json:"dateOfMarriage,omitempty"`
}

// GetDetail hydrates the full client aggregate from independent reads.
func (s *Service) GetDetail(ctx context.Context, id string) (*Detail, error) {
	c, err := s.clients.GetByID(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	s.revealSIN(c)

	addresses, err := s.addresses.ListByClient(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	dependants, err := s.dependants.ListByClient(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	records, err := s.taxRecords.ListByClient(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	documents, err := s.documents.ListByClient(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}

	docsByRecord := make(map[string][]domain.Document)
	for _, d := range documents {
		docsByRecord[d.TaxRecordID] = append(docsByRecord[d.TaxRecordID], d)
	}
	recordDetails := make([]RecordDetail, 0, len(records))
	for _, rec := range records {
		docs := docsByRecord[rec.ID]
		if docs == nil {
			docs = []domain.Document{}
		}
		recordDetails = append(recordDetails, RecordDetail{
			TaxRecord: rec,
			Documents: docs,
		})
	}

	spouse, err := s.hydrateSpouse(ctx, id)
	if err != nil {
		return nil, err
	}

	if addresses == nil {
		addresses = []domain.Address{}
	}
	if dependants == nil {
		dependants = []domain.Dependant{}
	}

	return &Detail{
		Client:     *c,
		Addresses:  addresses,
		Dependants: dependants,
		TaxRecords: recordDetails,
		Spouse:     spouse,
	}, nil
}

func (s *Service) hydrateSpouse(ctx context.Context, clientID string) (*SpouseDetail, error) {
	link, err := s.clients.GetSpouseLink(ctx, s.pool, clientID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	spouse, err := s.clients.GetByID(ctx, s.pool, link.LinkedClientID)
	if err != nil {
		// A dangling link means the pair is mid-delete; present no spouse
		// rather than failing the read.
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	s.revealSIN(spouse)
	return &SpouseDetail{
		ID:             spouse.ID,
		FirstName:      spouse.FirstName,
		LastName:       spouse.LastName,
		DateOfBirth:    spouse.DateOfBirth,
		SIN:            spouse.SIN,
		DateOfMarriage: link.DateOfMarriage,
	}, nil
}

// revealSIN decrypts the stored SIN onto the response field. Decryption
// failures leave the field null and log once; the row itself still reads.
func (s *Service) revealSIN(c *domain.Client) {
	if c.SINEncrypted == nil {
		return
	}
	sin, ok := s.codec.Decrypt(*c.SINEncrypted)
	if !ok {
		s.logger.Printf("client %s: stored sin did not decrypt", c.ID)
		return
	}
	c.SIN = &sin
}
