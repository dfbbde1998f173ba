package business

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
)

// PatchInput carries a partial business update. Nil means the field was
// absent from the payload; blank strings clear the column.
type PatchInput struct {
	Name                *string        `json:"name,omitempty"`
	BusinessNumber      *string        `json:"businessNumber,omitempty"`
	IncorporationDate   *time.Time     `json:"incorporationDate,omitempty"`
	IncorporationNumber *string        `json:"incorporationNumber,omitempty"`
	Email               *string        `json:"email,omitempty"`
	Phone               *string        `json:"phone,omitempty"`
	PrimaryAddress      *AddressInput  `json:"primaryAddress,omitempty"`
	MailingAddress      *AddressInput  `json:"mailingAddress,omitempty"`
	TaxProfiles         []ProfilePatch `json:"taxProfiles,omitempty"`
}

// ProfilePatch updates one tax profile row, keyed by its own id.
type ProfilePatch struct {
	ID           string     `json:"id"`
	Frequency    *string    `json:"frequency,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	StartYear    *int       `json:"startYear,omitempty"`
	StartQuarter *string    `json:"startQuarter,omitempty"`
}

// Patch applies a column diff to the business, updates the primary and
// mailing address rows, and diffs each referenced tax profile. Rows with no
// effective change are skipped so a no-op patch writes nothing.
func (s *Service) Patch(ctx context.Context, id string, in PatchInput, actorID string) (*domain.Business, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.ErrUnauthenticated
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer s.rollback(ctx, tx)

	biz, err := s.businesses.GetByIDForUpdate(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	name := biz.Name
	b := patch.New()
	b.Text("name", &name, in.Name)
	b.Text("business_number", biz.BusinessNumber, in.BusinessNumber)
	b.Date("incorporation_date", biz.IncorporationDate, in.IncorporationDate)
	b.Text("incorporation_number", biz.IncorporationNumber, in.IncorporationNumber)
	b.Text("email", biz.Email, in.Email)
	b.Text("phone", biz.Phone, in.Phone)
	if err := s.businesses.Update(ctx, tx, id, b); err != nil {
		return nil, err
	}

	if in.PrimaryAddress != nil {
		if err := s.upsertBusinessAddress(ctx, tx, id, *in.PrimaryAddress, false); err != nil {
			return nil, err
		}
	}
	if in.MailingAddress != nil {
		if err := s.upsertBusinessAddress(ctx, tx, id, *in.MailingAddress, true); err != nil {
			return nil, err
		}
	}

	for _, pp := range in.TaxProfiles {
		if err := s.patchTaxProfile(ctx, tx, id, pp); err != nil {
			return nil, err
		}
	}

	updated, err := s.businesses.GetByID(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// upsertBusinessAddress updates the single primary (or mailing) address row,
// creating it when the business has none yet.
func (s *Service) upsertBusinessAddress(ctx context.Context, q db.Querier, businessID string, in AddressInput, mailing bool) error {
	var existing *domain.Address
	var err error
	if mailing {
		existing, err = s.addresses.GetMailingByBusiness(ctx, q, businessID)
	} else {
		existing, err = s.addresses.GetPrimaryByBusiness(ctx, q, businessID)
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	if existing == nil {
		if strings.TrimSpace(in.Line1) == "" {
			return fmt.Errorf("%w: address line1 required", domain.ErrInvalid)
		}
		if mailing {
			if err := s.addresses.ClearMailing(ctx, q, businessID); err != nil {
				return err
			}
		} else {
			if err := s.addresses.ClearPrimary(ctx, q, nil, &businessID); err != nil {
				return err
			}
		}
		_, err := s.addresses.Insert(ctx, q, domain.Address{
			BusinessID: &businessID,
			Line1:      in.Line1,
			Line2:      in.Line2,
			City:       in.City,
			Province:   in.Province,
			PostalCode: in.PostalCode,
			Country:    in.Country,
			IsPrimary:  !mailing,
			IsMailing:  mailing,
		})
		return err
	}

	line1 := existing.Line1
	b := patch.New()
	if strings.TrimSpace(in.Line1) != "" {
		b.Text("line1", &line1, &in.Line1)
	}
	b.Text("line2", existing.Line2, in.Line2)
	b.Text("city", existing.City, in.City)
	b.Text("province", existing.Province, in.Province)
	b.Text("postal_code", existing.PostalCode, in.PostalCode)
	b.Text("country", existing.Country, in.Country)
	return s.addresses.Update(ctx, q, existing.ID, b)
}

func (s *Service) patchTaxProfile(ctx context.Context, q db.Querier, businessID string, pp ProfilePatch) error {
	profile, err := s.taxProfiles.GetByID(ctx, q, pp.ID)
	if err != nil {
		return err
	}
	if profile.BusinessID != businessID {
		return fmt.Errorf("tax profile %s: %w", pp.ID, domain.ErrNotFound)
	}

	b := patch.New()
	b.Text("frequency", profile.Frequency, pp.Frequency)
	b.Date("start_date", profile.StartDate, pp.StartDate)
	b.Int("start_year", profile.StartYear, pp.StartYear)
	b.Text("start_quarter", profile.StartQuarter, pp.StartQuarter)
	if b.Empty() {
		return nil
	}
	return s.taxProfiles.Update(ctx, q, pp.ID, b)
}
