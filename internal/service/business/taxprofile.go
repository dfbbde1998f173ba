package business

import (
	"fmt"
	"time"

	"clientdesk/internal/domain"
)

// TaxProfileInput is one requested tax registration. The tax type is an
// explicit tag; which optional attributes apply depends on the type.
type TaxProfileInput struct {
	TaxType      string     `json:"taxType"`
	Frequency    *string    `json:"frequency,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	StartYear    *int       `json:"startYear,omitempty"`
	StartQuarter *string    `json:"startQuarter,omitempty"`
}

// deriveTaxProfiles maps the requested registrations to rows, one mapping
// per tax type so adding a type is a single case here. An unknown tax type
// or a duplicate registration is fatal for the whole transaction.
func deriveTaxProfiles(inputs []TaxProfileInput) ([]domain.TaxProfile, error) {
	seen := make(map[domain.TaxType]bool, len(inputs))
	out := make([]domain.TaxProfile, 0, len(inputs))

	for _, in := range inputs {
		t := domain.TaxType(in.TaxType)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: unknown tax type %q", domain.ErrInvalid, in.TaxType)
		}
		if seen[t] {
			return nil, fmt.Errorf("%w: duplicate tax type %q", domain.ErrInvalid, in.TaxType)
		}
		seen[t] = true

		var p domain.TaxProfile
		switch t {
		case domain.TaxHST:
			p = hstProfile(in)
		case domain.TaxCorporation:
			p = corporationProfile(in)
		case domain.TaxPayroll:
			p = payrollProfile(in)
		case domain.TaxWSIB:
			p = wsibProfile(in)
		case domain.TaxAnnualRenewal:
			p = annualRenewalProfile(in)
		}
		out = append(out, p)
	}
	return out, nil
}

func hstProfile(in TaxProfileInput) domain.TaxProfile {
	return domain.TaxProfile{
		TaxType:      domain.TaxHST,
		Frequency:    in.Frequency,
		StartDate:    in.StartDate,
		StartQuarter: in.StartQuarter,
	}
}

func corporationProfile(in TaxProfileInput) domain.TaxProfile {
	return domain.TaxProfile{
		TaxType:   domain.TaxCorporation,
		StartDate: in.StartDate,
		StartYear: in.StartYear,
	}
}

func payrollProfile(in TaxProfileInput) domain.TaxProfile {
	return domain.TaxProfile{
		TaxType:   domain.TaxPayroll,
		Frequency: in.Frequency,
		StartDate: in.StartDate,
	}
}

func wsibProfile(in TaxProfileInput) domain.TaxProfile {
	return domain.TaxProfile{
		TaxType:   domain.TaxWSIB,
		Frequency: in.Frequency,
		StartDate: in.StartDate,
	}
}

func annualRenewalProfile(in TaxProfileInput) domain.TaxProfile {
	return domain.TaxProfile{
		TaxType:   domain.TaxAnnualRenewal,
		StartDate: in.StartDate,
		StartYear: in.StartYear,
	}
}
