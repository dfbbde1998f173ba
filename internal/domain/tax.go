package domain

import "time"

// TaxType enumerates the registrations a business can hold.
type TaxType string

const (
	TaxHST           TaxType = "HST"
	TaxCorporation   TaxType = "CORPORATION"
	TaxPayroll       TaxType = "PAYROLL"
	TaxWSIB          TaxType = "WSIB"
	TaxAnnualRenewal TaxType = "ANNUAL_RENEWAL"

	// TaxPersonal tags the yearly personal filing record. It is not a
	// business registration type and never appears on a tax profile.
	TaxPersonal TaxType = "PERSONAL"
)

// TaxTypes lists every known tax type in a stable order.
var TaxTypes = []TaxType{TaxHST, TaxCorporation, TaxPayroll, TaxWSIB, TaxAnnualRenewal}

// Valid reports whether t is one of the known tax types.
func (t TaxType) Valid() bool {
	switch t {
	case TaxHST, TaxCorporation, TaxPayroll, TaxWSIB, TaxAnnualRenewal:
		return true
	}
	return false
}

// TaxProfile is a business's registration for one tax type. At most one
// profile exists per (business, tax type).
type TaxProfile struct {
	ID           string     `json:"id"`
	BusinessID   string     `json:"businessId"`
	TaxType      TaxType    `json:"taxType"`
	Frequency    *string    `json:"frequency,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	StartYear    *int       `json:"startYear,omitempty"`
	StartQuarter *string    `json:"startQuarter,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// TaxRecord is one dated filing event, owned either by a personal client or
// by a business tax profile. Business records are unique per
// (business, tax type, year, period); personal records upsert on
// (client, year) since personal filings are yearly only.
type TaxRecord struct {
	ID           string    `json:"id"`
	ClientID     *string   `json:"clientId,omitempty"`
	BusinessID   *string   `json:"businessId,omitempty"`
	TaxProfileID *string   `json:"taxProfileId,omitempty"`
	TaxType      TaxType   `json:"taxType"`
	TaxYear      int       `json:"taxYear"`
	TaxPeriod    *string   `json:"taxPeriod,omitempty"`
	Status       *string   `json:"status,omitempty"`
	CreatedBy    string    `json:"createdBy"`
	CreatedAt    time.Time `json:"createdAt"`
}
