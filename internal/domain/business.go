package domain

import "time"

// Business is a corporate client of the practice.
type Business struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	BusinessNumber      *string    `json:"businessNumber,omitempty"`
	IncorporationDate   *time.Time `json:"incorporationDate,omitempty"`
	IncorporationNumber *string    `json:"incorporationNumber,omitempty"`
	Email               *string    `json:"email,omitempty"`
	Phone               *string    `json:"phone,omitempty"`
	CreatedBy           string     `json:"createdBy"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

// Address belongs to exactly one client or business. At most one address per
// owner is primary, and for businesses at most one is the mailing address; the
// orchestrators enforce this with unset-then-set updates.
type Address struct {
	ID         string    `json:"id"`
	ClientID   *string   `json:"clientId,omitempty"`
	BusinessID *string   `json:"businessId,omitempty"`
	Line1      string    `json:"line1"`
	Line2      *string   `json:"line2,omitempty"`
	City       *string   `json:"city,omitempty"`
	Province   *string   `json:"province,omitempty"`
	PostalCode *string   `json:"postalCode,omitempty"`
	Country    *string   `json:"country,omitempty"`
	IsPrimary  bool      `json:"isPrimary"`
	IsMailing  bool      `json:"isMailing"`
	CreatedAt  time.Time `json:"createdAt"`
}
