package domain

import "time"

// Client is a personal client of the practice. SIN is stored encrypted next to
// a deterministic fingerprint so equality lookups never need decryption.
type Client struct {
	ID            string     `json:"id"`
	FirstName     string     `json:"firstName"`
	LastName      string     `json:"lastName"`
	DateOfBirth   *time.Time `json:"dateOfBirth,omitempty"`
	Gender        *string    `json:"gender,omitempty"`
	Email         *string    `json:"email,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	SINEncrypted  *string    `json:"-"`
	SINHash       *string    `json:"-"`
	SIN           *string    `json:"sin,omitempty"`
	MaritalStatus *string    `json:"maritalStatus,omitempty"`
	CreatedBy     string     `json:"createdBy"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// SpouseLink is one direction of a symmetric spouse pair. The mirrored row
// always exists alongside it; repositories only ever write or delete both
// directions together.
type SpouseLink struct {
	ClientID       string     `json:"clientId"`
	LinkedClientID string     `json:"linkedClientId"`
	DateOfMarriage *time.Time `json:"dateOfMarriage,omitempty"`
}

// Dependant belongs to one personal client. It either carries its own address
// row or reuses the client's primary address via SameAddress.
type Dependant struct {
	ID           string     `json:"id"`
	ClientID     string     `json:"clientId"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	DateOfBirth  *time.Time `json:"dateOfBirth,omitempty"`
	Relationship *string    `json:"relationship,omitempty"`
	SameAddress  bool       `json:"sameAddress"`
	AddressID    *string    `json:"addressId,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}
