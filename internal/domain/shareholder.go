package domain

import (
	"strings"
	"time"
)

// Shareholder belongs to exactly one business. ClientID is set when the
// shareholder is backed by a personal client record; FullName alone is the
// standalone mode.
type Shareholder struct {
	ID              string    `json:"id"`
	BusinessID      string    `json:"businessId"`
	ClientID        *string   `json:"clientId,omitempty"`
	FullName        *string   `json:"fullName,omitempty"`
	SharePercentage float64   `json:"sharePercentage"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ShareholderIdentity is the closed set of ways a shareholder can be
// identified: an existing personal client, a new personal client created in
// the same transaction, or a bare name with no client linkage.
type ShareholderIdentity interface {
	isShareholderIdentity()
}

// ExistingClient references a personal client already on file.
type ExistingClient struct {
	ClientID string
}

// NewClient carries the fields for a personal client created alongside the
// shareholder row.
type NewClient struct {
	FirstName   string
	LastName    string
	DateOfBirth *time.Time
	Email       *string
	Phone       *string
	SIN         *string
}

// Standalone is a shareholder known only by name.
type Standalone struct {
	FullName string
}

func (ExistingClient) isShareholderIdentity() {}
func (NewClient) isShareholderIdentity()      {}
func (Standalone) isShareholderIdentity()     {}

// ShareholderInput is the wire shape for a shareholder; exactly one identity
// mode must be populated.
type ShareholderInput struct {
	ClientID        *string         `json:"clientId,omitempty"`
	NewClient       *NewClientInput `json:"personalClient,omitempty"`
	FullName        *string         `json:"fullName,omitempty"`
	SharePercentage float64         `json:"sharePercentage"`
}

// NewClientInput is the inline new-client payload of a shareholder.
type NewClientInput struct {
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
	Email       *string    `json:"email,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	SIN         *string    `json:"sin,omitempty"`
}

// Identity validates the exactly-one-of-three rule and returns the chosen
// mode. It never touches storage.
func (in ShareholderInput) Identity() (ShareholderIdentity, error) {
	modes := 0
	if in.ClientID != nil && strings.TrimSpace(*in.ClientID) != "" {
		modes++
	}
	if in.NewClient != nil {
		modes++
	}
	if in.FullName != nil && strings.TrimSpace(*in.FullName) != "" {
		modes++
	}
	if modes != 1 {
		return nil, ErrInvalid
	}
	switch {
	case in.ClientID != nil && strings.TrimSpace(*in.ClientID) != "":
		return ExistingClient{ClientID: strings.TrimSpace(*in.ClientID)}, nil
	case in.NewClient != nil:
		nc := in.NewClient
		if strings.TrimSpace(nc.FirstName) == "" || strings.TrimSpace(nc.LastName) == "" {
			return nil, ErrInvalid
		}
		return NewClient{
			FirstName:   strings.TrimSpace(nc.FirstName),
			LastName:    strings.TrimSpace(nc.LastName),
			DateOfBirth: nc.DateOfBirth,
			Email:       nc.Email,
			Phone:       nc.Phone,
			SIN:         nc.SIN,
		}, nil
	default:
		return Standalone{FullName: strings.TrimSpace(*in.FullName)}, nil
	}
}
