package domain

import "time"

// Note is a free-text annotation on a client, business or tax record.
type Note struct {
	ID          string    `json:"id"`
	ClientID    *string   `json:"clientId,omitempty"`
	BusinessID  *string   `json:"businessId,omitempty"`
	TaxRecordID *string   `json:"taxRecordId,omitempty"`
	Body        string    `json:"body"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
