package domain

import "time"

// Document is an uploaded file reference attached to a tax record. The bytes
// live in the blob store; only the storage key and checksum are persisted.
// Owner columns are denormalized from the tax record for fast lookup.
type Document struct {
	ID          string    `json:"id"`
	TaxRecordID string    `json:"taxRecordId"`
	ClientID    *string   `json:"clientId,omitempty"`
	BusinessID  *string   `json:"businessId,omitempty"`
	FileName    string    `json:"fileName"`
	StorageKey  string    `json:"storageKey"`
	Checksum    string    `json:"checksum"`
	Note        *string   `json:"note,omitempty"`
	UploadedBy  string    `json:"uploadedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
