package business

import (
	"context"

	"clientdesk/internal/domain"
)

// Detail is the hydrated business aggregate: documents grouped under their
// tax record, records grouped by tax type under their profile.
type Detail struct {
	Business     domain.Business      `json:"business"`
	Addresses    []domain.Address     `json:"addresses"`
	Shareholders []domain.Shareholder `json:"shareholders"`
	TaxProfiles  []ProfileDetail      `json:"taxProfiles"`
}

// ProfileDetail is one tax profile with its filing history.
type ProfileDetail struct {
	domain.TaxProfile
	Records []RecordDetail `json:"records"`
}

// RecordDetail is one filing with its attached documents.
type RecordDetail struct {
	domain.TaxRecord
	Documents []domain.Document `json:"documents"`
}

// GetDetail hydrates the full business aggregate. The reads run outside any
// write transaction; each query is independent and the tree is assembled in
// memory.
func (s *Service) GetDetail(ctx context.Context, id string) (*Detail, error) {
	biz, err := s.businesses.GetByID(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}

	addresses, err := s.addresses.ListByBusiness(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	shareholders, err := s.shareholders.ListByBusiness(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	profiles, err := s.taxProfiles.ListByBusiness(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	records, err := s.taxRecords.ListByBusiness(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}
	documents, err := s.documents.ListByBusiness(ctx, s.pool, id)
	if err != nil {
		return nil, err
	}

	docsByRecord := make(map[string][]domain.Document)
	for _, d := range documents {
		docsByRecord[d.TaxRecordID] = append(docsByRecord[d.TaxRecordID], d)
	}

	recordsByType := make(map[domain.TaxType][]RecordDetail)
	for _, rec := range records {
		docs := docsByRecord[rec.ID]
		if docs == nil {
			docs = []domain.Document{}
		}
		recordsByType[rec.TaxType] = append(recordsByType[rec.TaxType], RecordDetail{
			TaxRecord: rec,
			Documents: docs,
		})
	}

	profileDetails := make([]ProfileDetail, 0, len(profiles))
	for _, p := range profiles {
		recs := recordsByType[p.TaxType]
		if recs == nil {
			recs = []RecordDetail{}
		}
		profileDetails = append(profileDetails, ProfileDetail{
			TaxProfile: p,
			Records:    recs,
		})
	}

	if addresses == nil {
		addresses = []domain.Address{}
	}
	if shareholders == nil {
		shareholders = []domain.Shareholder{}
	}

	return &Detail{
		Business:     *biz,
		Addresses:    addresses,
		Shareholders: shareholders,
		TaxProfiles:  profileDetails,
	}, nil
}
