package client

import (
	"context"
	"errors"
	"strings"

	"clientdesk/internal/domain"
)

// BulkResult reports the outcome for one input row, by its position in the
// request. Exactly one of ClientID and Error is set.
type BulkResult struct {
	Index    int    `json:"index"`
	ClientID string `json:"clientId,omitempty"`
	Error    string `json:"error,omitempty"`
}

// BulkSummary aggregates a bulk create run.
type BulkSummary struct {
	Created int          `json:"created"`
	Failed  int          `json:"failed"`
	Results []BulkResult `json:"results"`
}

// CreateBulk creates each client in its own transaction, sequentially. One
// failing row never rolls back its neighbours; the summary records the
// outcome per index so the caller can retry just the failures.
func (s *Service) CreateBulk(ctx context.Context, inputs []CreateInput, actorID string) (*BulkSummary, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.ErrUnauthenticated
	}

	summary := &BulkSummary{Results: make([]BulkResult, 0, len(inputs))}
	for i, in := range inputs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id, err := s.Create(ctx, in, actorID)
		if err != nil {
			if errors.Is(err, domain.ErrUnauthenticated) {
				return nil, err
			}
			summary.Failed++
			summary.Results = append(summary.Results, BulkResult{Index: i, Error: err.Error()})
			continue
		}
		summary.Created++
		summary.Results = append(summary.Results, BulkResult{Index: i, ClientID: id})
	}
	return summary, nil
}
