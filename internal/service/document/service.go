// Package document orchestrates file uploads attached to tax records. Bytes
// go to the blob store first; the metadata row lands afterwards, and an
// orphaned blob is cleaned up when the row fails.
package document

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"clientdesk/internal/blobstore"
	"clientdesk/internal/db"
	"clientdesk/internal/domain"
)

type documentRepo interface {
	Insert(ctx context.Context, q db.Querier, d domain.Document) (*domain.Document, error)
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.Document, error)
	ListByTaxRecord(ctx context.Context, q db.Querier, taxRecordID string) ([]domain.Document, error)
	Delete(ctx context.Context, q db.Querier, id string) (int64, error)
}

type taxRecordRepo interface {
	GetByID(ctx context.Context, q db.Querier, id string) (*domain.TaxRecord, error)
}

// Service drives document upload and retrieval.
type Service struct {
	pool      db.Pool
	documents documentRepo
	records   taxRecordRepo
	blobs     blobstore.Store
	logger    *log.Logger
}

// Deps collects the service's collaborators.
type Deps struct {
	Documents documentRepo
	Records   taxRecordRepo
	Blobs     blobstore.Store
}

// New creates a Service.
func New(pool db.Pool, deps Deps, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{
		pool:      pool,
		documents: deps.Documents,
		records:   deps.Records,
		blobs:     deps.Blobs,
		logger:    logger,
	}
}

// UploadInput carries a file stream plus its metadata.
type UploadInput struct {
	TaxRecordID string
	FileName    string
	Note        *string
	Body        io.Reader
}

// Upload stores the file bytes and inserts the metadata row. Owner columns
// are copied from the tax record so client and business listings never need
// a join through tax_records.
func (s *Service) Upload(ctx context.Context, in UploadInput, actorID string) (*domain.Document, error) {
	if strings.TrimSpace(actorID) == "" {
		return nil, domain.ErrUnauthenticated
	}
	if strings.TrimSpace(in.FileName) == "" {
		return nil, fmt.Errorf("%w: file name required", domain.ErrInvalid)
	}

	rec, err := s.records.GetByID(ctx, s.pool, in.TaxRecordID)
	if err != nil {
		return nil, err
	}

	key, checksum, err := s.blobs.Put(ctx, in.FileName, in.Body)
	if err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}

	doc, err := s.documents.Insert(ctx, s.pool, domain.Document{
		TaxRecordID: rec.ID,
		ClientID:    rec.ClientID,
		BusinessID:  rec.BusinessID,
		FileName:    in.FileName,
		StorageKey:  key,
		Checksum:    checksum,
		Note:        in.Note,
		UploadedBy:  actorID,
	})
	if err != nil {
		if rmErr := s.blobs.Remove(ctx, key); rmErr != nil {
			s.logger.Printf("orphaned blob %s: %v", key, rmErr)
		}
		return nil, err
	}
	return doc, nil
}

// Open returns the stored bytes for a document together with its metadata.
func (s *Service) Open(ctx context.Context, id string) (*domain.Document, io.ReadCloser, error) {
	doc, err := s.documents.GetByID(ctx, s.pool, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.blobs.Open(ctx, doc.StorageKey)
	if err != nil {
		return nil, nil, fmt.Errorf("open blob %s: %w", doc.StorageKey, err)
	}
	return doc, rc, nil
}

// ListByTaxRecord returns a filing's documents.
func (s *Service) ListByTaxRecord(ctx context.Context, taxRecordID string) ([]domain.Document, error) {
	docs, err := s.documents.ListByTaxRecord(ctx, s.pool, taxRecordID)
	if err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return docs, nil
}

// Delete removes the metadata row, then the blob. A blob that fails to
// delete is logged and left behind; the row is already gone.
func (s *Service) Delete(ctx context.Context, id, actorID string) error {
	if strings.TrimSpace(actorID) == "" {
		return domain.ErrUnauthenticated
	}

	doc, err := s.documents.GetByID(ctx, s.pool, id)
	if err != nil {
		return err
	}
	n, err := s.documents.Delete(ctx, s.pool, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrConflict
	}
	if err := s.blobs.Remove(ctx, doc.StorageKey); err != nil {
		s.logger.Printf("remove blob %s: %v", doc.StorageKey, err)
	}
	return nil
}
