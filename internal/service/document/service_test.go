package document

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakePool struct{}

func (fakePool) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (fakePool) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (fakePool) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (fakePool) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("no transactions here")
}

type stubDocumentRepo struct {
	inserted  []domain.Document
	insertErr error
	getResult *domain.Document
	getErr    error
	deleted   int64
}

func (s *stubDocumentRepo) Insert(_ context.Context, _ db.Querier, d domain.Document) (*domain.Document, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	out := d
	out.ID = "doc-1"
	s.inserted = append(s.inserted, out)
	return &out, nil
}

func (s *stubDocumentRepo) GetByID(_ context.Context, _ db.Querier, _ string) (*domain.Document, error) {
	return s.getResult, s.getErr
}

func (s *stubDocumentRepo) ListByTaxRecord(_ context.Context, _ db.Querier, _ string) ([]domain.Document, error) {
	return s.inserted, nil
}

func (s *stubDocumentRepo) Delete(_ context.Context, _ db.Querier, _ string) (int64, error) {
	return s.deleted, nil
}

type stubRecordRepo struct {
	record *domain.TaxRecord
	err    error
}

func (s *stubRecordRepo) GetByID(_ context.Context, _ db.Querier, _ string) (*domain.TaxRecord, error) {
	return s.record, s.err
}

type stubBlobStore struct {
	putKey   string
	putErr   error
	removed  []string
	openErr  error
	contents string
}

func (s *stubBlobStore) Put(_ context.Context, _ string, r io.Reader) (string, string, error) {
	if s.putErr != nil {
		return "", "", s.putErr
	}
	io.Copy(io.Discard, r)
	return s.putKey, "checksum", nil
}

func (s *stubBlobStore) Open(_ context.Context, _ string) (io.ReadCloser, error) {
	if s.openErr != nil {
		return nil, s.openErr
	}
	return io.NopCloser(strings.NewReader(s.contents)), nil
}

func (s *stubBlobStore) Remove(_ context.Context, key string) error {
	s.removed = append(s.removed, key)
	return nil
}

func TestUploadDenormalizesOwner(t *testing.T) {
	clientID := "client-1"
	docs := &stubDocumentRepo{}
	records := &stubRecordRepo{record: &domain.TaxRecord{ID: "rec-1", ClientID: &clientID}}
	blobs := &stubBlobStore{putKey: "key-1"}
	svc := New(fakePool{}, Deps{Documents: docs, Records: records, Blobs: blobs}, nil)

	doc, err := svc.Upload(context.Background(), UploadInput{
		TaxRecordID: "rec-1",
		FileName:    "t4.pdf",
		Body:        strings.NewReader("pdf bytes"),
	}, "staff-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ClientID == nil || *doc.ClientID != "client-1" {
		t.Fatalf("owner not copied from tax record: %+v", doc)
	}
	if doc.StorageKey != "key-1" || doc.Checksum != "checksum" {
		t.Fatalf("blob metadata missing: %+v", doc)
	}
	if doc.UploadedBy != "staff-1" {
		t.Fatalf("actor not recorded: %q", doc.UploadedBy)
	}
}

func TestUploadCleansUpBlobWhenInsertFails(t *testing.T) {
	clientID := "client-1"
	docs := &stubDocumentRepo{insertErr: errors.New("insert failed")}
	records := &stubRecordRepo{record: &domain.TaxRecord{ID: "rec-1", ClientID: &clientID}}
	blobs := &stubBlobStore{putKey: "key-1"}
	svc := New(fakePool{}, Deps{Documents: docs, Records: records, Blobs: blobs}, nil)

	_, err := svc.Upload(context.Background(), UploadInput{
		TaxRecordID: "rec-1",
		FileName:    "t4.pdf",
		Body:        strings.NewReader("pdf bytes"),
	}, "staff-1")
	if err == nil {
		t.Fatal("expected error")
	}
	if len(blobs.removed) != 1 || blobs.removed[0] != "key-1" {
		t.Fatalf("orphaned blob not removed: %v", blobs.removed)
	}
}

func TestUploadUnknownRecord(t *testing.T) {
	records := &stubRecordRepo{err: domain.ErrNotFound}
	blobs := &stubBlobStore{putKey: "key-1"}
	svc := New(fakePool{}, Deps{Documents: &stubDocumentRepo{}, Records: records, Blobs: blobs}, nil)

	_, err := svc.Upload(context.Background(), UploadInput{
		TaxRecordID: "missing",
		FileName:    "t4.pdf",
		Body:        strings.NewReader("x"),
	}, "staff-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(blobs.removed) != 0 {
		t.Fatal("nothing should have been stored")
	}
}

func TestDeleteRemovesBlobAfterRow(t *testing.T) {
	docs := &stubDocumentRepo{
		getResult: &domain.Document{ID: "doc-1", StorageKey: "key-1"},
		deleted:   1,
	}
	blobs := &stubBlobStore{}
	svc := New(fakePool{}, Deps{Documents: docs, Records: &stubRecordRepo{}, Blobs: blobs}, nil)

	if err := svc.Delete(context.Background(), "doc-1", "staff-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blobs.removed) != 1 || blobs.removed[0] != "key-1" {
		t.Fatalf("blob not removed: %v", blobs.removed)
	}
}
