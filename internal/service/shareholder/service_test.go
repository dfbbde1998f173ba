package shareholder

import (
	"context"
	"errors"
	"testing"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeTx struct {
	pgx.Tx
	commits   int
	rollbacks int
}

func (t *fakeTx) Commit(context.Context) error {
	t.commits++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.commits > 0 {
		return pgx.ErrTxClosed
	}
	t.rollbacks++
	return nil
}

type fakePool struct {
	tx     *fakeTx
	begins int
}

func (p *fakePool) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (p *fakePool) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, nil
}

func (p *fakePool) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func (p *fakePool) Begin(context.Context) (pgx.Tx, error) {
	p.begins++
	return p.tx, nil
}

type stubShareholderRepo struct {
	inserted  []domain.Shareholder
	insertErr error
	getResult *domain.Shareholder
	getErr    error
	lastPatch *patch.Builder
	deleted   int64
}

func (s *stubShareholderRepo) Insert(_ context.Context, _ db.Querier, sh domain.Shareholder) (*domain.Shareholder, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	out := sh
	out.ID = "sh-1"
	s.inserted = append(s.inserted, out)
	return &out, nil
}

func (s *stubShareholderRepo) GetByIDForUpdate(_ context.Context, _ db.Querier, _ string) (*domain.Shareholder, error) {
	return s.getResult, s.getErr
}

func (s *stubShareholderRepo) Update(_ context.Context, _ db.Querier, _ string, b *patch.Builder) error {
	s.lastPatch = b
	return nil
}

func (s *stubShareholderRepo) Delete(_ context.Context, _ db.Querier, _ string) (int64, error) {
	return s.deleted, nil
}

type stubBusinessRepo struct {
	getErr error
}

func (s *stubBusinessRepo) GetByID(_ context.Context, _ db.Querier, id string) (*domain.Business, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &domain.Business{ID: id}, nil
}

type stubClientRepo struct {
	inserted []domain.Client
	getErr   error
}

func (s *stubClientRepo) Insert(_ context.Context, _ db.Querier, c domain.Client) (*domain.Client, error) {
	out := c
	out.ID = "client-new"
	s.inserted = append(s.inserted, out)
	return &out, nil
}

func (s *stubClientRepo) GetByID(_ context.Context, _ db.Querier, id string) (*domain.Client, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return &domain.Client{ID: id}, nil
}

type stubCodec struct{}

func (stubCodec) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }
func (stubCodec) Fingerprint(plaintext string) string      { return "fp:" + plaintext }

func strPtr(v string) *string { return &v }

func newTestService(pool *fakePool, shareholders *stubShareholderRepo, businesses *stubBusinessRepo, clients *stubClientRepo) *Service {
	return New(pool, Deps{
		Shareholders: shareholders,
		Businesses:   businesses,
		Clients:      clients,
		Codec:        stubCodec{},
	}, nil)
}

func TestCreateRejectsAmbiguousIdentity(t *testing.T) {
	pool := &fakePool{tx: &fakeTx{}}
	svc := newTestService(pool, &stubShareholderRepo{}, &stubBusinessRepo{}, &stubClientRepo{})

	in := domain.ShareholderInput{
		ClientID:        strPtr("c1"),
		FullName:        strPtr("Jane Roe"),
		SharePercentage: 50,
	}
	_, err := svc.Create(context.Background(), "biz-1", in, "staff-1")
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if pool.begins != 0 {
		t.Fatalf("identity validation must run before any write, got %d begins", pool.begins)
	}
}

func TestCreateRejectsMissingIdentity(t *testing.T) {
	svc := newTestService(&fakePool{tx: &fakeTx{}}, &stubShareholderRepo{}, &stubBusinessRepo{}, &stubClientRepo{})

	_, err := svc.Create(context.Background(), "biz-1", domain.ShareholderInput{SharePercentage: 50}, "staff-1")
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestCreateExistingClientNotFound(t *testing.T) {
	tx := &fakeTx{}
	clients := &stubClientRepo{getErr: domain.ErrNotFound}
	svc := newTestService(&fakePool{tx: tx}, &stubShareholderRepo{}, &stubBusinessRepo{}, clients)

	in := domain.ShareholderInput{ClientID: strPtr("missing"), SharePercentage: 50}
	_, err := svc.Create(context.Background(), "biz-1", in, "staff-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if tx.rollbacks != 1 {
		t.Fatalf("expected rollback, got %d", tx.rollbacks)
	}
}

func TestCreateNewClientMode(t *testing.T) {
	tx := &fakeTx{}
	clients := &stubClientRepo{}
	shareholders := &stubShareholderRepo{}
	svc := newTestService(&fakePool{tx: tx}, shareholders, &stubBusinessRepo{}, clients)

	in := domain.ShareholderInput{
		NewClient:       &domain.NewClientInput{FirstName: "Jane", LastName: "Roe"},
		SharePercentage: 25,
	}
	id, err := svc.Create(context.Background(), "biz-1", in, "staff-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "sh-1" {
		t.Fatalf("expected sh-1, got %s", id)
	}
	if len(clients.inserted) != 1 {
		t.Fatalf("expected backing client insert, got %d", len(clients.inserted))
	}
	if clients.inserted[0].CreatedBy != "staff-1" {
		t.Fatalf("backing client should record the actor, got %q", clients.inserted[0].CreatedBy)
	}
	if tx.commits != 1 {
		t.Fatalf("expected commit, got %d", tx.commits)
	}
}

func TestPatchRejectsForeignBusiness(t *testing.T) {
	tx := &fakeTx{}
	shareholders := &stubShareholderRepo{getResult: &domain.Shareholder{ID: "sh-1", BusinessID: "other"}}
	svc := newTestService(&fakePool{tx: tx}, shareholders, &stubBusinessRepo{}, &stubClientRepo{})

	err := svc.Patch(context.Background(), "biz-1", "sh-1", PatchInput{}, "staff-1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPatchRejectsNonPositiveShare(t *testing.T) {
	svc := newTestService(&fakePool{tx: &fakeTx{}}, &stubShareholderRepo{}, &stubBusinessRepo{}, &stubClientRepo{})

	zero := 0.0
	err := svc.Patch(context.Background(), "biz-1", "sh-1", PatchInput{SharePercentage: &zero}, "staff-1")
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestDeleteZeroRowsIsConflict(t *testing.T) {
	tx := &fakeTx{}
	shareholders := &stubShareholderRepo{getResult: &domain.Shareholder{ID: "sh-1", BusinessID: "biz-1"}, deleted: 0}
	svc := newTestService(&fakePool{tx: tx}, shareholders, &stubBusinessRepo{}, &stubClientRepo{})

	err := svc.Delete(context.Background(), "biz-1", "sh-1", "staff-1")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}
