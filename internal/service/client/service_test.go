package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"clientdesk/internal/db"
	"clientdesk/internal/domain"
	"clientdesk/internal/patch"
	clientrepo "clientdesk/internal/repository/client"
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
	txs    []*fakeTx
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
	tx := &fakeTx{}
	p.txs = append(p.txs, tx)
	p.begins++
	return tx, nil
}

type stubClientRepo struct {
	insertErr      error
	insertCalls    int
	inserted       []domain.Client
	getResult      *domain.Client
	getErr         error
	bySINResult    *domain.Client
	bySINErr       error
	lastPatch      *patch.Builder
	updateCalls    int
	statusByID     map[string]*string
	deleted        int64
	deleteErr      error
	spouseLink     *domain.SpouseLink
	spouseLinkErr  error
	linked         [][2]string
	unlinked       [][2]string
	failOnInsertAt int // 1-based call index that fails; 0 disables
}

func (s *stubClientRepo) Insert(_ context.Context, _ db.Querier, c domain.Client) (*domain.Client, error) {
	s.insertCalls++
	if s.failOnInsertAt > 0 && s.insertCalls == s.failOnInsertAt {
		return nil, errors.New("insert failed")
	}
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	out := c
	out.ID = "client-1"
	s.inserted = append(s.inserted, out)
	return &out, nil
}

func (s *stubClientRepo) GetByID(_ context.Context, _ db.Querier, _ string) (*domain.Client, error) {
	return s.getResult, s.getErr
}

func (s *stubClientRepo) GetByIDForUpdate(_ context.Context, _ db.Querier, _ string) (*domain.Client, error) {
	return s.getResult, s.getErr
}

func (s *stubClientRepo) GetBySINHash(_ context.Context, _ db.Querier, _ string) (*domain.Client, error) {
	if s.bySINErr != nil {
		return nil, s.bySINErr
	}
	if s.bySINResult == nil {
		return nil, domain.ErrNotFound
	}
	return s.bySINResult, nil
}

func (s *stubClientRepo) List(_ context.Context, _ db.Querier, _ clientrepo.ListParams) ([]domain.Client, int, error) {
	return nil, 0, nil
}

func (s *stubClientRepo) Update(_ context.Context, _ db.Querier, _ string, b *patch.Builder) error {
	s.lastPatch = b
	if !b.Empty() {
		s.updateCalls++
	}
	return nil
}

func (s *stubClientRepo) SetMaritalStatus(_ context.Context, _ db.Querier, id string, status *string) error {
	if s.statusByID == nil {
		s.statusByID = make(map[string]*string)
	}
	s.statusByID[id] = status
	return nil
}

func (s *stubClientRepo) Delete(_ context.Context, _ db.Querier, _ string) (int64, error) {
	return s.deleted, s.deleteErr
}

func (s *stubClientRepo) LinkSpouses(_ context.Context, _ db.Querier, clientID, spouseID string, _ *time.Time) error {
	s.linked = append(s.linked, [2]string{clientID, spouseID})
	return nil
}

func (s *stubClientRepo) UnlinkSpouses(_ context.Context, _ db.Querier, clientID, spouseID string) error {
	s.unlinked = append(s.unlinked, [2]string{clientID, spouseID})
	return nil
}

func (s *stubClientRepo) GetSpouseLink(_ context.Context, _ db.Querier, _ string) (*domain.SpouseLink, error) {
	if s.spouseLinkErr != nil {
		return nil, s.spouseLinkErr
	}
	if s.spouseLink == nil {
		return nil, domain.ErrNotFound
	}
	return s.spouseLink, nil
}

type stubAddressRepo struct {
	inserted  []domain.Address
	insertErr error
}

func (s *stubAddressRepo) Insert(_ context.Context, _ db.Querier, a domain.Address) (*domain.Address, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	out := a
	out.ID = "addr-" + a.Line1
	s.inserted = append(s.inserted, out)
	return &out, nil
}

func (s *stubAddressRepo) ListByClient(_ context.Context, _ db.Querier, _ string) ([]domain.Address, error) {
	return s.inserted, nil
}

func (s *stubAddressRepo) GetPrimaryByClient(_ context.Context, _ db.Querier, _ string) (*domain.Address, error) {
	for _, a := range s.inserted {
		if a.IsPrimary {
			out := a
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubDependantRepo struct {
	inserted  []domain.Dependant
	insertErr error
}

func (s *stubDependantRepo) Insert(_ context.Context, _ db.Querier, d domain.Dependant) (*domain.Dependant, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	out := d
	out.ID = "dep-1"
	s.inserted = append(s.inserted, out)
	return &out, nil
}

func (s *stubDependantRepo) ListByClient(_ context.Context, _ db.Querier, _ string) ([]domain.Dependant, error) {
	return s.inserted, nil
}

type stubTaxRecordRepo struct{}

func (stubTaxRecordRepo) ListByClient(_ context.Context, _ db.Querier, _ string) ([]domain.TaxRecord, error) {
	return nil, nil
}

type stubDocumentRepo struct{}

func (stubDocumentRepo) ListByClient(_ context.Context, _ db.Querier, _ string) ([]domain.Document, error) {
	return nil, nil
}

type stubCodec struct{}

func (stubCodec) Encrypt(plaintext string) (string, error) { return "enc:" + plaintext, nil }

func (stubCodec) Decrypt(blob string) (string, bool) {
	if len(blob) > 4 && blob[:4] == "enc:" {
		return blob[4:], true
	}
	return "", false
}

func (stubCodec) Fingerprint(plaintext string) string { return "fp:" + plaintext }

func strPtr(v string) *string { return &v }

func newTestService(pool *fakePool, clients *stubClientRepo, addresses *stubAddressRepo, dependants *stubDependantRepo) *Service {
	return New(pool, Deps{
		Clients:    clients,
		Addresses:  addresses,
		Dependants: dependants,
		TaxRecords: stubTaxRecordRepo{},
		Documents:  stubDocumentRepo{},
		Codec:      stubCodec{},
	}, nil)
}

func TestCreateRejectsDuplicateSIN(t *testing.T) {
	pool := &fakePool{}
	clients := &stubClientRepo{bySINResult: &domain.Client{ID: "existing"}}
	svc := newTestService(pool, clients, &stubAddressRepo{}, &stubDependantRepo{})

	in := CreateInput{FirstName: "Dana", LastName: "Whitfield", SIN: strPtr("123456789")}
	_, err := svc.Create(context.Background(), in, "staff-1")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if pool.begins != 0 {
		t.Fatalf("expected no transaction, got %d begins", pool.begins)
	}
}

func TestCreateEncryptsSINAndStoresFingerprint(t *testing.T) {
	pool := &fakePool{}
	clients := &stubClientRepo{}
	svc := newTestService(pool, clients, &stubAddressRepo{}, &stubDependantRepo{})

	in := CreateInput{FirstName: "Dana", LastName: "Whitfield", SIN: strPtr(" 123456789 ")}
	if _, err := svc.Create(context.Background(), in, "staff-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c := clients.inserted[0]
	if c.SINEncrypted == nil || *c.SINEncrypted != "enc:123456789" {
		t.Fatalf("sin not encrypted or not trimmed: %v", c.SINEncrypted)
	}
	if c.SINHash == nil || *c.SINHash != "fp:123456789" {
		t.Fatalf("fingerprint missing: %v", c.SINHash)
	}
}

func TestCreateDependantSameAddressReusesPrimary(t *testing.T) {
	pool := &fakePool{}
	addresses := &stubAddressRepo{}
	dependants := &stubDependantRepo{}
	svc := newTestService(pool, &stubClientRepo{}, addresses, dependants)

	in := CreateInput{
		FirstName: "Dana",
		LastName:  "Whitfield",
		Addresses: []AddressInput{{Line1: "1 Front St"}, {Line1: "2 Bay St"}},
		Dependants: []DependantInput{
			{FirstName: "Kim", LastName: "Whitfield", SameAddress: true},
			{FirstName: "Lee", LastName: "Whitfield", Address: &AddressInput{Line1: "9 King St"}},
		},
	}
	if _, err := svc.Create(context.Background(), in, "staff-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(dependants.inserted) != 2 {
		t.Fatalf("expected 2 dependants, got %d", len(dependants.inserted))
	}
	same := dependants.inserted[0]
	if same.AddressID == nil || *same.AddressID != "addr-1 Front St" {
		t.Fatalf("same-address dependant should reuse the primary address, got %v", same.AddressID)
	}
	own := dependants.inserted[1]
	if own.AddressID == nil || *own.AddressID != "addr-9 King St" {
		t.Fatalf("dependant with own address got %v", own.AddressID)
	}
	// Three address rows total: two for the client, one for the dependant.
	if len(addresses.inserted) != 3 {
		t.Fatalf("expected 3 address rows, got %d", len(addresses.inserted))
	}
}

func TestCreateWithSpouseLinksAndMarries(t *testing.T) {
	pool := &fakePool{}
	clients := &stubClientRepo{getResult: &domain.Client{ID: "spouse-1"}}
	svc := newTestService(pool, clients, &stubAddressRepo{}, &stubDependantRepo{})

	in := CreateInput{
		FirstName:      "Dana",
		LastName:       "Whitfield",
		SpouseClientID: strPtr("spouse-1"),
	}
	if _, err := svc.Create(context.Background(), in, "staff-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clients.linked) != 1 {
		t.Fatalf("expected one spouse link, got %d", len(clients.linked))
	}
	married := clients.statusByID["client-1"]
	if married == nil || *married != "married" {
		t.Fatalf("new client should be married, got %v", married)
	}
}

func TestPatchNoOpSkipsUpdate(t *testing.T) {
	pool := &fakePool{}
	email := "dana@example.com"
	clients := &stubClientRepo{getResult: &domain.Client{
		ID:        "client-1",
		FirstName: "Dana",
		LastName:  "Whitfield",
		Email:     &email,
	}}
	svc := newTestService(pool, clients, &stubAddressRepo{}, &stubDependantRepo{})

	in := PatchInput{FirstName: strPtr("Dana"), Email: strPtr("dana@example.com")}
	if _, err := svc.Patch(context.Background(), "client-1", in, "staff-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clients.updateCalls != 0 {
		t.Fatalf("no-op patch should not update, got %d calls", clients.updateCalls)
	}
}

func TestPatchUnchangedSINDoesNotRewriteCiphertext(t *testing.T) {
	pool := &fakePool{}
	enc := "enc:123456789"
	hash := "fp:123456789"
	clients := &stubClientRepo{getResult: &domain.Client{
		ID:           "client-1",
		FirstName:    "Dana",
		LastName:     "Whitfield",
		SINEncrypted: &enc,
		SINHash:      &hash,
	}}
	svc := newTestService(pool, clients, &stubAddressRepo{}, &stubDependantRepo{})

	in := PatchInput{SIN: strPtr("123456789")}
	if _, err := svc.Patch(context.Background(), "client-1", in, "staff-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clients.updateCalls != 0 {
		t.Fatal("matching fingerprint should leave the ciphertext alone")
	}
}

func TestPatchChangedSINSetsBothColumns(t *testing.T) {
	pool := &fakePool{}
	enc := "enc:123456789"
	hash := "fp:123456789"
	clients := &stubClientRepo{getResult: &domain.Client{
		ID:           "client-1",
		FirstName:    "Dana",
		LastName:     "Whitfield",
		SINEncrypted: &enc,
		SINHash:      &hash,
	}}
	svc := newTestService(pool, clients, &stubAddressRepo{}, &stubDependantRepo{})

	in := PatchInput{SIN: strPtr("987654321")}
	if _, err := svc.Patch(context.Background(), "client-1", in, "staff-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cols := clients.lastPatch.Columns()
	if len(cols) != 2 || cols[0] != "sin_encrypted" || cols[1] != "sin_hash" {
		t.Fatalf("expected sin columns, got %v", cols)
	}
}

func TestPatchRejectsSINHeldByAnotherClient(t *testing.T) {
	pool := &fakePool{}
	clients := &stubClientRepo{
		getResult:   &domain.Client{ID: "client-1", FirstName: "Dana", LastName: "Whitfield"},
		bySINResult: &domain.Client{ID: "client-2"},
	}
	svc := newTestService(pool, clients, &stubAddressRepo{}, &stubDependantRepo{})

	in := PatchInput{SIN: strPtr("987654321")}
	_, err := svc.Patch(context.Background(), "client-1", in, "staff-1")
	if !errors.Is(err, domain.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if clients.updateCalls != 0 {
		t.Fatalf("duplicate sin should not update, got %d calls", clients.updateCalls)
	}
}

func TestPatchAllowsOwnSINFingerprint(t *testing.T) {
	pool := &fakePool{}
	enc := "enc:123456789"
	hash := "fp:123456789"
	clients := &stubClientRepo{
		getResult: &domain.Client{
			ID:           "client-1",
			FirstName:    "Dana",
			LastName:     "Whitfield",
			SINEncrypted: &enc,
			SINHash:      &hash,
		},
		bySINResult: &domain.Client{ID: "client-1"},
	}
	svc := newTestService(pool, clients, &stubAddressRepo{}, &stubDependantRepo{})

	in := PatchInput{SIN: strPtr("987654321")}
	if _, err := svc.Patch(context.Background(), "client-1", in, "staff-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if clients.lastPatch == nil || clients.lastPatch.Empty() {
		t.Fatal("changed sin on the same client should still be written")
	}
}

func TestDeleteClearsSpouse(t *testing.T) {
	pool := &fakePool{}
	clients := &stubClientRepo{
		getResult:  &domain.Client{ID: "client-1"},
		spouseLink: &domain.SpouseLink{ClientID: "client-1", LinkedClientID: "spouse-1"},
		deleted:    1,
	}
	svc := newTestService(pool, clients, &stubAddressRepo{}, &stubDependantRepo{})

	if err := svc.Delete(context.Background(), "client-1", "staff-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(clients.unlinked) != 1 {
		t.Fatalf("expected spouse unlink, got %d", len(clients.unlinked))
	}
	status, ok := clients.statusByID["spouse-1"]
	if !ok || status != nil {
		t.Fatalf("spouse marital status should be cleared, got %v (set=%v)", status, ok)
	}
}

func TestDeleteZeroRowsIsConflict(t *testing.T) {
	pool := &fakePool{}
	clients := &stubClientRepo{getResult: &domain.Client{ID: "client-1"}, deleted: 0}
	svc := newTestService(pool, clients, &stubAddressRepo{}, &stubDependantRepo{})

	err := svc.Delete(context.Background(), "client-1", "staff-1")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestLinkSpouseRejectsSelf(t *testing.T) {
	pool := &fakePool{}
	svc := newTestService(pool, &stubClientRepo{}, &stubAddressRepo{}, &stubDependantRepo{})

	err := svc.LinkSpouse(context.Background(), "c1", "c1", nil, "staff-1")
	if !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestCreateBulkIsolatesFailures(t *testing.T) {
	pool := &fakePool{}
	clients := &stubClientRepo{failOnInsertAt: 2}
	svc := newTestService(pool, clients, &stubAddressRepo{}, &stubDependantRepo{})

	inputs := []CreateInput{
		{FirstName: "A", LastName: "One"},
		{FirstName: "B", LastName: "Two"},
		{FirstName: "C", LastName: "Three"},
	}
	summary, err := svc.CreateBulk(context.Background(), inputs, "staff-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Created != 2 || summary.Failed != 1 {
		t.Fatalf("expected 2 created 1 failed, got %+v", summary)
	}
	if summary.Results[1].Error == "" || summary.Results[1].ClientID != "" {
		t.Fatalf("row 1 should carry an error, got %+v", summary.Results[1])
	}
	// Each row runs in its own transaction.
	if pool.begins != 3 {
		t.Fatalf("expected 3 transactions, got %d", pool.begins)
	}
	failedTx := pool.txs[1]
	if failedTx.commits != 0 || failedTx.rollbacks != 1 {
		t.Fatalf("failed row should roll back, got commits=%d rollbacks=%d", failedTx.commits, failedTx.rollbacks)
	}
}

func TestGetDetailDecryptsSIN(t *testing.T) {
	pool := &fakePool{}
	enc := "enc:123456789"
	clients := &stubClientRepo{getResult: &domain.Client{ID: "client-1", SINEncrypted: &enc}}
	svc := newTestService(pool, clients, &stubAddressRepo{}, &stubDependantRepo{})

	detail, err := svc.GetDetail(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Client.SIN == nil || *detail.Client.SIN != "123456789" {
		t.Fatalf("expected decrypted sin, got %v", detail.Client.SIN)
	}
}

func TestGetDetailDegradesOnBadCiphertext(t *testing.T) {
	pool := &fakePool{}
	enc := "garbage"
	clients := &stubClientRepo{getResult: &domain.Client{ID: "client-1", SINEncrypted: &enc}}
	svc := newTestService(pool, clients, &stubAddressRepo{}, &stubDependantRepo{})

	detail, err := svc.GetDetail(context.Background(), "client-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Client.SIN != nil {
		t.Fatalf("undecryptable sin should read as null, got %v", detail.Client.SIN)
	}
}
