package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vosemintl/go-giving-backend/internal/domain"
	"github.com/vosemintl/go-giving-backend/internal/mail"
	"github.com/vosemintl/go-giving-backend/internal/paystack"
	"github.com/vosemintl/go-giving-backend/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:donationsvc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// ---------- collaborator stubs ----------

type stubGateway struct {
	calls int
	tx    *paystack.Transaction
	err   error
}

func (g *stubGateway) Verify(ctx context.Context, reference string) (*paystack.Transaction, error) {
	g.calls++
	if g.err != nil {
		return nil, g.err
	}
	return g.tx, nil
}

type stubMailer struct {
	sends int
	last  mail.Receipt
	err   error
}

func (m *stubMailer) SendReceipt(ctx context.Context, r mail.Receipt) error {
	m.sends++
	m.last = r
	return m.err
}

// dbDonationRepo adapts the repo free functions to the DonationRepo
// interface, with optional failure injection on the write path.
type dbDonationRepo struct {
	upserts   int
	upsertErr error
}

func (r *dbDonationRepo) Upsert(ctx context.Context, db *gorm.DB, d *domain.Donation) error {
	r.upserts++
	if r.upsertErr != nil {
		return r.upsertErr
	}
	return repo.UpsertDonation(ctx, db, d)
}

func (r *dbDonationRepo) Get(ctx context.Context, db *gorm.DB, reference string) (*domain.Donation, error) {
	return repo.GetDonation(ctx, db, reference)
}

func (r *dbDonationRepo) Count(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return repo.CountDonations(ctx, db, userID)
}

func (r *dbDonationRepo) ListPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Donation, error) {
	return repo.ListDonationsPage(ctx, db, userID, offset, limit)
}

func (r *dbDonationRepo) Stats(ctx context.Context, db *gorm.DB, userID string) (int64, *time.Time, error) {
	return repo.DonationsStats(ctx, db, userID)
}

func successTx() *paystack.Transaction {
	return &paystack.Transaction{
		Status:    "success",
		Reference: "VOSEM-1700000000000",
		Amount:    1000000,
		Currency:  "NGN",
		Customer:  paystack.Customer{Email: "a@x.com", FirstName: "J."},
		Metadata:  paystack.Metadata{UserID: "u1", Purpose: "Tithes", Name: "Jane"},
	}
}

func newSvc(db *gorm.DB, gw Gateway, r DonationRepo, m mail.Mailer) *DonationService {
	return &DonationService{DB: db, Repo: r, Gateway: gw, Mailer: m}
}

// ---------- precondition failures (no gateway call) ----------

func TestVerifyDonation_MissingReference(t *testing.T) {
	gw := &stubGateway{tx: successTx()}
	svc := newSvc(newTestDB(t), gw, &dbDonationRepo{}, &stubMailer{})

	_, err := svc.VerifyDonation(context.Background(), "   ")
	if !errors.Is(err, ErrMissingReference) {
		t.Fatalf("err = %v; want ErrMissingReference", err)
	}
	if gw.calls != 0 {
		t.Fatalf("gateway must not be called; calls = %d", gw.calls)
	}
}

func TestVerifyDonation_GatewayNotConfigured(t *testing.T) {
	svc := newSvc(newTestDB(t), nil, &dbDonationRepo{}, &stubMailer{})

	_, err := svc.VerifyDonation(context.Background(), "ref-1")
	if !errors.Is(err, ErrGatewayNotConfigured) {
		t.Fatalf("err = %v; want ErrGatewayNotConfigured", err)
	}
}

// ---------- verification truth failures ----------

func TestVerifyDonation_GatewayErrorBlocksResponse(t *testing.T) {
	gw := &stubGateway{err: errors.New("connection reset")}
	m := &stubMailer{}
	r := &dbDonationRepo{}
	svc := newSvc(newTestDB(t), gw, r, m)

	_, err := svc.VerifyDonation(context.Background(), "ref-1")
	if err == nil || errors.Is(err, ErrMissingReference) {
		t.Fatalf("expected wrapped gateway error, got %v", err)
	}
	if r.upserts != 0 || m.sends != 0 {
		t.Fatalf("no side effects on verification failure: upserts=%d sends=%d", r.upserts, m.sends)
	}
}

func TestVerifyDonation_NonSuccessStatus(t *testing.T) {
	tx := successTx()
	tx.Status = "abandoned"
	gw := &stubGateway{tx: tx}
	m := &stubMailer{}
	r := &dbDonationRepo{}
	db := newTestDB(t)
	svc := newSvc(db, gw, r, m)

	res, err := svc.VerifyDonation(context.Background(), tx.Reference)
	if err != nil {
		t.Fatalf("non-success is a business outcome, not an error: %v", err)
	}
	if res.Verified || res.GatewayStatus != "abandoned" {
		t.Fatalf("result = %+v", res)
	}
	if r.upserts != 0 || m.sends != 0 {
		t.Fatalf("no side effects for failed payment: upserts=%d sends=%d", r.upserts, m.sends)
	}
	var count int64
	db.Model(&domain.Donation{}).Count(&count)
	if count != 0 {
		t.Fatalf("no rows expected, got %d", count)
	}
}

// ---------- the happy path ----------

func TestVerifyDonation_SuccessPersistsAndNotifies(t *testing.T) {
	db := newTestDB(t)
	gw := &stubGateway{tx: successTx()}
	m := &stubMailer{}
	svc := newSvc(db, gw, &dbDonationRepo{}, m)

	res, err := svc.VerifyDonation(context.Background(), "VOSEM-1700000000000")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !res.Verified || res.Transaction.Amount != 1000000 {
		t.Fatalf("result = %+v", res)
	}

	got, err := repo.GetDonation(context.Background(), db, "VOSEM-1700000000000")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	want := domain.Donation{
		Reference:  "VOSEM-1700000000000",
		UserID:     "u1",
		Amount:     1000000,
		Currency:   "NGN",
		Purpose:    "Tithes",
		Status:     "success",
		DonorName:  "Jane",
		DonorEmail: "a@x.com",
	}
	got.CreatedAt = want.CreatedAt // server-assigned, compared separately
	if *got != want {
		t.Fatalf("record = %+v; want %+v", got, want)
	}

	if m.sends != 1 || m.last.To != "a@x.com" || m.last.Amount != 1000000 {
		t.Fatalf("receipt = %+v (sends=%d)", m.last, m.sends)
	}
}

func TestVerifyDonation_RepeatInvocationsKeepOneRecord(t *testing.T) {
	db := newTestDB(t)
	gw := &stubGateway{tx: successTx()}
	svc := newSvc(db, gw, &dbDonationRepo{}, &stubMailer{})

	for i := 0; i < 3; i++ {
		if _, err := svc.VerifyDonation(context.Background(), "VOSEM-1700000000000"); err != nil {
			t.Fatalf("attempt %d: %v", i, err)
		}
	}

	var count int64
	db.Model(&domain.Donation{}).Count(&count)
	if count != 1 {
		t.Fatalf("count = %d; want exactly 1 after retries", count)
	}
}

// ---------- best-effort side effects ----------

func TestVerifyDonation_MissingUserIDSkipsPersistence(t *testing.T) {
	db := newTestDB(t)
	tx := successTx()
	tx.Metadata.UserID = ""
	gw := &stubGateway{tx: tx}
	m := &stubMailer{}
	r := &dbDonationRepo{}
	svc := newSvc(db, gw, r, m)

	res, err := svc.VerifyDonation(context.Background(), tx.Reference)
	if err != nil || !res.Verified {
		t.Fatalf("success expected without userId: res=%+v err=%v", res, err)
	}
	if r.upserts != 0 {
		t.Fatalf("persistence must be skipped; upserts = %d", r.upserts)
	}
	if m.sends != 1 {
		t.Fatalf("receipt should still be attempted; sends = %d", m.sends)
	}
}

func TestVerifyDonation_PersistenceFailureDoesNotChangeOutcome(t *testing.T) {
	db := newTestDB(t)
	gw := &stubGateway{tx: successTx()}
	m := &stubMailer{}
	r := &dbDonationRepo{upsertErr: errors.New("disk full")}
	svc := newSvc(db, gw, r, m)

	res, err := svc.VerifyDonation(context.Background(), "VOSEM-1700000000000")
	if err != nil {
		t.Fatalf("persistence failure must be swallowed: %v", err)
	}
	if !res.Verified || res.GatewayStatus != "success" {
		t.Fatalf("result = %+v", res)
	}
	if m.sends != 1 {
		t.Fatalf("receipt still attempted after persistence failure; sends = %d", m.sends)
	}
}

func TestVerifyDonation_MailerFailureDoesNotChangeOutcome(t *testing.T) {
	db := newTestDB(t)
	gw := &stubGateway{tx: successTx()}
	m := &stubMailer{err: errors.New("smtp unreachable")}
	svc := newSvc(db, gw, &dbDonationRepo{}, m)

	res, err := svc.VerifyDonation(context.Background(), "VOSEM-1700000000000")
	if err != nil || !res.Verified {
		t.Fatalf("mailer failure must be swallowed: res=%+v err=%v", res, err)
	}
	if m.sends != 1 {
		t.Fatalf("send attempted once; sends = %d", m.sends)
	}
}

func TestVerifyDonation_NilMailerSkipsReceipt(t *testing.T) {
	db := newTestDB(t)
	gw := &stubGateway{tx: successTx()}
	svc := newSvc(db, gw, &dbDonationRepo{}, nil)

	res, err := svc.VerifyDonation(context.Background(), "VOSEM-1700000000000")
	if err != nil || !res.Verified {
		t.Fatalf("missing mail config is not an error: res=%+v err=%v", res, err)
	}
}

// ---------- DeriveDonation fallback chains ----------

func TestDeriveDonation_Fallbacks(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(*paystack.Transaction)
		wantName string
		wantPurp string
	}{
		{"metadata name wins", func(tx *paystack.Transaction) {}, "Jane", "Tithes"},
		{"first name fallback", func(tx *paystack.Transaction) { tx.Metadata.Name = "" }, "J.", "Tithes"},
		{"generic default", func(tx *paystack.Transaction) {
			tx.Metadata.Name = ""
			tx.Customer.FirstName = " "
		}, "Valued Giver", "Tithes"},
		{"purpose default", func(tx *paystack.Transaction) { tx.Metadata.Purpose = "" }, "Jane", "N/A"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tx := successTx()
			tc.mutate(tx)
			d := DeriveDonation(tx)
			if d.DonorName != tc.wantName || d.Purpose != tc.wantPurp {
				t.Fatalf("derived = %+v; want name=%q purpose=%q", d, tc.wantName, tc.wantPurp)
			}
		})
	}
}

// ---------- read paths ----------

func TestGet_NotFoundAndFound(t *testing.T) {
	db := newTestDB(t)
	svc := newSvc(db, nil, &dbDonationRepo{}, nil)
	ctx := context.Background()

	if _, err := svc.Get(ctx, "missing"); !errors.Is(err, ErrDonationNotFound) {
		t.Fatalf("err = %v; want ErrDonationNotFound", err)
	}
	if _, err := svc.Get(ctx, ""); !errors.Is(err, ErrMissingReference) {
		t.Fatalf("err = %v; want ErrMissingReference", err)
	}

	seed := domain.Donation{Reference: "r1", UserID: "u1", Amount: 1, Currency: "NGN", Purpose: "Tithes", Status: "success"}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}
	got, err := svc.Get(ctx, "r1")
	if err != nil || got.Reference != "r1" {
		t.Fatalf("get = %+v, %v", got, err)
	}
}

func TestStats_CountAndLatest(t *testing.T) {
	db := newTestDB(t)
	svc := newSvc(db, nil, &dbDonationRepo{}, nil)
	ctx := context.Background()

	count, latest, err := svc.Stats(ctx, "u1")
	if err != nil || count != 0 || latest != nil {
		t.Fatalf("empty stats = %d, %v, %v", count, latest, err)
	}

	seed := domain.Donation{Reference: "r1", UserID: "u1", Amount: 1, Currency: "NGN", Purpose: "Tithes", Status: "success", CreatedAt: time.Unix(1700000000, 0).UTC()}
	if err := db.Create(&seed).Error; err != nil {
		t.Fatalf("seed: %v", err)
	}

	count, latest, err = svc.Stats(ctx, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if count != 1 || latest == nil || latest.Unix() != 1700000000 {
		t.Fatalf("stats = %d, %v", count, latest)
	}
}

func TestListPage_DefaultsAndEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := newSvc(db, nil, &dbDonationRepo{}, nil)

	items, total, err := svc.ListPage(context.Background(), "u1", -3, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 0 || len(items) != 0 || items == nil {
		t.Fatalf("empty list expected: items=%v total=%d", items, total)
	}
}
