package repo

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
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func sampleDonation(ref string) *domain.Donation {
	return &domain.Donation{
		Reference:  ref,
		UserID:     "u1",
		Amount:     1000000,
		Currency:   "NGN",
		Purpose:    "Tithes",
		Status:     "success",
		DonorName:  "Jane",
		DonorEmail: "a@x.com",
	}
}

func TestUpsertDonation_InsertAndIdempotentRepeat(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	d := sampleDonation("VOSEM-1700000000000")
	if err := UpsertDonation(ctx, db, d); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	if d.CreatedAt.IsZero() {
		t.Fatalf("CreatedAt should be server-assigned")
	}

	// Retry with the same reference but drifted fields: must be a no-op.
	again := sampleDonation("VOSEM-1700000000000")
	again.Amount = 5
	again.DonorName = "Someone Else"
	if err := UpsertDonation(ctx, db, again); err != nil {
		t.Fatalf("repeat upsert: %v", err)
	}

	var count int64
	if err := db.Model(&domain.Donation{}).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d; want exactly 1", count)
	}

	got, err := GetDonation(ctx, db, "VOSEM-1700000000000")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// First write wins.
	if got.Amount != 1000000 || got.DonorName != "Jane" {
		t.Fatalf("retry overwrote original row: %+v", got)
	}
}

func TestGetDonation_NotFound(t *testing.T) {
	db := newTestDB(t)
	_, err := GetDonation(context.Background(), db, "missing-ref")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v; want ErrNotFound", err)
	}
}

func TestListDonationsPage_OrderAndScope(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	// Seed out of order with explicit timestamps; bypass UpsertDonation to
	// control CreatedAt.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.Donation{
		{Reference: "r1", UserID: "u1", Amount: 100, Currency: "NGN", Purpose: "Tithes", Status: "success", CreatedAt: base},
		{Reference: "r2", UserID: "u1", Amount: 200, Currency: "NGN", Purpose: "Offerings", Status: "success", CreatedAt: base.Add(2 * time.Hour)},
		{Reference: "r3", UserID: "u1", Amount: 300, Currency: "NGN", Purpose: "Tithes", Status: "success", CreatedAt: base.Add(time.Hour)},
		{Reference: "rx", UserID: "other", Amount: 400, Currency: "NGN", Purpose: "Tithes", Status: "success", CreatedAt: base.Add(3 * time.Hour)},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	total, err := CountDonations(ctx, db, "u1")
	if err != nil || total != 3 {
		t.Fatalf("CountDonations = (%d, %v); want (3, nil)", total, err)
	}

	page, err := ListDonationsPage(ctx, db, "u1", 0, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 2 || page[0].Reference != "r2" || page[1].Reference != "r3" {
		t.Fatalf("page order unexpected: %+v", page)
	}

	rest, err := ListDonationsPage(ctx, db, "u1", 2, 2)
	if err != nil || len(rest) != 1 || rest[0].Reference != "r1" {
		t.Fatalf("second page unexpected: %+v (%v)", rest, err)
	}
}
