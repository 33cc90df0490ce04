// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Donation
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a donation is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// Idempotency:
//   - UpsertDonation inserts with ON CONFLICT DO NOTHING on the reference
//     primary key. Invoking it repeatedly for the same reference (client
//     retries, double clicks) leaves exactly one row and returns nil, which
//     is the sole idempotency mechanism for the verification flow.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vosemintl/go-giving-backend/internal/domain"
)

// UpsertDonation persists a donation keyed by its gateway reference. When a
// row with the same reference already exists the write is a no-op and nil is
// returned. CreatedAt is server-assigned here, not taken from the caller.
func UpsertDonation(ctx context.Context, db *gorm.DB, d *domain.Donation) error {
	d.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference"}},
			DoNothing: true,
		}).
		Create(d).Error
}

// GetDonation fetches a single donation by its gateway reference.
// Returns ErrNotFound when no row exists.
func GetDonation(ctx context.Context, db *gorm.DB, reference string) (*domain.Donation, error) {
	var d domain.Donation
	err := db.WithContext(ctx).
		Where("reference = ?", reference).
		First(&d).Error
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CountDonations returns the total number of donations recorded for userID.
func CountDonations(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Donation{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListDonationsPage returns a paginated slice of donations for userID,
// ordered by creation time descending. Use CountDonations to obtain the
// total for pagination metadata.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListDonationsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Donation, error) {
	var out []domain.Donation
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
