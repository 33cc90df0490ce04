// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository helpers for cached sermon
// summaries.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vosemintl/go-giving-backend/internal/domain"
)

// GetSermonSummary fetches the cached summary for sermonID, or ErrNotFound.
func GetSermonSummary(ctx context.Context, db *gorm.DB, sermonID string) (*domain.SermonSummary, error) {
	var s domain.SermonSummary
	err := db.WithContext(ctx).
		Where("sermon_id = ?", sermonID).
		First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SaveSermonSummary stores a generated summary for sermonID. A concurrent
// generation for the same sermon may race; the unique index plus DO NOTHING
// keeps the first writer's row.
func SaveSermonSummary(ctx context.Context, db *gorm.DB, sermonID, title, summary string) (*domain.SermonSummary, error) {
	now := time.Now().UTC()
	s := &domain.SermonSummary{
		ID:        uuid.NewString(),
		SermonID:  sermonID,
		Title:     title,
		Summary:   summary,
		CreatedAt: now,
		UpdatedAt: now,
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "sermon_id"}},
			DoNothing: true,
		}).
		Create(s).Error
	if err != nil {
		return nil, err
	}
	return s, nil
}
