// Package services – SermonService
//
// Sermon summaries are generated once per sermon by a hosted language model
// and cached. The cache write is best-effort: a freshly generated summary is
// still returned even when storing it fails.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/vosemintl/go-giving-backend/internal/ai"
	"github.com/vosemintl/go-giving-backend/internal/domain"
)

// SermonRepo defines the repository contract required by SermonService.
type SermonRepo interface {
	// Get fetches the cached summary for sermonID.
	Get(ctx context.Context, db *gorm.DB, sermonID string) (*domain.SermonSummary, error)

	// Save stores a generated summary; concurrent saves keep the first row.
	Save(ctx context.Context, db *gorm.DB, sermonID, title, summary string) (*domain.SermonSummary, error)
}

// SermonService serves sermon summaries from cache, generating on miss.
type SermonService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the summary cache repository.
	Repo SermonRepo
	// Summarizer generates summaries. nil means no model credential is
	// configured and generation requests fail with
	// ErrSummarizerNotConfigured.
	Summarizer ai.Summarizer
}

// Summarize returns the summary for sermonID, preferring the cache. The
// second return value reports whether the summary came from cache.
func (s *SermonService) Summarize(ctx context.Context, sermonID, title, transcript string) (*domain.SermonSummary, bool, error) {
	sermonID = strings.TrimSpace(sermonID)
	if sermonID == "" {
		return nil, false, ErrMissingSermonID
	}

	if cached, err := s.Repo.Get(ctx, s.DB, sermonID); err == nil {
		return cached, true, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if strings.TrimSpace(transcript) == "" {
		return nil, false, ErrEmptyTranscript
	}
	if s.Summarizer == nil {
		return nil, false, ErrSummarizerNotConfigured
	}

	text, err := s.Summarizer.Summarize(ctx, title, transcript)
	if err != nil {
		return nil, false, err
	}

	saved, err := s.Repo.Save(ctx, s.DB, sermonID, title, text)
	if err != nil {
		// Cache write is best-effort; the generated summary is still good.
		log.Error().
			Err(err).
			Str("sermon_id", sermonID).
			Msg("failed to cache sermon summary")
		return &domain.SermonSummary{SermonID: sermonID, Title: title, Summary: text}, false, nil
	}
	return saved, false, nil
}
