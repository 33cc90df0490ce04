package services

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/vosemintl/go-giving-backend/internal/domain"
	"github.com/vosemintl/go-giving-backend/internal/repo"
)

type dbSermonRepo struct {
	saveErr error
	saves   int
}

func (r *dbSermonRepo) Get(ctx context.Context, db *gorm.DB, sermonID string) (*domain.SermonSummary, error) {
	return repo.GetSermonSummary(ctx, db, sermonID)
}

func (r *dbSermonRepo) Save(ctx context.Context, db *gorm.DB, sermonID, title, summary string) (*domain.SermonSummary, error) {
	r.saves++
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	return repo.SaveSermonSummary(ctx, db, sermonID, title, summary)
}

type stubSummarizer struct {
	calls int
	text  string
	err   error
}

func (s *stubSummarizer) Summarize(ctx context.Context, title, transcript string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func TestSummarize_MissingSermonID(t *testing.T) {
	svc := &SermonService{DB: newTestDB(t), Repo: &dbSermonRepo{}, Summarizer: &stubSummarizer{}}
	if _, _, err := svc.Summarize(context.Background(), " ", "t", "body"); !errors.Is(err, ErrMissingSermonID) {
		t.Fatalf("err = %v; want ErrMissingSermonID", err)
	}
}

func TestSummarize_GeneratesThenServesFromCache(t *testing.T) {
	db := newTestDB(t)
	sum := &stubSummarizer{text: "A summary."}
	svc := &SermonService{DB: db, Repo: &dbSermonRepo{}, Summarizer: sum}
	ctx := context.Background()

	got, cached, err := svc.Summarize(ctx, "s1", "Walking in Faith", "full transcript")
	if err != nil {
		t.Fatalf("first summarize: %v", err)
	}
	if cached || got.Summary != "A summary." {
		t.Fatalf("first call: cached=%v got=%+v", cached, got)
	}

	got2, cached2, err := svc.Summarize(ctx, "s1", "ignored", "ignored")
	if err != nil {
		t.Fatalf("second summarize: %v", err)
	}
	if !cached2 || got2.Summary != "A summary." {
		t.Fatalf("second call should hit cache: cached=%v got=%+v", cached2, got2)
	}
	if sum.calls != 1 {
		t.Fatalf("model consulted %d times; want 1", sum.calls)
	}
}

func TestSummarize_EmptyTranscriptOnCacheMiss(t *testing.T) {
	svc := &SermonService{DB: newTestDB(t), Repo: &dbSermonRepo{}, Summarizer: &stubSummarizer{text: "x"}}
	if _, _, err := svc.Summarize(context.Background(), "s1", "t", "  "); !errors.Is(err, ErrEmptyTranscript) {
		t.Fatalf("err = %v; want ErrEmptyTranscript", err)
	}
}

func TestSummarize_NotConfigured(t *testing.T) {
	svc := &SermonService{DB: newTestDB(t), Repo: &dbSermonRepo{}, Summarizer: nil}
	if _, _, err := svc.Summarize(context.Background(), "s1", "t", "body"); !errors.Is(err, ErrSummarizerNotConfigured) {
		t.Fatalf("err = %v; want ErrSummarizerNotConfigured", err)
	}
}

func TestSummarize_ModelErrorPropagates(t *testing.T) {
	wantErr := errors.New("model overloaded")
	svc := &SermonService{DB: newTestDB(t), Repo: &dbSermonRepo{}, Summarizer: &stubSummarizer{err: wantErr}}
	if _, _, err := svc.Summarize(context.Background(), "s1", "t", "body"); !errors.Is(err, wantErr) {
		t.Fatalf("err = %v; want model error", err)
	}
}

func TestSummarize_CacheWriteFailureStillReturnsSummary(t *testing.T) {
	r := &dbSermonRepo{saveErr: errors.New("disk full")}
	svc := &SermonService{DB: newTestDB(t), Repo: r, Summarizer: &stubSummarizer{text: "fresh"}}

	got, cached, err := svc.Summarize(context.Background(), "s1", "t", "body")
	if err != nil {
		t.Fatalf("cache-write failure must be swallowed: %v", err)
	}
	if cached || got.Summary != "fresh" {
		t.Fatalf("got = %+v cached=%v", got, cached)
	}
	if r.saves != 1 {
		t.Fatalf("save attempted once; saves = %d", r.saves)
	}
}
