package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/vosemintl/go-giving-backend/internal/domain"
	"github.com/vosemintl/go-giving-backend/internal/services"
)

func TestSummarizeSermon_Success(t *testing.T) {
	svc := &stubSermonSvc{
		fn: func(ctx context.Context, sermonID, title, transcript string) (*domain.SermonSummary, bool, error) {
			if sermonID != "s1" || title != "Walking in Grace" {
				t.Fatalf("sermonID=%q title=%q", sermonID, title)
			}
			return &domain.SermonSummary{SermonID: "s1", Title: title, Summary: "A short summary."}, false, nil
		},
	}
	r := newTestRouter(&stubDonationSvc{}, svc)

	w := postJSON(t, r, "/sermons/summary",
		`{"sermon_id":"s1","title":"Walking in Grace","transcript":"...full text..."}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body = %s", w.Code, w.Body.String())
	}
	body := decodeBody(t, w)
	if body["summary"] != "A short summary." {
		t.Fatalf("summary = %v", body["summary"])
	}
	if body["cached"] != false {
		t.Fatalf("cached = %v, want false", body["cached"])
	}
}

func TestSummarizeSermon_CachedFlag(t *testing.T) {
	svc := &stubSermonSvc{
		fn: func(ctx context.Context, sermonID, title, transcript string) (*domain.SermonSummary, bool, error) {
			return &domain.SermonSummary{SermonID: sermonID, Summary: "cached text"}, true, nil
		},
	}
	r := newTestRouter(&stubDonationSvc{}, svc)

	w := postJSON(t, r, "/sermons/summary", `{"sermon_id":"s1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if decodeBody(t, w)["cached"] != true {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestSummarizeSermon_MissingSermonID(t *testing.T) {
	r := newTestRouter(&stubDonationSvc{}, &stubSermonSvc{})

	w := postJSON(t, r, "/sermons/summary", `{"transcript":"text"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if decodeBody(t, w)["code"] != ErrCodeBadRequest {
		t.Fatalf("body = %s", w.Body.String())
	}
}

func TestSummarizeSermon_EmptyTranscript(t *testing.T) {
	svc := &stubSermonSvc{
		fn: func(ctx context.Context, sermonID, title, transcript string) (*domain.SermonSummary, bool, error) {
			return nil, false, services.ErrEmptyTranscript
		},
	}
	r := newTestRouter(&stubDonationSvc{}, svc)

	w := postJSON(t, r, "/sermons/summary", `{"sermon_id":"s1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSummarizeSermon_NotConfigured(t *testing.T) {
	svc := &stubSermonSvc{
		fn: func(ctx context.Context, sermonID, title, transcript string) (*domain.SermonSummary, bool, error) {
			return nil, false, services.ErrSummarizerNotConfigured
		},
	}
	r := newTestRouter(&stubDonationSvc{}, svc)

	w := postJSON(t, r, "/sermons/summary", `{"sermon_id":"s1","transcript":"text"}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	if decodeBody(t, w)["code"] != ErrCodeNotConfigured {
		t.Fatalf("body = %s", w.Body.String())
	}
}
