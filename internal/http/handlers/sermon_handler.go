// Sermon HTTP handlers.
//
// POST /sermons/summary generates (or serves from cache) a short summary of a
// sermon transcript. Generated summaries are cached by sermon id, so repeat
// requests do not re-invoke the language model.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/vosemintl/go-giving-backend/internal/services"
)

// SummarizeSermonRequest is the JSON payload for summarizing a sermon.
type SummarizeSermonRequest struct {
	// SermonID identifies the sermon; it is the cache key for summaries.
	SermonID string `json:"sermon_id" binding:"required" example:"2026-08-30-sunday-service"`
	// Title optionally names the sermon for the summary prompt.
	Title string `json:"title" example:"Walking in Grace"`
	// Transcript is the full sermon transcript to summarize. Required unless
	// a cached summary already exists for the sermon.
	Transcript string `json:"transcript"`
}

// SummarizeSermonResponse wraps the summary and whether it came from cache.
type SummarizeSermonResponse struct {
	SermonID string `json:"sermon_id"`
	Title    string `json:"title,omitempty"`
	Summary  string `json:"summary"`
	Cached   bool   `json:"cached"`
}

// SummarizeSermon godoc
// @ID          summarizeSermon
// @Summary     Summarize a sermon transcript
// @Description Returns a short summary of the sermon. Cached per sermon id; the transcript is only required on a cache miss.
// @Tags        Sermons
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.SummarizeSermonRequest  true  "Sermon transcript payload"
//
// @Success     200  {object}  handlers.SummarizeSermonResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     503  {object}  handlers.ErrorResponse  "Summarizer not configured"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /sermons/summary [post]
func (h *Handlers) SummarizeSermon(c *gin.Context) {
	var req SummarizeSermonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "sermon_id required")
		return
	}

	s, cached, err := h.sermonSvc.Summarize(
		c.Request.Context(),
		strings.TrimSpace(req.SermonID),
		strings.TrimSpace(req.Title),
		req.Transcript,
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingSermonID), errors.Is(err, services.ErrEmptyTranscript):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrSummarizerNotConfigured):
			fail(c, http.StatusServiceUnavailable, ErrCodeNotConfigured, "summarization is not configured")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeSummaryFailed, err.Error())
		}
		return
	}

	ok(c, http.StatusOK, SummarizeSermonResponse{
		SermonID: s.SermonID,
		Title:    s.Title,
		Summary:  s.Summary,
		Cached:   cached,
	})
}
