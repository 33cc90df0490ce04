// Donation HTTP handlers.
//
// This file exposes REST endpoints for donation resources:
//   - POST  /donations/verify           (verify a gateway transaction and record it)
//   - GET   /donations                  (list, paginated, ETag support)
//   - GET   /donations/{reference}      (fetch one recorded donation)
//   - GET   /donations/{reference}/qr   (receipt QR code, PNG)
//
// Handlers are transport-thin: they validate input, call application services,
// and translate results into HTTP responses.
//
// The verify endpoint's bodies are a wire contract with the giving web client
// and must not change shape:
//
//	400 {"message": "Transaction reference is required"}
//	500 {"message": "Server configuration error: Missing payment key"}
//	500 {"message": "Server error during verification"}
//	400 {"status": "failed", "message": "Transaction status from Paystack: <status>"}
//	200 {"status": "success", "message": "Payment verified and recorded successfully.", "data": {...}}
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/vosemintl/go-giving-backend/internal/domain"
	"github.com/vosemintl/go-giving-backend/internal/http/middleware"
	"github.com/vosemintl/go-giving-backend/internal/paystack"
	"github.com/vosemintl/go-giving-backend/internal/services"
	"github.com/vosemintl/go-giving-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// DonationService defines the donation operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type DonationService interface {
	// VerifyDonation confirms a transaction with the payment gateway and
	// records it. Precondition and gateway-call failures surface as errors;
	// a reachable gateway reporting non-success is a structured result.
	VerifyDonation(ctx context.Context, reference string) (*services.VerificationResult, error)
	// Get fetches one recorded donation by gateway reference.
	Get(ctx context.Context, reference string) (*domain.Donation, error)
	// ListPage returns a page of the user's donations and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Donation, int64, error)
	// Stats returns the user's donation count and latest creation time,
	// used to build weak ETags for conditional list responses.
	Stats(ctx context.Context, userID string) (int64, *time.Time, error)
}

// SermonService defines sermon summarization operations (see sermon_handler.go).
type SermonService interface {
	// Summarize returns a summary for the sermon, serving from cache when
	// available. The second return reports whether the result was cached.
	Summarize(ctx context.Context, sermonID, title, transcript string) (*domain.SermonSummary, bool, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for donations and sermons. It depends on
// abstract service interfaces to keep transport concerns separate from
// business logic.
type Handlers struct {
	donationSvc DonationService
	sermonSvc   SermonService
	// receiptBaseURL is the public URL prefix encoded into receipt QR codes.
	receiptBaseURL string
}

// New constructs and returns a Handlers instance bound to the given services.
func New(donationSvc DonationService, sermonSvc SermonService, receiptBaseURL string) *Handlers {
	return &Handlers{
		donationSvc:    donationSvc,
		sermonSvc:      sermonSvc,
		receiptBaseURL: strings.TrimRight(receiptBaseURL, "/"),
	}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// VerifyDonationRequest is the JSON payload for verifying a transaction.
type VerifyDonationRequest struct {
	// Reference is the gateway transaction reference returned at checkout.
	Reference string `json:"reference" example:"VOSEM-1700000000000"`
}

// VerifyDonationResponse is the verify endpoint's response body. Status and
// Data are omitted on precondition and server failures, matching the wire
// contract with the giving web client.
type VerifyDonationResponse struct {
	Status  string                `json:"status,omitempty" example:"success"`
	Message string                `json:"message" example:"Payment verified and recorded successfully."`
	Data    *paystack.Transaction `json:"data,omitempty"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListDonationsResponse wraps a page of donations and pagination information.
type ListDonationsResponse struct {
	Donations  []domain.Donation `json:"donations"`
	Pagination Pagination        `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// VerifyDonation godoc
// @ID          verifyDonation
// @Summary     Verify a donation payment
// @Description Confirms the referenced transaction with the payment gateway, records the donation, and queues a receipt email. The response reflects the gateway verdict only; recording and email are best effort.
// @Tags        Donations
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.VerifyDonationRequest  true  "Transaction reference"
//
// @Success     200  {object}  handlers.VerifyDonationResponse
// @Failure     400  {object}  handlers.VerifyDonationResponse  "Missing reference, or gateway reported non-success"
// @Failure     500  {object}  handlers.VerifyDonationResponse  "Missing payment key, or verification call failed"
// @Router      /donations/verify [post]
func (h *Handlers) VerifyDonation(c *gin.Context) {
	var req VerifyDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// A malformed body carries no reference either way.
		c.AbortWithStatusJSON(http.StatusBadRequest, VerifyDonationResponse{
			Message: "Transaction reference is required",
		})
		return
	}

	res, err := h.donationSvc.VerifyDonation(c.Request.Context(), req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingReference):
			c.AbortWithStatusJSON(http.StatusBadRequest, VerifyDonationResponse{
				Message: "Transaction reference is required",
			})
		case errors.Is(err, services.ErrGatewayNotConfigured):
			middleware.LoggerFrom(c).Error().Msg("payment gateway secret key not configured")
			c.AbortWithStatusJSON(http.StatusInternalServerError, VerifyDonationResponse{
				Message: "Server configuration error: Missing payment key",
			})
		default:
			lg := middleware.LoggerFrom(c)
			lg.Error().Err(err).Msg("donation verification failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, VerifyDonationResponse{
				Message: "Server error during verification",
			})
		}
		return
	}

	if !res.Verified {
		c.AbortWithStatusJSON(http.StatusBadRequest, VerifyDonationResponse{
			Status:  "failed",
			Message: "Transaction status from Paystack: " + res.GatewayStatus,
		})
		return
	}

	ok(c, http.StatusOK, VerifyDonationResponse{
		Status:  "success",
		Message: "Payment verified and recorded successfully.",
		Data:    res.Transaction,
	})
}

// ListDonations godoc
// @ID          listDonations
// @Summary     List donations (paginated)
// @Description Returns a page of the user's recorded donations, newest first. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Donations
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListDonationsResponse
// @Header      200  {string} ETag "Weak ETag for current result"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /donations [get]
func (h *Handlers) ListDonations(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	if count, maxTS, err := h.donationSvc.Stats(ctx, uid); err == nil {
		var ts int64
		if maxTS != nil {
			ts = maxTS.Unix()
		}
		etag := fmt.Sprintf(`W/"donations:%s:%d:%d"`, uid, count, ts)
		c.Header("ETag", etag)
		if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
			c.Status(http.StatusNotModified)
			return
		}
	}

	items, total, err := h.donationSvc.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListDonationsResponse{
		Donations: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// GetDonation godoc
// @ID          getDonation
// @Summary     Fetch a recorded donation
// @Description Returns one donation record by its gateway transaction reference.
// @Tags        Donations
// @Produce     json
//
// @Param       reference  path  string  true  "Gateway transaction reference"  example(VOSEM-1700000000000)
//
// @Success     200  {object} domain.Donation
// @Failure     400  {object} handlers.ErrorResponse "Bad request"
// @Failure     404  {object} handlers.ErrorResponse "Donation not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /donations/{reference} [get]
func (h *Handlers) GetDonation(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "reference required")
		return
	}

	d, err := h.donationSvc.Get(c.Request.Context(), reference)
	if err != nil {
		if errors.Is(err, services.ErrDonationNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "donation not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, d)
}

// DonationReceiptQR godoc
// @ID          donationReceiptQR
// @Summary     Receipt QR code
// @Description Returns a PNG QR code encoding the public receipt URL for the referenced donation. 404 when no donation is recorded for the reference.
// @Tags        Donations
// @Produce     png
//
// @Param       reference  path   string  true   "Gateway transaction reference"  example(VOSEM-1700000000000)
// @Param       size       query  int     false  "Image size in pixels"           minimum(64) maximum(1024) default(256)
//
// @Success     200  {string} binary "PNG image"
// @Failure     404  {object} handlers.ErrorResponse "Donation not found"
// @Failure     500  {object} handlers.ErrorResponse "Internal error"
// @Router      /donations/{reference}/qr [get]
func (h *Handlers) DonationReceiptQR(c *gin.Context) {
	reference := strings.TrimSpace(c.Param("reference"))
	if reference == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "reference required")
		return
	}

	// Only mint QR codes for donations we actually recorded.
	if _, err := h.donationSvc.Get(c.Request.Context(), reference); err != nil {
		if errors.Is(err, services.ErrDonationNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "donation not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}

	size := utils.AtoiDefault(c.Query("size"), 256)
	if size < 64 {
		size = 64
	}
	if size > 1024 {
		size = 1024
	}

	png, err := qrcode.Encode(h.receiptBaseURL+"/"+reference, qrcode.Medium, size)
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeQRFailed, "could not render QR code")
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
