// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, compression,
// CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/time/rate"
	"gorm.io/gorm"

	"github.com/vosemintl/go-giving-backend/internal/ai"
	"github.com/vosemintl/go-giving-backend/internal/config"
	"github.com/vosemintl/go-giving-backend/internal/domain"
	"github.com/vosemintl/go-giving-backend/internal/http/handlers"
	"github.com/vosemintl/go-giving-backend/internal/http/middleware"
	"github.com/vosemintl/go-giving-backend/internal/mail"
	"github.com/vosemintl/go-giving-backend/internal/paystack"
	"github.com/vosemintl/go-giving-backend/internal/repo"
	"github.com/vosemintl/go-giving-backend/internal/services"
)

// donationRepoShim adapts the repository free functions to the
// services.DonationRepo interface expected by the DonationService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type donationRepoShim struct{}

// Upsert proxies repo.UpsertDonation.
func (donationRepoShim) Upsert(ctx context.Context, db *gorm.DB, d *domain.Donation) error {
	return repo.UpsertDonation(ctx, db, d)
}

// Get proxies repo.GetDonation.
func (donationRepoShim) Get(ctx context.Context, db *gorm.DB, reference string) (*domain.Donation, error) {
	return repo.GetDonation(ctx, db, reference)
}

// Count proxies repo.CountDonations (pagination support).
func (donationRepoShim) Count(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return repo.CountDonations(ctx, db, userID)
}

// ListPage proxies repo.ListDonationsPage (pagination support).
func (donationRepoShim) ListPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Donation, error) {
	return repo.ListDonationsPage(ctx, db, userID, offset, limit)
}

// Stats proxies repo.DonationsStats (ETag support).
func (donationRepoShim) Stats(ctx context.Context, db *gorm.DB, userID string) (int64, *time.Time, error) {
	return repo.DonationsStats(ctx, db, userID)
}

// sermonRepoShim adapts the repository free functions to services.SermonRepo.
type sermonRepoShim struct{}

// Get proxies repo.GetSermonSummary.
func (sermonRepoShim) Get(ctx context.Context, db *gorm.DB, sermonID string) (*domain.SermonSummary, error) {
	return repo.GetSermonSummary(ctx, db, sermonID)
}

// Save proxies repo.SaveSermonSummary.
func (sermonRepoShim) Save(ctx context.Context, db *gorm.DB, sermonID, title, summary string) (*domain.SermonSummary, error) {
	return repo.SaveSermonSummary(ctx, db, sermonID, title, summary)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression, rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured logs with sensitive-header masking
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Metrics and /metrics endpoint
//  7. Gzip compression (skipped for binary QR responses)
//  8. Rate limiter (per user/IP)
//  9. CORS and Security headers
//
// Collaborators are wired only when configured: without a gateway secret the
// verify endpoint answers with a configuration error, without SMTP receipts
// are skipped, and without a model key summarization responds 503.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with masking
	r.Use(middleware.Logger(middleware.LogOptions{
		MaskHeaders: []string{
			"X-Paystack-Signature",
		},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Compression (QR PNG responses are already compressed)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPathsRegexs([]string{`.*/qr$`})))

	// 8) Token-bucket rate limiter per user/IP
	r.Use(middleware.RateLimiter(rate.Limit(cfg.RateRPS), cfg.RateBurst, 10*time.Minute, middleware.KeyByUserOrIP))

	// 9) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length", "ETag"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// API docs (opt-in)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/collaborators
	var gateway services.Gateway
	if cfg.Paystack.SecretKey != "" {
		gateway = paystack.New(cfg.Paystack.SecretKey, cfg.Paystack.BaseURL, cfg.Paystack.Timeout)
	}
	var mailer mail.Mailer
	if cfg.SMTP.Configured() {
		mailer = mail.NewSMTP(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	}
	var summarizer ai.Summarizer
	if cfg.AI.APIKey != "" {
		summarizer = ai.NewClient(cfg.AI.APIKey, cfg.AI.BaseURL, cfg.AI.Model, cfg.AI.MaxTokens, cfg.AI.Timeout)
	}

	donationSvc := &services.DonationService{
		DB:      db,
		Repo:    donationRepoShim{},
		Gateway: gateway,
		Mailer:  mailer,
	}
	sermonSvc := &services.SermonService{
		DB:         db,
		Repo:       sermonRepoShim{},
		Summarizer: summarizer,
	}
	h := handlers.New(donationSvc, sermonSvc, cfg.ReceiptBaseURL)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Donations
		api.POST("/donations/verify", h.VerifyDonation)
		api.GET("/donations", h.ListDonations)
		api.GET("/donations/:reference", h.GetDonation)
		api.GET("/donations/:reference/qr", h.DonationReceiptQR)

		// Sermons
		api.POST("/sermons/summary", h.SummarizeSermon)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
