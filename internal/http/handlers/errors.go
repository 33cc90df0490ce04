// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// This file centralizes symbolic error code constants that are mapped to HTTP
// responses (via the `fail()` helper in this package). These codes provide
// clients with a stable, machine-readable error taxonomy that supplements
// human-readable messages.
//
// Conventions:
//   - Codes are lowercase, snake_case, and domain-agnostic unless explicitly noted.
//   - Generic codes (e.g., bad_request, not_found) mirror common HTTP status
//     semantics to aid interoperability.
//   - Domain-specific codes (e.g., list_failed, summary_failed) are reserved
//     for business logic errors that cannot be conveyed by status alone.
//
// The donation verification endpoint does not use these codes; its bodies
// follow the payment-flow contract (see donation_handler.go).

package handlers

const (
	ErrCodeBadRequest  = "bad_request"
	ErrCodeNotFound    = "not_found"
	ErrCodeRateLimited = "too_many_requests"
	ErrCodeInternal    = "internal_error"

	// Domain-specific:
	ErrCodeListFailed       = "list_failed"
	ErrCodeQRFailed         = "qr_failed"
	ErrCodeSummaryFailed    = "summary_failed"
	ErrCodeNotConfigured    = "not_configured"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)
