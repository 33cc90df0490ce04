// Package services defines the business logic for donation verification and
// sermon summarization. This file centralizes common service-level error
// values so that they can be consistently returned by service methods and
// checked by callers.
//
// These errors are intended for internal use by the service layer; mapping
// into user-facing messages or HTTP status codes is performed at the handler
// layer.
package services

import "errors"

// Donation-related errors.
var (
	// ErrMissingReference is returned when a verification request carries no
	// transaction reference. No gateway call is made in this case.
	ErrMissingReference = errors.New("transaction reference is required")

	// ErrGatewayNotConfigured indicates the payment-gateway secret key is
	// absent. This is a server configuration fault, surfaced before any
	// network call is attempted.
	ErrGatewayNotConfigured = errors.New("payment gateway is not configured")

	// ErrDonationNotFound indicates that no donation exists for the
	// requested reference.
	ErrDonationNotFound = errors.New("donation not found")
)

// Sermon-related errors.
var (
	// ErrMissingSermonID is returned when a summary request has no sermon id.
	ErrMissingSermonID = errors.New("sermon id is required")

	// ErrEmptyTranscript is returned when a summary request carries no
	// transcript text.
	ErrEmptyTranscript = errors.New("sermon transcript is empty")

	// ErrSummarizerNotConfigured indicates the language-model credential is
	// absent, so no summary can be generated.
	ErrSummarizerNotConfigured = errors.New("summarizer is not configured")
)
