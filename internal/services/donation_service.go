// Package services – DonationService
//
// This file implements the donation verification flow, the one state
// transition in the system: pending -> verified -> persisted -> notified.
// The gateway's verdict alone decides the caller-visible outcome; persistence
// and the receipt email are best-effort side effects that never change the
// response once the gateway has confirmed a successful payment.
//
// Failure taxonomy enforced here:
//   - missing reference / missing gateway credential: fail before any
//     network call (ErrMissingReference, ErrGatewayNotConfigured)
//   - verification call error: propagated, blocks the response (payment
//     truth cannot be established)
//   - gateway reports non-success: a structured business outcome, not an
//     error
//   - persistence or email failure after confirmed success: logged,
//     swallowed
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/vosemintl/go-giving-backend/internal/domain"
	"github.com/vosemintl/go-giving-backend/internal/mail"
	"github.com/vosemintl/go-giving-backend/internal/paystack"
)

// statusSuccess is the gateway status that gates persistence and receipts.
const statusSuccess = "success"

// Fallback values applied by DeriveDonation.
const (
	defaultDonorName = "Valued Giver"
	defaultPurpose   = "N/A"
)

// Gateway is the transaction-verification capability required by
// DonationService. Implementations must not trust any client-supplied state.
type Gateway interface {
	// Verify confirms the referenced transaction with the payment processor.
	Verify(ctx context.Context, reference string) (*paystack.Transaction, error)
}

// DonationRepo defines the repository contract required by DonationService.
type DonationRepo interface {
	// Upsert persists a donation keyed by reference; repeats are no-ops.
	Upsert(ctx context.Context, db *gorm.DB, d *domain.Donation) error

	// Get fetches a donation by its gateway reference.
	Get(ctx context.Context, db *gorm.DB, reference string) (*domain.Donation, error)

	// Count returns the total number of donations for pagination.
	Count(ctx context.Context, db *gorm.DB, userID string) (int64, error)

	// ListPage returns a page of donations belonging to the user.
	ListPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Donation, error)

	// Stats returns the count and latest creation time of the user's
	// donations, the inputs for conditional-response validators.
	Stats(ctx context.Context, db *gorm.DB, userID string) (int64, *time.Time, error)
}

// VerificationResult is the structured outcome of a verification attempt
// that reached the gateway. Verified is false when the gateway reports any
// status other than "success"; the reported status is carried alongside so
// handlers can surface it.
type VerificationResult struct {
	Verified      bool
	GatewayStatus string
	Transaction   *paystack.Transaction
}

// DonationService coordinates gateway verification, donation persistence,
// and receipt notification.
type DonationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the donation repository used by this service.
	Repo DonationRepo
	// Gateway verifies transactions. nil means the secret key is not
	// configured and verification must fail fast.
	Gateway Gateway
	// Mailer sends receipt emails. nil means notification is not configured
	// and sends are skipped with a warning.
	Mailer mail.Mailer
}

var tracer = otel.Tracer("github.com/vosemintl/go-giving-backend/internal/services")

// VerifyDonation runs the full verification flow for one transaction
// reference and returns the structured outcome.
//
// Once the gateway confirms success the returned result is fixed: failures
// in the persistence or notification steps are logged and swallowed, because
// the donor's payment genuinely succeeded and the response must say so.
func (s *DonationService) VerifyDonation(ctx context.Context, reference string) (*VerificationResult, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrMissingReference
	}
	if s.Gateway == nil {
		return nil, ErrGatewayNotConfigured
	}

	ctx, span := tracer.Start(ctx, "DonationService.VerifyDonation",
		trace.WithAttributes(attribute.String("donation.reference", reference)))
	defer span.End()

	tx, err := s.Gateway.Verify(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("verification call: %w", err)
	}

	if tx.Status != statusSuccess {
		span.SetAttributes(attribute.String("donation.gateway_status", tx.Status))
		return &VerificationResult{Verified: false, GatewayStatus: tx.Status, Transaction: tx}, nil
	}

	d := DeriveDonation(tx)

	if d.UserID == "" {
		log.Warn().
			Str("reference", tx.Reference).
			Msg("skipping donation write: userId not found in transaction metadata")
	} else if err := s.Repo.Upsert(ctx, s.DB, d); err != nil {
		// Monitoring-worthy: money moved but the record did not land. The
		// donor still sees success.
		log.Error().
			Err(err).
			Str("reference", tx.Reference).
			Str("user_id", d.UserID).
			Msg("failed to persist verified donation")
	}

	s.sendReceipt(ctx, d)

	return &VerificationResult{Verified: true, GatewayStatus: statusSuccess, Transaction: tx}, nil
}

// sendReceipt attempts the receipt email and contains every failure mode.
func (s *DonationService) sendReceipt(ctx context.Context, d *domain.Donation) {
	if s.Mailer == nil {
		log.Warn().
			Str("reference", d.Reference).
			Msg("mail credentials not configured, skipping receipt email")
		return
	}
	if d.DonorEmail == "" {
		log.Warn().
			Str("reference", d.Reference).
			Msg("no donor email on transaction, skipping receipt email")
		return
	}
	err := s.Mailer.SendReceipt(ctx, mail.Receipt{
		To:        d.DonorEmail,
		DonorName: d.DonorName,
		Reference: d.Reference,
		Currency:  d.Currency,
		Amount:    d.Amount,
	})
	if err != nil {
		log.Error().
			Err(err).
			Str("reference", d.Reference).
			Msg("failed to send receipt email")
	}
}

// DeriveDonation maps a verified transaction onto the stored donation shape.
// Pure: all fallback chains live here, first match wins.
//
//	donor name: metadata.name -> customer.first_name -> "Valued Giver"
//	purpose:    metadata.purpose -> "N/A"
//	user id:    metadata.userId or empty (empty skips persistence upstream)
func DeriveDonation(tx *paystack.Transaction) *domain.Donation {
	name := strings.TrimSpace(tx.Metadata.Name)
	if name == "" {
		name = strings.TrimSpace(tx.Customer.FirstName)
	}
	if name == "" {
		name = defaultDonorName
	}

	purpose := strings.TrimSpace(tx.Metadata.Purpose)
	if purpose == "" {
		purpose = defaultPurpose
	}

	return &domain.Donation{
		Reference:  tx.Reference,
		UserID:     strings.TrimSpace(tx.Metadata.UserID),
		Amount:     tx.Amount,
		Currency:   tx.Currency,
		Purpose:    purpose,
		Status:     tx.Status,
		DonorName:  name,
		DonorEmail: tx.Customer.Email,
	}
}

// Get returns the donation recorded for reference, or ErrDonationNotFound.
func (s *DonationService) Get(ctx context.Context, reference string) (*domain.Donation, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return nil, ErrMissingReference
	}
	d, err := s.Repo.Get(ctx, s.DB, reference)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return d, nil
}

// Stats reports the user's donation count and most recent creation time.
// Handlers use it to build weak ETags without reaching into the storage
// layer themselves.
func (s *DonationService) Stats(ctx context.Context, userID string) (int64, *time.Time, error) {
	return s.Repo.Stats(ctx, s.DB, userID)
}

// ListPage returns a page of the user's donations (paginated, newest first).
// It applies defaults for invalid page/pageSize and returns total count.
func (s *DonationService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Donation, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.Count(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Donation{}, 0, nil
	}

	items, err := s.Repo.ListPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}
