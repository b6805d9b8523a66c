package payoutRepo

import (
	"context"
	"errors"
	"time"

	"casaora/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no payout matches.
	ErrNotFound = errors.New("payout not found")
	// ErrBookingsClaimed is returned when another batch stamped some of the bookings first.
	ErrBookingsClaimed = errors.New("bookings already claimed by another payout")
)

// PayoutRepository defines data access for payouts and the bookings they settle.
type PayoutRepository interface {
	// EligibleBookings returns completed, captured, unsettled bookings finished by periodEnd.
	EligibleBookings(ctx context.Context, periodEnd time.Time) ([]models.Booking, error)
	// PendingBookings returns a professional's eligible bookings regardless of date.
	PendingBookings(ctx context.Context, professionalID uuid.UUID) ([]models.Booking, error)
	// CreateWithBookings inserts payout and stamps bookingIDs with it in one transaction.
	CreateWithBookings(ctx context.Context, payout *models.Payout, bookingIDs []uuid.UUID) error
	// MarkPaid records a successful transfer.
	MarkPaid(ctx context.Context, id uuid.UUID, transferID string, paidAt time.Time) error
	// MarkFailed records a failed transfer and returns its bookings to the
	// eligible pool.
	MarkFailed(ctx context.Context, id uuid.UUID, reason string) error
	// GetByID retrieves a payout by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	// ListForProfessional returns a professional's payouts, newest first.
	ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Payout, error)
}
