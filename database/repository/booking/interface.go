package bookingRepo

import (
	"context"
	"errors"
	"time"

	"casaora/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("booking record not found")
	// ErrStaleStatus is returned when a booking left the expected status before an update landed.
	ErrStaleStatus = errors.New("booking status changed concurrently")
	// ErrDuplicateReview is returned when a booking already has a review.
	ErrDuplicateReview = errors.New("booking already reviewed")
)

// BookingRepository defines data access for bookings, reviews and disputes.
type BookingRepository interface {
	// Create inserts a new booking.
	Create(ctx context.Context, b *models.Booking) error
	// GetByID retrieves a booking by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	// GetByPaymentIntentID retrieves the booking a Stripe PaymentIntent pays for.
	GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Booking, error)
	// List returns bookings matching filter, newest start first.
	List(ctx context.Context, filter ListFilter) ([]models.Booking, error)
	// ListOpenStarting returns a professional's pending, confirmed or in-progress
	// bookings that start in [from, to).
	ListOpenStarting(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]models.Booking, error)
	// UpdateFields patches selected columns regardless of status.
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	// Transition moves a booking to fields["status"] only while it is still in one of from.
	Transition(ctx context.Context, id uuid.UUID, from []models.BookingStatus, fields map[string]any) error

	// CreateReview inserts a review, failing with ErrDuplicateReview on a second one.
	CreateReview(ctx context.Context, r *models.Review) error
	// GetReviewByBooking retrieves the review left on a booking.
	GetReviewByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Review, error)
	// ListReviews returns a professional's most recent reviews.
	ListReviews(ctx context.Context, professionalID uuid.UUID, limit int) ([]models.Review, error)
	// RatingStats returns the mean rating and review count of a professional.
	RatingStats(ctx context.Context, professionalID uuid.UUID) (float64, int, error)

	// CreateDispute inserts a dispute.
	CreateDispute(ctx context.Context, d *models.Dispute) error
	// GetDispute retrieves a dispute by its ID.
	GetDispute(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	// ResolveDispute closes an open dispute, failing with ErrStaleStatus when it was already closed.
	ResolveDispute(ctx context.Context, d *models.Dispute) error
}

// ListFilter narrows List. Nil ids are ignored.
type ListFilter struct {
	CustomerID     *uuid.UUID
	ProfessionalID *uuid.UUID
	Status         models.BookingStatus
	Limit          int
	Offset         int
}
