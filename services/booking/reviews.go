package booking

import (
	"context"
	"errors"
	"strings"

	bookingRepo "casaora/database/repository/booking"
	"casaora/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Review records the customer's rating of a completed booking and refreshes
// the professional's aggregate.
func (s *DefaultBookingService) Review(ctx context.Context, customerID, bookingID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, NewValidationError("rating", "must be between 1 and 5")
	}
	b, err := s.load(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.CustomerID != customerID {
		return nil, ErrForbidden
	}
	if b.Status != models.BookingCompleted {
		return nil, ErrNotReviewable
	}

	r := &models.Review{
		BookingID:      b.ID,
		ProfessionalID: b.ProfessionalID,
		CustomerID:     customerID,
		Rating:         rating,
		Comment:        strings.TrimSpace(comment),
	}
	if err := s.Repo.CreateReview(ctx, r); err != nil {
		if errors.Is(err, bookingRepo.ErrDuplicateReview) {
			return nil, ErrAlreadyReviewed
		}
		return nil, err
	}
	if s.Ratings != nil {
		if err := s.Ratings.RecomputeRating(ctx, b.ProfessionalID); err != nil {
			s.Logger.Error("Failed to recompute rating", zap.String("professional_id", b.ProfessionalID.String()), zap.Error(err))
		}
	}
	return r, nil
}

// OpenDispute freezes a booking that has not been paid out yet.
func (s *DefaultBookingService) OpenDispute(ctx context.Context, actor Actor, bookingID uuid.UUID, reason, description string) (*models.Dispute, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, NewValidationError("reason", "is required")
	}
	b, owner, err := s.access(ctx, actor, bookingID)
	if err != nil {
		return nil, err
	}
	if b.PayoutID != nil {
		return nil, ErrAlreadyPaidOut
	}
	previous := b.Status
	if err := s.transition(ctx, b, models.BookingDisputed, nil); err != nil {
		return nil, err
	}

	d := &models.Dispute{
		BookingID:   b.ID,
		OpenedBy:    actor.ProfileID,
		Reason:      reason,
		Description: strings.TrimSpace(description),
		Status:      models.DisputeOpen,
	}
	if err := s.Repo.CreateDispute(ctx, d); err != nil {
		if rerr := s.Repo.Transition(ctx, b.ID, []models.BookingStatus{models.BookingDisputed},
			map[string]any{"status": previous}); rerr != nil {
			s.Logger.Error("Failed to restore booking after dispute error", zap.String("booking_id", b.ID.String()), zap.Error(rerr))
		}
		return nil, err
	}

	for _, id := range []uuid.UUID{b.CustomerID, owner} {
		if id != uuid.Nil && id != actor.ProfileID {
			s.notify(ctx, id, "Dispute opened", "A dispute was opened on your booking. Our team will review it.",
				map[string]string{"type": "dispute_opened", "bookingId": b.ID.String()})
		}
	}
	s.Logger.Info("Dispute opened", zap.String("booking_id", b.ID.String()), zap.String("dispute_id", d.ID.String()))
	return d, nil
}

// ResolveDispute settles the money first, then closes the dispute and the
// booking. Stripe calls carry idempotency keys so a retried resolution never
// moves money twice.
func (s *DefaultBookingService) ResolveDispute(ctx context.Context, adminID, disputeID uuid.UUID, inFavorOf Party, resolution string) (*models.Dispute, error) {
	if inFavorOf != PartyCustomer && inFavorOf != PartyProfessional {
		return nil, NewValidationError("inFavorOf", "must be customer or professional")
	}
	d, err := s.Repo.GetDispute(ctx, disputeID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, ErrDisputeNotFound
	}
	if err != nil {
		return nil, err
	}
	if d.Status != models.DisputeOpen {
		return nil, ErrDisputeClosed
	}
	b, err := s.load(ctx, d.BookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.BookingDisputed {
		return nil, ErrInvalidTransition
	}

	now := s.now()
	var target models.BookingStatus
	fields := map[string]any{}
	switch inFavorOf {
	case PartyProfessional:
		target = models.BookingCompleted
		d.Status = models.DisputeResolvedProfessional
		if err := s.capture(ctx, b); err != nil {
			return nil, err
		}
		if b.PaymentIntentID != "" {
			fields["payment_status"] = models.PaymentCaptured
		}
		if b.CompletedAt == nil {
			fields["completed_at"] = now
		}
	case PartyCustomer:
		target = models.BookingCancelled
		d.Status = models.DisputeResolvedCustomer
		fields["cancelled_at"] = now
		fields["cancellation_reason"] = "dispute resolved in favour of the customer"
		switch {
		case b.PaymentStatus == models.PaymentCaptured:
			if err := s.Payments.Refund(ctx, b.PaymentIntentID, "refund-"+d.ID.String()); err != nil {
				return nil, &PaymentError{Op: "refund", Err: err}
			}
			fields["payment_status"] = models.PaymentRefunded
		case b.PaymentIntentID != "" && (b.PaymentStatus == models.PaymentAuthorized || b.PaymentStatus == models.PaymentUnpaid):
			if err := s.Payments.Cancel(ctx, b.PaymentIntentID); err != nil {
				return nil, &PaymentError{Op: "cancel", Err: err}
			}
			fields["payment_status"] = models.PaymentCanceled
		}
	}

	d.Resolution = strings.TrimSpace(resolution)
	d.ResolvedAt = &now
	if err := s.Repo.ResolveDispute(ctx, d); err != nil {
		if errors.Is(err, bookingRepo.ErrStaleStatus) {
			return nil, ErrDisputeClosed
		}
		return nil, err
	}
	if err := s.transition(ctx, b, target, fields); err != nil {
		return nil, err
	}
	if target == models.BookingCompleted && b.CompletedAt == nil {
		s.afterCompletion(ctx, b)
	}

	s.Logger.Info("Dispute resolved",
		zap.String("dispute_id", d.ID.String()),
		zap.String("admin_id", adminID.String()),
		zap.String("in_favor_of", string(inFavorOf)))
	return d, nil
}
