package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	bookingRepo "casaora/database/repository/booking"
	professionalRepo "casaora/database/repository/professional"
	"casaora/models"
	"casaora/services/payments"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const maxListLimit = 100

func (s *DefaultBookingService) now() time.Time { return s.Now().UTC() }

func (s *DefaultBookingService) activeProfessional(ctx context.Context, id uuid.UUID) (*models.ProfessionalProfile, error) {
	pro, err := s.Pros.GetByID(ctx, id)
	if errors.Is(err, professionalRepo.ErrNotFound) {
		return nil, ErrProfessionalUnavailable
	}
	if err != nil {
		return nil, err
	}
	if pro.Status != models.ProfessionalActive {
		return nil, ErrProfessionalUnavailable
	}
	return pro, nil
}

func (s *DefaultBookingService) Quote(ctx context.Context, professionalID uuid.UUID, hours decimal.Decimal) (Quote, error) {
	pro, err := s.activeProfessional(ctx, professionalID)
	if err != nil {
		return Quote{}, err
	}
	return NewQuote(pro.HourlyRate, hours, s.Config.CommissionRate, currencyOr(pro.Currency, s.Config.Currency))
}

// Create persists a pending booking and places a manual-capture hold for its total.
func (s *DefaultBookingService) Create(ctx context.Context, customerID uuid.UUID, in CreateBookingInput) (*CreateBookingResult, error) {
	if strings.TrimSpace(in.Address) == "" {
		return nil, NewValidationError("address", "is required")
	}
	if !in.ScheduledStart.After(s.now()) {
		return nil, NewValidationError("scheduledStart", "must be in the future")
	}
	pro, err := s.activeProfessional(ctx, in.ProfessionalID)
	if err != nil {
		return nil, err
	}
	if pro.ProfileID == customerID {
		return nil, NewValidationError("professionalId", "you cannot book yourself")
	}
	service := strings.ToLower(strings.TrimSpace(in.Service))
	if service == "" {
		service = pro.PrimaryService
	}
	if !pro.OffersService(service) {
		return nil, NewValidationError("service", fmt.Sprintf("%q is not offered by this professional", service))
	}
	quote, err := NewQuote(pro.HourlyRate, in.DurationHours, s.Config.CommissionRate, currencyOr(pro.Currency, s.Config.Currency))
	if err != nil {
		return nil, err
	}

	b := &models.Booking{
		ID:             uuid.New(),
		CustomerID:     customerID,
		ProfessionalID: pro.ID,
		Service:        service,
		ScheduledStart: in.ScheduledStart.UTC(),
		DurationHours:  quote.Hours,
		Address:        strings.TrimSpace(in.Address),
		Notes:          strings.TrimSpace(in.Notes),
		Status:         models.BookingPending,
		HourlyRate:     quote.HourlyRate,
		Subtotal:       quote.Subtotal,
		Commission:     quote.Commission,
		Total:          quote.Total,
		Currency:       quote.Currency,
		PaymentStatus:  models.PaymentUnpaid,
	}
	if err := s.ensureFree(ctx, b); err != nil {
		return nil, err
	}
	if err := s.Repo.Create(ctx, b); err != nil {
		return nil, err
	}

	auth, err := s.Payments.Authorize(ctx, payments.AuthorizeRequest{
		Amount:         b.Total,
		Currency:       b.Currency,
		BookingID:      b.ID.String(),
		CustomerID:     customerID.String(),
		IdempotencyKey: b.ID.String(),
	})
	if err != nil {
		now := s.now()
		if uerr := s.Repo.UpdateFields(ctx, b.ID, map[string]any{
			"status":              models.BookingCancelled,
			"payment_status":      models.PaymentFailed,
			"cancellation_reason": "payment authorization failed",
			"cancelled_at":        now,
		}); uerr != nil {
			s.Logger.Error("Failed to cancel unpaid booking", zap.String("booking_id", b.ID.String()), zap.Error(uerr))
		}
		return nil, &PaymentError{Op: "authorize", Err: err}
	}
	if err := s.Repo.UpdateFields(ctx, b.ID, map[string]any{"payment_intent_id": auth.PaymentIntentID}); err != nil {
		return nil, err
	}
	b.PaymentIntentID = auth.PaymentIntentID

	s.scheduleReminder(ctx, b)
	s.notify(ctx, pro.ProfileID, "New booking request",
		fmt.Sprintf("%s on %s. Accept it to confirm.", b.Service, b.ScheduledStart.Format("Jan 2, 15:04")),
		map[string]string{"type": "booking_requested", "bookingId": b.ID.String()})

	s.Logger.Info("Booking created",
		zap.String("booking_id", b.ID.String()),
		zap.String("professional_id", pro.ID.String()),
		zap.String("total", b.Total.StringFixed(2)))
	return &CreateBookingResult{Booking: b, ClientSecret: auth.ClientSecret, Quote: quote}, nil
}

// ensureFree rejects b when it overlaps another open booking of the same
// professional. No booking is longer than maxHours, so earlier starts beyond
// that window cannot overlap.
func (s *DefaultBookingService) ensureFree(ctx context.Context, b *models.Booking) error {
	window := time.Duration(maxHours.IntPart()) * time.Hour
	open, err := s.Repo.ListOpenStarting(ctx, b.ProfessionalID, b.ScheduledStart.Add(-window), b.End())
	if err != nil {
		return err
	}
	for _, other := range open {
		if other.End().After(b.ScheduledStart) {
			return ErrProfessionalUnavailable
		}
	}
	return nil
}

func (s *DefaultBookingService) scheduleReminder(ctx context.Context, b *models.Booking) {
	if s.Reminders == nil {
		return
	}
	fireAt := b.ScheduledStart.Add(-s.Config.ReminderLead)
	if !fireAt.After(s.now()) {
		return
	}
	payload := models.ReminderPayload{
		ProfileID: b.CustomerID.String(),
		BookingID: b.ID.String(),
		Title:     "Upcoming booking",
		Body:      fmt.Sprintf("Your %s booking starts %s.", b.Service, b.ScheduledStart.Format("Mon Jan 2 at 15:04")),
		FireDate:  fireAt.Format(time.RFC3339),
	}
	if err := s.Reminders.ScheduleReminder(ctx, payload, fireAt); err != nil {
		s.Logger.Warn("Failed to schedule booking reminder", zap.String("booking_id", b.ID.String()), zap.Error(err))
	}
}

func (s *DefaultBookingService) load(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	b, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return b, err
}

// access loads the booking and the profile id owning its professional, and
// checks that actor is the customer, that owner, or an admin.
func (s *DefaultBookingService) access(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, uuid.UUID, error) {
	b, err := s.load(ctx, id)
	if err != nil {
		return nil, uuid.Nil, err
	}
	owner, err := s.professionalOwner(ctx, b.ProfessionalID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	if !actor.IsAdmin() && !b.IsParticipant(actor.ProfileID, owner) {
		return nil, uuid.Nil, ErrForbidden
	}
	return b, owner, nil
}

func (s *DefaultBookingService) professionalOwner(ctx context.Context, professionalID uuid.UUID) (uuid.UUID, error) {
	pro, err := s.Pros.GetByID(ctx, professionalID)
	if errors.Is(err, professionalRepo.ErrNotFound) {
		return uuid.Nil, nil
	}
	if err != nil {
		return uuid.Nil, err
	}
	return pro.ProfileID, nil
}

func (s *DefaultBookingService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	b, _, err := s.access(ctx, actor, id)
	return b, err
}

// List shows admins everything, professionals the bookings they work and
// everyone else the bookings they made.
func (s *DefaultBookingService) List(ctx context.Context, actor Actor, in ListInput) ([]models.Booking, error) {
	filter := bookingRepo.ListFilter{Status: in.Status, Limit: in.Limit, Offset: in.Offset}
	if filter.Limit <= 0 || filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleProfessional:
		pro, err := s.Pros.GetByProfileID(ctx, actor.ProfileID)
		if errors.Is(err, professionalRepo.ErrNotFound) {
			return []models.Booking{}, nil
		}
		if err != nil {
			return nil, err
		}
		filter.ProfessionalID = &pro.ID
	default:
		filter.CustomerID = &actor.ProfileID
	}
	return s.Repo.List(ctx, filter)
}

// transition moves b to "to" if the state machine allows it, failing with
// ErrInvalidTransition when b moved on concurrently.
func (s *DefaultBookingService) transition(ctx context.Context, b *models.Booking, to models.BookingStatus, fields map[string]any) error {
	if !CanTransition(b.Status, to) {
		return ErrInvalidTransition
	}
	if fields == nil {
		fields = map[string]any{}
	}
	fields["status"] = to
	err := s.Repo.Transition(ctx, b.ID, []models.BookingStatus{b.Status}, fields)
	if errors.Is(err, bookingRepo.ErrStaleStatus) {
		return ErrInvalidTransition
	}
	if err != nil {
		return err
	}
	s.Logger.Info("Booking status changed",
		zap.String("booking_id", b.ID.String()),
		zap.String("from", string(b.Status)),
		zap.String("to", string(to)))
	return nil
}

func (s *DefaultBookingService) asProfessional(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	b, owner, err := s.access(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if owner != actor.ProfileID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *DefaultBookingService) Accept(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	b, err := s.asProfessional(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, b, models.BookingConfirmed, map[string]any{"confirmed_at": s.now()}); err != nil {
		return nil, err
	}
	s.notify(ctx, b.CustomerID, "Booking confirmed", "Your professional accepted the booking.",
		map[string]string{"type": "booking_confirmed", "bookingId": b.ID.String()})
	return s.load(ctx, id)
}

func (s *DefaultBookingService) Start(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	b, err := s.asProfessional(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, b, models.BookingInProgress, map[string]any{"started_at": s.now()}); err != nil {
		return nil, err
	}
	return s.load(ctx, id)
}

// Complete captures the held payment before marking the booking completed, so a
// completed booking always has its money.
func (s *DefaultBookingService) Complete(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error) {
	b, err := s.asProfessional(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	// Disputed bookings complete only through ResolveDispute.
	if b.Status != models.BookingInProgress {
		return nil, ErrInvalidTransition
	}
	fields := map[string]any{"completed_at": s.now()}
	if err := s.capture(ctx, b); err != nil {
		return nil, err
	}
	if b.PaymentIntentID != "" {
		fields["payment_status"] = models.PaymentCaptured
	}
	if err := s.transition(ctx, b, models.BookingCompleted, fields); err != nil {
		if errors.Is(err, ErrInvalidTransition) && b.PaymentIntentID != "" && b.PaymentStatus != models.PaymentCaptured {
			s.refundOrphanCapture(ctx, b)
		}
		return nil, err
	}
	s.afterCompletion(ctx, b)
	return s.load(ctx, id)
}

// refundOrphanCapture returns money captured for a booking that another
// request moved out of in_progress before it could be completed.
func (s *DefaultBookingService) refundOrphanCapture(ctx context.Context, b *models.Booking) {
	current, err := s.Repo.GetByID(ctx, b.ID)
	if err != nil {
		s.Logger.Error("Failed to reload booking after capture", zap.String("booking_id", b.ID.String()), zap.Error(err))
		return
	}
	if current.Status == models.BookingCompleted {
		return
	}
	if err := s.Payments.Refund(ctx, b.PaymentIntentID, "capture-refund-"+b.ID.String()); err != nil {
		s.Logger.Error("Failed to refund orphaned capture",
			zap.String("booking_id", b.ID.String()),
			zap.String("status", string(current.Status)),
			zap.Error(err))
		return
	}
	if err := s.Repo.UpdateFields(ctx, b.ID, map[string]any{"payment_status": models.PaymentRefunded}); err != nil {
		s.Logger.Warn("Failed to record refund", zap.String("booking_id", b.ID.String()), zap.Error(err))
	}
	s.Logger.Warn("Refunded capture on a booking that was no longer in progress",
		zap.String("booking_id", b.ID.String()),
		zap.String("status", string(current.Status)))
}

func (s *DefaultBookingService) capture(ctx context.Context, b *models.Booking) error {
	if b.PaymentIntentID == "" || b.PaymentStatus == models.PaymentCaptured {
		return nil
	}
	if err := s.Payments.Capture(ctx, b.PaymentIntentID); err != nil {
		return &PaymentError{Op: "capture", Err: err}
	}
	return nil
}

func (s *DefaultBookingService) afterCompletion(ctx context.Context, b *models.Booking) {
	if err := s.Pros.IncrementCompletedBookings(ctx, b.ProfessionalID); err != nil {
		s.Logger.Warn("Failed to count completed booking", zap.String("booking_id", b.ID.String()), zap.Error(err))
	}
	if s.Referrals != nil {
		if err := s.Referrals.RewardOnFirstCompletion(ctx, b.CustomerID); err != nil {
			s.Logger.Warn("Failed to reward referral", zap.String("customer_id", b.CustomerID.String()), zap.Error(err))
		}
	}
	s.notify(ctx, b.CustomerID, "Booking completed", "How did it go? Leave a review.",
		map[string]string{"type": "booking_completed", "bookingId": b.ID.String()})
}

// Cancel releases an uncaptured hold. A failure to release it is logged; the
// authorization lapses on its own.
func (s *DefaultBookingService) Cancel(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Booking, error) {
	b, owner, err := s.access(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.transition(ctx, b, models.BookingCancelled, map[string]any{
		"cancelled_at":        s.now(),
		"cancellation_reason": strings.TrimSpace(reason),
	}); err != nil {
		return nil, err
	}

	if b.PaymentIntentID != "" && (b.PaymentStatus == models.PaymentUnpaid || b.PaymentStatus == models.PaymentAuthorized) {
		if err := s.Payments.Cancel(ctx, b.PaymentIntentID); err != nil {
			s.Logger.Warn("Failed to cancel payment intent", zap.String("booking_id", b.ID.String()), zap.Error(err))
		} else if err := s.Repo.UpdateFields(ctx, b.ID, map[string]any{"payment_status": models.PaymentCanceled}); err != nil {
			s.Logger.Warn("Failed to record canceled payment", zap.String("booking_id", b.ID.String()), zap.Error(err))
		}
	}

	other := b.CustomerID
	if actor.ProfileID == b.CustomerID {
		other = owner
	}
	if other != uuid.Nil {
		s.notify(ctx, other, "Booking cancelled", "A booking was cancelled.",
			map[string]string{"type": "booking_cancelled", "bookingId": b.ID.String()})
	}
	return s.load(ctx, id)
}

func (s *DefaultBookingService) notify(ctx context.Context, profileID uuid.UUID, title, body string, data map[string]string) {
	if err := s.Notifier.Push(ctx, profileID, title, body, data); err != nil {
		s.Logger.Warn("Failed to send notification", zap.String("profile_id", profileID.String()), zap.Error(err))
	}
}

func currencyOr(currency, fallback string) string {
	if currency == "" {
		return fallback
	}
	return currency
}
