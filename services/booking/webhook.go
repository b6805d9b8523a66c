package booking

import (
	"context"
	"errors"

	bookingRepo "casaora/database/repository/booking"
	"casaora/models"
	"casaora/services/payments"

	"go.uber.org/zap"
)

var webhookStatuses = map[string]models.PaymentStatus{
	payments.EventAmountCapturable: models.PaymentAuthorized,
	payments.EventSucceeded:        models.PaymentCaptured,
	payments.EventPaymentFailed:    models.PaymentFailed,
	payments.EventCanceled:         models.PaymentCanceled,
}

// HandleStripeWebhook verifies a Stripe event and mirrors PaymentIntent state
// onto the booking. Unknown events and unknown intents are acknowledged.
func (s *DefaultBookingService) HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error) {
	ev, err := s.Payments.ParseWebhook(payload, signature)
	if err != nil {
		return nil, err
	}
	result := &WebhookResult{EventID: ev.ID, EventType: ev.Type}

	status, ok := webhookStatuses[ev.Type]
	if !ok || ev.PaymentIntentID == "" {
		s.Logger.Debug("Unhandled webhook event type", zap.String("event_type", ev.Type))
		return result, nil
	}

	b, err := s.Repo.GetByPaymentIntentID(ctx, ev.PaymentIntentID)
	if errors.Is(err, bookingRepo.ErrNotFound) {
		s.Logger.Warn("Webhook for unknown payment intent", zap.String("payment_intent", ev.PaymentIntentID))
		return result, nil
	}
	if err != nil {
		return nil, err
	}
	result.BookingID = b.ID.String()

	if !paymentStatusAdvances(b.PaymentStatus, status) {
		s.Logger.Debug("Ignoring stale payment event",
			zap.String("booking_id", b.ID.String()),
			zap.String("current", string(b.PaymentStatus)),
			zap.String("event_status", string(status)))
		result.Handled = true
		return result, nil
	}
	if err := s.Repo.UpdateFields(ctx, b.ID, map[string]any{"payment_status": status}); err != nil {
		return nil, err
	}
	s.Logger.Info("Payment status updated",
		zap.String("booking_id", b.ID.String()),
		zap.String("event_id", ev.ID),
		zap.String("payment_status", string(status)))
	result.Handled = true
	return result, nil
}

// paymentStatusAdvances keeps out-of-order deliveries from moving a payment backwards.
func paymentStatusAdvances(current, next models.PaymentStatus) bool {
	switch current {
	case models.PaymentRefunded, models.PaymentCanceled:
		return false
	case models.PaymentCaptured:
		return false
	case models.PaymentAuthorized:
		return next != models.PaymentAuthorized
	default:
		return current != next
	}
}
