package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/transfer"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

// ErrInvalidSignature is returned when a webhook payload fails verification.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Webhook event types the marketplace reacts to.
const (
	EventAmountCapturable = "payment_intent.amount_capturable_updated"
	EventSucceeded        = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"
	EventCanceled         = "payment_intent.canceled"
)

// AuthorizeRequest describes a hold placed on the customer's card.
type AuthorizeRequest struct {
	Amount         decimal.Decimal
	Currency       string
	BookingID      string
	CustomerID     string
	IdempotencyKey string
}

// Authorization is the created PaymentIntent.
type Authorization struct {
	PaymentIntentID string
	ClientSecret    string
}

// TransferRequest moves funds to a connected account.
type TransferRequest struct {
	Amount         decimal.Decimal
	Currency       string
	Destination    string
	PayoutID       string
	IdempotencyKey string
}

// Event is the part of a verified webhook the marketplace needs.
type Event struct {
	ID              string
	Type            string
	PaymentIntentID string
}

// Gateway is the payment provider as seen by bookings and payouts.
type Gateway interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (*Authorization, error)
	Capture(ctx context.Context, paymentIntentID string) error
	Cancel(ctx context.Context, paymentIntentID string) error
	Refund(ctx context.Context, paymentIntentID, idempotencyKey string) error
	Transfer(ctx context.Context, req TransferRequest) (string, error)
	ParseWebhook(payload []byte, signature string) (*Event, error)
}

// MinorUnits converts an amount to the integer the Stripe API expects (cents).
func MinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

// StripeGateway implements Gateway on the global stripe.Key.
type StripeGateway struct {
	WebhookSecret string
	Logger        *zap.Logger
}

func NewStripeGateway(apiKey, webhookSecret string, logger *zap.Logger) *StripeGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	stripe.Key = apiKey
	return &StripeGateway{WebhookSecret: webhookSecret, Logger: logger}
}

// Authorize creates a PaymentIntent with manual capture. Funds are held, not taken.
func (g *StripeGateway) Authorize(ctx context.Context, req AuthorizeRequest) (*Authorization, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(MinorUnits(req.Amount)),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		CaptureMethod: stripe.String(string(stripe.PaymentIntentCaptureMethodManual)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("booking_id", req.BookingID)
	params.AddMetadata("customer_id", req.CustomerID)
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		g.Logger.Error("Failed to create PaymentIntent", zap.String("booking_id", req.BookingID), zap.Error(err))
		return nil, fmt.Errorf("stripe: failed to create payment intent: %w", err)
	}
	g.Logger.Info("Created PaymentIntent", zap.String("booking_id", req.BookingID), zap.String("payment_intent", pi.ID))
	return &Authorization{PaymentIntentID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *StripeGateway) Capture(ctx context.Context, paymentIntentID string) error {
	params := &stripe.PaymentIntentCaptureParams{}
	params.Context = ctx
	params.SetIdempotencyKey("capture-" + paymentIntentID)
	if _, err := paymentintent.Capture(paymentIntentID, params); err != nil {
		return fmt.Errorf("stripe: failed to capture payment intent: %w", err)
	}
	return nil
}

func (g *StripeGateway) Cancel(ctx context.Context, paymentIntentID string) error {
	params := &stripe.PaymentIntentCancelParams{}
	params.Context = ctx
	if _, err := paymentintent.Cancel(paymentIntentID, params); err != nil {
		return fmt.Errorf("stripe: failed to cancel payment intent: %w", err)
	}
	return nil
}

func (g *StripeGateway) Refund(ctx context.Context, paymentIntentID, idempotencyKey string) error {
	params := &stripe.RefundParams{PaymentIntent: stripe.String(paymentIntentID)}
	params.Context = ctx
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
	if _, err := refund.New(params); err != nil {
		return fmt.Errorf("stripe: failed to refund payment intent: %w", err)
	}
	return nil
}

// Transfer sends a Connect transfer and returns its id.
func (g *StripeGateway) Transfer(ctx context.Context, req TransferRequest) (string, error) {
	params := &stripe.TransferParams{
		Amount:        stripe.Int64(MinorUnits(req.Amount)),
		Currency:      stripe.String(strings.ToLower(req.Currency)),
		Destination:   stripe.String(req.Destination),
		TransferGroup: stripe.String("payout-" + req.PayoutID),
	}
	params.Context = ctx
	params.AddMetadata("payout_id", req.PayoutID)
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	tr, err := transfer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe: failed to create transfer: %w", err)
	}
	return tr.ID, nil
}

// ParseWebhook verifies the Stripe-Signature header and extracts the PaymentIntent id.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEvent(payload, signature, g.WebhookSecret)
	if err != nil {
		g.Logger.Warn("Failed to verify webhook signature", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	out := &Event{ID: event.ID, Type: string(event.Type)}
	if strings.HasPrefix(out.Type, "payment_intent.") && event.Data != nil {
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			return nil, fmt.Errorf("stripe: failed to decode payment intent: %w", err)
		}
		out.PaymentIntentID = pi.ID
	}
	return out, nil
}
