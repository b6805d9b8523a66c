package booking

import (
	"context"
	"time"

	bookingRepo "casaora/database/repository/booking"
	professionalRepo "casaora/database/repository/professional"
	"casaora/models"
	"casaora/services/notification"
	"casaora/services/payments"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Actor is the authenticated caller.
type Actor struct {
	ProfileID uuid.UUID
	Role      models.Role
}

func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

type CreateBookingInput struct {
	ProfessionalID uuid.UUID       `json:"professionalId" binding:"required"`
	Service        string          `json:"service"`
	ScheduledStart time.Time       `json:"scheduledStart" binding:"required"`
	DurationHours  decimal.Decimal `json:"durationHours"`
	Address        string          `json:"address" binding:"required,max=500"`
	Notes          string          `json:"notes" binding:"max=2000"`
}

type CreateBookingResult struct {
	Booking      *models.Booking `json:"booking"`
	ClientSecret string          `json:"clientSecret"`
	Quote        Quote           `json:"quote"`
}

type ListInput struct {
	Status models.BookingStatus
	Limit  int
	Offset int
}

// Party names the side a dispute is resolved for.
type Party string

const (
	PartyCustomer     Party = "customer"
	PartyProfessional Party = "professional"
)

// WebhookResult tells the caller what a Stripe event did.
type WebhookResult struct {
	EventID   string `json:"eventId"`
	EventType string `json:"eventType"`
	Handled   bool   `json:"handled"`
	BookingID string `json:"bookingId,omitempty"`
}

// BookingService runs the booking lifecycle from request to payout eligibility.
type BookingService interface {
	Quote(ctx context.Context, professionalID uuid.UUID, hours decimal.Decimal) (Quote, error)
	Create(ctx context.Context, customerID uuid.UUID, in CreateBookingInput) (*CreateBookingResult, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error)
	List(ctx context.Context, actor Actor, in ListInput) ([]models.Booking, error)
	Accept(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error)
	Start(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error)
	Complete(ctx context.Context, actor Actor, id uuid.UUID) (*models.Booking, error)
	Cancel(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Booking, error)
	HandleStripeWebhook(ctx context.Context, payload []byte, signature string) (*WebhookResult, error)

	Review(ctx context.Context, customerID, bookingID uuid.UUID, rating int, comment string) (*models.Review, error)
	OpenDispute(ctx context.Context, actor Actor, bookingID uuid.UUID, reason, description string) (*models.Dispute, error)
	ResolveDispute(ctx context.Context, adminID, disputeID uuid.UUID, inFavorOf Party, resolution string) (*models.Dispute, error)
}

// ReminderScheduler queues a push for later delivery.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error
}

// ReferralRewarder credits the referrer of a customer's first completed booking.
type ReferralRewarder interface {
	RewardOnFirstCompletion(ctx context.Context, customerID uuid.UUID) error
}

// RatingRecomputer refreshes a professional's aggregate rating.
type RatingRecomputer interface {
	RecomputeRating(ctx context.Context, professionalID uuid.UUID) error
}

type Config struct {
	CommissionRate decimal.Decimal
	Currency       string
	// ReminderLead is how long before the start the reminder fires.
	ReminderLead time.Duration
}

type DefaultBookingService struct {
	Repo      bookingRepo.BookingRepository
	Pros      professionalRepo.ProfessionalRepository
	Payments  payments.Gateway
	Reminders ReminderScheduler
	Referrals ReferralRewarder
	Ratings   RatingRecomputer
	Notifier  notification.NotificationService
	Config    Config
	Logger    *zap.Logger
	Now       func() time.Time
}

type Deps struct {
	Repo      bookingRepo.BookingRepository
	Pros      professionalRepo.ProfessionalRepository
	Payments  payments.Gateway
	Reminders ReminderScheduler
	Referrals ReferralRewarder
	Ratings   RatingRecomputer
	Notifier  notification.NotificationService
}

func NewBookingService(deps Deps, cfg Config, logger *zap.Logger) *DefaultBookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	if cfg.ReminderLead == 0 {
		cfg.ReminderLead = 24 * time.Hour
	}
	notifier := deps.Notifier
	if notifier == nil {
		notifier = notification.LogNotificationService{Logger: logger}
	}
	return &DefaultBookingService{
		Repo:      deps.Repo,
		Pros:      deps.Pros,
		Payments:  deps.Payments,
		Reminders: deps.Reminders,
		Referrals: deps.Referrals,
		Ratings:   deps.Ratings,
		Notifier:  notifier,
		Config:    cfg,
		Logger:    logger,
		Now:       time.Now,
	}
}
