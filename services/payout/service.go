package payout

import (
	"context"
	"errors"
	"fmt"
	"time"

	payoutRepo "casaora/database/repository/payout"
	professionalRepo "casaora/database/repository/professional"
	"casaora/models"
	"casaora/services/notification"
	"casaora/services/payments"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ErrNotProfessional is returned when the caller has no professional profile.
var ErrNotProfessional = errors.New("profile has no professional account")

// BatchResult summarizes one payout run.
type BatchResult struct {
	PeriodEnd time.Time       `json:"periodEnd"`
	Created   int             `json:"created"`
	Paid      int             `json:"paid"`
	Failed    int             `json:"failed"`
	Skipped   int             `json:"skipped"`
	Payouts   []models.Payout `json:"payouts"`
}

type PayoutService interface {
	RunBatch(ctx context.Context, periodEnd time.Time) (*BatchResult, error)
	ListMine(ctx context.Context, profileID uuid.UUID) ([]models.Payout, error)
	Summary(ctx context.Context, profileID uuid.UUID) (*models.PayoutSummary, error)
}

type DefaultPayoutService struct {
	Repo     payoutRepo.PayoutRepository
	Pros     professionalRepo.ProfessionalRepository
	Payments payments.Gateway
	Notifier notification.NotificationService
	Currency string
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewPayoutService(
	repo payoutRepo.PayoutRepository,
	pros professionalRepo.ProfessionalRepository,
	gateway payments.Gateway,
	notifier notification.NotificationService,
	currency string,
	logger *zap.Logger,
) *DefaultPayoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notification.LogNotificationService{Logger: logger}
	}
	if currency == "" {
		currency = "usd"
	}
	return &DefaultPayoutService{
		Repo:     repo,
		Pros:     pros,
		Payments: gateway,
		Notifier: notifier,
		Currency: currency,
		Logger:   logger,
		Now:      time.Now,
	}
}

type group struct {
	professionalID uuid.UUID
	currency       string
	bookings       []models.Booking
}

// groupBookings buckets bookings per professional and currency, keeping the
// order in which each bucket first appears.
func groupBookings(bookings []models.Booking) []*group {
	var out []*group
	index := map[string]*group{}
	for _, b := range bookings {
		key := b.ProfessionalID.String() + "/" + b.Currency
		g, ok := index[key]
		if !ok {
			g = &group{professionalID: b.ProfessionalID, currency: b.Currency}
			index[key] = g
			out = append(out, g)
		}
		g.bookings = append(g.bookings, b)
	}
	return out
}

// Earnings sums what the professional is owed for bookings.
func Earnings(bookings []models.Booking) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bookings {
		total = total.Add(b.ProfessionalEarnings())
	}
	return total
}

// RunBatch pays every professional their captured, unsettled earnings up to
// periodEnd. Bookings are claimed by the payout row before any money moves, so
// a second run finds nothing left to pay.
func (s *DefaultPayoutService) RunBatch(ctx context.Context, periodEnd time.Time) (*BatchResult, error) {
	result := &BatchResult{PeriodEnd: periodEnd, Payouts: []models.Payout{}}
	bookings, err := s.Repo.EligibleBookings(ctx, periodEnd)
	if err != nil {
		return nil, err
	}
	groups := groupBookings(bookings)
	if len(groups) == 0 {
		s.Logger.Info("No bookings eligible for payout", zap.Time("period_end", periodEnd))
		return result, nil
	}

	ids := make([]uuid.UUID, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.professionalID)
	}
	pros, err := s.Pros.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.ProfessionalProfile, len(pros))
	for _, p := range pros {
		byID[p.ID] = p
	}

	for _, g := range groups {
		pro, ok := byID[g.professionalID]
		if !ok || !pro.CanReceivePayouts() {
			result.Skipped++
			s.Logger.Warn("Professional cannot receive payouts; skipping",
				zap.String("professional_id", g.professionalID.String()),
				zap.Int("bookings", len(g.bookings)))
			continue
		}
		p, err := s.payGroup(ctx, pro, g, periodEnd)
		switch {
		case errors.Is(err, payoutRepo.ErrBookingsClaimed):
			result.Skipped++
			s.Logger.Warn("Bookings claimed by a concurrent batch", zap.String("professional_id", pro.ID.String()))
			continue
		case err != nil:
			result.Failed++
			s.Logger.Error("Failed to create payout", zap.String("professional_id", pro.ID.String()), zap.Error(err))
			continue
		}
		result.Created++
		if p.Status == models.PayoutPaid {
			result.Paid++
		} else {
			result.Failed++
		}
		result.Payouts = append(result.Payouts, *p)
	}

	s.Logger.Info("Payout batch finished",
		zap.Time("period_end", periodEnd),
		zap.Int("created", result.Created),
		zap.Int("paid", result.Paid),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *DefaultPayoutService) payGroup(ctx context.Context, pro models.ProfessionalProfile, g *group, periodEnd time.Time) (*models.Payout, error) {
	bookingIDs := make([]uuid.UUID, 0, len(g.bookings))
	periodStart := periodEnd
	for _, b := range g.bookings {
		bookingIDs = append(bookingIDs, b.ID)
		if b.CompletedAt != nil && b.CompletedAt.Before(periodStart) {
			periodStart = *b.CompletedAt
		}
	}
	p := &models.Payout{
		ProfessionalID: pro.ID,
		Amount:         Earnings(g.bookings),
		Currency:       g.currency,
		Status:         models.PayoutPending,
		BookingCount:   len(g.bookings),
		PeriodStart:    periodStart,
		PeriodEnd:      periodEnd,
	}
	if err := s.Repo.CreateWithBookings(ctx, p, bookingIDs); err != nil {
		return nil, err
	}

	transferID, err := s.Payments.Transfer(ctx, payments.TransferRequest{
		Amount:         p.Amount,
		Currency:       p.Currency,
		Destination:    pro.StripeAccountID,
		PayoutID:       p.ID.String(),
		IdempotencyKey: p.ID.String(),
	})
	if err != nil {
		p.Status = models.PayoutFailed
		p.FailureReason = err.Error()
		if merr := s.Repo.MarkFailed(ctx, p.ID, p.FailureReason); merr != nil {
			s.Logger.Error("Failed to record payout failure", zap.String("payout_id", p.ID.String()), zap.Error(merr))
		}
		s.Logger.Error("Payout transfer failed", zap.String("payout_id", p.ID.String()), zap.Error(err))
		return p, nil
	}

	paidAt := s.Now().UTC()
	if err := s.Repo.MarkPaid(ctx, p.ID, transferID, paidAt); err != nil {
		return nil, fmt.Errorf("transfer %s sent but not recorded: %w", transferID, err)
	}
	p.Status = models.PayoutPaid
	p.StripeTransferID = transferID
	p.PaidAt = &paidAt

	body := fmt.Sprintf("%s %s is on its way to your bank.", p.Amount.StringFixed(2), p.Currency)
	if err := s.Notifier.Push(ctx, pro.ProfileID, "Payout sent", body,
		map[string]string{"type": "payout_paid", "payoutId": p.ID.String()}); err != nil {
		s.Logger.Warn("Failed to notify payout", zap.String("payout_id", p.ID.String()), zap.Error(err))
	}
	return p, nil
}

func (s *DefaultPayoutService) professional(ctx context.Context, profileID uuid.UUID) (*models.ProfessionalProfile, error) {
	pro, err := s.Pros.GetByProfileID(ctx, profileID)
	if errors.Is(err, professionalRepo.ErrNotFound) {
		return nil, ErrNotProfessional
	}
	return pro, err
}

func (s *DefaultPayoutService) ListMine(ctx context.Context, profileID uuid.UUID) ([]models.Payout, error) {
	pro, err := s.professional(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return s.Repo.ListForProfessional(ctx, pro.ID)
}

// Summary reports the unsettled balance and everything paid so far.
func (s *DefaultPayoutService) Summary(ctx context.Context, profileID uuid.UUID) (*models.PayoutSummary, error) {
	pro, err := s.professional(ctx, profileID)
	if err != nil {
		return nil, err
	}
	pending, err := s.Repo.PendingBookings(ctx, pro.ID)
	if err != nil {
		return nil, err
	}
	history, err := s.Repo.ListForProfessional(ctx, pro.ID)
	if err != nil {
		return nil, err
	}

	sum := &models.PayoutSummary{
		PendingBalance: Earnings(pending),
		LifetimePaid:   decimal.Zero,
		Currency:       pro.Currency,
	}
	if sum.Currency == "" {
		sum.Currency = s.Currency
	}
	for _, p := range history {
		if p.Status != models.PayoutPaid {
			continue
		}
		sum.LifetimePaid = sum.LifetimePaid.Add(p.Amount)
		if p.PaidAt != nil && (sum.LastPayoutAt == nil || p.PaidAt.After(*sum.LastPayoutAt)) {
			t := *p.PaidAt
			sum.LastPayoutAt = &t
		}
	}
	return sum, nil
}
