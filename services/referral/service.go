package referral

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"time"

	profileRepo "casaora/database/repository/profile"
	referralRepo "casaora/database/repository/referral"
	"casaora/models"
	"casaora/services/notification"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrInvalidCode     = errors.New("referral code not recognised")
	ErrSelfReferral    = errors.New("a profile cannot redeem its own referral code")
	ErrAlreadyRedeemed = errors.New("profile already redeemed a referral code")
)

const (
	CodeLength = 8
	// Upper-case letters and digits without the easily confused 0/O and 1/I.
	codeAlphabet   = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	maxCodeAttempt = 5
)

type ReferralService interface {
	EnsureCode(ctx context.Context, profileID uuid.UUID) (string, error)
	Redeem(ctx context.Context, referredID uuid.UUID, code string) (*models.Referral, error)
	RewardOnFirstCompletion(ctx context.Context, customerID uuid.UUID) error
	ListMine(ctx context.Context, referrerID uuid.UUID) ([]models.Referral, error)
}

type DefaultReferralService struct {
	Profiles     profileRepo.ProfileRepository
	Referrals    referralRepo.ReferralRepository
	Notifier     notification.NotificationService
	RewardAmount decimal.Decimal
	Logger       *zap.Logger
	Now          func() time.Time
}

func NewReferralService(
	profiles profileRepo.ProfileRepository,
	referrals referralRepo.ReferralRepository,
	notifier notification.NotificationService,
	rewardAmount decimal.Decimal,
	logger *zap.Logger,
) *DefaultReferralService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultReferralService{
		Profiles:     profiles,
		Referrals:    referrals,
		Notifier:     notifier,
		RewardAmount: rewardAmount,
		Logger:       logger,
		Now:          time.Now,
	}
}

// GenerateCode derives the attempt-th candidate code for a profile. Attempt 0
// is what every profile gets unless it collides.
func GenerateCode(profileID uuid.UUID, attempt int) string {
	sum := sha256.Sum256(append(profileID[:], byte(attempt)))
	var b strings.Builder
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(codeAlphabet[int(sum[i])%len(codeAlphabet)])
	}
	return b.String()
}

// NormalizeCode upper-cases and trims user input.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// EnsureCode returns the profile's referral code, assigning one on first call.
func (s *DefaultReferralService) EnsureCode(ctx context.Context, profileID uuid.UUID) (string, error) {
	p, err := s.Profiles.GetByID(ctx, profileID)
	if err != nil {
		return "", err
	}
	if p.ReferralCode != nil && *p.ReferralCode != "" {
		return *p.ReferralCode, nil
	}

	for attempt := 0; attempt < maxCodeAttempt; attempt++ {
		code := GenerateCode(profileID, attempt)
		set, err := s.Profiles.SetReferralCode(ctx, profileID, code)
		if errors.Is(err, profileRepo.ErrCodeTaken) {
			s.Logger.Debug("Referral code collision", zap.String("code", code), zap.Int("attempt", attempt))
			continue
		}
		if err != nil {
			return "", err
		}
		if set {
			return code, nil
		}
		// Another request assigned a code first.
		p, err = s.Profiles.GetByID(ctx, profileID)
		if err != nil {
			return "", err
		}
		if p.ReferralCode != nil {
			return *p.ReferralCode, nil
		}
	}
	return "", fmt.Errorf("could not allocate a referral code after %d attempts", maxCodeAttempt)
}

func (s *DefaultReferralService) Redeem(ctx context.Context, referredID uuid.UUID, code string) (*models.Referral, error) {
	code = NormalizeCode(code)
	if len(code) != CodeLength {
		return nil, ErrInvalidCode
	}
	owner, err := s.Profiles.GetByReferralCode(ctx, code)
	if errors.Is(err, profileRepo.ErrNotFound) {
		return nil, ErrInvalidCode
	}
	if err != nil {
		return nil, err
	}
	if owner.ID == referredID {
		return nil, ErrSelfReferral
	}

	ref := &models.Referral{
		ReferrerID:   owner.ID,
		ReferredID:   referredID,
		Code:         code,
		Status:       models.ReferralPending,
		RewardAmount: decimal.Zero,
	}
	if err := s.Referrals.Create(ctx, ref); err != nil {
		if errors.Is(err, referralRepo.ErrAlreadyReferred) {
			return nil, ErrAlreadyRedeemed
		}
		return nil, err
	}
	s.Logger.Info("Referral redeemed",
		zap.String("referrer_id", owner.ID.String()),
		zap.String("referred_id", referredID.String()))
	return ref, nil
}

// RewardOnFirstCompletion is safe to call on every completed booking: only a
// pending referral changes.
func (s *DefaultReferralService) RewardOnFirstCompletion(ctx context.Context, customerID uuid.UUID) error {
	rewarded, err := s.Referrals.Reward(ctx, customerID, s.RewardAmount, s.Now().UTC())
	if err != nil {
		return err
	}
	if !rewarded {
		return nil
	}
	ref, err := s.Referrals.GetByReferred(ctx, customerID)
	if err != nil {
		return err
	}
	s.Logger.Info("Referral rewarded",
		zap.String("referrer_id", ref.ReferrerID.String()),
		zap.String("amount", s.RewardAmount.StringFixed(2)))

	if s.Notifier != nil {
		body := fmt.Sprintf("Someone you invited completed their first booking. You earned %s in credit.", s.RewardAmount.StringFixed(2))
		if err := s.Notifier.Push(ctx, ref.ReferrerID, "Referral reward", body, map[string]string{"type": "referral_reward"}); err != nil {
			s.Logger.Warn("Failed to notify referrer", zap.Error(err))
		}
	}
	return nil
}

func (s *DefaultReferralService) ListMine(ctx context.Context, referrerID uuid.UUID) ([]models.Referral, error) {
	return s.Referrals.ListByReferrer(ctx, referrerID)
}
