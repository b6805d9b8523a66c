package referralRepo

import (
	"context"
	"errors"
	"time"

	"casaora/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no referral matches.
	ErrNotFound = errors.New("referral not found")
	// ErrAlreadyReferred is returned when the referred profile already redeemed a code.
	ErrAlreadyReferred = errors.New("profile already redeemed a referral")
)

// ReferralRepository defines data access for referrals.
type ReferralRepository interface {
	// Create inserts a referral, failing with ErrAlreadyReferred on a second one for the same referred profile.
	Create(ctx context.Context, r *models.Referral) error
	// GetByReferred retrieves the referral a profile redeemed.
	GetByReferred(ctx context.Context, referredID uuid.UUID) (*models.Referral, error)
	// ListByReferrer returns the referrals a profile earned.
	ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]models.Referral, error)
	// Reward marks a pending referral rewarded. It reports false when nothing was pending.
	Reward(ctx context.Context, referredID uuid.UUID, amount decimal.Decimal, at time.Time) (bool, error)
}
