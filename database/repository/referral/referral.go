package referralRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casaora/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormReferralRepo implements ReferralRepository on Postgres.
type GormReferralRepo struct {
	db *gorm.DB
}

func NewGormReferralRepo(db *gorm.DB) *GormReferralRepo {
	return &GormReferralRepo{db: db}
}

func (r *GormReferralRepo) Create(ctx context.Context, ref *models.Referral) error {
	err := r.db.WithContext(ctx).Create(ref).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyReferred
	}
	if err != nil {
		return fmt.Errorf("failed to create referral: %w", err)
	}
	return nil
}

func (r *GormReferralRepo) GetByReferred(ctx context.Context, referredID uuid.UUID) (*models.Referral, error) {
	var ref models.Referral
	if err := r.db.WithContext(ctx).First(&ref, "referred_id = ?", referredID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get referral: %w", err)
	}
	return &ref, nil
}

func (r *GormReferralRepo) ListByReferrer(ctx context.Context, referrerID uuid.UUID) ([]models.Referral, error) {
	var out []models.Referral
	err := r.db.WithContext(ctx).Where("referrer_id = ?", referrerID).Order("created_at DESC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list referrals: %w", err)
	}
	return out, nil
}

func (r *GormReferralRepo) Reward(ctx context.Context, referredID uuid.UUID, amount decimal.Decimal, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Referral{}).
		Where("referred_id = ? AND status = ?", referredID, models.ReferralPending).
		Updates(map[string]any{
			"status":        models.ReferralRewarded,
			"reward_amount": amount,
			"rewarded_at":   at,
		})
	if res.Error != nil {
		return false, fmt.Errorf("failed to reward referral: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
