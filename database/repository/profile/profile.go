package profileRepo

import (
	"context"
	"errors"
	"fmt"

	"casaora/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProfileRepo implements ProfileRepository on Postgres.
type GormProfileRepo struct {
	db *gorm.DB
}

func NewGormProfileRepo(db *gorm.DB) *GormProfileRepo {
	return &GormProfileRepo{db: db}
}

func (r *GormProfileRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "failed to get profile")
	}
	return &p, nil
}

func (r *GormProfileRepo) GetByReferralCode(ctx context.Context, code string) (*models.Profile, error) {
	var p models.Profile
	if err := r.db.WithContext(ctx).First(&p, "referral_code = ?", code).Error; err != nil {
		return nil, wrapNotFound(err, "failed to get profile by referral code")
	}
	return &p, nil
}

func (r *GormProfileRepo) Create(ctx context.Context, p *models.Profile) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

func (r *GormProfileRepo) SetReferralCode(ctx context.Context, id uuid.UUID, code string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ? AND referral_code IS NULL", id).
		Update("referral_code", code)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return false, ErrCodeTaken
	}
	if res.Error != nil {
		return false, fmt.Errorf("failed to set referral code: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *GormProfileRepo) UpdatePushToken(ctx context.Context, id uuid.UUID, token string) error {
	res := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Update("push_token", token)
	if res.Error != nil {
		return fmt.Errorf("failed to update push token: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func wrapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
