package payoutRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casaora/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPayoutRepo implements PayoutRepository on Postgres.
type GormPayoutRepo struct {
	db *gorm.DB
}

func NewGormPayoutRepo(db *gorm.DB) *GormPayoutRepo {
	return &GormPayoutRepo{db: db}
}

// eligible is the settlement predicate shared by the batch and the balance.
func eligible(db *gorm.DB) *gorm.DB {
	return db.Where("status = ? AND payment_status = ? AND payout_id IS NULL",
		models.BookingCompleted, models.PaymentCaptured)
}

func (r *GormPayoutRepo) EligibleBookings(ctx context.Context, periodEnd time.Time) ([]models.Booking, error) {
	var out []models.Booking
	err := r.db.WithContext(ctx).Scopes(eligible).
		Where("completed_at <= ?", periodEnd).
		Order("professional_id, completed_at").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load eligible bookings: %w", err)
	}
	return out, nil
}

func (r *GormPayoutRepo) PendingBookings(ctx context.Context, professionalID uuid.UUID) ([]models.Booking, error) {
	var out []models.Booking
	err := r.db.WithContext(ctx).Scopes(eligible).
		Where("professional_id = ?", professionalID).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load pending bookings: %w", err)
	}
	return out, nil
}

func (r *GormPayoutRepo) CreateWithBookings(ctx context.Context, payout *models.Payout, bookingIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(payout).Error; err != nil {
			return fmt.Errorf("failed to create payout: %w", err)
		}
		res := tx.Model(&models.Booking{}).
			Scopes(eligible).
			Where("id IN ?", bookingIDs).
			Update("payout_id", payout.ID)
		if res.Error != nil {
			return fmt.Errorf("failed to stamp bookings: %w", res.Error)
		}
		if res.RowsAffected != int64(len(bookingIDs)) {
			return ErrBookingsClaimed
		}
		return nil
	})
}

func (r *GormPayoutRepo) MarkPaid(ctx context.Context, id uuid.UUID, transferID string, paidAt time.Time) error {
	return r.update(ctx, id, map[string]any{
		"status":             models.PayoutPaid,
		"stripe_transfer_id": transferID,
		"paid_at":            paidAt,
		"failure_reason":     "",
	})
}

// MarkFailed records the failure and releases the payout's bookings so the
// next batch settles them again.
func (r *GormPayoutRepo) MarkFailed(ctx context.Context, id uuid.UUID, reason string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Payout{}).Where("id = ?", id).Updates(map[string]any{
			"status":         models.PayoutFailed,
			"failure_reason": reason,
		})
		if res.Error != nil {
			return fmt.Errorf("failed to update payout: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Model(&models.Booking{}).Where("payout_id = ?", id).
			Update("payout_id", nil).Error; err != nil {
			return fmt.Errorf("failed to release bookings: %w", err)
		}
		return nil
	})
}

func (r *GormPayoutRepo) update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Payout{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update payout: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormPayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	var p models.Payout
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get payout: %w", err)
	}
	return &p, nil
}

func (r *GormPayoutRepo) ListForProfessional(ctx context.Context, professionalID uuid.UUID) ([]models.Payout, error) {
	var out []models.Payout
	err := r.db.WithContext(ctx).
		Where("professional_id = ?", professionalID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list payouts: %w", err)
	}
	return out, nil
}
