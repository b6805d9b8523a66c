package bookingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casaora/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBookingRepo implements BookingRepository on Postgres.
type GormBookingRepo struct {
	db *gorm.DB
}

func NewGormBookingRepo(db *gorm.DB) *GormBookingRepo {
	return &GormBookingRepo{db: db}
}

func (r *GormBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *GormBookingRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "failed to get booking")
	}
	return &b, nil
}

func (r *GormBookingRepo) GetByPaymentIntentID(ctx context.Context, paymentIntentID string) (*models.Booking, error) {
	if paymentIntentID == "" {
		return nil, ErrNotFound
	}
	var b models.Booking
	if err := r.db.WithContext(ctx).First(&b, "payment_intent_id = ?", paymentIntentID).Error; err != nil {
		return nil, wrapNotFound(err, "failed to get booking by payment intent")
	}
	return &b, nil
}

func (r *GormBookingRepo) List(ctx context.Context, f ListFilter) ([]models.Booking, error) {
	q := r.db.WithContext(ctx).Model(&models.Booking{})
	if f.CustomerID != nil {
		q = q.Where("customer_id = ?", *f.CustomerID)
	}
	if f.ProfessionalID != nil {
		q = q.Where("professional_id = ?", *f.ProfessionalID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var out []models.Booking
	if err := q.Order("scheduled_start DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	return out, nil
}

func (r *GormBookingRepo) ListOpenStarting(ctx context.Context, professionalID uuid.UUID, from, to time.Time) ([]models.Booking, error) {
	open := []models.BookingStatus{models.BookingPending, models.BookingConfirmed, models.BookingInProgress}
	var out []models.Booking
	err := r.db.WithContext(ctx).
		Where("professional_id = ? AND status IN ? AND scheduled_start >= ? AND scheduled_start < ?",
			professionalID, open, from.UTC(), to.UTC()).
		Order("scheduled_start").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list open bookings: %w", err)
	}
	return out, nil
}

func (r *GormBookingRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Booking{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormBookingRepo) Transition(ctx context.Context, id uuid.UUID, from []models.BookingStatus, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to transition booking: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}

func wrapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
