package bookingRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"casaora/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (r *GormBookingRepo) CreateReview(ctx context.Context, rv *models.Review) error {
	err := r.db.WithContext(ctx).Create(rv).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateReview
	}
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *GormBookingRepo) GetReviewByBooking(ctx context.Context, bookingID uuid.UUID) (*models.Review, error) {
	var rv models.Review
	if err := r.db.WithContext(ctx).First(&rv, "booking_id = ?", bookingID).Error; err != nil {
		return nil, wrapNotFound(err, "failed to get review")
	}
	return &rv, nil
}

func (r *GormBookingRepo) ListReviews(ctx context.Context, professionalID uuid.UUID, limit int) ([]models.Review, error) {
	q := r.db.WithContext(ctx).Where("professional_id = ?", professionalID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Review
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return out, nil
}

func (r *GormBookingRepo) RatingStats(ctx context.Context, professionalID uuid.UUID) (float64, int, error) {
	var row struct {
		Average sql.NullFloat64
		Total   int
	}
	err := r.db.WithContext(ctx).Model(&models.Review{}).
		Select("AVG(rating) AS average, COUNT(*) AS total").
		Where("professional_id = ?", professionalID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, fmt.Errorf("failed to compute rating: %w", err)
	}
	return row.Average.Float64, row.Total, nil
}

func (r *GormBookingRepo) CreateDispute(ctx context.Context, d *models.Dispute) error {
	if err := r.db.WithContext(ctx).Create(d).Error; err != nil {
		return fmt.Errorf("failed to create dispute: %w", err)
	}
	return nil
}

func (r *GormBookingRepo) GetDispute(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	if err := r.db.WithContext(ctx).First(&d, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "failed to get dispute")
	}
	return &d, nil
}

func (r *GormBookingRepo) ResolveDispute(ctx context.Context, d *models.Dispute) error {
	if d.ResolvedAt == nil {
		now := time.Now().UTC()
		d.ResolvedAt = &now
	}
	res := r.db.WithContext(ctx).Model(&models.Dispute{}).
		Where("id = ? AND status = ?", d.ID, models.DisputeOpen).
		Updates(map[string]any{
			"status":      d.Status,
			"resolution":  d.Resolution,
			"resolved_at": d.ResolvedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to resolve dispute: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleStatus
	}
	return nil
}
