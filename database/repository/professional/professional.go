package professionalRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"casaora/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProfessionalRepo implements ProfessionalRepository on Postgres.
type GormProfessionalRepo struct {
	db *gorm.DB
}

func NewGormProfessionalRepo(db *gorm.DB) *GormProfessionalRepo {
	return &GormProfessionalRepo{db: db}
}

func (r *GormProfessionalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ProfessionalProfile, error) {
	var p models.ProfessionalProfile
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, wrapNotFound(err, "failed to get professional")
	}
	return &p, nil
}

func (r *GormProfessionalRepo) GetByProfileID(ctx context.Context, profileID uuid.UUID) (*models.ProfessionalProfile, error) {
	var p models.ProfessionalProfile
	if err := r.db.WithContext(ctx).First(&p, "profile_id = ?", profileID).Error; err != nil {
		return nil, wrapNotFound(err, "failed to get professional by profile")
	}
	return &p, nil
}

func (r *GormProfessionalRepo) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ProfessionalProfile, error) {
	var out []models.ProfessionalProfile
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to get professionals: %w", err)
	}
	return out, nil
}

func (r *GormProfessionalRepo) Create(ctx context.Context, p *models.ProfessionalProfile) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return fmt.Errorf("failed to create professional: %w", err)
	}
	return nil
}

func (r *GormProfessionalRepo) Update(ctx context.Context, p *models.ProfessionalProfile) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return fmt.Errorf("failed to update professional: %w", err)
	}
	return nil
}

func (r *GormProfessionalRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&models.ProfessionalProfile{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update professional fields: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormProfessionalRepo) IncrementCompletedBookings(ctx context.Context, id uuid.UUID) error {
	return r.UpdateFields(ctx, id, map[string]any{
		"completed_bookings": gorm.Expr("completed_bookings + 1"),
	})
}

func (r *GormProfessionalRepo) SetRating(ctx context.Context, id uuid.UUID, average *float64, total int) error {
	return r.UpdateFields(ctx, id, map[string]any{
		"average_rating": average,
		"total_reviews":  total,
	})
}

func wrapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// likePattern escapes LIKE wildcards in s and wraps it for a substring match.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// memberPattern matches s as one whole element of a comma-wrapped list.
func memberPattern(s string) string {
	return "%," + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + ",%"
}
