package professionalRepo

import (
	"context"
	"fmt"
	"strings"

	"casaora/models"

	"gorm.io/gorm"
)

// listMember matches slug as one element of a comma-separated column.
const listMember = "LOWER(',' || %s || ',') LIKE ? ESCAPE '\\'"

func (r *GormProfessionalRepo) Search(ctx context.Context, c SearchCriteria) ([]models.ProfessionalProfile, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.ProfessionalProfile{}).Scopes(c.scope)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count professionals: %w", err)
	}

	q := base.Session(&gorm.Session{})
	for _, term := range c.OrderBy {
		q = q.Order(term)
	}
	// Stable pagination across equal sort keys.
	q = q.Order("id")
	if c.Limit > 0 {
		q = q.Limit(c.Limit)
	}
	if c.Offset > 0 {
		q = q.Offset(c.Offset)
	}

	var out []models.ProfessionalProfile
	if err := q.Find(&out).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search professionals: %w", err)
	}
	return out, total, nil
}

// scope composes one predicate per active criterion.
func (c SearchCriteria) scope(db *gorm.DB) *gorm.DB {
	db = db.Where("status = ?", models.ProfessionalActive)

	if q := strings.TrimSpace(c.Query); q != "" {
		p := likePattern(q)
		db = db.Where(
			"(LOWER(display_name) LIKE ? ESCAPE '\\' OR LOWER(headline) LIKE ? ESCAPE '\\' OR LOWER(services) LIKE ? ESCAPE '\\' OR LOWER(primary_service) LIKE ? ESCAPE '\\')",
			p, p, p, p,
		)
	}
	if city := strings.TrimSpace(c.City); city != "" {
		db = db.Where("LOWER(city) = ?", strings.ToLower(city))
	}
	if svc := strings.ToLower(strings.TrimSpace(c.Service)); svc != "" {
		db = db.Where("(LOWER(primary_service) = ? OR "+fmt.Sprintf(listMember, "services")+")", svc, memberPattern(svc))
	}
	if c.MinRating > 0 {
		db = db.Where("average_rating >= ?", c.MinRating)
	}
	if c.MaxRate.IsPositive() {
		db = db.Where("hourly_rate <= ?", c.MaxRate)
	}
	if c.VerifiedOnly {
		db = db.Where("verified = ?", true)
	}
	if c.BackgroundChecked {
		db = db.Where("background_checked = ?", true)
	}
	if c.AvailableToday {
		db = db.Where("available_today = ?", true)
	}
	for _, lang := range c.Languages {
		if lang = strings.TrimSpace(lang); lang != "" {
			db = db.Where(fmt.Sprintf(listMember, "languages"), memberPattern(lang))
		}
	}
	return db
}
