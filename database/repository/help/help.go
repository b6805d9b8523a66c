package helpRepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"casaora/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var counters = map[string]bool{
	CounterViews:      true,
	CounterHelpful:    true,
	CounterNotHelpful: true,
}

// GormHelpRepo implements HelpRepository on Postgres.
type GormHelpRepo struct {
	db *gorm.DB
}

func NewGormHelpRepo(db *gorm.DB) *GormHelpRepo {
	return &GormHelpRepo{db: db}
}

func (r *GormHelpRepo) ListCategories(ctx context.Context, activeOnly bool) ([]models.HelpCategory, error) {
	q := r.db.WithContext(ctx).Order("sort_order, slug")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var out []models.HelpCategory
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list help categories: %w", err)
	}
	return out, nil
}

func (r *GormHelpRepo) GetCategoryBySlug(ctx context.Context, slug string) (*models.HelpCategory, error) {
	var c models.HelpCategory
	if err := r.db.WithContext(ctx).First(&c, "slug = ?", slug).Error; err != nil {
		return nil, wrapNotFound(err, "failed to get help category")
	}
	return &c, nil
}

func (r *GormHelpRepo) ListArticles(ctx context.Context, publishedOnly bool) ([]models.HelpArticle, error) {
	q := r.db.WithContext(ctx).Order("slug")
	if publishedOnly {
		q = q.Where("is_published = ?", true)
	}
	var out []models.HelpArticle
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list help articles: %w", err)
	}
	return out, nil
}

func (r *GormHelpRepo) ArticlesByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.HelpArticle, error) {
	var out []models.HelpArticle
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND is_published = ?", categoryID, true).
		Order("view_count DESC, slug").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list category articles: %w", err)
	}
	return out, nil
}

func (r *GormHelpRepo) GetArticleBySlug(ctx context.Context, slug string) (*models.HelpArticle, error) {
	var a models.HelpArticle
	err := r.db.WithContext(ctx).First(&a, "slug = ? AND is_published = ?", slug, true).Error
	if err != nil {
		return nil, wrapNotFound(err, "failed to get help article")
	}
	return &a, nil
}

func (r *GormHelpRepo) Increment(ctx context.Context, articleID uuid.UUID, column string) error {
	if !counters[column] {
		return fmt.Errorf("unknown help article counter %q", column)
	}
	res := r.db.WithContext(ctx).Model(&models.HelpArticle{}).
		Where("id = ?", articleID).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return fmt.Errorf("failed to increment %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormHelpRepo) Search(ctx context.Context, query string, limit int) ([]models.HelpArticle, error) {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return []models.HelpArticle{}, nil
	}
	p := "%" + strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query) + "%"

	q := r.db.WithContext(ctx).
		Where("is_published = ?", true).
		Where(`(LOWER(title_en) LIKE ? ESCAPE '\' OR LOWER(title_es) LIKE ? ESCAPE '\' OR `+
			`LOWER(excerpt_en) LIKE ? ESCAPE '\' OR LOWER(excerpt_es) LIKE ? ESCAPE '\' OR LOWER(tags) LIKE ? ESCAPE '\')`,
			p, p, p, p, p).
		Order("helpful_count DESC, view_count DESC, slug")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.HelpArticle
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to search help articles: %w", err)
	}
	return out, nil
}

func (r *GormHelpRepo) CreateCategory(ctx context.Context, c *models.HelpCategory) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to create help category: %w", err)
	}
	return nil
}

func (r *GormHelpRepo) CreateArticle(ctx context.Context, a *models.HelpArticle) error {
	if err := r.db.WithContext(ctx).Create(a).Error; err != nil {
		return fmt.Errorf("failed to create help article: %w", err)
	}
	return nil
}

func wrapNotFound(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", msg, err)
}
