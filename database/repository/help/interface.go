package helpRepo

import (
	"context"
	"errors"

	"casaora/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no category or article matches.
var ErrNotFound = errors.New("help content not found")

// Counter columns that Increment accepts.
const (
	CounterViews      = "view_count"
	CounterHelpful    = "helpful_count"
	CounterNotHelpful = "not_helpful_count"
)

// HelpRepository defines data access for help-center content.
type HelpRepository interface {
	// ListCategories returns categories by sort order. activeOnly hides inactive ones.
	ListCategories(ctx context.Context, activeOnly bool) ([]models.HelpCategory, error)
	// GetCategoryBySlug retrieves a category by slug.
	GetCategoryBySlug(ctx context.Context, slug string) (*models.HelpCategory, error)
	// ListArticles returns every article. publishedOnly hides drafts.
	ListArticles(ctx context.Context, publishedOnly bool) ([]models.HelpArticle, error)
	// ArticlesByCategory returns a category's published articles.
	ArticlesByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.HelpArticle, error)
	// GetArticleBySlug retrieves a published article by slug.
	GetArticleBySlug(ctx context.Context, slug string) (*models.HelpArticle, error)
	// Increment adds one to a counter column of an article.
	Increment(ctx context.Context, articleID uuid.UUID, column string) error
	// Search matches published articles by title, excerpt and tags in either locale.
	Search(ctx context.Context, query string, limit int) ([]models.HelpArticle, error)
	// CreateCategory inserts a category.
	CreateCategory(ctx context.Context, c *models.HelpCategory) error
	// CreateArticle inserts an article.
	CreateArticle(ctx context.Context, a *models.HelpArticle) error
}
