package helpcenter

import (
	"context"
	"errors"
	"fmt"

	helpRepo "casaora/database/repository/help"
	"casaora/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrNotFound is returned for unknown or unpublished slugs.
var ErrNotFound = errors.New("help content not found")

const searchLimit = 10

// HelpCenterService serves localized help content.
type HelpCenterService interface {
	Categories(ctx context.Context, locale string) ([]models.HelpCategoryView, error)
	Articles(ctx context.Context, categorySlug, locale string) ([]models.HelpArticleView, error)
	Article(ctx context.Context, slug, locale string) (*models.HelpArticleView, error)
	Feedback(ctx context.Context, slug string, helpful bool) error
	Search(ctx context.Context, query, locale string) ([]models.HelpArticleView, error)
}

type DefaultHelpCenterService struct {
	Repo   helpRepo.HelpRepository
	Logger *zap.Logger
}

func NewHelpCenterService(repo helpRepo.HelpRepository, logger *zap.Logger) *DefaultHelpCenterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DefaultHelpCenterService{Repo: repo, Logger: logger}
}

func (s *DefaultHelpCenterService) Categories(ctx context.Context, locale string) ([]models.HelpCategoryView, error) {
	locale = models.NormalizeLocale(locale)
	cats, err := s.Repo.ListCategories(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]models.HelpCategoryView, 0, len(cats))
	for _, c := range cats {
		out = append(out, models.HelpCategoryView{
			Slug:        c.Slug,
			Name:        c.Name(locale),
			Description: c.Description(locale),
			Icon:        c.Icon,
		})
	}
	return out, nil
}

func (s *DefaultHelpCenterService) Articles(ctx context.Context, categorySlug, locale string) ([]models.HelpArticleView, error) {
	locale = models.NormalizeLocale(locale)
	cat, err := s.Repo.GetCategoryBySlug(ctx, categorySlug)
	if errors.Is(err, helpRepo.ErrNotFound) || (err == nil && !cat.IsActive) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	articles, err := s.Repo.ArticlesByCategory(ctx, cat.ID)
	if err != nil {
		return nil, err
	}
	out := make([]models.HelpArticleView, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleView(a, cat.Slug, locale, false))
	}
	return out, nil
}

// Article returns the full article and counts the view.
func (s *DefaultHelpCenterService) Article(ctx context.Context, slug, locale string) (*models.HelpArticleView, error) {
	locale = models.NormalizeLocale(locale)
	a, err := s.Repo.GetArticleBySlug(ctx, slug)
	if errors.Is(err, helpRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := s.Repo.Increment(ctx, a.ID, helpRepo.CounterViews); err != nil {
		s.Logger.Warn("failed to count help article view", zap.String("slug", slug), zap.Error(err))
	}

	view := articleView(*a, s.categorySlug(ctx, a.CategoryID), locale, true)
	return &view, nil
}

func (s *DefaultHelpCenterService) Feedback(ctx context.Context, slug string, helpful bool) error {
	a, err := s.Repo.GetArticleBySlug(ctx, slug)
	if errors.Is(err, helpRepo.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	column := helpRepo.CounterNotHelpful
	if helpful {
		column = helpRepo.CounterHelpful
	}
	if err := s.Repo.Increment(ctx, a.ID, column); err != nil {
		return fmt.Errorf("record feedback: %w", err)
	}
	return nil
}

func (s *DefaultHelpCenterService) Search(ctx context.Context, query, locale string) ([]models.HelpArticleView, error) {
	locale = models.NormalizeLocale(locale)
	articles, err := s.Repo.Search(ctx, query, searchLimit)
	if err != nil {
		return nil, err
	}
	out := make([]models.HelpArticleView, 0, len(articles))
	for _, a := range articles {
		out = append(out, articleView(a, "", locale, false))
	}
	return out, nil
}

func (s *DefaultHelpCenterService) categorySlug(ctx context.Context, id uuid.UUID) string {
	cats, err := s.Repo.ListCategories(ctx, false)
	if err != nil {
		return ""
	}
	for _, c := range cats {
		if c.ID == id {
			return c.Slug
		}
	}
	return ""
}

func articleView(a models.HelpArticle, categorySlug, locale string, withContent bool) models.HelpArticleView {
	v := models.HelpArticleView{
		Slug:         a.Slug,
		CategorySlug: categorySlug,
		Title:        a.Title(locale),
		Excerpt:      a.Excerpt(locale),
		Tags:         a.TagList(),
		UpdatedAt:    a.UpdatedAt,
	}
	if withContent {
		v.Content = a.Content(locale)
	}
	return v
}
