package helpcenter

import (
	"context"
	"fmt"

	helpRepo "casaora/database/repository/help"
	"casaora/services/sanity"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Summary counts what one migration run did. Written counts documents, not rows.
type Summary struct {
	CategoriesWritten int  `json:"categoriesWritten"`
	ArticlesWritten   int  `json:"articlesWritten"`
	Failed            int  `json:"failed"`
	Skipped           int  `json:"skipped"`
	DryRun            bool `json:"dryRun"`
}

// Migrator copies help-center rows from Postgres into Sanity. Every write is a
// createOrReplace on a deterministic id, so reruns overwrite rather than duplicate.
type Migrator struct {
	Repo     helpRepo.HelpRepository
	Writer   sanity.Writer
	Logger   *zap.Logger
	Validate *validator.Validate
	// DryRun builds every document without writing it.
	DryRun bool
}

func NewMigrator(repo helpRepo.HelpRepository, writer sanity.Writer, logger *zap.Logger, dryRun bool) *Migrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Migrator{
		Repo:     repo,
		Writer:   writer,
		Logger:   logger,
		Validate: validator.New(),
		DryRun:   dryRun,
	}
}

// Run migrates all categories, then all articles. Failures on single documents
// are logged and counted; only a failure to read the source rows aborts the run.
func (m *Migrator) Run(ctx context.Context) (Summary, error) {
	sum := Summary{DryRun: m.DryRun}

	categories, err := m.Repo.ListCategories(ctx, false)
	if err != nil {
		return sum, fmt.Errorf("read help categories: %w", err)
	}
	articles, err := m.Repo.ListArticles(ctx, false)
	if err != nil {
		return sum, fmt.Errorf("read help articles: %w", err)
	}
	m.Logger.Info("Migrating help center",
		zap.Int("categories", len(categories)),
		zap.Int("articles", len(articles)),
		zap.Bool("dry_run", m.DryRun))

	slugs := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		if err := m.Validate.Struct(c); err != nil {
			sum.Skipped++
			m.Logger.Warn("Skipping invalid help category", zap.String("id", c.ID.String()), zap.Error(err))
			continue
		}
		slugs[c.ID] = c.Slug
		for _, doc := range CategoryDocuments(c) {
			if m.write(ctx, doc) {
				sum.CategoriesWritten++
			} else {
				sum.Failed++
			}
		}
	}

	for _, a := range articles {
		if err := m.Validate.Struct(a); err != nil {
			sum.Skipped++
			m.Logger.Warn("Skipping invalid help article", zap.String("id", a.ID.String()), zap.Error(err))
			continue
		}
		categorySlug, ok := slugs[a.CategoryID]
		if !ok {
			m.Logger.Warn("Help article has no migrated category; omitting reference",
				zap.String("slug", a.Slug), zap.String("category_id", a.CategoryID.String()))
		}
		for _, doc := range ArticleDocuments(a, categorySlug) {
			if m.write(ctx, doc) {
				sum.ArticlesWritten++
			} else {
				sum.Failed++
			}
		}
	}

	m.Logger.Info("Help center migration finished",
		zap.Int("categories_written", sum.CategoriesWritten),
		zap.Int("articles_written", sum.ArticlesWritten),
		zap.Int("failed", sum.Failed),
		zap.Int("skipped", sum.Skipped))
	return sum, nil
}

func (m *Migrator) write(ctx context.Context, doc sanity.Document) bool {
	id := doc.ID()
	if m.DryRun {
		m.Logger.Info("Would write document", zap.String("id", id))
		return true
	}
	if err := m.Writer.CreateOrReplace(ctx, doc); err != nil {
		m.Logger.Error("Failed to write document", zap.String("id", id), zap.Error(err))
		return false
	}
	m.Logger.Info("Wrote document", zap.String("id", id))
	return true
}
