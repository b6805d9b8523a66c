package helpRepo

import (
	"context"
	"testing"

	"casaora/database/dbtest"
	"casaora/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedHelp(t *testing.T, repo *GormHelpRepo) (models.HelpCategory, models.HelpArticle) {
	t.Helper()
	ctx := context.Background()
	payments := models.HelpCategory{Slug: "payments", NameEn: "Payments", NameEs: "Pagos", SortOrder: 2, IsActive: true}
	bookings := models.HelpCategory{Slug: "bookings", NameEn: "Bookings", SortOrder: 1, IsActive: true}
	legacy := models.HelpCategory{Slug: "legacy", NameEn: "Legacy", SortOrder: 0}
	for _, c := range []*models.HelpCategory{&payments, &bookings, &legacy} {
		require.NoError(t, repo.CreateCategory(ctx, c))
	}

	refund := models.HelpArticle{
		CategoryID: payments.ID, Slug: "refunds", TitleEn: "How refunds work", TitleEs: "Cómo funcionan los reembolsos",
		Tags: "refund,money", IsPublished: true,
	}
	draft := models.HelpArticle{CategoryID: payments.ID, Slug: "draft-fees", TitleEn: "Fees and refunds"}
	require.NoError(t, repo.CreateArticle(ctx, &refund))
	require.NoError(t, repo.CreateArticle(ctx, &draft))
	return payments, refund
}

func TestGormHelpRepo_Categories(t *testing.T) {
	repo := NewGormHelpRepo(dbtest.New(t))
	ctx := context.Background()
	seedHelp(t, repo)

	active, err := repo.ListCategories(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "bookings", active[0].Slug)
	assert.Equal(t, "payments", active[1].Slug)

	all, err := repo.ListCategories(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = repo.GetCategoryBySlug(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormHelpRepo_Articles(t *testing.T) {
	repo := NewGormHelpRepo(dbtest.New(t))
	ctx := context.Background()
	payments, refund := seedHelp(t, repo)

	all, err := repo.ListArticles(ctx, false)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	inCategory, err := repo.ArticlesByCategory(ctx, payments.ID)
	require.NoError(t, err)
	require.Len(t, inCategory, 1)
	assert.Equal(t, "refunds", inCategory[0].Slug)

	_, err = repo.GetArticleBySlug(ctx, "draft-fees")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Increment(ctx, refund.ID, CounterViews))
	require.NoError(t, repo.Increment(ctx, refund.ID, CounterHelpful))
	got, err := repo.GetArticleBySlug(ctx, "refunds")
	require.NoError(t, err)
	assert.Equal(t, 1, got.ViewCount)
	assert.Equal(t, 1, got.HelpfulCount)

	assert.Error(t, repo.Increment(ctx, refund.ID, "id"))
	assert.ErrorIs(t, repo.Increment(ctx, uuid.New(), CounterViews), ErrNotFound)
}

func TestGormHelpRepo_Search(t *testing.T) {
	repo := NewGormHelpRepo(dbtest.New(t))
	ctx := context.Background()
	seedHelp(t, repo)

	found, err := repo.Search(ctx, "REFUND", 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "refunds", found[0].Slug)

	found, err = repo.Search(ctx, "reembolsos", 10)
	require.NoError(t, err)
	assert.Len(t, found, 1)

	found, err = repo.Search(ctx, "  ", 10)
	require.NoError(t, err)
	assert.Empty(t, found)
}
