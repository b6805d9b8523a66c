package helpcenter

import (
	"fmt"

	"casaora/models"
	"casaora/services/sanity"
)

// Sanity document types written by the migration.
const (
	TypeCategory = "helpCategory"
	TypeArticle  = "helpArticle"
)

// DocumentID is the deterministic id "{type}-{slug}-{locale}".
func DocumentID(docType, slug, locale string) string {
	return fmt.Sprintf("%s-%s-%s", docType, slug, locale)
}

func slugField(slug string) map[string]any {
	return map[string]any{"_type": "slug", "current": slug}
}

// CategoryDocuments builds one document per locale for c.
func CategoryDocuments(c models.HelpCategory) []sanity.Document {
	docs := make([]sanity.Document, 0, len(models.Locales))
	for _, locale := range models.Locales {
		docs = append(docs, sanity.Document{
			"_id":         DocumentID(TypeCategory, c.Slug, locale),
			"_type":       TypeCategory,
			"language":    locale,
			"name":        c.Name(locale),
			"slug":        slugField(c.Slug),
			"description": c.Description(locale),
			"icon":        c.Icon,
			"order":       c.SortOrder,
			"isActive":    c.IsActive,
		})
	}
	return docs
}

// ArticleDocuments builds one document per locale for a. An empty categorySlug
// leaves the category reference out.
func ArticleDocuments(a models.HelpArticle, categorySlug string) []sanity.Document {
	tags := a.TagList()
	if tags == nil {
		tags = []string{}
	}
	docs := make([]sanity.Document, 0, len(models.Locales))
	for _, locale := range models.Locales {
		doc := sanity.Document{
			"_id":             DocumentID(TypeArticle, a.Slug, locale),
			"_type":           TypeArticle,
			"language":        locale,
			"title":           a.Title(locale),
			"slug":            slugField(a.Slug),
			"excerpt":         a.Excerpt(locale),
			"content":         HTMLToPortableText(a.Content(locale)),
			"tags":            tags,
			"isPublished":     a.IsPublished,
			"viewCount":       a.ViewCount,
			"helpfulCount":    a.HelpfulCount,
			"notHelpfulCount": a.NotHelpfulCount,
		}
		if categorySlug != "" {
			doc["category"] = map[string]any{
				"_type": "reference",
				"_ref":  DocumentID(TypeCategory, categorySlug, locale),
			}
		}
		docs = append(docs, doc)
	}
	return docs
}
