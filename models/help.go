package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HelpCategory is a help-center section with English and Spanish copy side by side.
type HelpCategory struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Slug          string    `gorm:"uniqueIndex;not null" json:"slug" validate:"required"`
	NameEn        string    `gorm:"column:name_en" json:"nameEn" validate:"required"`
	NameEs        string    `gorm:"column:name_es" json:"nameEs"`
	DescriptionEn string    `gorm:"column:description_en" json:"descriptionEn"`
	DescriptionEs string    `gorm:"column:description_es" json:"descriptionEs"`
	Icon          string    `json:"icon,omitempty"`
	SortOrder     int       `json:"sortOrder"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (HelpCategory) TableName() string { return "help_categories" }

func (c *HelpCategory) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

func (c HelpCategory) Name(locale string) string {
	return Localized(c.NameEn, c.NameEs, locale)
}

func (c HelpCategory) Description(locale string) string {
	return Localized(c.DescriptionEn, c.DescriptionEs, locale)
}

// HelpArticle holds HTML content per locale.
type HelpArticle struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CategoryID      uuid.UUID `gorm:"type:uuid;index;not null" json:"categoryId"`
	Slug            string    `gorm:"uniqueIndex;not null" json:"slug" validate:"required"`
	TitleEn         string    `gorm:"column:title_en" json:"titleEn" validate:"required"`
	TitleEs         string    `gorm:"column:title_es" json:"titleEs"`
	ExcerptEn       string    `gorm:"column:excerpt_en" json:"excerptEn"`
	ExcerptEs       string    `gorm:"column:excerpt_es" json:"excerptEs"`
	ContentEn       string    `gorm:"column:content_en" json:"contentEn"`
	ContentEs       string    `gorm:"column:content_es" json:"contentEs"`
	Tags            string    `json:"-"`
	IsPublished     bool      `gorm:"index" json:"isPublished"`
	ViewCount       int       `json:"viewCount"`
	HelpfulCount    int       `json:"helpfulCount"`
	NotHelpfulCount int       `json:"notHelpfulCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (HelpArticle) TableName() string { return "help_articles" }

func (a *HelpArticle) BeforeCreate(*gorm.DB) error {
	ensureID(&a.ID)
	return nil
}

func (a HelpArticle) Title(locale string) string   { return Localized(a.TitleEn, a.TitleEs, locale) }
func (a HelpArticle) Excerpt(locale string) string { return Localized(a.ExcerptEn, a.ExcerptEs, locale) }
func (a HelpArticle) Content(locale string) string { return Localized(a.ContentEn, a.ContentEs, locale) }
func (a HelpArticle) TagList() []string            { return SplitList(a.Tags) }

// HelpArticleView is the localized article returned by the read API.
type HelpArticleView struct {
	Slug         string    `json:"slug"`
	CategorySlug string    `json:"categorySlug,omitempty"`
	Title        string    `json:"title"`
	Excerpt      string    `json:"excerpt"`
	Content      string    `json:"content,omitempty"`
	Tags         []string  `json:"tags,omitempty"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// HelpCategoryView is the localized category returned by the read API.
type HelpCategoryView struct {
	Slug        string `json:"slug"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon,omitempty"`
}
