package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProfessionalStatus string

const (
	ProfessionalDraft     ProfessionalStatus = "draft"
	ProfessionalActive    ProfessionalStatus = "active"
	ProfessionalSuspended ProfessionalStatus = "suspended"
)

// ProfessionalProfile is the marketplace-facing side of a professional's account.
type ProfessionalProfile struct {
	ID                uuid.UUID          `gorm:"type:uuid;primaryKey" json:"id"`
	ProfileID         uuid.UUID          `gorm:"type:uuid;uniqueIndex;not null" json:"profileId"`
	DisplayName       string             `gorm:"not null" json:"displayName"`
	Headline          string             `json:"headline"`
	Bio               string             `json:"bio,omitempty"`
	AvatarURL         string             `json:"avatarUrl,omitempty"`
	PrimaryService    string             `gorm:"index" json:"primaryService"`
	Services          string             `json:"-"` // comma-separated service slugs
	City              string             `gorm:"index" json:"city"`
	Country           string             `json:"country,omitempty"`
	Latitude          *float64           `json:"latitude,omitempty"`
	Longitude         *float64           `json:"longitude,omitempty"`
	HourlyRate        decimal.Decimal    `gorm:"type:numeric(12,2);not null;default:0" json:"hourlyRate"`
	Currency          string             `gorm:"default:usd" json:"currency"`
	YearsExperience   int                `json:"yearsExperience"`
	Languages         string             `json:"-"` // comma-separated ISO codes
	Verified          bool               `gorm:"index" json:"verified"`
	BackgroundChecked bool               `json:"backgroundChecked"`
	AverageRating     *float64           `json:"averageRating"`
	TotalReviews      int                `json:"totalReviews"`
	CompletedBookings int                `json:"completedBookings"`
	AvailableToday    bool               `json:"availableToday"`
	StripeAccountID   string             `json:"-"`
	PayoutsEnabled    bool               `json:"-"`
	Status            ProfessionalStatus `gorm:"type:text;index;not null;default:draft" json:"status"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

func (ProfessionalProfile) TableName() string { return "professional_profiles" }

func (p *ProfessionalProfile) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

func (p ProfessionalProfile) ServiceList() []string  { return SplitList(p.Services) }
func (p ProfessionalProfile) LanguageList() []string { return SplitList(p.Languages) }

// OffersService reports whether slug is the primary service or one of the listed ones.
func (p ProfessionalProfile) OffersService(slug string) bool {
	if p.PrimaryService == slug {
		return true
	}
	for _, s := range p.ServiceList() {
		if s == slug {
			return true
		}
	}
	return false
}

// CanReceivePayouts reports whether Stripe Connect transfers can be sent.
func (p ProfessionalProfile) CanReceivePayouts() bool {
	return p.PayoutsEnabled && p.StripeAccountID != ""
}
