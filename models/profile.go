package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleCustomer     Role = "customer"
	RoleProfessional Role = "professional"
	RoleAdmin        Role = "admin"
)

// Profile mirrors a Supabase auth user. The id is the auth user id.
type Profile struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FullName         string    `gorm:"column:full_name" json:"fullName"`
	Email            string    `gorm:"uniqueIndex" json:"email"`
	Phone            string    `json:"phone,omitempty"`
	Role             Role      `gorm:"type:text;not null;default:customer" json:"role"`
	AvatarURL        string    `json:"avatarUrl,omitempty"`
	PreferredLocale  string    `gorm:"default:en" json:"preferredLocale"`
	PushToken        string    `json:"-"`
	ReferralCode     *string   `gorm:"uniqueIndex" json:"referralCode,omitempty"`
	StripeCustomerID string    `json:"-"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (Profile) TableName() string { return "profiles" }

func (p *Profile) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}
