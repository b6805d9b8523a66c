package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Conversation is the message thread between one customer and one professional.
type Conversation struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID     uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair" json:"customerId"`
	ProfessionalID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_conversation_pair" json:"professionalId"`
	BookingID      *uuid.UUID `gorm:"type:uuid" json:"bookingId,omitempty"`
	LastMessageAt  *time.Time `gorm:"index" json:"lastMessageAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

func (Conversation) TableName() string { return "conversations" }

func (c *Conversation) BeforeCreate(*gorm.DB) error {
	ensureID(&c.ID)
	return nil
}

type Message struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ConversationID uuid.UUID  `gorm:"type:uuid;index;not null" json:"conversationId"`
	SenderID       uuid.UUID  `gorm:"type:uuid;not null" json:"senderId"`
	Body           string     `gorm:"not null" json:"body"`
	ReadAt         *time.Time `json:"readAt,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"createdAt"`
}

func (Message) TableName() string { return "messages" }

func (m *Message) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

type ReferralStatus string

const (
	ReferralPending  ReferralStatus = "pending"
	ReferralRewarded ReferralStatus = "rewarded"
)

// Referral records that referred signed up with referrer's code.
type Referral struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ReferrerID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"referrerId"`
	ReferredID   uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"referredId"`
	Code         string          `gorm:"not null" json:"code"`
	Status       ReferralStatus  `gorm:"type:text;not null;default:pending" json:"status"`
	RewardAmount decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"rewardAmount"`
	RewardedAt   *time.Time      `json:"rewardedAt,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func (Referral) TableName() string { return "referrals" }

func (r *Referral) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}
