package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type PayoutStatus string

const (
	PayoutPending PayoutStatus = "pending"
	PayoutPaid    PayoutStatus = "paid"
	PayoutFailed  PayoutStatus = "failed"
)

// Payout groups a professional's captured earnings into one Connect transfer.
type Payout struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ProfessionalID   uuid.UUID       `gorm:"type:uuid;index;not null" json:"professionalId"`
	Amount           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency         string          `gorm:"not null;default:usd" json:"currency"`
	Status           PayoutStatus    `gorm:"type:text;index;not null;default:pending" json:"status"`
	BookingCount     int             `json:"bookingCount"`
	StripeTransferID string          `json:"stripeTransferId,omitempty"`
	FailureReason    string          `json:"failureReason,omitempty"`
	PeriodStart      time.Time       `json:"periodStart"`
	PeriodEnd        time.Time       `json:"periodEnd"`
	PaidAt           *time.Time      `json:"paidAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

func (Payout) TableName() string { return "payouts" }

func (p *Payout) BeforeCreate(*gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// PayoutSummary is the professional's balance overview.
type PayoutSummary struct {
	PendingBalance decimal.Decimal `json:"pendingBalance"`
	LifetimePaid   decimal.Decimal `json:"lifetimePaid"`
	Currency       string          `json:"currency"`
	LastPayoutAt   *time.Time      `json:"lastPayoutAt,omitempty"`
}
