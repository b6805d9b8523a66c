package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending    BookingStatus = "pending"
	BookingConfirmed  BookingStatus = "confirmed"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
	BookingDisputed   BookingStatus = "disputed"
)

type PaymentStatus string

const (
	PaymentUnpaid     PaymentStatus = "unpaid"
	PaymentAuthorized PaymentStatus = "authorized"
	PaymentCaptured   PaymentStatus = "captured"
	PaymentCanceled   PaymentStatus = "canceled"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

// Booking is a customer's reservation of a professional.
type Booking struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	CustomerID         uuid.UUID       `gorm:"type:uuid;index;not null" json:"customerId"`
	ProfessionalID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"professionalId"`
	Service            string          `gorm:"not null" json:"service"`
	ScheduledStart     time.Time       `gorm:"index;not null" json:"scheduledStart"`
	DurationHours      decimal.Decimal `gorm:"type:numeric(4,1);not null" json:"durationHours"`
	Address            string          `json:"address"`
	Notes              string          `json:"notes,omitempty"`
	Status             BookingStatus   `gorm:"type:text;index;not null;default:pending" json:"status"`
	HourlyRate         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"hourlyRate"`
	Subtotal           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Commission         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"commission"`
	Total              decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	Currency           string          `gorm:"not null;default:usd" json:"currency"`
	PaymentIntentID    string          `gorm:"index" json:"paymentIntentId,omitempty"`
	PaymentStatus      PaymentStatus   `gorm:"type:text;not null;default:unpaid" json:"paymentStatus"`
	PayoutID           *uuid.UUID      `gorm:"type:uuid;index" json:"payoutId,omitempty"`
	CancellationReason string          `json:"cancellationReason,omitempty"`
	ConfirmedAt        *time.Time      `json:"confirmedAt,omitempty"`
	StartedAt          *time.Time      `json:"startedAt,omitempty"`
	CompletedAt        *time.Time      `json:"completedAt,omitempty"`
	CancelledAt        *time.Time      `json:"cancelledAt,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
}

func (Booking) TableName() string { return "bookings" }

func (b *Booking) BeforeCreate(*gorm.DB) error {
	ensureID(&b.ID)
	return nil
}

// ProfessionalEarnings is what the professional is owed for this booking.
func (b Booking) ProfessionalEarnings() decimal.Decimal {
	return b.Subtotal.Sub(b.Commission)
}

// End is ScheduledStart plus the booked duration.
func (b Booking) End() time.Time {
	minutes := b.DurationHours.Mul(decimal.NewFromInt(60)).IntPart()
	return b.ScheduledStart.Add(time.Duration(minutes) * time.Minute)
}

// IsParticipant reports whether profileID is the customer or the professional's owner.
func (b Booking) IsParticipant(profileID, professionalOwnerID uuid.UUID) bool {
	return b.CustomerID == profileID || professionalOwnerID == profileID
}

// Review is a customer's rating of a completed booking.
type Review struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID      uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"bookingId"`
	ProfessionalID uuid.UUID `gorm:"type:uuid;index;not null" json:"professionalId"`
	CustomerID     uuid.UUID `gorm:"type:uuid;not null" json:"customerId"`
	Rating         int       `gorm:"not null" json:"rating"`
	Comment        string    `json:"comment,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (Review) TableName() string { return "reviews" }

func (r *Review) BeforeCreate(*gorm.DB) error {
	ensureID(&r.ID)
	return nil
}

type DisputeStatus string

const (
	DisputeOpen                 DisputeStatus = "open"
	DisputeResolvedCustomer     DisputeStatus = "resolved_customer"
	DisputeResolvedProfessional DisputeStatus = "resolved_professional"
)

// Dispute is raised by either party on a booking in progress or completed.
type Dispute struct {
	ID          uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	BookingID   uuid.UUID     `gorm:"type:uuid;index;not null" json:"bookingId"`
	OpenedBy    uuid.UUID     `gorm:"type:uuid;not null" json:"openedBy"`
	Reason      string        `gorm:"not null" json:"reason"`
	Description string        `json:"description,omitempty"`
	Status      DisputeStatus `gorm:"type:text;not null;default:open" json:"status"`
	Resolution  string        `json:"resolution,omitempty"`
	ResolvedAt  *time.Time    `json:"resolvedAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

func (Dispute) TableName() string { return "disputes" }

func (d *Dispute) BeforeCreate(*gorm.DB) error {
	ensureID(&d.ID)
	return nil
}
