package professionalRepo

import (
	"context"
	"errors"

	"casaora/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when no professional profile matches.
var ErrNotFound = errors.New("professional profile not found")

// ProfessionalRepository defines data access for professional profiles.
type ProfessionalRepository interface {
	// GetByID retrieves a professional profile by its ID.
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProfessionalProfile, error)
	// GetByProfileID retrieves the professional profile owned by an account.
	GetByProfileID(ctx context.Context, profileID uuid.UUID) (*models.ProfessionalProfile, error)
	// GetByIDs retrieves several profiles at once, in no particular order.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]models.ProfessionalProfile, error)
	// Search lists active professionals matching criteria and the total match count.
	Search(ctx context.Context, criteria SearchCriteria) ([]models.ProfessionalProfile, int64, error)
	// Create inserts a new profile.
	Create(ctx context.Context, p *models.ProfessionalProfile) error
	// Update saves every column of an existing profile.
	Update(ctx context.Context, p *models.ProfessionalProfile) error
	// UpdateFields patches selected columns.
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]any) error
	// IncrementCompletedBookings bumps the completed booking counter.
	IncrementCompletedBookings(ctx context.Context, id uuid.UUID) error
	// SetRating stores the aggregate rating. A nil average clears it.
	SetRating(ctx context.Context, id uuid.UUID, average *float64, total int) error
}

// SearchCriteria holds the directory predicates. Zero values add no predicate.
type SearchCriteria struct {
	Query             string // matched against name, headline and services
	City              string // case-insensitive exact match
	Service           string // primary or listed service slug
	MinRating         float64
	MaxRate           decimal.Decimal
	VerifiedOnly      bool
	BackgroundChecked bool
	AvailableToday    bool
	Languages         []string // every language must be spoken
	OrderBy           []string // ORDER BY terms, applied in order
	Limit             int
	Offset            int
}
