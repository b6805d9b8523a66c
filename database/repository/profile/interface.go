package profileRepo

import (
	"context"
	"errors"

	"casaora/models"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when no profile matches.
	ErrNotFound = errors.New("profile not found")
	// ErrCodeTaken is returned when a referral code collides with another profile's.
	ErrCodeTaken = errors.New("referral code already taken")
)

// ProfileRepository defines data access for account profiles.
type ProfileRepository interface {
	// GetByID retrieves a profile by its auth user ID.
	GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	// GetByReferralCode retrieves the profile owning a referral code.
	GetByReferralCode(ctx context.Context, code string) (*models.Profile, error)
	// Create inserts a profile.
	Create(ctx context.Context, p *models.Profile) error
	// SetReferralCode assigns a code to a profile that has none. It reports false when one was already set.
	SetReferralCode(ctx context.Context, id uuid.UUID, code string) (bool, error)
	// UpdatePushToken stores the device's FCM token.
	UpdatePushToken(ctx context.Context, id uuid.UUID, token string) error
}
