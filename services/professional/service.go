package professional

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	bookingRepo "casaora/database/repository/booking"
	professionalRepo "casaora/database/repository/professional"
	"casaora/models"
	"casaora/services/directory"
	"casaora/services/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned for unknown professionals and for drafts viewed publicly.
	ErrNotFound = errors.New("professional not found")
	// ErrStorageUnavailable is returned when avatar uploads are not configured.
	ErrStorageUnavailable = errors.New("media storage is not configured")
)

const (
	recentReviewsLimit = 5
	avatarFolder       = "casaora/avatars"
)

// ProfileInput is what a professional can edit on their own profile.
type ProfileInput struct {
	DisplayName     string          `json:"displayName" binding:"required,max=80"`
	Headline        string          `json:"headline" binding:"max=140"`
	Bio             string          `json:"bio" binding:"max=4000"`
	PrimaryService  string          `json:"primaryService" binding:"required"`
	Services        []string        `json:"services"`
	City            string          `json:"city" binding:"required"`
	Country         string          `json:"country"`
	Latitude        *float64        `json:"latitude" binding:"omitempty,latitude"`
	Longitude       *float64        `json:"longitude" binding:"omitempty,longitude"`
	HourlyRate      decimal.Decimal `json:"hourlyRate"`
	Currency        string          `json:"currency" binding:"omitempty,len=3"`
	YearsExperience int             `json:"yearsExperience" binding:"gte=0,lte=60"`
	Languages       []string        `json:"languages"`
}

// PublicProfile is the professional's detail page.
type PublicProfile struct {
	directory.ProfessionalCard
	Bio      string          `json:"bio"`
	Country  string          `json:"country,omitempty"`
	Services []string        `json:"services"`
	Reviews  []models.Review `json:"reviews"`
}

// ProfessionalService covers the professional-facing profile operations.
type ProfessionalService interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProfessionalProfile, error)
	GetByProfileID(ctx context.Context, profileID uuid.UUID) (*models.ProfessionalProfile, error)
	GetPublicProfile(ctx context.Context, id uuid.UUID) (*PublicProfile, error)
	UpsertMyProfile(ctx context.Context, profileID uuid.UUID, in ProfileInput) (*models.ProfessionalProfile, error)
	UploadAvatar(ctx context.Context, profileID uuid.UUID, file any) (*models.ProfessionalProfile, error)
	SetAvailability(ctx context.Context, profileID uuid.UUID, availableToday bool) error
	RecomputeRating(ctx context.Context, professionalID uuid.UUID) error
}

type DefaultProfessionalService struct {
	Repo     professionalRepo.ProfessionalRepository
	Reviews  bookingRepo.BookingRepository
	Storage  storage.StorageService
	// Geocoder fills missing coordinates from city and country. Optional.
	Geocoder directory.Geocoder
	Currency string
	Logger   *zap.Logger
}

func NewProfessionalService(
	repo professionalRepo.ProfessionalRepository,
	reviews bookingRepo.BookingRepository,
	store storage.StorageService,
	currency string,
	logger *zap.Logger,
) *DefaultProfessionalService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if currency == "" {
		currency = "usd"
	}
	return &DefaultProfessionalService{Repo: repo, Reviews: reviews, Storage: store, Currency: currency, Logger: logger}
}

func (s *DefaultProfessionalService) GetByID(ctx context.Context, id uuid.UUID) (*models.ProfessionalProfile, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if errors.Is(err, professionalRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *DefaultProfessionalService) GetByProfileID(ctx context.Context, profileID uuid.UUID) (*models.ProfessionalProfile, error) {
	p, err := s.Repo.GetByProfileID(ctx, profileID)
	if errors.Is(err, professionalRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	return p, err
}

// GetPublicProfile only shows active professionals.
func (s *DefaultProfessionalService) GetPublicProfile(ctx context.Context, id uuid.UUID) (*PublicProfile, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status != models.ProfessionalActive {
		return nil, ErrNotFound
	}
	reviews, err := s.Reviews.ListReviews(ctx, p.ID, recentReviewsLimit)
	if err != nil {
		return nil, err
	}
	services := p.ServiceList()
	if services == nil {
		services = []string{}
	}
	return &PublicProfile{
		ProfessionalCard: directory.CardFromProfessional(*p),
		Bio:              p.Bio,
		Country:          p.Country,
		Services:         services,
		Reviews:          reviews,
	}, nil
}

// UpsertMyProfile creates the caller's professional profile as a draft on first
// use and updates the editable fields afterwards. Status and verification flags
// are never touched here.
func (s *DefaultProfessionalService) UpsertMyProfile(ctx context.Context, profileID uuid.UUID, in ProfileInput) (*models.ProfessionalProfile, error) {
	if in.HourlyRate.IsNegative() {
		return nil, fmt.Errorf("hourly rate must not be negative")
	}
	p, err := s.Repo.GetByProfileID(ctx, profileID)
	created := false
	switch {
	case errors.Is(err, professionalRepo.ErrNotFound):
		p = &models.ProfessionalProfile{ProfileID: profileID, Status: models.ProfessionalDraft}
		created = true
	case err != nil:
		return nil, err
	}

	p.DisplayName = strings.TrimSpace(in.DisplayName)
	p.Headline = strings.TrimSpace(in.Headline)
	p.Bio = strings.TrimSpace(in.Bio)
	p.PrimaryService = strings.ToLower(strings.TrimSpace(in.PrimaryService))
	p.Services = models.JoinList(lowerAll(in.Services))
	p.City = strings.TrimSpace(in.City)
	p.Country = strings.TrimSpace(in.Country)
	p.Latitude, p.Longitude = in.Latitude, in.Longitude
	if p.Latitude == nil || p.Longitude == nil {
		s.locate(ctx, p)
	}
	p.HourlyRate = in.HourlyRate.Round(2)
	p.Currency = strings.ToLower(in.Currency)
	if p.Currency == "" {
		p.Currency = s.Currency
	}
	p.YearsExperience = in.YearsExperience
	p.Languages = models.JoinList(lowerAll(in.Languages))

	if created {
		err = s.Repo.Create(ctx, p)
	} else {
		err = s.Repo.Update(ctx, p)
	}
	if err != nil {
		return nil, err
	}
	s.Logger.Info("Saved professional profile",
		zap.String("professional_id", p.ID.String()),
		zap.Bool("created", created))
	return p, nil
}

// locate geocodes the profile's city so it can appear on the map. A failure
// leaves the profile without coordinates.
func (s *DefaultProfessionalService) locate(ctx context.Context, p *models.ProfessionalProfile) {
	if s.Geocoder == nil || p.City == "" {
		return
	}
	address := p.City
	if p.Country != "" {
		address += ", " + p.Country
	}
	lat, lng, err := s.Geocoder.Geocode(ctx, address)
	if err != nil {
		s.Logger.Warn("Failed to geocode professional city", zap.String("address", address), zap.Error(err))
		return
	}
	p.Latitude, p.Longitude = &lat, &lng
}

func (s *DefaultProfessionalService) UploadAvatar(ctx context.Context, profileID uuid.UUID, file any) (*models.ProfessionalProfile, error) {
	if s.Storage == nil {
		return nil, ErrStorageUnavailable
	}
	p, err := s.GetByProfileID(ctx, profileID)
	if err != nil {
		return nil, err
	}
	res, err := s.Storage.UploadImage(ctx, file, avatarFolder, p.ID.String())
	if err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateFields(ctx, p.ID, map[string]any{"avatar_url": res.URL}); err != nil {
		return nil, err
	}
	p.AvatarURL = res.URL
	return p, nil
}

func (s *DefaultProfessionalService) SetAvailability(ctx context.Context, profileID uuid.UUID, availableToday bool) error {
	p, err := s.GetByProfileID(ctx, profileID)
	if err != nil {
		return err
	}
	return s.Repo.UpdateFields(ctx, p.ID, map[string]any{"available_today": availableToday})
}

// RecomputeRating stores the mean review rating rounded to two decimals. With
// no reviews the rating is cleared so the card shows "New".
func (s *DefaultProfessionalService) RecomputeRating(ctx context.Context, professionalID uuid.UUID) error {
	avg, count, err := s.Reviews.RatingStats(ctx, professionalID)
	if err != nil {
		return err
	}
	var rating *float64
	if count > 0 {
		r := math.Round(avg*100) / 100
		rating = &r
	}
	if err := s.Repo.SetRating(ctx, professionalID, rating, count); err != nil {
		return err
	}
	s.Logger.Debug("Recomputed rating",
		zap.String("professional_id", professionalID.String()),
		zap.Int("reviews", count))
	return nil
}

func lowerAll(items []string) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, strings.ToLower(strings.TrimSpace(it)))
	}
	return out
}
