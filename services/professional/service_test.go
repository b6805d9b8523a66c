package professional

import (
	"context"
	"errors"
	"testing"

	"casaora/database/dbtest"
	bookingRepo "casaora/database/repository/booking"
	professionalRepo "casaora/database/repository/professional"
	"casaora/models"
	"casaora/services/storage"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	uploads []string
	err     error
}

func (f *fakeStorage) UploadImage(_ context.Context, _ any, folder, publicID string) (*storage.UploadResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.uploads = append(f.uploads, folder+"/"+publicID)
	return &storage.UploadResult{PublicID: folder + "/" + publicID, URL: "https://res.cloudinary.com/demo/" + publicID + ".jpg"}, nil
}

func (f *fakeStorage) DeleteFile(context.Context, string) error { return nil }

type fixture struct {
	svc      *DefaultProfessionalService
	pros     *professionalRepo.GormProfessionalRepo
	bookings *bookingRepo.GormBookingRepo
	store    *fakeStorage
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := dbtest.New(t)
	f := fixture{
		pros:     professionalRepo.NewGormProfessionalRepo(db),
		bookings: bookingRepo.NewGormBookingRepo(db),
		store:    &fakeStorage{},
	}
	f.svc = NewProfessionalService(f.pros, f.bookings, f.store, "usd", nil)
	return f
}

func validInput() ProfileInput {
	return ProfileInput{
		DisplayName:     "María Gómez",
		Headline:        "Deep cleaning specialist",
		PrimaryService:  "Cleaning",
		Services:        []string{"Cleaning", " Laundry "},
		City:            "Medellín",
		HourlyRate:      decimal.RequireFromString("25.499"),
		YearsExperience: 6,
		Languages:       []string{"ES", "en"},
	}
}

func TestUpsertMyProfile_CreatesDraftThenUpdates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()

	p, err := f.svc.UpsertMyProfile(ctx, owner, validInput())
	require.NoError(t, err)
	assert.Equal(t, models.ProfessionalDraft, p.Status)
	assert.Equal(t, "cleaning", p.PrimaryService)
	assert.Equal(t, []string{"cleaning", "laundry"}, p.ServiceList())
	assert.Equal(t, []string{"es", "en"}, p.LanguageList())
	assert.Equal(t, "25.5", p.HourlyRate.String())
	assert.Equal(t, "usd", p.Currency)

	in := validInput()
	in.Headline = "Move-out cleaning"
	again, err := f.svc.UpsertMyProfile(ctx, owner, in)
	require.NoError(t, err)
	assert.Equal(t, p.ID, again.ID)

	stored, err := f.pros.GetByProfileID(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, "Move-out cleaning", stored.Headline)
}

func TestUpsertMyProfile_RejectsNegativeRate(t *testing.T) {
	f := newFixture(t)
	in := validInput()
	in.HourlyRate = decimal.NewFromInt(-1)
	_, err := f.svc.UpsertMyProfile(context.Background(), uuid.New(), in)
	assert.Error(t, err)
}

func TestGetPublicProfile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	p, err := f.svc.UpsertMyProfile(ctx, owner, validInput())
	require.NoError(t, err)

	_, err = f.svc.GetPublicProfile(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound, "drafts are not public")

	require.NoError(t, f.pros.UpdateFields(ctx, p.ID, map[string]any{"status": models.ProfessionalActive}))
	pub, err := f.svc.GetPublicProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "MG", pub.Initials)
	assert.Equal(t, "New", pub.RatingLabel)
	assert.Empty(t, pub.Reviews)

	_, err = f.svc.GetPublicProfile(ctx, uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRecomputeRating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p, err := f.svc.UpsertMyProfile(ctx, uuid.New(), validInput())
	require.NoError(t, err)

	require.NoError(t, f.svc.RecomputeRating(ctx, p.ID))
	stored, err := f.pros.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AverageRating)
	assert.Zero(t, stored.TotalReviews)

	for _, rating := range []int{5, 4, 4} {
		require.NoError(t, f.bookings.CreateReview(ctx, &models.Review{
			BookingID: uuid.New(), ProfessionalID: p.ID, CustomerID: uuid.New(), Rating: rating,
		}))
	}
	require.NoError(t, f.svc.RecomputeRating(ctx, p.ID))
	stored, err = f.pros.GetByID(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AverageRating)
	assert.InDelta(t, 4.33, *stored.AverageRating, 0.001)
	assert.Equal(t, 3, stored.TotalReviews)
}

func TestUploadAvatarAndAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	p, err := f.svc.UpsertMyProfile(ctx, owner, validInput())
	require.NoError(t, err)

	updated, err := f.svc.UploadAvatar(ctx, owner, "/tmp/avatar.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://res.cloudinary.com/demo/"+p.ID.String()+".jpg", updated.AvatarURL)
	assert.Equal(t, []string{avatarFolder + "/" + p.ID.String()}, f.store.uploads)

	require.NoError(t, f.svc.SetAvailability(ctx, owner, true))
	stored, err := f.pros.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.AvailableToday)
	assert.Equal(t, updated.AvatarURL, stored.AvatarURL)

	f.store.err = errors.New("quota exceeded")
	_, err = f.svc.UploadAvatar(ctx, owner, "/tmp/avatar.jpg")
	assert.ErrorContains(t, err, "quota exceeded")

	_, err = f.svc.UploadAvatar(ctx, uuid.New(), "/tmp/avatar.jpg")
	assert.ErrorIs(t, err, ErrNotFound)
}

type fakeGeocoder struct {
	calls []string
	err   error
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (float64, float64, error) {
	g.calls = append(g.calls, address)
	if g.err != nil {
		return 0, 0, g.err
	}
	return 6.2442, -75.5812, nil
}

func TestUpsertMyProfile_GeocodesMissingCoordinates(t *testing.T) {
	f := newFixture(t)
	geo := &fakeGeocoder{}
	f.svc.Geocoder = geo
	ctx := context.Background()

	in := validInput()
	in.Country = "CO"
	p, err := f.svc.UpsertMyProfile(ctx, uuid.New(), in)
	require.NoError(t, err)
	require.NotNil(t, p.Latitude)
	assert.InDelta(t, 6.2442, *p.Latitude, 1e-9)
	assert.Equal(t, []string{"Medellín, CO"}, geo.calls)

	lat, lng := 4.711, -74.0721
	in.Latitude, in.Longitude = &lat, &lng
	p, err = f.svc.UpsertMyProfile(ctx, uuid.New(), in)
	require.NoError(t, err)
	assert.InDelta(t, 4.711, *p.Latitude, 1e-9)
	assert.Len(t, geo.calls, 1)

	geo.err = errors.New("quota")
	in.Latitude, in.Longitude = nil, nil
	p, err = f.svc.UpsertMyProfile(ctx, uuid.New(), in)
	require.NoError(t, err)
	assert.Nil(t, p.Latitude)
}
