package booking

import (
	"context"
	"errors"
	"testing"
	"time"

	"casaora/database/dbtest"
	bookingRepo "casaora/database/repository/booking"
	professionalRepo "casaora/database/repository/professional"
	"casaora/models"
	"casaora/services/payments"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) Authorize(ctx context.Context, req payments.AuthorizeRequest) (*payments.Authorization, error) {
	args := m.Called(ctx, req)
	if a, ok := args.Get(0).(*payments.Authorization); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockGateway) Capture(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockGateway) Cancel(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockGateway) Refund(ctx context.Context, id, key string) error {
	return m.Called(ctx, id, key).Error(0)
}

func (m *mockGateway) Transfer(ctx context.Context, req payments.TransferRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}

func (m *mockGateway) ParseWebhook(payload []byte, sig string) (*payments.Event, error) {
	args := m.Called(payload, sig)
	if ev, ok := args.Get(0).(*payments.Event); ok {
		return ev, args.Error(1)
	}
	return nil, args.Error(1)
}

type pushed struct {
	to  uuid.UUID
	typ string
}

type fakeNotifier struct{ sent []pushed }

func (f *fakeNotifier) Push(_ context.Context, id uuid.UUID, _, _ string, data map[string]string) error {
	f.sent = append(f.sent, pushed{to: id, typ: data["type"]})
	return nil
}

type fakeReminders struct {
	payloads []models.ReminderPayload
	at       []time.Time
}

func (f *fakeReminders) ScheduleReminder(_ context.Context, p models.ReminderPayload, at time.Time) error {
	f.payloads = append(f.payloads, p)
	f.at = append(f.at, at)
	return nil
}

type countingRewarder struct{ customers []uuid.UUID }

func (c *countingRewarder) RewardOnFirstCompletion(_ context.Context, id uuid.UUID) error {
	c.customers = append(c.customers, id)
	return nil
}

type countingRatings struct{ pros []uuid.UUID }

func (c *countingRatings) RecomputeRating(_ context.Context, id uuid.UUID) error {
	c.pros = append(c.pros, id)
	return nil
}

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type fixture struct {
	svc       *DefaultBookingService
	bookings  *bookingRepo.GormBookingRepo
	pros      *professionalRepo.GormProfessionalRepo
	gateway   *mockGateway
	notifier  *fakeNotifier
	reminders *fakeReminders
	rewarder  *countingRewarder
	ratings   *countingRatings

	pro      models.ProfessionalProfile
	owner    Actor
	customer Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	f := &fixture{
		bookings:  bookingRepo.NewGormBookingRepo(db),
		pros:      professionalRepo.NewGormProfessionalRepo(db),
		gateway:   &mockGateway{},
		notifier:  &fakeNotifier{},
		reminders: &fakeReminders{},
		rewarder:  &countingRewarder{},
		ratings:   &countingRatings{},
		owner:     Actor{ProfileID: uuid.New(), Role: models.RoleProfessional},
		customer:  Actor{ProfileID: uuid.New(), Role: models.RoleCustomer},
	}
	f.pro = models.ProfessionalProfile{
		ProfileID:      f.owner.ProfileID,
		DisplayName:    "María Gómez",
		PrimaryService: "cleaning",
		Services:       "cleaning,laundry",
		City:           "Medellín",
		HourlyRate:     decimal.NewFromInt(25),
		Currency:       "usd",
		Status:         models.ProfessionalActive,
	}
	require.NoError(t, f.pros.Create(context.Background(), &f.pro))

	f.svc = NewBookingService(Deps{
		Repo:      f.bookings,
		Pros:      f.pros,
		Payments:  f.gateway,
		Reminders: f.reminders,
		Referrals: f.rewarder,
		Ratings:   f.ratings,
		Notifier:  f.notifier,
	}, Config{CommissionRate: decimal.RequireFromString("0.18")}, nil)
	f.svc.Now = func() time.Time { return testNow }
	t.Cleanup(func() { f.gateway.AssertExpectations(t) })
	return f
}

func (f *fixture) input() CreateBookingInput {
	return CreateBookingInput{
		ProfessionalID: f.pro.ID,
		ScheduledStart: testNow.Add(72 * time.Hour),
		DurationHours:  decimal.NewFromInt(3),
		Address:        "Calle 10 #43-12",
	}
}

func (f *fixture) create(t *testing.T) *models.Booking {
	t.Helper()
	f.gateway.On("Authorize", mock.Anything, mock.Anything).
		Return(&payments.Authorization{PaymentIntentID: "pi_" + uuid.NewString(), ClientSecret: "secret"}, nil).Once()
	res, err := f.svc.Create(context.Background(), f.customer.ProfileID, f.input())
	require.NoError(t, err)
	return res.Booking
}

// seed stores a booking directly in the given state.
func (f *fixture) seed(t *testing.T, status models.BookingStatus, payment models.PaymentStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{
		CustomerID:      f.customer.ProfileID,
		ProfessionalID:  f.pro.ID,
		Service:         "cleaning",
		ScheduledStart:  testNow.Add(-2 * time.Hour),
		DurationHours:   decimal.NewFromInt(2),
		HourlyRate:      decimal.NewFromInt(25),
		Subtotal:        decimal.NewFromInt(50),
		Commission:      decimal.NewFromInt(9),
		Total:           decimal.NewFromInt(50),
		Currency:        "usd",
		Status:          status,
		PaymentStatus:   payment,
		PaymentIntentID: "pi_" + uuid.NewString(),
	}
	require.NoError(t, f.bookings.Create(context.Background(), b))
	return b
}

func (f *fixture) reload(t *testing.T, id uuid.UUID) *models.Booking {
	t.Helper()
	b, err := f.bookings.GetByID(context.Background(), id)
	require.NoError(t, err)
	return b
}

func TestCreate_AuthorizesAndSchedules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.On("Authorize", mock.Anything, mock.MatchedBy(func(req payments.AuthorizeRequest) bool {
		return req.Amount.Equal(decimal.NewFromInt(75)) && req.IdempotencyKey == req.BookingID && req.Currency == "usd"
	})).Return(&payments.Authorization{PaymentIntentID: "pi_1", ClientSecret: "pi_1_secret"}, nil).Once()

	res, err := f.svc.Create(ctx, f.customer.ProfileID, f.input())
	require.NoError(t, err)
	assert.Equal(t, "pi_1_secret", res.ClientSecret)
	assert.Equal(t, "13.50", res.Quote.Commission.StringFixed(2))

	stored := f.reload(t, res.Booking.ID)
	assert.Equal(t, models.BookingPending, stored.Status)
	assert.Equal(t, models.PaymentUnpaid, stored.PaymentStatus)
	assert.Equal(t, "pi_1", stored.PaymentIntentID)
	assert.Equal(t, "cleaning", stored.Service)

	require.Len(t, f.reminders.at, 1)
	assert.Equal(t, testNow.Add(48*time.Hour), f.reminders.at[0])
	assert.Equal(t, res.Booking.ID.String(), f.reminders.payloads[0].BookingID)
	assert.Equal(t, []pushed{{to: f.owner.ProfileID, typ: "booking_requested"}}, f.notifier.sent)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := f.input()
	in.ScheduledStart = testNow.Add(-time.Minute)
	_, err := f.svc.Create(ctx, f.customer.ProfileID, in)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "scheduledStart", verr.Field)

	in = f.input()
	in.Service = "plumbing"
	_, err = f.svc.Create(ctx, f.customer.ProfileID, in)
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "service", verr.Field)

	_, err = f.svc.Create(ctx, f.owner.ProfileID, f.input())
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "professionalId", verr.Field)

	require.NoError(t, f.pros.UpdateFields(ctx, f.pro.ID, map[string]any{"status": models.ProfessionalSuspended}))
	_, err = f.svc.Create(ctx, f.customer.ProfileID, f.input())
	assert.ErrorIs(t, err, ErrProfessionalUnavailable)
}

func TestCreate_AuthorizationFailureCancels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.gateway.On("Authorize", mock.Anything, mock.Anything).Return(nil, errors.New("card_declined")).Once()

	_, err := f.svc.Create(ctx, f.customer.ProfileID, f.input())
	var perr *PaymentError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "authorize", perr.Op)

	list, err := f.svc.List(ctx, f.customer, ListInput{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, models.BookingCancelled, list[0].Status)
	assert.Equal(t, models.PaymentFailed, list[0].PaymentStatus)
	assert.Empty(t, f.reminders.at)
}

func TestCreate_RejectsOverlappingBooking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.create(t)

	in := f.input()
	in.ScheduledStart = first.ScheduledStart.Add(2 * time.Hour)
	_, err := f.svc.Create(ctx, f.customer.ProfileID, in)
	assert.ErrorIs(t, err, ErrProfessionalUnavailable)

	in.ScheduledStart = first.ScheduledStart.Add(-2 * time.Hour)
	_, err = f.svc.Create(ctx, f.customer.ProfileID, in)
	assert.ErrorIs(t, err, ErrProfessionalUnavailable)

	// Back to back with the first booking is fine.
	in.ScheduledStart = first.End()
	f.gateway.On("Authorize", mock.Anything, mock.Anything).
		Return(&payments.Authorization{PaymentIntentID: "pi_next", ClientSecret: "secret"}, nil).Once()
	_, err = f.svc.Create(ctx, f.customer.ProfileID, in)
	require.NoError(t, err)

	// A cancelled booking frees its slot.
	f.gateway.On("Cancel", mock.Anything, mock.Anything).Return(nil).Once()
	_, err = f.svc.Cancel(ctx, f.customer, first.ID, "")
	require.NoError(t, err)
	in.ScheduledStart = first.ScheduledStart
	f.gateway.On("Authorize", mock.Anything, mock.Anything).
		Return(&payments.Authorization{PaymentIntentID: "pi_again", ClientSecret: "secret"}, nil).Once()
	_, err = f.svc.Create(ctx, f.customer.ProfileID, in)
	require.NoError(t, err)
}

func TestLifecycle_HappyPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.create(t)

	_, err := f.svc.Accept(ctx, f.customer, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Get(ctx, Actor{ProfileID: uuid.New(), Role: models.RoleCustomer}, b.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Complete(ctx, f.owner, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	got, err := f.svc.Accept(ctx, f.owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingConfirmed, got.Status)
	assert.NotNil(t, got.ConfirmedAt)

	got, err = f.svc.Start(ctx, f.owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingInProgress, got.Status)

	f.gateway.On("Capture", mock.Anything, b.PaymentIntentID).Return(nil).Once()
	got, err = f.svc.Complete(ctx, f.owner, b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingCompleted, got.Status)
	assert.Equal(t, models.PaymentCaptured, got.PaymentStatus)
	assert.NotNil(t, got.CompletedAt)

	pro, err := f.pros.GetByID(ctx, f.pro.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pro.CompletedBookings)
	assert.Equal(t, []uuid.UUID{f.customer.ProfileID}, f.rewarder.customers)

	_, err = f.svc.Cancel(ctx, f.customer, b.ID, "too late")
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestComplete_CaptureFailureKeepsBookingInProgress(t *testing.T) {
	f := newFixture(t)
	b := f.seed(t, models.BookingInProgress, models.PaymentAuthorized)
	f.gateway.On("Capture", mock.Anything, b.PaymentIntentID).Return(errors.New("expired")).Once()

	_, err := f.svc.Complete(context.Background(), f.owner, b.ID)
	var perr *PaymentError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, models.BookingInProgress, f.reload(t, b.ID).Status)
	assert.Empty(t, f.rewarder.customers)
}

func TestComplete_RefundsWhenCancelledDuringCapture(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, models.BookingInProgress, models.PaymentAuthorized)

	f.gateway.On("Capture", mock.Anything, b.PaymentIntentID).Run(func(mock.Arguments) {
		require.NoError(t, f.bookings.Transition(ctx, b.ID, []models.BookingStatus{models.BookingInProgress},
			map[string]any{"status": models.BookingCancelled}))
	}).Return(nil).Once()
	f.gateway.On("Refund", mock.Anything, b.PaymentIntentID, "capture-refund-"+b.ID.String()).Return(nil).Once()

	_, err := f.svc.Complete(ctx, f.owner, b.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	stored := f.reload(t, b.ID)
	assert.Equal(t, models.BookingCancelled, stored.Status)
	assert.Equal(t, models.PaymentRefunded, stored.PaymentStatus)
	assert.Empty(t, f.rewarder.customers)
}

func TestCancel_ReleasesHold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, models.BookingConfirmed, models.PaymentAuthorized)
	f.gateway.On("Cancel", mock.Anything, b.PaymentIntentID).Return(nil).Once()

	got, err := f.svc.Cancel(ctx, f.customer, b.ID, " changed plans ")
	require.NoError(t, err)
	assert.Equal(t, models.BookingCancelled, got.Status)
	assert.Equal(t, models.PaymentCanceled, got.PaymentStatus)
	assert.Equal(t, "changed plans", got.CancellationReason)
	assert.Equal(t, []pushed{{to: f.owner.ProfileID, typ: "booking_cancelled"}}, f.notifier.sent)
}

func TestList_ScopesByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, models.BookingPending, models.PaymentUnpaid)
	other := f.seed(t, models.BookingPending, models.PaymentUnpaid)
	require.NoError(t, f.bookings.UpdateFields(ctx, other.ID, map[string]any{"customer_id": uuid.New()}))

	mine, err := f.svc.List(ctx, f.customer, ListInput{})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	work, err := f.svc.List(ctx, f.owner, ListInput{})
	require.NoError(t, err)
	assert.Len(t, work, 2)

	all, err := f.svc.List(ctx, Actor{ProfileID: uuid.New(), Role: models.RoleAdmin}, ListInput{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestHandleStripeWebhook(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, models.BookingPending, models.PaymentUnpaid)

	deliver := func(typ string) *WebhookResult {
		payload := []byte(typ)
		f.gateway.On("ParseWebhook", payload, "sig").
			Return(&payments.Event{ID: "evt_" + typ, Type: typ, PaymentIntentID: b.PaymentIntentID}, nil).Once()
		res, err := f.svc.HandleStripeWebhook(ctx, payload, "sig")
		require.NoError(t, err)
		return res
	}

	res := deliver(payments.EventAmountCapturable)
	assert.True(t, res.Handled)
	assert.Equal(t, models.PaymentAuthorized, f.reload(t, b.ID).PaymentStatus)

	deliver(payments.EventSucceeded)
	assert.Equal(t, models.PaymentCaptured, f.reload(t, b.ID).PaymentStatus)

	// A late authorization event must not undo the capture.
	deliver(payments.EventAmountCapturable)
	assert.Equal(t, models.PaymentCaptured, f.reload(t, b.ID).PaymentStatus)

	res = deliver("charge.refunded")
	assert.False(t, res.Handled)

	f.gateway.On("ParseWebhook", []byte("bad"), "sig").Return(nil, payments.ErrInvalidSignature).Once()
	_, err := f.svc.HandleStripeWebhook(ctx, []byte("bad"), "sig")
	assert.ErrorIs(t, err, payments.ErrInvalidSignature)
}

func TestReview(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	pending := f.seed(t, models.BookingPending, models.PaymentUnpaid)
	done := f.seed(t, models.BookingCompleted, models.PaymentCaptured)

	_, err := f.svc.Review(ctx, f.customer.ProfileID, pending.ID, 5, "")
	assert.ErrorIs(t, err, ErrNotReviewable)
	_, err = f.svc.Review(ctx, f.owner.ProfileID, done.ID, 5, "")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = f.svc.Review(ctx, f.customer.ProfileID, done.ID, 6, "")
	var verr *ValidationError
	assert.True(t, errors.As(err, &verr))

	r, err := f.svc.Review(ctx, f.customer.ProfileID, done.ID, 5, " Spotless ")
	require.NoError(t, err)
	assert.Equal(t, "Spotless", r.Comment)
	assert.Equal(t, []uuid.UUID{f.pro.ID}, f.ratings.pros)

	_, err = f.svc.Review(ctx, f.customer.ProfileID, done.ID, 4, "")
	assert.ErrorIs(t, err, ErrAlreadyReviewed)
}

func TestDispute_ResolvedForCustomerRefunds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, models.BookingCompleted, models.PaymentCaptured)

	_, err := f.svc.OpenDispute(ctx, f.customer, b.ID, "", "")
	assert.Error(t, err)

	d, err := f.svc.OpenDispute(ctx, f.customer, b.ID, "damage", "Broken vase")
	require.NoError(t, err)
	assert.Equal(t, models.BookingDisputed, f.reload(t, b.ID).Status)
	assert.Equal(t, []pushed{{to: f.owner.ProfileID, typ: "dispute_opened"}}, f.notifier.sent)

	_, err = f.svc.OpenDispute(ctx, f.owner, b.ID, "again", "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	f.gateway.On("Refund", mock.Anything, b.PaymentIntentID, "refund-"+d.ID.String()).Return(nil).Once()
	admin := uuid.New()
	resolved, err := f.svc.ResolveDispute(ctx, admin, d.ID, PartyCustomer, "Refund issued")
	require.NoError(t, err)
	assert.Equal(t, models.DisputeResolvedCustomer, resolved.Status)

	stored := f.reload(t, b.ID)
	assert.Equal(t, models.BookingCancelled, stored.Status)
	assert.Equal(t, models.PaymentRefunded, stored.PaymentStatus)

	_, err = f.svc.ResolveDispute(ctx, admin, d.ID, PartyProfessional, "")
	assert.ErrorIs(t, err, ErrDisputeClosed)
}

func TestDispute_ResolvedForProfessionalCaptures(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, models.BookingInProgress, models.PaymentAuthorized)

	d, err := f.svc.OpenDispute(ctx, f.owner, b.ID, "no access", "")
	require.NoError(t, err)

	f.gateway.On("Capture", mock.Anything, b.PaymentIntentID).Return(nil).Once()
	_, err = f.svc.ResolveDispute(ctx, uuid.New(), d.ID, PartyProfessional, "Work was done")
	require.NoError(t, err)

	stored := f.reload(t, b.ID)
	assert.Equal(t, models.BookingCompleted, stored.Status)
	assert.Equal(t, models.PaymentCaptured, stored.PaymentStatus)
	assert.NotNil(t, stored.CompletedAt)
	pro, err := f.pros.GetByID(ctx, f.pro.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pro.CompletedBookings)
}

func TestDispute_RejectedAfterPayout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	b := f.seed(t, models.BookingCompleted, models.PaymentCaptured)
	require.NoError(t, f.bookings.UpdateFields(ctx, b.ID, map[string]any{"payout_id": uuid.New()}))

	_, err := f.svc.OpenDispute(ctx, f.customer, b.ID, "late", "")
	assert.ErrorIs(t, err, ErrAlreadyPaidOut)
}
