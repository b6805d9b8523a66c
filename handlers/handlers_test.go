package handlers

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"casaora/middleware"
	"casaora/models"
	"casaora/services/booking"
	"casaora/services/directory"
	ai "casaora/services/intelligence"
	"casaora/services/messaging"
	"casaora/services/payments"
	"casaora/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

var (
	callerID = uuid.MustParse("5a1c8a3e-8d2e-4a8c-9a0f-1d2b3c4d5e6f")
	otherID  = uuid.MustParse("9b2d7c1f-3e4a-4b5c-8d6e-7f8091a2b3c4")
)

// asCaller stands in for AuthMiddleware.
func asCaller(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ProfileIDKey, callerID)
		c.Set(middleware.RoleKey, role)
		c.Next()
	}
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) utils.ErrorResponse {
	t.Helper()
	var resp utils.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

type mockBookings struct {
	mock.Mock
}

func (m *mockBookings) Quote(ctx context.Context, id uuid.UUID, hours decimal.Decimal) (booking.Quote, error) {
	args := m.Called(id, hours.String())
	return args.Get(0).(booking.Quote), args.Error(1)
}

func (m *mockBookings) Create(ctx context.Context, customerID uuid.UUID, in booking.CreateBookingInput) (*booking.CreateBookingResult, error) {
	args := m.Called(customerID, in.ProfessionalID)
	res, _ := args.Get(0).(*booking.CreateBookingResult)
	return res, args.Error(1)
}

func (m *mockBookings) Get(ctx context.Context, actor booking.Actor, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(actor, id)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *mockBookings) List(ctx context.Context, actor booking.Actor, in booking.ListInput) ([]models.Booking, error) {
	args := m.Called(actor, in)
	list, _ := args.Get(0).([]models.Booking)
	return list, args.Error(1)
}

func (m *mockBookings) lifecycle(name string, actor booking.Actor, id uuid.UUID) (*models.Booking, error) {
	args := m.MethodCalled(name, actor, id)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *mockBookings) Accept(ctx context.Context, actor booking.Actor, id uuid.UUID) (*models.Booking, error) {
	return m.lifecycle("Accept", actor, id)
}

func (m *mockBookings) Start(ctx context.Context, actor booking.Actor, id uuid.UUID) (*models.Booking, error) {
	return m.lifecycle("Start", actor, id)
}

func (m *mockBookings) Complete(ctx context.Context, actor booking.Actor, id uuid.UUID) (*models.Booking, error) {
	return m.lifecycle("Complete", actor, id)
}

func (m *mockBookings) Cancel(ctx context.Context, actor booking.Actor, id uuid.UUID, reason string) (*models.Booking, error) {
	args := m.Called(actor, id, reason)
	b, _ := args.Get(0).(*models.Booking)
	return b, args.Error(1)
}

func (m *mockBookings) HandleStripeWebhook(ctx context.Context, payload []byte, sig string) (*booking.WebhookResult, error) {
	args := m.Called(string(payload), sig)
	res, _ := args.Get(0).(*booking.WebhookResult)
	return res, args.Error(1)
}

func (m *mockBookings) Review(ctx context.Context, customerID, bookingID uuid.UUID, rating int, comment string) (*models.Review, error) {
	args := m.Called(customerID, bookingID, rating, comment)
	r, _ := args.Get(0).(*models.Review)
	return r, args.Error(1)
}

func (m *mockBookings) OpenDispute(ctx context.Context, actor booking.Actor, bookingID uuid.UUID, reason, description string) (*models.Dispute, error) {
	args := m.Called(actor, bookingID, reason, description)
	d, _ := args.Get(0).(*models.Dispute)
	return d, args.Error(1)
}

func (m *mockBookings) ResolveDispute(ctx context.Context, adminID, disputeID uuid.UUID, party booking.Party, resolution string) (*models.Dispute, error) {
	args := m.Called(adminID, disputeID, party, resolution)
	d, _ := args.Get(0).(*models.Dispute)
	return d, args.Error(1)
}

func bookingRouter(svc booking.BookingService, role models.Role) *gin.Engine {
	h := NewBookingHandler(svc, nil)
	r := gin.New()
	r.POST("/webhooks/stripe", h.StripeWebhook)
	g := r.Group("/bookings", asCaller(role))
	g.POST("", h.Create)
	g.GET("", h.List)
	g.GET("/:id", h.Get)
	g.POST("/:id/accept", h.Accept)
	g.POST("/:id/cancel", h.Cancel)
	g.POST("/:id/review", h.Review)
	g.POST("/:id/dispute", h.OpenDispute)
	return r
}

func TestBookingHandler_Create(t *testing.T) {
	svc := new(mockBookings)
	proID := uuid.New()
	svc.On("Create", callerID, proID).Return(&booking.CreateBookingResult{
		Booking:      &models.Booking{ProfessionalID: proID, Status: models.BookingPending},
		ClientSecret: "pi_secret",
	}, nil).Once()

	w := do(bookingRouter(svc, models.RoleCustomer), http.MethodPost, "/bookings", gin.H{
		"professionalId": proID,
		"scheduledStart": time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"durationHours":  "3",
		"address":        "Calle 10 #5-20, Medellín",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var res booking.CreateBookingResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "pi_secret", res.ClientSecret)
	svc.AssertExpectations(t)
}

func TestBookingHandler_CreateRejectsMissingAddress(t *testing.T) {
	svc := new(mockBookings)
	w := do(bookingRouter(svc, models.RoleCustomer), http.MethodPost, "/bookings", gin.H{
		"professionalId": uuid.New(),
		"scheduledStart": time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBookingHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", booking.ErrNotFound, http.StatusNotFound},
		{"forbidden", booking.ErrForbidden, http.StatusForbidden},
		{"bad transition", fmt.Errorf("accept: %w", booking.ErrInvalidTransition), http.StatusConflict},
		{"validation", booking.NewValidationError("durationHours", "too long"), http.StatusBadRequest},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := new(mockBookings)
			id := uuid.New()
			actor := booking.Actor{ProfileID: callerID, Role: models.RoleProfessional}
			svc.On("Accept", actor, id).Return(nil, tc.err).Once()

			w := do(bookingRouter(svc, models.RoleProfessional), http.MethodPost, "/bookings/"+id.String()+"/accept", nil)
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestBookingHandler_InvalidID(t *testing.T) {
	w := do(bookingRouter(new(mockBookings), models.RoleCustomer), http.MethodGet, "/bookings/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBookingHandler_ListPassesFilters(t *testing.T) {
	svc := new(mockBookings)
	actor := booking.Actor{ProfileID: callerID, Role: models.RoleCustomer}
	svc.On("List", actor, booking.ListInput{Status: models.BookingCompleted, Limit: 5, Offset: 10}).
		Return([]models.Booking{{Status: models.BookingCompleted}}, nil).Once()

	w := do(bookingRouter(svc, models.RoleCustomer), http.MethodGet, "/bookings?status=completed&limit=5&offset=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"completed"`)
	svc.AssertExpectations(t)
}

func TestBookingHandler_CancelWithoutBody(t *testing.T) {
	svc := new(mockBookings)
	id := uuid.New()
	actor := booking.Actor{ProfileID: callerID, Role: models.RoleCustomer}
	svc.On("Cancel", actor, id, "").Return(&models.Booking{Status: models.BookingCancelled}, nil).Once()

	w := do(bookingRouter(svc, models.RoleCustomer), http.MethodPost, "/bookings/"+id.String()+"/cancel", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

func TestBookingHandler_ReviewValidatesRating(t *testing.T) {
	svc := new(mockBookings)
	id := uuid.New()
	r := bookingRouter(svc, models.RoleCustomer)

	w := do(r, http.MethodPost, "/bookings/"+id.String()+"/review", gin.H{"rating": 6})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.On("Review", callerID, id, 5, "Great").Return(&models.Review{Rating: 5}, nil).Once()
	w = do(r, http.MethodPost, "/bookings/"+id.String()+"/review", gin.H{"rating": 5, "comment": "Great"})
	assert.Equal(t, http.StatusCreated, w.Code)

	svc.On("Review", callerID, id, 4, "").Return(nil, booking.ErrAlreadyReviewed).Once()
	w = do(r, http.MethodPost, "/bookings/"+id.String()+"/review", gin.H{"rating": 4})
	assert.Equal(t, http.StatusConflict, w.Code)
	svc.AssertExpectations(t)
}

func TestBookingHandler_StripeWebhook(t *testing.T) {
	svc := new(mockBookings)
	r := bookingRouter(svc, models.RoleCustomer)

	svc.On("HandleStripeWebhook", `{"id":"evt_1"}`, "t=1,v1=abc").
		Return(&booking.WebhookResult{EventID: "evt_1", Handled: true}, nil).Once()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(`{"id":"evt_1"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	svc.On("HandleStripeWebhook", "tampered", "").Return(nil, payments.ErrInvalidSignature).Once()
	req = httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader("tampered"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestBookingHandler_PaymentErrorIsRetryable(t *testing.T) {
	svc := new(mockBookings)
	proID := uuid.New()
	svc.On("Create", callerID, proID).Return(nil, &booking.PaymentError{Op: "create intent", Err: errors.New("card_declined")}).Once()

	w := do(bookingRouter(svc, models.RoleCustomer), http.MethodPost, "/bookings", gin.H{
		"professionalId": proID,
		"scheduledStart": time.Now().Add(48 * time.Hour).UTC().Format(time.RFC3339),
		"address":        "Cra 7 #12",
	})
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.True(t, decodeError(t, w).Retryable)
}

type fakeDirectory struct {
	page   *directory.Page
	err    error
	params directory.Params
}

func (f *fakeDirectory) Search(ctx context.Context, p directory.Params) (*directory.Page, error) {
	f.params = p
	return f.page, f.err
}

func TestDirectoryHandler_Search(t *testing.T) {
	dir := &fakeDirectory{page: &directory.Page{Total: 1, Page: 1, PageSize: 12, TotalPages: 1}}
	h := NewDirectoryHandler(dir)
	r := gin.New()
	r.GET("/directory", h.Search)

	w := do(r, http.MethodGet, "/directory?city=Bogot%C3%A1&verified=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bogotá", dir.params.Filters.City)
	assert.True(t, dir.params.Filters.VerifiedOnly)
}

func TestDirectoryHandler_SearchFailureIsRetryable(t *testing.T) {
	h := NewDirectoryHandler(&fakeDirectory{err: directory.ErrUnavailable})
	r := gin.New()
	r.GET("/directory", h.Search)

	w := do(r, http.MethodGet, "/directory", nil)
	require.Equal(t, http.StatusBadGateway, w.Code)
	assert.True(t, decodeError(t, w).Retryable)
}

type mockAssistant struct {
	mock.Mock
}

func (m *mockAssistant) Chat(ctx context.Context, req models.AssistantRequest) (*models.AssistantResponse, error) {
	args := m.Called(req)
	resp, _ := args.Get(0).(*models.AssistantResponse)
	return resp, args.Error(1)
}

func (m *mockAssistant) Transcribe(ctx context.Context, req models.AssistantRequest, audio []byte) (*ai.VoiceReply, error) {
	args := m.Called(req, len(audio))
	reply, _ := args.Get(0).(*ai.VoiceReply)
	return reply, args.Error(1)
}

func (m *mockAssistant) Reset(ctx context.Context, userID string) error {
	return m.Called(userID).Error(0)
}

func assistantRouter(svc ai.AIService) *gin.Engine {
	h := NewAssistantHandler(svc)
	r := gin.New()
	g := r.Group("/assistant", asCaller(models.RoleCustomer))
	g.POST("/chat", h.Chat)
	g.POST("/voice", h.Voice)
	g.DELETE("/context", h.Reset)
	return r
}

func TestAssistantHandler_ChatUsesCaller(t *testing.T) {
	svc := new(mockAssistant)
	svc.On("Chat", models.AssistantRequest{UserID: callerID.String(), Text: "busco limpieza", Locale: "es"}).
		Return(&models.AssistantResponse{Intent: ai.IntentSearch}, nil).Once()

	w := do(assistantRouter(svc), http.MethodPost, "/assistant/chat", gin.H{"text": "busco limpieza", "locale": "es"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ai.IntentSearch)
	svc.AssertExpectations(t)
}

func TestAssistantHandler_ChatRequiresText(t *testing.T) {
	w := do(assistantRouter(new(mockAssistant)), http.MethodPost, "/assistant/chat", gin.H{"locale": "en"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAssistantHandler_Reset(t *testing.T) {
	svc := new(mockAssistant)
	svc.On("Reset", callerID.String()).Return(nil).Once()
	w := do(assistantRouter(svc), http.MethodDelete, "/assistant/context", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func wav(sampleRate uint32, channels uint16, samples int) []byte {
	dataSize := uint32(samples * int(channels) * 2)
	h := waveHeader{
		FileSize:      36 + dataSize,
		FmtSize:       16,
		AudioFormat:   wavePCMFormat,
		NumChannels:   channels,
		SampleRate:    sampleRate,
		ByteRate:      sampleRate * uint32(channels) * 2,
		BlockAlign:    channels * 2,
		BitsPerSample: 16,
		DataSize:      dataSize,
	}
	copy(h.RiffTag[:], "RIFF")
	copy(h.WaveTag[:], "WAVE")
	copy(h.FmtTag[:], "fmt ")
	copy(h.DataTag[:], "data")
	var buf bytes.Buffer
	_ = binary.Write(&buf, binary.LittleEndian, h)
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}

func voiceRequest(t *testing.T, filename string, audio []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("audio", filename)
	require.NoError(t, err)
	_, err = fw.Write(audio)
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("locale", "es"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/assistant/voice", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestAssistantHandler_Voice(t *testing.T) {
	svc := new(mockAssistant)
	audio := wav(speechSampleRate, 1, 1600)
	svc.On("Transcribe", models.AssistantRequest{UserID: callerID.String(), Locale: "es"}, len(audio)).
		Return(&ai.VoiceReply{Transcript: "hola"}, nil).Once()

	w := httptest.NewRecorder()
	assistantRouter(svc).ServeHTTP(w, voiceRequest(t, "clip.wav", audio))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "hola")
	svc.AssertExpectations(t)
}

func TestAssistantHandler_VoiceRejectsWrongFormat(t *testing.T) {
	svc := new(mockAssistant)
	r := assistantRouter(svc)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, voiceRequest(t, "clip.mp3", wav(speechSampleRate, 1, 10)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, voiceRequest(t, "clip.wav", wav(44100, 2, 10)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	svc.AssertNotCalled(t, "Transcribe", mock.Anything, mock.Anything)
}

func TestValidateWave(t *testing.T) {
	assert.NoError(t, validateWave(wav(speechSampleRate, 1, 100)))
	assert.Error(t, validateWave([]byte("RIFF")))
	assert.ErrorContains(t, validateWave(wav(8000, 1, 100)), "16000 Hz")
	assert.ErrorContains(t, validateWave(wav(speechSampleRate, 2, 100)), "mono")
	assert.ErrorContains(t, validateWave(wav(speechSampleRate, 1, speechSampleRate*61)), "60 seconds")
}

type stubMessaging struct {
	messaging.MessagingService
	err error
}

func (s stubMessaging) Send(ctx context.Context, conversationID, senderID uuid.UUID, body string) (*models.Message, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Message{ConversationID: conversationID, SenderID: senderID, Body: body}, nil
}

func TestMessagingHandler_Send(t *testing.T) {
	for _, tc := range []struct {
		err  error
		want int
	}{
		{nil, http.StatusCreated},
		{messaging.ErrNotParticipant, http.StatusForbidden},
		{messaging.ErrBodyTooLong, http.StatusBadRequest},
		{messaging.ErrNotFound, http.StatusNotFound},
	} {
		h := NewMessagingHandler(stubMessaging{err: tc.err})
		r := gin.New()
		r.POST("/conversations/:id/messages", asCaller(models.RoleCustomer), h.Send)
		w := do(r, http.MethodPost, "/conversations/"+otherID.String()+"/messages", gin.H{"body": "¿Puedes el martes?"})
		assert.Equal(t, tc.want, w.Code, "err %v", tc.err)
	}
}

func TestAdminHandler_RunPayoutsRejectsFuturePeriod(t *testing.T) {
	h := NewAdminHandler(new(mockBookings), nil, nil)
	h.Now = func() time.Time { return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) }
	r := gin.New()
	r.POST("/admin/payouts/run", asCaller(models.RoleAdmin), h.RunPayouts)

	w := do(r, http.MethodPost, "/admin/payouts/run", gin.H{"periodEnd": "2026-04-01T00:00:00Z"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminHandler_ResolveDispute(t *testing.T) {
	svc := new(mockBookings)
	id := uuid.New()
	svc.On("ResolveDispute", callerID, id, booking.PartyCustomer, "Refund issued").
		Return(&models.Dispute{}, nil).Once()
	h := NewAdminHandler(svc, nil, nil)
	r := gin.New()
	r.POST("/admin/disputes/:id/resolve", asCaller(models.RoleAdmin), h.ResolveDispute)

	w := do(r, http.MethodPost, "/admin/disputes/"+id.String()+"/resolve", gin.H{"inFavorOf": "someone", "resolution": "x"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/admin/disputes/"+id.String()+"/resolve", gin.H{"inFavorOf": "customer", "resolution": "Refund issued"})
	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}
