package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"casaora/models"
	"casaora/services/booking"
	"casaora/services/directory"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptyMessage      = errors.New("message is empty")
	ErrSpeechUnavailable = errors.New("speech recognition is not configured")
)

// AIService is the assistant behind the chat widget.
type AIService interface {
	Chat(ctx context.Context, req models.AssistantRequest) (*models.AssistantResponse, error)
	Transcribe(ctx context.Context, req models.AssistantRequest, audio []byte) (*VoiceReply, error)
	Reset(ctx context.Context, userID string) error
}

// VoiceReply pairs what was heard with the assistant's answer to it.
type VoiceReply struct {
	Transcript string                    `json:"transcript"`
	Response   *models.AssistantResponse `json:"response"`
}

type HelpSearcher interface {
	Search(ctx context.Context, query, locale string) ([]models.HelpArticleView, error)
}

type Quoter interface {
	Quote(ctx context.Context, professionalID uuid.UUID, hours decimal.Decimal) (booking.Quote, error)
}

type ProfessionalLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.ProfessionalProfile, error)
}

type DefaultAIService struct {
	Contexts    ContextStore
	Classifier  Classifier
	Directory   directory.DirectoryService
	Help        HelpSearcher
	Quotes      Quoter
	Pros        ProfessionalLookup
	Transcripts TranscriptArchive
	Speech      Transcriber
	Logger      *zap.Logger
	Now         func() time.Time
}

type Deps struct {
	Contexts    ContextStore
	Classifier  Classifier
	Directory   directory.DirectoryService
	Help        HelpSearcher
	Quotes      Quoter
	Pros        ProfessionalLookup
	Transcripts TranscriptArchive
	Speech      Transcriber
}

func NewDefaultAIService(deps Deps, logger *zap.Logger) *DefaultAIService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.Classifier == nil {
		deps.Classifier = KeywordClassifier{}
	}
	if deps.Transcripts == nil {
		deps.Transcripts = NopTranscriptArchive{}
	}
	return &DefaultAIService{
		Contexts:    deps.Contexts,
		Classifier:  deps.Classifier,
		Directory:   deps.Directory,
		Help:        deps.Help,
		Quotes:      deps.Quotes,
		Pros:        deps.Pros,
		Transcripts: deps.Transcripts,
		Speech:      deps.Speech,
		Logger:      logger,
		Now:         time.Now,
	}
}

func (s *DefaultAIService) Chat(ctx context.Context, req models.AssistantRequest) (*models.AssistantResponse, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	locale := normalizeLocale(req.Locale)

	aiCtx, err := s.Contexts.Get(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load context: %w", err)
	}

	var resp *models.AssistantResponse
	switch {
	case aiCtx.BookingStep > 0 && isCancel(text):
		resetBooking(aiCtx)
		resp = textResponse(IntentBook, message(locale, msgBookingCancelled))
	case aiCtx.BookingStep > 0:
		resp, err = s.continueBooking(ctx, locale, text, aiCtx)
	default:
		intent, cerr := s.Classifier.Classify(ctx, text, locale)
		if cerr != nil {
			s.Logger.Warn("Intent classification failed", zap.String("user_id", req.UserID), zap.Error(cerr))
			intent = Intent{Intent: IntentChat}
		}
		if intent.Service != "" {
			aiCtx.Service = intent.Service
		}
		if intent.City != "" {
			aiCtx.City = intent.City
		}
		aiCtx.Intent = intent.Intent
		resp, err = s.dispatch(ctx, locale, text, intent.Intent, aiCtx)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Contexts.Set(ctx, req.UserID, aiCtx); err != nil {
		return nil, fmt.Errorf("save context: %w", err)
	}
	s.archive(ctx, req.UserID, text, resp)
	return resp, nil
}

func (s *DefaultAIService) dispatch(ctx context.Context, locale, text, intent string, aiCtx *models.AssistantContext) (*models.AssistantResponse, error) {
	switch intent {
	case IntentSearch:
		return s.handleSearch(ctx, locale, aiCtx)
	case IntentBook:
		return s.startBooking(ctx, locale, aiCtx)
	case IntentHelp:
		return s.handleHelp(ctx, locale, text)
	default:
		return textResponse(IntentChat, message(locale, msgGreeting)), nil
	}
}

// archive stores both turns. A failure here never fails the conversation.
func (s *DefaultAIService) archive(ctx context.Context, userID, text string, resp *models.AssistantResponse) {
	now := s.Now().UTC()
	reply := make([]string, 0, len(resp.Blocks))
	for _, b := range resp.Blocks {
		if b.Text != "" {
			reply = append(reply, b.Text)
		}
	}
	err := s.Transcripts.Append(ctx,
		models.TranscriptEntry{UserID: userID, Role: "user", Text: text, CreatedAt: now},
		models.TranscriptEntry{UserID: userID, Role: "assistant", Text: strings.Join(reply, "\n"), Intent: resp.Intent, CreatedAt: now},
	)
	if err != nil {
		s.Logger.Warn("Failed to archive assistant transcript", zap.String("user_id", userID), zap.Error(err))
	}
}

func (s *DefaultAIService) Transcribe(ctx context.Context, req models.AssistantRequest, audio []byte) (*VoiceReply, error) {
	if s.Speech == nil {
		return nil, ErrSpeechUnavailable
	}
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}
	text, err := s.Speech.Transcribe(ctx, audio, normalizeLocale(req.Locale))
	if err != nil {
		return nil, err
	}
	if text == "" {
		return &VoiceReply{Response: textResponse(IntentChat, message(req.Locale, msgNotHeard))}, nil
	}
	req.Text = text
	resp, err := s.Chat(ctx, req)
	if err != nil {
		return nil, err
	}
	return &VoiceReply{Transcript: text, Response: resp}, nil
}

func (s *DefaultAIService) Reset(ctx context.Context, userID string) error {
	return s.Contexts.Clear(ctx, userID)
}

func normalizeLocale(l string) string {
	if strings.HasPrefix(strings.ToLower(l), "es") {
		return "es"
	}
	return "en"
}

func isCancel(text string) bool {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "cancel", "stop", "never mind", "cancelar", "parar", "olvídalo":
		return true
	}
	return false
}

func textResponse(intent, text string) *models.AssistantResponse {
	return &models.AssistantResponse{
		Intent: intent,
		Blocks: []models.UIBlock{{Type: models.BlockText, Text: text}},
	}
}
