package messaging

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	messagingRepo "casaora/database/repository/messaging"
	professionalRepo "casaora/database/repository/professional"
	"casaora/models"
	"casaora/services/notification"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrNotFound       = errors.New("conversation not found")
	ErrNotParticipant = errors.New("profile is not part of this conversation")
	ErrEmptyBody      = errors.New("message body is empty")
	ErrBodyTooLong    = errors.New("message body exceeds 4000 characters")
	ErrSelfMessage    = errors.New("cannot start a conversation with yourself")
)

const (
	MaxBodyLength   = 4000
	defaultPageSize = 50
	maxPageSize     = 100
	previewLength   = 120
)

type MessagingService interface {
	StartConversation(ctx context.Context, customerID, professionalID uuid.UUID, bookingID *uuid.UUID) (*models.Conversation, error)
	Send(ctx context.Context, conversationID, senderID uuid.UUID, body string) (*models.Message, error)
	List(ctx context.Context, profileID uuid.UUID) ([]models.Conversation, error)
	Messages(ctx context.Context, conversationID, profileID uuid.UUID, before *time.Time, limit int) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID, profileID uuid.UUID) (int64, error)
}

type DefaultMessagingService struct {
	Repo     messagingRepo.MessagingRepository
	Pros     professionalRepo.ProfessionalRepository
	Notifier notification.NotificationService
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewMessagingService(
	repo messagingRepo.MessagingRepository,
	pros professionalRepo.ProfessionalRepository,
	notifier notification.NotificationService,
	logger *zap.Logger,
) *DefaultMessagingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = notification.LogNotificationService{Logger: logger}
	}
	return &DefaultMessagingService{
		Repo:     repo,
		Pros:     pros,
		Notifier: notifier,
		Logger:   logger,
		Now:      time.Now,
	}
}

// NormalizeBody trims the body and enforces the 1..4000 character range.
func NormalizeBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	switch n := utf8.RuneCountInString(body); {
	case n == 0:
		return "", ErrEmptyBody
	case n > MaxBodyLength:
		return "", ErrBodyTooLong
	}
	return body, nil
}

func (s *DefaultMessagingService) StartConversation(ctx context.Context, customerID, professionalID uuid.UUID, bookingID *uuid.UUID) (*models.Conversation, error) {
	pro, err := s.Pros.GetByID(ctx, professionalID)
	if errors.Is(err, professionalRepo.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if pro.ProfileID == customerID {
		return nil, ErrSelfMessage
	}
	conv, created, err := s.Repo.GetOrCreateConversation(ctx, customerID, professionalID, bookingID)
	if err != nil {
		return nil, err
	}
	if created {
		s.Logger.Info("Conversation started",
			zap.String("conversation_id", conv.ID.String()),
			zap.String("customer_id", customerID.String()),
			zap.String("professional_id", professionalID.String()))
	}
	return conv, nil
}

// participant loads the conversation and returns the profile on the other side.
func (s *DefaultMessagingService) participant(ctx context.Context, conversationID, profileID uuid.UUID) (*models.Conversation, uuid.UUID, error) {
	conv, err := s.Repo.GetConversation(ctx, conversationID)
	if errors.Is(err, messagingRepo.ErrNotFound) {
		return nil, uuid.Nil, ErrNotFound
	}
	if err != nil {
		return nil, uuid.Nil, err
	}
	pro, err := s.Pros.GetByID(ctx, conv.ProfessionalID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	switch profileID {
	case conv.CustomerID:
		return conv, pro.ProfileID, nil
	case pro.ProfileID:
		return conv, conv.CustomerID, nil
	}
	return nil, uuid.Nil, ErrNotParticipant
}

func (s *DefaultMessagingService) Send(ctx context.Context, conversationID, senderID uuid.UUID, body string) (*models.Message, error) {
	body, err := NormalizeBody(body)
	if err != nil {
		return nil, err
	}
	conv, recipient, err := s.participant(ctx, conversationID, senderID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           body,
		CreatedAt:      s.Now().UTC(),
	}
	if err := s.Repo.CreateMessage(ctx, msg); err != nil {
		if errors.Is(err, messagingRepo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if err := s.Notifier.Push(ctx, recipient, "New message", preview(body), map[string]string{
		"type":           "message",
		"conversationId": conv.ID.String(),
	}); err != nil {
		s.Logger.Warn("Failed to push message notification",
			zap.String("conversation_id", conv.ID.String()), zap.Error(err))
	}
	return msg, nil
}

func preview(body string) string {
	if utf8.RuneCountInString(body) <= previewLength {
		return body
	}
	r := []rune(body)
	return string(r[:previewLength-1]) + "…"
}

// List returns every thread the profile takes part in, as customer or as
// the owner of a professional profile.
func (s *DefaultMessagingService) List(ctx context.Context, profileID uuid.UUID) ([]models.Conversation, error) {
	var proID *uuid.UUID
	pro, err := s.Pros.GetByProfileID(ctx, profileID)
	switch {
	case err == nil:
		proID = &pro.ID
	case !errors.Is(err, professionalRepo.ErrNotFound):
		return nil, err
	}
	return s.Repo.ListConversations(ctx, profileID, proID)
}

func (s *DefaultMessagingService) Messages(ctx context.Context, conversationID, profileID uuid.UUID, before *time.Time, limit int) ([]models.Message, error) {
	if _, _, err := s.participant(ctx, conversationID, profileID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return s.Repo.ListMessages(ctx, conversationID, before, limit)
}

func (s *DefaultMessagingService) MarkRead(ctx context.Context, conversationID, profileID uuid.UUID) (int64, error) {
	if _, _, err := s.participant(ctx, conversationID, profileID); err != nil {
		return 0, err
	}
	return s.Repo.MarkRead(ctx, conversationID, profileID, s.Now().UTC())
}
