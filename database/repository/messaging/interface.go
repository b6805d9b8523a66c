package messagingRepo

import (
	"context"
	"errors"
	"time"

	"casaora/models"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no conversation matches.
var ErrNotFound = errors.New("conversation not found")

// MessagingRepository defines data access for conversations and messages.
type MessagingRepository interface {
	// GetOrCreateConversation returns the thread for the pair, creating it on first use.
	GetOrCreateConversation(ctx context.Context, customerID, professionalID uuid.UUID, bookingID *uuid.UUID) (*models.Conversation, bool, error)
	// GetConversation retrieves a conversation by its ID.
	GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error)
	// ListConversations returns threads where the customer or the professional matches, most recent first.
	ListConversations(ctx context.Context, customerID uuid.UUID, professionalID *uuid.UUID) ([]models.Conversation, error)
	// CreateMessage stores a message and bumps the conversation's last_message_at.
	CreateMessage(ctx context.Context, m *models.Message) error
	// ListMessages returns up to limit messages older than before, newest first.
	ListMessages(ctx context.Context, conversationID uuid.UUID, before *time.Time, limit int) ([]models.Message, error)
	// MarkRead stamps read_at on messages the reader did not send. It returns how many changed.
	MarkRead(ctx context.Context, conversationID, readerID uuid.UUID, at time.Time) (int64, error)
}
