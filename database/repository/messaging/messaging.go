package messagingRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"casaora/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormMessagingRepo implements MessagingRepository on Postgres.
type GormMessagingRepo struct {
	db *gorm.DB
}

func NewGormMessagingRepo(db *gorm.DB) *GormMessagingRepo {
	return &GormMessagingRepo{db: db}
}

func (r *GormMessagingRepo) GetOrCreateConversation(ctx context.Context, customerID, professionalID uuid.UUID, bookingID *uuid.UUID) (*models.Conversation, bool, error) {
	db := r.db.WithContext(ctx)
	var conv models.Conversation
	err := db.First(&conv, "customer_id = ? AND professional_id = ?", customerID, professionalID).Error
	if err == nil {
		return &conv, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to get conversation: %w", err)
	}

	conv = models.Conversation{CustomerID: customerID, ProfessionalID: professionalID, BookingID: bookingID}
	err = db.Create(&conv).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// Lost a race with a concurrent start; the row exists now.
		if err := db.First(&conv, "customer_id = ? AND professional_id = ?", customerID, professionalID).Error; err != nil {
			return nil, false, fmt.Errorf("failed to reload conversation: %w", err)
		}
		return &conv, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to create conversation: %w", err)
	}
	return &conv, true, nil
}

func (r *GormMessagingRepo) GetConversation(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	var conv models.Conversation
	if err := r.db.WithContext(ctx).First(&conv, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

func (r *GormMessagingRepo) ListConversations(ctx context.Context, customerID uuid.UUID, professionalID *uuid.UUID) ([]models.Conversation, error) {
	q := r.db.WithContext(ctx)
	if professionalID != nil {
		q = q.Where("customer_id = ? OR professional_id = ?", customerID, *professionalID)
	} else {
		q = q.Where("customer_id = ?", customerID)
	}
	var out []models.Conversation
	if err := q.Order("COALESCE(last_message_at, created_at) DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return out, nil
}

func (r *GormMessagingRepo) CreateMessage(ctx context.Context, m *models.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(m).Error; err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		res := tx.Model(&models.Conversation{}).
			Where("id = ?", m.ConversationID).
			Update("last_message_at", m.CreatedAt)
		if res.Error != nil {
			return fmt.Errorf("failed to bump conversation: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *GormMessagingRepo) ListMessages(ctx context.Context, conversationID uuid.UUID, before *time.Time, limit int) ([]models.Message, error) {
	q := r.db.WithContext(ctx).Where("conversation_id = ?", conversationID)
	if before != nil {
		q = q.Where("created_at < ?", *before)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []models.Message
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return out, nil
}

func (r *GormMessagingRepo) MarkRead(ctx context.Context, conversationID, readerID uuid.UUID, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("conversation_id = ? AND sender_id <> ? AND read_at IS NULL", conversationID, readerID).
		Update("read_at", at)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to mark messages read: %w", res.Error)
	}
	return res.RowsAffected, nil
}
