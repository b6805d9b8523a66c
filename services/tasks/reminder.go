package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"casaora/models"
	"casaora/services/notification"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const TypeSendReminder = "reminder:send"

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	if payload.FireDate == "" {
		payload.FireDate = fireAt.UTC().Format(time.RFC3339)
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.MaxRetry(3),
	}
	// One reminder per booking; re-enqueueing the same booking is a no-op.
	if payload.BookingID != "" {
		opts = append(opts, asynq.TaskID("reminder:"+payload.BookingID))
	}
	return task, opts, nil
}

// HandleReminderTask pushes the reminder to the profile in the payload.
func HandleReminderTask(notifier notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		var p models.ReminderPayload
		if err := json.Unmarshal(task.Payload(), &p); err != nil {
			logger.Error("Invalid reminder payload", zap.Error(err))
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		profileID, err := uuid.Parse(p.ProfileID)
		if err != nil {
			logger.Error("Reminder has no valid profile", zap.String("profile_id", p.ProfileID))
			return fmt.Errorf("invalid profile id %q: %w", p.ProfileID, asynq.SkipRetry)
		}

		logger.Info("Sending booking reminder",
			zap.String("profile_id", p.ProfileID),
			zap.String("booking_id", p.BookingID))
		err = notifier.Push(ctx, profileID, p.Title, p.Body, map[string]string{
			"type":      "booking_reminder",
			"bookingId": p.BookingID,
			"fireDate":  p.FireDate,
		})
		if err != nil {
			logger.Error("Failed to send reminder", zap.String("booking_id", p.BookingID), zap.Error(err))
		}
		return err
	}
}

// Enqueuer is the part of *asynq.Client the scheduler needs.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// ReminderScheduler queues booking reminders on asynq.
type ReminderScheduler struct {
	Client Enqueuer
	Logger *zap.Logger
}

func NewReminderScheduler(client Enqueuer, logger *zap.Logger) *ReminderScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderScheduler{Client: client, Logger: logger}
}

func (s *ReminderScheduler) ScheduleReminder(ctx context.Context, payload models.ReminderPayload, fireAt time.Time) error {
	task, opts, err := NewReminderTask(payload, fireAt)
	if err != nil {
		return err
	}
	info, err := s.Client.EnqueueContext(ctx, task, opts...)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		s.Logger.Debug("Reminder already queued", zap.String("booking_id", payload.BookingID))
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to enqueue reminder: %w", err)
	}
	s.Logger.Info("Reminder scheduled",
		zap.String("task_id", info.ID),
		zap.String("booking_id", payload.BookingID),
		zap.Time("fire_at", fireAt))
	return nil
}
