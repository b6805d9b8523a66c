package notification

import (
	"context"
	"errors"
	"fmt"

	profileRepo "casaora/database/repository/profile"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// NotificationService sends push notifications to account holders.
type NotificationService interface {
	Push(ctx context.Context, profileID uuid.UUID, title, body string, data map[string]string) error
}

// Sender delivers one FCM message. *messaging.Client satisfies it.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// NewFCMClient initializes the Firebase app from a service-account file and
// returns its Messaging client.
func NewFCMClient(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}
	return client, nil
}

// FCMNotificationService looks up the profile's device token and sends through FCM.
type FCMNotificationService struct {
	Profiles profileRepo.ProfileRepository
	Sender   Sender
	Logger   *zap.Logger
}

func NewFCMNotificationService(profiles profileRepo.ProfileRepository, sender Sender, logger *zap.Logger) *FCMNotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FCMNotificationService{Profiles: profiles, Sender: sender, Logger: logger}
}

// Push is a logged no-op when the profile has no device token.
func (s *FCMNotificationService) Push(ctx context.Context, profileID uuid.UUID, title, body string, data map[string]string) error {
	p, err := s.Profiles.GetByID(ctx, profileID)
	if errors.Is(err, profileRepo.ErrNotFound) {
		s.Logger.Warn("Push target does not exist", zap.String("profile_id", profileID.String()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("push: could not load profile %s: %w", profileID, err)
	}
	if p.PushToken == "" {
		s.Logger.Debug("Profile has no push token; skipping", zap.String("profile_id", profileID.String()))
		return nil
	}

	msg := &messaging.Message{
		Token:        p.PushToken,
		Notification: &messaging.Notification{Title: title, Body: body},
		Data:         data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}
	id, err := s.Sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("push: failed to send FCM message: %w", err)
	}
	s.Logger.Debug("Sent push notification", zap.String("profile_id", profileID.String()), zap.String("message_id", id))
	return nil
}

// LogNotificationService only logs. It stands in when Firebase is not configured.
type LogNotificationService struct {
	Logger *zap.Logger
}

func (s LogNotificationService) Push(_ context.Context, profileID uuid.UUID, title, body string, data map[string]string) error {
	if s.Logger != nil {
		s.Logger.Info("Push notification (firebase disabled)",
			zap.String("profile_id", profileID.String()),
			zap.String("title", title),
			zap.String("body", body),
			zap.Any("data", data))
	}
	return nil
}
