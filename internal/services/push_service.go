package services

import (
	"context"
	"log/slog"

	"firebase.google.com/go/messaging"

	"entitleBack/internal/models"
)

// PushService dispatches FCM notifications to a set of device tokens.
// Delivery is best effort: one bad token does not stop the rest.
type PushService struct {
	Client *messaging.Client
	Logger *slog.Logger
}

func NewPushService(client *messaging.Client, logger *slog.Logger) *PushService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PushService{Client: client, Logger: logger}
}

func (s *PushService) SendToDevices(ctx context.Context, tokens []string, payload models.PushNotification) []models.PushResult {
	results := make([]models.PushResult, 0, len(tokens))
	for _, token := range tokens {
		message := &messaging.Message{
			Token: token,
			Notification: &messaging.Notification{
				Title: payload.Title,
				Body:  payload.Body,
			},
			Data: payload.Data,
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					ChannelID: "high_priority_channel",
				},
			},
			APNS: &messaging.APNSConfig{
				Headers: map[string]string{
					"apns-priority": "10",
				},
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						Alert: &messaging.ApsAlert{
							Title: payload.Title,
							Body:  payload.Body,
						},
						Sound: "default",
					},
				},
			},
		}

		id, err := s.Client.Send(ctx, message)
		if err != nil {
			s.Logger.Warn("push send failed", "err", err)
		}
		results = append(results, models.PushResult{Token: token, MessageID: id, Err: err})
	}
	return results
}
