package usecase

import (
	"context"

	"rentora/internal/domain/entity"
	"rentora/internal/domain/repository"
	"rentora/internal/infrastructure/realtime"
	"rentora/pkg/logger"
)

type NotificationUseCase struct {
	notificationRepo repository.NotificationRepository
	dispatcher       realtime.Dispatcher
}

func NewNotificationUseCase(notificationRepo repository.NotificationRepository, dispatcher realtime.Dispatcher) *NotificationUseCase {
	return &NotificationUseCase{
		notificationRepo: notificationRepo,
		dispatcher:       dispatcher,
	}
}

type NotificationPayload struct {
	Type  string
	Title string
	Body  string
	Data  map[string]interface{}
}

// Notify persists one notification per recipient so offline users see it
// later, then pushes it live to whoever is connected. A failed persist
// for one recipient is logged and does not stop the others; the live
// push is always best-effort.
func (uc *NotificationUseCase) Notify(ctx context.Context, recipients []string, payload NotificationPayload) {
	var events []realtime.Event
	for _, recipient := range recipients {
		notification := &entity.Notification{
			Recipient: recipient,
			Type:      payload.Type,
			Title:     payload.Title,
			Body:      payload.Body,
			Data:      payload.Data,
		}
		if err := uc.notificationRepo.Create(ctx, notification); err != nil {
			logger.Error("failed to persist notification for %s: %v", recipient, err)
			continue
		}
		events = append(events, realtime.Event{
			UserID:  recipient,
			Name:    "notification",
			Payload: notification,
		})
	}
	uc.dispatcher.Dispatch(ctx, events)
}

func (uc *NotificationUseCase) ListFor(ctx context.Context, username string, limit int) ([]*entity.Notification, error) {
	return uc.notificationRepo.ListByRecipient(ctx, username, limit)
}

func (uc *NotificationUseCase) MarkRead(ctx context.Context, username, id string) error {
	return uc.notificationRepo.MarkRead(ctx, username, id)
}
