package repository

import (
	"context"

	"rentora/internal/domain/entity"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *entity.Notification) error
	ListByRecipient(ctx context.Context, username string, limit int) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, username, id string) error
}
