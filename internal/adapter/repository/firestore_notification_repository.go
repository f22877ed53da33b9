package repository

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rentora/internal/domain/entity"
	"rentora/internal/domain/repository"
	"rentora/pkg/errors"
)

type firestoreNotificationRepository struct {
	client *firestore.Client
}

func NewFirestoreNotificationRepository(client *firestore.Client) repository.NotificationRepository {
	return &firestoreNotificationRepository{
		client: client,
	}
}

func (r *firestoreNotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	if notification.ID == "" {
		notification.ID = uuid.New().String()
	}
	notification.CreatedAt = time.Now()

	_, err := r.client.Collection("notifications").Doc(notification.ID).Set(ctx, notification)
	if err != nil {
		return errors.Internal("Failed to create notification", err)
	}

	return nil
}

func (r *firestoreNotificationRepository) ListByRecipient(ctx context.Context, username string, limit int) ([]*entity.Notification, error) {
	query := r.client.Collection("notifications").
		Where("recipient", "==", username).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch notifications", err)
	}

	notifications := make([]*entity.Notification, 0, len(docs))
	for _, doc := range docs {
		var notification entity.Notification
		if err := doc.DataTo(&notification); err != nil {
			return nil, errors.Internal("Failed to parse notification data", err)
		}
		notifications = append(notifications, &notification)
	}

	return notifications, nil
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, username, id string) error {
	ref := r.client.Collection("notifications").Doc(id)

	doc, err := ref.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return errors.NotFound("Notification", nil)
		}
		return errors.Internal("Failed to get notification", err)
	}

	recipient, err := doc.DataAt("recipient")
	if err != nil {
		return errors.Internal("Failed to parse notification data", err)
	}
	if recipient != username {
		return errors.Forbidden("Notification belongs to another user", nil)
	}

	_, err = ref.Update(ctx, []firestore.Update{{Path: "read", Value: true}})
	if err != nil {
		return errors.Internal("Failed to mark notification as read", err)
	}

	return nil
}
