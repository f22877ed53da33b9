package repository

import (
	"context"

	"rentora/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)

	// FindExisting scans the tenant's chats, most recent first, for one
	// with the company as participant and an exact property match
	// (empty propertyID matches chats with no property).
	FindExisting(ctx context.Context, tenantID, companyID, propertyID string) (*entity.Chat, error)

	// ListForParticipants returns chats containing any of the given
	// participant ids, de-duplicated, sorted by last message descending.
	ListForParticipants(ctx context.Context, participantIDs []string) ([]*entity.Chat, error)

	// AppendMessage stores the message, assigning its id and
	// server-side epoch-millis timestamp.
	AppendMessage(ctx context.Context, message *entity.Message) error

	// RecordMessage applies the post-send chat mutation in one atomic
	// write: last-message metadata plus an atomic +1 on each
	// recipient's unread counter.
	RecordMessage(ctx context.Context, chatID, senderID, preview string, ts int64, recipients []string) error

	// ResetUnread zeroes the reader's counter and advances its read
	// watermark in a single atomic write.
	ResetUnread(ctx context.Context, chatID, readerID string, readTs int64) error

	// Messages returns up to limit of the newest messages older than
	// beforeTs (all when beforeTs <= 0), ordered oldest to newest.
	Messages(ctx context.Context, chatID string, limit int, beforeTs int64) ([]*entity.Message, error)
}
