package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"rentora/internal/domain/entity"
	"rentora/internal/domain/repository"
	"rentora/pkg/errors"
	"rentora/pkg/logger"
)

// Bounded scan used by FindExisting. A single tenant's chat count is
// small, so a linear scan of the most recent chats is acceptable.
const existingChatScanLimit = 200

type firestoreChatRepository struct {
	client *firestore.Client
}

func NewFirestoreChatRepository(client *firestore.Client) repository.ChatRepository {
	return &firestoreChatRepository{
		client: client,
	}
}

func (r *firestoreChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	if chat.ID == "" {
		chat.ID = uuid.New().String()
	}
	chat.CreatedAt = time.Now()

	_, err := r.client.Collection("chats").Doc(chat.ID).Set(ctx, chat)
	if err != nil {
		return errors.Internal("Failed to create chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	doc, err := r.client.Collection("chats").Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, errors.NotFound("Chat", nil)
		}
		return nil, errors.Internal("Failed to get chat", err)
	}

	var chat entity.Chat
	if err := doc.DataTo(&chat); err != nil {
		return nil, errors.Internal("Failed to parse chat data", err)
	}

	return &chat, nil
}

func (r *firestoreChatRepository) FindExisting(ctx context.Context, tenantID, companyID, propertyID string) (*entity.Chat, error) {
	query := r.client.Collection("chats").
		Where("participants", "array-contains", tenantID).
		OrderBy("lastMessageAt", firestore.Desc).
		Limit(existingChatScanLimit)

	iter := query.Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, errors.Internal("Failed to scan chats", err)
		}

		var chat entity.Chat
		if err := doc.DataTo(&chat); err != nil {
			logger.Warn("skipping malformed chat document %s: %v", doc.Ref.ID, err)
			continue
		}

		// Exact property match: a chat without a property only matches
		// a lookup without one.
		if chat.HasParticipant(companyID) && chat.PropertyID == propertyID {
			return &chat, nil
		}
	}

	return nil, errors.NotFound("Chat", nil)
}

func (r *firestoreChatRepository) ListForParticipants(ctx context.Context, participantIDs []string) ([]*entity.Chat, error) {
	byID := make(map[string]*entity.Chat)

	for _, pid := range participantIDs {
		query := r.client.Collection("chats").Where("participants", "array-contains", pid)
		docs, err := query.Documents(ctx).GetAll()
		if err != nil {
			return nil, errors.Internal("Failed to fetch chats", err)
		}
		for _, doc := range docs {
			var chat entity.Chat
			if err := doc.DataTo(&chat); err != nil {
				logger.Warn("skipping malformed chat document %s: %v", doc.Ref.ID, err)
				continue
			}
			byID[chat.ID] = &chat
		}
	}

	chats := make([]*entity.Chat, 0, len(byID))
	for _, chat := range byID {
		chats = append(chats, chat)
	}
	sort.Slice(chats, func(i, j int) bool {
		return chats[i].LastMessageAt > chats[j].LastMessageAt
	})

	return chats, nil
}

func (r *firestoreChatRepository) AppendMessage(ctx context.Context, message *entity.Message) error {
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Timestamp == 0 {
		message.Timestamp = time.Now().UnixMilli()
	}

	_, err := r.client.Collection("chats").Doc(message.ChatID).Collection("messages").Doc(message.ID).Set(ctx, message)
	if err != nil {
		return errors.Internal("Failed to store message", err)
	}

	return nil
}

// RecordMessage bundles the last-message metadata and the per-recipient
// unread increments into one Update call. The increments use the
// store's atomic primitive; a read-modify-write here would lose counts
// under concurrent senders.
func (r *firestoreChatRepository) RecordMessage(ctx context.Context, chatID, senderID, preview string, ts int64, recipients []string) error {
	updates := []firestore.Update{
		{Path: "lastMessageText", Value: preview},
		{Path: "lastMessageSenderId", Value: senderID},
		{Path: "lastMessageAt", Value: ts},
	}
	for _, pid := range recipients {
		updates = append(updates, firestore.Update{
			FieldPath: firestore.FieldPath{"unreadCounts", pid},
			Value:     firestore.Increment(1),
		})
	}

	_, err := r.client.Collection("chats").Doc(chatID).Update(ctx, updates)
	if err != nil {
		return errors.Internal("Failed to record message on chat", err)
	}

	return nil
}

func (r *firestoreChatRepository) ResetUnread(ctx context.Context, chatID, readerID string, readTs int64) error {
	// Counter and watermark move together or not at all; splitting them
	// would let messages show as read prematurely.
	updates := []firestore.Update{
		{FieldPath: firestore.FieldPath{"unreadCounts", readerID}, Value: 0},
		{FieldPath: firestore.FieldPath{"lastReadAt", readerID}, Value: readTs},
	}

	_, err := r.client.Collection("chats").Doc(chatID).Update(ctx, updates)
	if err != nil {
		return errors.Internal("Failed to mark chat as read", err)
	}

	return nil
}

func (r *firestoreChatRepository) Messages(ctx context.Context, chatID string, limit int, beforeTs int64) ([]*entity.Message, error) {
	query := r.client.Collection("chats").Doc(chatID).Collection("messages").OrderBy("timestamp", firestore.Desc)
	if beforeTs > 0 {
		query = query.Where("timestamp", "<", beforeTs)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, errors.Internal("Failed to fetch messages", err)
	}

	messages := make([]*entity.Message, 0, len(docs))
	for _, doc := range docs {
		var message entity.Message
		if err := doc.DataTo(&message); err != nil {
			return nil, errors.Internal("Failed to parse message data", err)
		}
		messages = append(messages, &message)
	}

	// Query runs newest-first to honor the limit; callers want
	// oldest-first pages.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}

	return messages, nil
}
