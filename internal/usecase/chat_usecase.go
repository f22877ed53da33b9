package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"rentora/internal/domain/entity"
	"rentora/internal/domain/repository"
	"rentora/internal/infrastructure/realtime"
	"rentora/pkg/errors"
	"rentora/pkg/logger"
)

const defaultMessagePageSize = 50

type ChatUseCase struct {
	chatRepo     repository.ChatRepository
	companyRepo  repository.CompanyRepository
	propertyRepo repository.PropertyRepository
	dispatcher   realtime.Dispatcher
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	companyRepo repository.CompanyRepository,
	propertyRepo repository.PropertyRepository,
	dispatcher realtime.Dispatcher,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:     chatRepo,
		companyRepo:  companyRepo,
		propertyRepo: propertyRepo,
		dispatcher:   dispatcher,
	}
}

// MessageView is a message plus its derived read state: read-by-recipient
// holds only for messages the requester sent, once every other participant
// has read at least that far.
type MessageView struct {
	entity.Message
	ReadByRecipient bool `json:"readByRecipient"`
}

type MessagePage struct {
	Messages []MessageView `json:"messages"`
	HasMore  bool          `json:"hasMore"`
}

type ChatDetail struct {
	Chat     *entity.Chat  `json:"chat"`
	Messages []MessageView `json:"messages"`
	HasMore  bool          `json:"hasMore"`
}

type ChatSummary struct {
	Chat        *entity.Chat `json:"chat"`
	UnreadCount int          `json:"unreadCount"`
}

type StartChatInput struct {
	CompanyID  string
	PropertyID string
	Subject    string
	Text       string
}

// SendMessage persists the message and the chat metadata update, then
// fans out new_message and unread_total events to every individual user
// behind each participant. Push failures never roll the message back.
func (uc *ChatUseCase) SendMessage(ctx context.Context, sender *entity.User, chatID, text string) (*entity.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Validation("message text must not be empty", nil)
	}
	if utf8.RuneCountInString(text) > entity.MaxMessageLength {
		return nil, errors.Validation("message text exceeds 2000 characters", nil)
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	pid, err := ResolveParticipantID(sender)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(pid.ID) {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}

	message := &entity.Message{
		ChatID:     chat.ID,
		SenderID:   sender.Username,
		SenderRole: sender.Role,
		Text:       text,
	}
	if err := uc.chatRepo.AppendMessage(ctx, message); err != nil {
		return nil, err
	}

	recipients := chat.OtherParticipants(pid.ID)
	if err := uc.chatRepo.RecordMessage(ctx, chat.ID, pid.ID, text, message.Timestamp, recipients); err != nil {
		return nil, err
	}

	uc.dispatcher.Dispatch(ctx, uc.messageEvents(ctx, chat, message, pid.ID))

	return message, nil
}

// OpenChat returns the newest page of messages and marks the chat read
// for the requester: the unread counter resets and the read watermark
// advances in one write, then the other side learns how far was read.
func (uc *ChatUseCase) OpenChat(ctx context.Context, reader *entity.User, chatID string) (*ChatDetail, error) {
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	pid, err := ResolveParticipantID(reader)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(pid.ID) {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}

	messages, err := uc.chatRepo.Messages(ctx, chat.ID, defaultMessagePageSize, 0)
	if err != nil {
		return nil, err
	}

	readTs := time.Now().UnixMilli()
	if err := uc.chatRepo.ResetUnread(ctx, chat.ID, pid.ID, readTs); err != nil {
		return nil, err
	}
	chat.UnreadCounts[pid.ID] = 0
	chat.LastReadAt[pid.ID] = readTs

	events := []realtime.Event{{
		UserID: reader.Username,
		Name:   "unread_total",
		Payload: map[string]interface{}{
			"total": uc.totalForParticipant(ctx, pid.ID),
		},
	}}
	for _, other := range chat.OtherParticipants(pid.ID) {
		for _, username := range uc.usersBehind(ctx, other) {
			events = append(events, realtime.Event{
				UserID: username,
				Name:   "messages_read_up_to",
				Payload: map[string]interface{}{
					"chatId":            chat.ID,
					"readerId":          pid.ID,
					"readUpToTimestamp": readTs,
				},
			})
		}
	}
	uc.dispatcher.Dispatch(ctx, events)

	return &ChatDetail{
		Chat:     chat,
		Messages: uc.annotate(chat, messages, reader, pid.ID),
		HasMore:  len(messages) == defaultMessagePageSize,
	}, nil
}

// LoadOlderMessages is a pure read used by pagination; it never touches
// unread counters or read watermarks.
func (uc *ChatUseCase) LoadOlderMessages(ctx context.Context, reader *entity.User, chatID string, beforeTs int64, limit int) (*MessagePage, error) {
	if limit <= 0 {
		limit = defaultMessagePageSize
	}

	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}

	pid, err := ResolveParticipantID(reader)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(pid.ID) {
		return nil, errors.Forbidden("You are not a participant of this chat", nil)
	}

	messages, err := uc.chatRepo.Messages(ctx, chat.ID, limit, beforeTs)
	if err != nil {
		return nil, err
	}

	return &MessagePage{
		Messages: uc.annotate(chat, messages, reader, pid.ID),
		HasMore:  len(messages) == limit,
	}, nil
}

// StartChat finds or creates the tenant-company chat (scoped to a
// property when given) and sends the initial message into it.
func (uc *ChatUseCase) StartChat(ctx context.Context, tenant *entity.User, input StartChatInput) (*entity.Chat, *entity.Message, error) {
	pid, err := ResolveParticipantID(tenant)
	if err != nil {
		return nil, nil, err
	}
	if pid.IsCompany && pid.ID == input.CompanyID {
		return nil, nil, errors.Forbidden("Cannot start a chat with your own company", nil)
	}

	company, err := uc.companyRepo.GetByID(ctx, input.CompanyID)
	if err != nil {
		return nil, nil, err
	}
	subject := input.Subject
	if input.PropertyID != "" {
		property, err := uc.propertyRepo.GetByID(ctx, input.PropertyID)
		if err != nil {
			return nil, nil, err
		}
		if property.CompanyID != company.ID {
			return nil, nil, errors.Validation("property does not belong to this company", nil)
		}
		if subject == "" {
			subject = property.Title
		}
	}

	chat, err := uc.chatRepo.FindExisting(ctx, pid.ID, company.ID, input.PropertyID)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			return nil, nil, err
		}
		chat, err = entity.NewChat([]string{pid.ID, company.ID}, entity.ChatMeta{
			PropertyID: input.PropertyID,
			Subject:    subject,
		})
		if err != nil {
			return nil, nil, err
		}
		if err := uc.chatRepo.Create(ctx, chat); err != nil {
			return nil, nil, err
		}
	}

	message, err := uc.SendMessage(ctx, tenant, chat.ID, input.Text)
	if err != nil {
		return nil, nil, err
	}

	return chat, message, nil
}

// ListChats returns every chat the user participates in, under its own
// username and, for company-side users, under the company id as well.
// Each entry carries the caller's own unread count.
func (uc *ChatUseCase) ListChats(ctx context.Context, user *entity.User) ([]*ChatSummary, error) {
	chats, err := uc.chatRepo.ListForParticipants(ctx, uc.participantIDsOf(user))
	if err != nil {
		return nil, err
	}

	summaries := make([]*ChatSummary, 0, len(chats))
	for _, chat := range chats {
		summaries = append(summaries, &ChatSummary{
			Chat:        chat,
			UnreadCount: chat.UnreadCounts[uc.ownParticipantIn(chat, user)],
		})
	}

	return summaries, nil
}

// TotalUnread sums the caller's own unread counters across all of its
// chats. A message count, not a chat count.
func (uc *ChatUseCase) TotalUnread(ctx context.Context, user *entity.User) (int, error) {
	chats, err := uc.chatRepo.ListForParticipants(ctx, uc.participantIDsOf(user))
	if err != nil {
		return 0, err
	}

	total := 0
	for _, chat := range chats {
		total += chat.UnreadCounts[uc.ownParticipantIn(chat, user)]
	}

	return total, nil
}

func (uc *ChatUseCase) participantIDsOf(user *entity.User) []string {
	ids := []string{user.Username}
	if user.IsCompanySide() && user.CompanyID != "" {
		ids = append(ids, user.CompanyID)
	}
	return ids
}

func (uc *ChatUseCase) ownParticipantIn(chat *entity.Chat, user *entity.User) string {
	if user.IsCompanySide() && chat.HasParticipant(user.CompanyID) {
		return user.CompanyID
	}
	return user.Username
}

func (uc *ChatUseCase) annotate(chat *entity.Chat, messages []*entity.Message, reader *entity.User, readerPID string) []MessageView {
	minOtherRead := chat.MinOtherReadAt(readerPID)
	views := make([]MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, MessageView{
			Message:         *m,
			ReadByRecipient: m.SenderID == reader.Username && m.Timestamp <= minOtherRead,
		})
	}
	return views
}

func (uc *ChatUseCase) messageEvents(ctx context.Context, chat *entity.Chat, message *entity.Message, senderPID string) []realtime.Event {
	var events []realtime.Event
	for _, pid := range chat.Participants {
		total := uc.totalForParticipant(ctx, pid)
		for _, username := range uc.usersBehind(ctx, pid) {
			events = append(events,
				realtime.Event{
					UserID: username,
					Name:   "new_message",
					Payload: map[string]interface{}{
						"message":      message,
						"chatId":       chat.ID,
						"isOwnMessage": pid == senderPID,
					},
				},
				realtime.Event{
					UserID: username,
					Name:   "unread_total",
					Payload: map[string]interface{}{
						"total": total,
					},
				},
			)
		}
	}
	return events
}

// usersBehind expands a participant id to the individual usernames it
// stands for: a company id fans out to owner plus staff, anything else
// is a username already.
func (uc *ChatUseCase) usersBehind(ctx context.Context, participantID string) []string {
	company, err := uc.companyRepo.GetByID(ctx, participantID)
	if err != nil {
		if !errors.Is(err, "NOT_FOUND") {
			logger.Warn("failed to expand participant %s: %v", participantID, err)
		}
		return []string{participantID}
	}
	return company.MemberUsernames()
}

// totalForParticipant recomputes the participant's unread total from
// storage. Errors degrade to 0 and are logged; the push is advisory and
// the chat list read is the durable source.
func (uc *ChatUseCase) totalForParticipant(ctx context.Context, participantID string) int {
	chats, err := uc.chatRepo.ListForParticipants(ctx, []string{participantID})
	if err != nil {
		logger.Warn("failed to recompute unread total for %s: %v", participantID, err)
		return 0
	}
	total := 0
	for _, chat := range chats {
		total += chat.UnreadCounts[participantID]
	}
	return total
}
