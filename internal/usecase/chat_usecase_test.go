package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentora/internal/domain/entity"
	"rentora/pkg/errors"
)

// fakeChatRepo keeps chats and messages in memory and honors the same
// atomicity contract as the real store: RecordMessage and ResetUnread
// mutate counters and metadata in one step.
type fakeChatRepo struct {
	mu       sync.Mutex
	chats    map[string]*entity.Chat
	messages map[string][]*entity.Message
	lastTs   int64
	seq      int
}

func newFakeChatRepo() *fakeChatRepo {
	return &fakeChatRepo{
		chats:    map[string]*entity.Chat{},
		messages: map[string][]*entity.Message{},
	}
}

func copyChat(c *entity.Chat) *entity.Chat {
	copied := *c
	copied.Participants = append([]string(nil), c.Participants...)
	copied.UnreadCounts = make(map[string]int, len(c.UnreadCounts))
	for k, v := range c.UnreadCounts {
		copied.UnreadCounts[k] = v
	}
	copied.LastReadAt = make(map[string]int64, len(c.LastReadAt))
	for k, v := range c.LastReadAt {
		copied.LastReadAt[k] = v
	}
	return &copied
}

func (r *fakeChatRepo) Create(_ context.Context, chat *entity.Chat) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if chat.ID == "" {
		r.seq++
		chat.ID = fmt.Sprintf("chat-%d", r.seq)
	}
	chat.CreatedAt = time.Now()
	r.chats[chat.ID] = copyChat(chat)
	return nil
}

func (r *fakeChatRepo) GetByID(_ context.Context, id string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.chats[id]; ok {
		return copyChat(c), nil
	}
	return nil, errors.NotFound("Chat", nil)
}

func (r *fakeChatRepo) FindExisting(_ context.Context, tenantID, companyID, propertyID string) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.chats {
		if c.HasParticipant(tenantID) && c.HasParticipant(companyID) && c.PropertyID == propertyID {
			return copyChat(c), nil
		}
	}
	return nil, errors.NotFound("Chat", nil)
}

func (r *fakeChatRepo) ListForParticipants(_ context.Context, participantIDs []string) ([]*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := map[string]bool{}
	var out []*entity.Chat
	for _, pid := range participantIDs {
		for _, c := range r.chats {
			if c.HasParticipant(pid) && !seen[c.ID] {
				seen[c.ID] = true
				out = append(out, copyChat(c))
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastMessageAt > out[j].LastMessageAt })
	return out, nil
}

func (r *fakeChatRepo) AppendMessage(_ context.Context, message *entity.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	message.ID = fmt.Sprintf("msg-%d", r.seq)
	ts := time.Now().UnixMilli()
	if ts <= r.lastTs {
		ts = r.lastTs + 1
	}
	r.lastTs = ts
	message.Timestamp = ts
	copied := *message
	r.messages[message.ChatID] = append(r.messages[message.ChatID], &copied)
	return nil
}

func (r *fakeChatRepo) RecordMessage(_ context.Context, chatID, senderID, preview string, ts int64, recipients []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	c.LastMessageText = preview
	c.LastMessageSenderID = senderID
	c.LastMessageAt = ts
	for _, pid := range recipients {
		c.UnreadCounts[pid]++
	}
	return nil
}

func (r *fakeChatRepo) ResetUnread(_ context.Context, chatID, readerID string, readTs int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.chats[chatID]
	if !ok {
		return errors.NotFound("Chat", nil)
	}
	c.UnreadCounts[readerID] = 0
	c.LastReadAt[readerID] = readTs
	return nil
}

func (r *fakeChatRepo) Messages(_ context.Context, chatID string, limit int, beforeTs int64) ([]*entity.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Message
	for _, m := range r.messages[chatID] {
		if beforeTs > 0 && m.Timestamp >= beforeTs {
			continue
		}
		copied := *m
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func chatFixture(t *testing.T) (*world, *fakeChatRepo, *ChatUseCase, *recordingDispatcher, *entity.Chat) {
	t.Helper()

	w := newWorld()
	w.users["alice"] = &entity.User{Username: "alice", Role: entity.RoleTenant}
	w.users["bob"] = &entity.User{Username: "bob", Role: entity.RoleOwner, CompanyID: "acme"}
	w.users["carol"] = &entity.User{Username: "carol", Role: entity.RoleStaff, CompanyID: "acme"}
	w.companies["acme"] = &entity.Company{ID: "acme", Name: "Acme Rentals", OwnerUsername: "bob", StaffUsernames: []string{"carol"}}
	w.props["p1"] = &entity.Property{ID: "p1", CompanyID: "acme", Title: "Seaside flat", MonthlyPrice: 3000}

	chatRepo := newFakeChatRepo()
	dispatcher := &recordingDispatcher{}
	uc := NewChatUseCase(chatRepo, &fakeCompanyRepo{w}, &fakePropertyRepo{w}, dispatcher)

	chat, err := entity.NewChat([]string{"alice", "acme"}, entity.ChatMeta{PropertyID: "p1", Subject: "Seaside flat"})
	require.NoError(t, err)
	require.NoError(t, chatRepo.Create(context.Background(), chat))

	return w, chatRepo, uc, dispatcher, chat
}

func TestSendMessageRoundTrip(t *testing.T) {
	w, chatRepo, uc, dispatcher, chat := chatFixture(t)

	before := time.Now().UnixMilli()
	message, err := uc.SendMessage(context.Background(), w.users["alice"], chat.ID, "  hello there  ")
	require.NoError(t, err)

	assert.Equal(t, "hello there", message.Text, "text is trimmed")
	assert.GreaterOrEqual(t, message.Timestamp, before)
	assert.Equal(t, "alice", message.SenderID)

	page, err := chatRepo.Messages(context.Background(), chat.ID, 1, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, message.ID, page[0].ID)
	assert.Equal(t, "hello there", page[0].Text)

	stored, err := chatRepo.GetByID(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.UnreadCounts["acme"])
	assert.Equal(t, 0, stored.UnreadCounts["alice"])
	assert.Equal(t, "hello there", stored.LastMessageText)
	assert.Equal(t, "alice", stored.LastMessageSenderID)
	assert.Equal(t, message.Timestamp, stored.LastMessageAt)

	// Fan-out: the company side expands to its members, the sender's own
	// devices see the message tagged as their own.
	own := map[string]bool{}
	for _, e := range dispatcher.named("new_message") {
		payload := e.Payload.(map[string]interface{})
		own[e.UserID] = payload["isOwnMessage"].(bool)
	}
	assert.Equal(t, map[string]bool{"alice": true, "bob": false, "carol": false}, own)
}

func TestUnreadCountsAccumulate(t *testing.T) {
	w, chatRepo, uc, _, chat := chatFixture(t)

	for i := 0; i < 3; i++ {
		_, err := uc.SendMessage(context.Background(), w.users["alice"], chat.ID, "ping")
		require.NoError(t, err)
	}
	_, err := uc.SendMessage(context.Background(), w.users["bob"], chat.ID, "pong")
	require.NoError(t, err)

	stored, err := chatRepo.GetByID(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stored.UnreadCounts["acme"])
	assert.Equal(t, 1, stored.UnreadCounts["alice"])
}

func TestUnreadCountsSurviveConcurrentSenders(t *testing.T) {
	w, chatRepo, uc, _, chat := chatFixture(t)

	const senders = 16
	var wg sync.WaitGroup
	for i := 0; i < senders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := uc.SendMessage(context.Background(), w.users["alice"], chat.ID, fmt.Sprintf("burst %d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := chatRepo.GetByID(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Equal(t, senders, stored.UnreadCounts["acme"], "no increments lost under concurrent senders")
	assert.Equal(t, 0, stored.UnreadCounts["alice"])

	messages, err := chatRepo.Messages(context.Background(), chat.ID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, messages, senders)
}

func TestSendMessageValidation(t *testing.T) {
	w, _, uc, _, chat := chatFixture(t)

	_, err := uc.SendMessage(context.Background(), w.users["alice"], chat.ID, "   ")
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = uc.SendMessage(context.Background(), w.users["alice"], chat.ID, strings.Repeat("a", 2001))
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = uc.SendMessage(context.Background(), w.users["alice"], chat.ID, strings.Repeat("a", 2000))
	assert.NoError(t, err)
}

func TestSendMessageAuthorization(t *testing.T) {
	w, _, uc, _, chat := chatFixture(t)
	w.users["eve"] = &entity.User{Username: "eve", Role: entity.RoleTenant}

	_, err := uc.SendMessage(context.Background(), w.users["eve"], chat.ID, "let me in")
	assert.True(t, errors.Is(err, "FORBIDDEN"))

	_, err = uc.SendMessage(context.Background(), w.users["alice"], "no-such-chat", "hello")
	assert.True(t, errors.Is(err, "NOT_FOUND"))
}

func TestOpenChatMarksReadAndNotifiesSender(t *testing.T) {
	w, chatRepo, uc, dispatcher, chat := chatFixture(t)

	_, err := uc.SendMessage(context.Background(), w.users["alice"], chat.ID, "first")
	require.NoError(t, err)
	_, err = uc.SendMessage(context.Background(), w.users["alice"], chat.ID, "second")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	detail, err := uc.OpenChat(context.Background(), w.users["bob"], chat.ID)
	require.NoError(t, err)
	require.Len(t, detail.Messages, 2)
	assert.False(t, detail.HasMore)
	assert.Equal(t, 0, detail.Chat.UnreadCounts["acme"])

	stored, err := chatRepo.GetByID(context.Background(), chat.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stored.UnreadCounts["acme"])
	assert.Greater(t, stored.LastReadAt["acme"], int64(0))

	readEvents := dispatcher.named("messages_read_up_to")
	require.Len(t, readEvents, 1)
	assert.Equal(t, "alice", readEvents[0].UserID)
	payload := readEvents[0].Payload.(map[string]interface{})
	assert.Equal(t, chat.ID, payload["chatId"])
	assert.Equal(t, "acme", payload["readerId"])

	// Alice now sees her messages as read by the other side.
	aliceView, err := uc.OpenChat(context.Background(), w.users["alice"], chat.ID)
	require.NoError(t, err)
	for _, m := range aliceView.Messages {
		assert.True(t, m.ReadByRecipient, "message %s should be read", m.Text)
	}
}

func TestReadStateOnlyCoversMessagesUpToWatermark(t *testing.T) {
	w, _, uc, _, chat := chatFixture(t)

	_, err := uc.SendMessage(context.Background(), w.users["alice"], chat.ID, "early")
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = uc.OpenChat(context.Background(), w.users["bob"], chat.ID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	_, err = uc.SendMessage(context.Background(), w.users["alice"], chat.ID, "late")
	require.NoError(t, err)

	view, err := uc.OpenChat(context.Background(), w.users["alice"], chat.ID)
	require.NoError(t, err)
	require.Len(t, view.Messages, 2)
	assert.True(t, view.Messages[0].ReadByRecipient)
	assert.False(t, view.Messages[1].ReadByRecipient)
}

func TestLoadOlderMessagesPagination(t *testing.T) {
	w, _, uc, _, chat := chatFixture(t)

	for i := 1; i <= 5; i++ {
		_, err := uc.SendMessage(context.Background(), w.users["alice"], chat.ID, fmt.Sprintf("m%d", i))
		require.NoError(t, err)
	}

	page1, err := uc.LoadOlderMessages(context.Background(), w.users["bob"], chat.ID, 0, 2)
	require.NoError(t, err)
	require.Len(t, page1.Messages, 2)
	assert.True(t, page1.HasMore)
	assert.Equal(t, "m4", page1.Messages[0].Text)
	assert.Equal(t, "m5", page1.Messages[1].Text)

	page2, err := uc.LoadOlderMessages(context.Background(), w.users["bob"], chat.ID, page1.Messages[0].Timestamp, 2)
	require.NoError(t, err)
	require.Len(t, page2.Messages, 2)
	assert.Equal(t, "m2", page2.Messages[0].Text)
	assert.Equal(t, "m3", page2.Messages[1].Text)

	page3, err := uc.LoadOlderMessages(context.Background(), w.users["bob"], chat.ID, page2.Messages[0].Timestamp, 2)
	require.NoError(t, err)
	require.Len(t, page3.Messages, 1)
	assert.Equal(t, "m1", page3.Messages[0].Text)

	// Pure read: counters untouched.
	total, err := uc.TotalUnread(context.Background(), w.users["bob"])
	require.NoError(t, err)
	assert.Equal(t, 5, total)
}

func TestStartChatFindsExistingChat(t *testing.T) {
	w, chatRepo, uc, _, chat := chatFixture(t)

	found, _, err := uc.StartChat(context.Background(), w.users["alice"], StartChatInput{
		CompanyID:  "acme",
		PropertyID: "p1",
		Text:       "is it still free?",
	})
	require.NoError(t, err)
	assert.Equal(t, chat.ID, found.ID, "existing chat is reused")

	// A different property gets its own chat.
	w.props["p2"] = &entity.Property{ID: "p2", CompanyID: "acme", Title: "City loft", MonthlyPrice: 1500}
	fresh, _, err := uc.StartChat(context.Background(), w.users["alice"], StartChatInput{
		CompanyID:  "acme",
		PropertyID: "p2",
		Text:       "what about this one?",
	})
	require.NoError(t, err)
	assert.NotEqual(t, chat.ID, fresh.ID)
	assert.Equal(t, "City loft", fresh.Subject)

	chats, err := chatRepo.ListForParticipants(context.Background(), []string{"alice"})
	require.NoError(t, err)
	assert.Len(t, chats, 2)
}

func TestStartChatRejectsOwnCompany(t *testing.T) {
	w, _, uc, _, _ := chatFixture(t)

	_, _, err := uc.StartChat(context.Background(), w.users["bob"], StartChatInput{
		CompanyID: "acme",
		Text:      "talking to myself",
	})
	assert.True(t, errors.Is(err, "FORBIDDEN"))
}

func TestListChatsAndTotalUnread(t *testing.T) {
	w, chatRepo, uc, _, chat := chatFixture(t)

	second, err := entity.NewChat([]string{"alice", "beta"}, entity.ChatMeta{Subject: "General"})
	require.NoError(t, err)
	require.NoError(t, chatRepo.Create(context.Background(), second))
	w.companies["beta"] = &entity.Company{ID: "beta", Name: "Beta Homes", OwnerUsername: "dave"}
	w.users["dave"] = &entity.User{Username: "dave", Role: entity.RoleOwner, CompanyID: "beta"}

	_, err = uc.SendMessage(context.Background(), w.users["bob"], chat.ID, "one")
	require.NoError(t, err)
	_, err = uc.SendMessage(context.Background(), w.users["bob"], chat.ID, "two")
	require.NoError(t, err)
	_, err = uc.SendMessage(context.Background(), w.users["dave"], second.ID, "three")
	require.NoError(t, err)

	summaries, err := uc.ListChats(context.Background(), w.users["alice"])
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	// Sorted by last message, newest first.
	assert.Equal(t, second.ID, summaries[0].Chat.ID)
	assert.Equal(t, 1, summaries[0].UnreadCount)
	assert.Equal(t, chat.ID, summaries[1].Chat.ID)
	assert.Equal(t, 2, summaries[1].UnreadCount)

	total, err := uc.TotalUnread(context.Background(), w.users["alice"])
	require.NoError(t, err)
	assert.Equal(t, 3, total, "a message count, not a chat count")

	// Staff share the company's counters.
	carolTotal, err := uc.TotalUnread(context.Background(), w.users["carol"])
	require.NoError(t, err)
	assert.Equal(t, 0, carolTotal)
}
