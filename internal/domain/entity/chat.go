package entity

import (
	"time"

	"rentora/pkg/errors"
)

// Chat is a conversation between exactly two participant ids: the
// tenant's username on one side and a company id on the other. Unread
// counters and read watermarks are keyed by participant id and always
// carry an entry for every participant.
type Chat struct {
	ID           string   `json:"id" firestore:"id"`
	Participants []string `json:"participants" firestore:"participants"`
	PropertyID   string   `json:"property_id,omitempty" firestore:"propertyId,omitempty"`
	BookingID    string   `json:"booking_id,omitempty" firestore:"bookingId,omitempty"`
	Subject      string   `json:"subject,omitempty" firestore:"subject,omitempty"`

	LastMessageText     string `json:"last_message_text,omitempty" firestore:"lastMessageText,omitempty"`
	LastMessageSenderID string `json:"last_message_sender_id,omitempty" firestore:"lastMessageSenderId,omitempty"`
	LastMessageAt       int64  `json:"last_message_at" firestore:"lastMessageAt"`

	UnreadCounts map[string]int   `json:"unread_counts" firestore:"unreadCounts"`
	LastReadAt   map[string]int64 `json:"last_read_at" firestore:"lastReadAt"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
}

type ChatMeta struct {
	PropertyID string
	BookingID  string
	Subject    string
}

// NewChat builds a chat with zeroed unread counters and read watermarks
// for every participant.
func NewChat(participants []string, meta ChatMeta) (*Chat, error) {
	distinct := map[string]bool{}
	for _, p := range participants {
		if p != "" {
			distinct[p] = true
		}
	}
	if len(distinct) < 2 {
		return nil, errors.Validation("a chat requires at least two distinct participants", nil)
	}

	chat := &Chat{
		Participants: participants,
		PropertyID:   meta.PropertyID,
		BookingID:    meta.BookingID,
		Subject:      meta.Subject,
		UnreadCounts: make(map[string]int, len(participants)),
		LastReadAt:   make(map[string]int64, len(participants)),
	}
	for _, p := range participants {
		chat.UnreadCounts[p] = 0
		chat.LastReadAt[p] = 0
	}
	return chat, nil
}

func (c *Chat) HasParticipant(participantID string) bool {
	for _, p := range c.Participants {
		if p == participantID {
			return true
		}
	}
	return false
}

// OtherParticipants returns every participant id except the given one.
func (c *Chat) OtherParticipants(participantID string) []string {
	var others []string
	for _, p := range c.Participants {
		if p != participantID {
			others = append(others, p)
		}
	}
	return others
}

// MinOtherReadAt returns the lowest read watermark among all participants
// other than the given one. A message counts as read by the recipient
// side only once every other party has read at least that far.
func (c *Chat) MinOtherReadAt(participantID string) int64 {
	min := int64(-1)
	for _, p := range c.OtherParticipants(participantID) {
		ts := c.LastReadAt[p]
		if min < 0 || ts < min {
			min = ts
		}
	}
	if min < 0 {
		return 0
	}
	return min
}
