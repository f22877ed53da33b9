package entity

// Message is immutable once stored. Timestamp is server-assigned epoch
// millis; ordering within a chat follows it, ties broken by key order.
type Message struct {
	ID         string `json:"id" firestore:"id"`
	ChatID     string `json:"chatId" firestore:"chatId"`
	SenderID   string `json:"senderId" firestore:"senderId"`
	SenderRole Role   `json:"senderRole,omitempty" firestore:"senderRole,omitempty"`
	Text       string `json:"text" firestore:"text"`
	Timestamp  int64  `json:"timestamp" firestore:"timestamp"`
}

const MaxMessageLength = 2000
