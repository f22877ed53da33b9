package entity

import (
	"time"
)

type Notification struct {
	ID        string                 `json:"id" firestore:"id"`
	Recipient string                 `json:"recipient" firestore:"recipient"`
	Type      string                 `json:"type" firestore:"type"`
	Title     string                 `json:"title" firestore:"title"`
	Body      string                 `json:"body,omitempty" firestore:"body,omitempty"`
	Data      map[string]interface{} `json:"data,omitempty" firestore:"data,omitempty"`
	Read      bool                   `json:"read" firestore:"read"`
	CreatedAt time.Time              `json:"created_at" firestore:"createdAt"`
}
