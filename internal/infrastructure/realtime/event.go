package realtime

import (
	"context"
)

// Event is one outbound push addressed to a single user; it reaches
// every connected device of that user.
type Event struct {
	UserID  string
	Name    string
	Payload interface{}
}

// Dispatcher delivers events after the durable write that produced them
// has committed. Delivery is at-least-once and best-effort per
// recipient; failures must not propagate to the caller.
type Dispatcher interface {
	Dispatch(ctx context.Context, events []Event)
}
