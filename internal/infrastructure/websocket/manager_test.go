package websocket

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(userID, connID string, buffer int) *Client {
	return &Client{
		UserID: userID,
		ConnID: connID,
		Send:   make(chan []byte, buffer),
	}
}

func TestSendToUserReachesEveryDevice(t *testing.T) {
	m := NewManager()
	phone := newTestClient("alice", "conn-1", 4)
	laptop := newTestClient("alice", "conn-2", 4)
	m.add(phone)
	m.add(laptop)

	m.SendToUser("alice", []byte("hello"))

	for _, c := range []*Client{phone, laptop} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "hello", string(msg))
		default:
			t.Fatalf("connection %s received nothing", c.ConnID)
		}
	}
}

func TestSendToUserSkipsSlowConsumer(t *testing.T) {
	m := NewManager()
	slow := newTestClient("alice", "conn-1", 1)
	fast := newTestClient("alice", "conn-2", 4)
	m.add(slow)
	m.add(fast)

	slow.Send <- []byte("stuck") // fills the buffer

	m.SendToUser("alice", []byte("update"))

	assert.Len(t, fast.Send, 1, "healthy connection still gets the message")
	assert.Len(t, slow.Send, 1, "slow connection is skipped, not blocked on")
}

func TestSendToUnknownUserIsNoop(t *testing.T) {
	m := NewManager()
	m.SendToUser("nobody", []byte("into the void"))
}

func TestRemoveClosesSendAndClearsUser(t *testing.T) {
	m := NewManager()
	phone := newTestClient("alice", "conn-1", 1)
	laptop := newTestClient("alice", "conn-2", 1)
	m.add(phone)
	m.add(laptop)
	require.True(t, m.Connected("alice"))

	m.remove(phone)
	assert.True(t, m.Connected("alice"), "one device left")
	_, open := <-phone.Send
	assert.False(t, open, "removed client's channel is closed")

	m.remove(laptop)
	assert.False(t, m.Connected("alice"))

	// Removing twice must not panic or double-close.
	m.remove(laptop)
}

func TestSendToUserDuringDisconnect(t *testing.T) {
	m := NewManager()

	// A tab closing while a message fans out must never hit a closed
	// Send channel.
	done := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					m.SendToUser("alice", []byte("update"))
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		client := newTestClient("alice", fmt.Sprintf("conn-%d", i), 1)
		m.add(client)
		m.remove(client)
	}

	close(done)
	wg.Wait()
	assert.False(t, m.Connected("alice"))
}

func TestRegistrationLoop(t *testing.T) {
	m := NewManager()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Start(ctx)

	client := newTestClient("alice", "conn-1", 1)
	m.Register <- client

	require.Eventually(t, func() bool {
		return m.Connected("alice")
	}, time.Second, 5*time.Millisecond)

	m.Unregister <- client
	require.Eventually(t, func() bool {
		return !m.Connected("alice")
	}, time.Second, 5*time.Millisecond)
}
