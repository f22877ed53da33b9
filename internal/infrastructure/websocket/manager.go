package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"rentora/pkg/logger"
)

// Client is one live WebSocket connection. A user with several open
// devices holds several clients under the same UserID.
type Client struct {
	UserID string
	ConnID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// Manager is the connection registry: it owns the user -> connections
// map and is the only place that mutates it. Created at process start
// and injected where fan-out is needed.
type Manager struct {
	clients    map[string]map[string]*Client
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the manager's registration loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.add(client)
				logger.Debug("client registered: user=%s conn=%s", client.UserID, client.ConnID)

			case client := <-m.Unregister:
				m.remove(client)
				logger.Debug("client unregistered: user=%s conn=%s", client.UserID, client.ConnID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) add(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	conns, ok := m.clients[client.UserID]
	if !ok {
		conns = make(map[string]*Client)
		m.clients[client.UserID] = conns
	}
	conns[client.ConnID] = client
}

func (m *Manager) remove(client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	conns, ok := m.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := conns[client.ConnID]; ok {
		delete(conns, client.ConnID)
		close(client.Send)
	}
	if len(conns) == 0 {
		delete(m.clients, client.UserID)
	}
}

// SendToUser delivers a message to every open connection of the user.
// Slow consumers are skipped rather than blocking the caller; a missed
// push self-heals when the client next reloads its chat list.
//
// The sends run under the read lock: remove closes Send channels under
// the write lock, so a connection cannot be torn down mid-send. The
// sends are non-blocking, so holding the lock here is cheap.
func (m *Manager) SendToUser(userID string, message []byte) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	for _, client := range m.clients[userID] {
		select {
		case client.Send <- message:
		default:
			logger.Warn("dropping realtime message for slow connection: user=%s conn=%s", userID, client.ConnID)
		}
	}
}

// Connected reports whether the user has at least one live connection.
func (m *Manager) Connected(userID string) bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.clients[userID]) > 0
}

// ReadPump drains the WebSocket connection until it closes; incoming
// frames are ignored, the server pushes only.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("websocket read error: user=%s: %v", c.UserID, err)
			}
			break
		}
	}
}

// WritePump sends queued messages to the WebSocket connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			logger.Warn("websocket write error: user=%s: %v", c.UserID, err)
			return
		}
	}
}
