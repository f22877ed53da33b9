package realtime

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	ws "rentora/internal/infrastructure/websocket"
	"rentora/pkg/logger"
)

const channelPrefix = "rt:user:"

type envelope struct {
	Type    string      `json:"type"`
	Origin  string      `json:"origin,omitempty"`
	Payload interface{} `json:"payload"`
}

// RedisDispatcher delivers events to local WebSocket connections and
// relays them through Redis pub/sub so users connected to other server
// processes receive them too. With a nil Redis client it degrades to
// local-only delivery (single-process desktop deployment).
type RedisDispatcher struct {
	manager *ws.Manager
	rdb     *redis.Client
	origin  string
}

func NewRedisDispatcher(manager *ws.Manager, rdb *redis.Client) *RedisDispatcher {
	return &RedisDispatcher{
		manager: manager,
		rdb:     rdb,
		origin:  uuid.New().String(),
	}
}

func (d *RedisDispatcher) Dispatch(ctx context.Context, events []Event) {
	for _, e := range events {
		data, err := json.Marshal(envelope{Type: e.Name, Origin: d.origin, Payload: e.Payload})
		if err != nil {
			logger.Error("failed to marshal realtime event %s for %s: %v", e.Name, e.UserID, err)
			continue
		}

		d.manager.SendToUser(e.UserID, data)

		if d.rdb == nil {
			continue
		}
		if err := d.rdb.Publish(ctx, channelPrefix+e.UserID, data).Err(); err != nil {
			logger.Warn("failed to relay realtime event %s for %s: %v", e.Name, e.UserID, err)
		}
	}
}

// Run subscribes to the per-user channels and feeds events originating
// from other processes into the local connection registry. Blocks until
// the context is cancelled.
func (d *RedisDispatcher) Run(ctx context.Context) {
	if d.rdb == nil {
		return
	}

	sub := d.rdb.PSubscribe(ctx, channelPrefix+"*")
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Warn("dropping malformed relayed event on %s: %v", msg.Channel, err)
				continue
			}
			if env.Origin == d.origin {
				continue // already delivered locally at publish time
			}
			userID := strings.TrimPrefix(msg.Channel, channelPrefix)
			d.manager.SendToUser(userID, []byte(msg.Payload))

		case <-ctx.Done():
			return
		}
	}
}
