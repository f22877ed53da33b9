package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentora/pkg/errors"
)

func TestNewChatInitializesCounters(t *testing.T) {
	chat, err := NewChat([]string{"alice", "acme"}, ChatMeta{PropertyID: "p1"})
	require.NoError(t, err)

	assert.Equal(t, 0, chat.UnreadCounts["alice"])
	assert.Equal(t, 0, chat.UnreadCounts["acme"])
	assert.Equal(t, int64(0), chat.LastReadAt["alice"])
	assert.Equal(t, int64(0), chat.LastReadAt["acme"])
	assert.Equal(t, "p1", chat.PropertyID)
}

func TestNewChatRequiresTwoDistinctParticipants(t *testing.T) {
	_, err := NewChat([]string{"alice"}, ChatMeta{})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = NewChat([]string{"alice", "alice"}, ChatMeta{})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))

	_, err = NewChat([]string{"alice", ""}, ChatMeta{})
	assert.True(t, errors.Is(err, "VALIDATION_ERROR"))
}

func TestOtherParticipants(t *testing.T) {
	chat, err := NewChat([]string{"alice", "acme"}, ChatMeta{})
	require.NoError(t, err)

	assert.Equal(t, []string{"acme"}, chat.OtherParticipants("alice"))
	assert.Equal(t, []string{"alice"}, chat.OtherParticipants("acme"))
	assert.True(t, chat.HasParticipant("alice"))
	assert.False(t, chat.HasParticipant("eve"))
}

func TestMinOtherReadAt(t *testing.T) {
	chat, err := NewChat([]string{"alice", "acme"}, ChatMeta{})
	require.NoError(t, err)

	assert.Equal(t, int64(0), chat.MinOtherReadAt("alice"), "never read")

	chat.LastReadAt["acme"] = 500
	assert.Equal(t, int64(500), chat.MinOtherReadAt("alice"))
	assert.Equal(t, int64(0), chat.MinOtherReadAt("acme"), "alice has not read yet")
}
