package models_test

import (
	"testing"

	"motomarket/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalPair(t *testing.T) {
	a, b := models.CanonicalPair("bob", "alice")
	assert.Equal(t, "alice", a)
	assert.Equal(t, "bob", b)

	// Already ordered input stays put.
	a, b = models.CanonicalPair("alice", "bob")
	assert.Equal(t, "alice", a)
	assert.Equal(t, "bob", b)
}

func TestChatRoomParticipants(t *testing.T) {
	room := &models.ChatRoom{RoomID: "r1", UserAID: "alice", UserBID: "bob"}

	assert.True(t, room.HasParticipant("alice"))
	assert.True(t, room.HasParticipant("bob"))
	assert.False(t, room.HasParticipant("mallory"))

	assert.Equal(t, "bob", room.OtherParticipant("alice"))
	assert.Equal(t, "alice", room.OtherParticipant("bob"))
}

func TestChatMessageDisplayBody(t *testing.T) {
	msg := &models.ChatMessage{Body: "hello"}
	assert.Equal(t, "hello", msg.DisplayBody())

	now := msg.CreatedAt
	msg.DeletedAt = &now
	assert.True(t, msg.Deleted())
	assert.Empty(t, msg.DisplayBody(), "soft-deleted body must never be rendered")
}
