package storage_test

import (
	"testing"
	"time"

	"motomarket/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTyping_UpsertSingleRow(t *testing.T) {
	s := newTestService(t)
	room := newRoom(t, s, "alice", "bob")

	require.NoError(t, s.SetTyping(room.RoomID, "alice", true))
	require.NoError(t, s.SetTyping(room.RoomID, "alice", true))
	require.NoError(t, s.SetTyping(room.RoomID, "alice", true))

	var n int64
	require.NoError(t, s.DB.Model(&models.TypingIndicator{}).
		Where("room_id = ?", room.RoomID).Count(&n).Error)
	assert.EqualValues(t, 1, n, "repeated signals overwrite, never duplicate")

	typists, err := s.ActiveTypists(room.RoomID, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice"}, typists)
}

func TestSetTyping_FalseDeletes(t *testing.T) {
	s := newTestService(t)
	room := newRoom(t, s, "alice", "bob")

	require.NoError(t, s.SetTyping(room.RoomID, "alice", true))
	require.NoError(t, s.SetTyping(room.RoomID, "alice", false))

	typists, err := s.ActiveTypists(room.RoomID, 10*time.Second)
	require.NoError(t, err)
	assert.Empty(t, typists)

	// Clearing an absent indicator is fine.
	assert.NoError(t, s.SetTyping(room.RoomID, "alice", false))
}

func TestActiveTypists_PassiveExpiry(t *testing.T) {
	s := newTestService(t)
	room := newRoom(t, s, "alice", "bob")

	// Simulate an indicator whose delete notification was lost.
	stale := models.TypingIndicator{
		RoomID:    room.RoomID,
		UserID:    "alice",
		UpdatedAt: time.Now().Add(-time.Minute),
	}
	require.NoError(t, s.DB.Create(&stale).Error)
	require.NoError(t, s.SetTyping(room.RoomID, "bob", true))

	typists, err := s.ActiveTypists(room.RoomID, 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, []string{"bob"}, typists, "stale indicator must be excluded without an explicit false")
}

func TestSweepStaleTyping(t *testing.T) {
	s := newTestService(t)
	room := newRoom(t, s, "alice", "bob")

	require.NoError(t, s.DB.Create(&models.TypingIndicator{
		RoomID: room.RoomID, UserID: "alice", UpdatedAt: time.Now().Add(-time.Minute),
	}).Error)
	require.NoError(t, s.SetTyping(room.RoomID, "bob", true))

	removed, err := s.SweepStaleTyping(10 * time.Second)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	var n int64
	require.NoError(t, s.DB.Model(&models.TypingIndicator{}).Count(&n).Error)
	assert.EqualValues(t, 1, n, "fresh indicator survives the sweep")
}
