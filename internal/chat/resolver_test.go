package chat_test

import (
	"testing"

	"motomarket/backend/internal/chat"
	"motomarket/backend/internal/models"
	"motomarket/backend/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestResolveRoom_SelfChatRejected(t *testing.T) {
	storageMock := new(MockStorage)

	_, err := chat.ResolveRoom(storageMock, "alice", "alice")
	assert.ErrorIs(t, err, chat.ErrSelfChat)
	storageMock.AssertNotCalled(t, "FindRoomByPair")
}

func TestResolveRoom_ExistingRoom(t *testing.T) {
	storageMock := new(MockStorage)
	existing := &models.ChatRoom{RoomID: "room1", UserAID: "alice", UserBID: "bob"}
	storageMock.On("FindRoomByPair", "bob", "alice").Return(existing, nil)

	room, err := chat.ResolveRoom(storageMock, "bob", "alice")
	require.NoError(t, err)
	assert.Equal(t, "room1", room.RoomID)
	storageMock.AssertNotCalled(t, "CreateRoom")
}

func TestResolveRoom_CreatesCanonicalPair(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("FindRoomByPair", "bob", "alice").Return(nil, nil)
	storageMock.On("CreateRoom", mock.AnythingOfType("*models.ChatRoom")).Return(nil)

	room, err := chat.ResolveRoom(storageMock, "bob", "alice")
	require.NoError(t, err)

	// Participants stored sorted regardless of argument order.
	assert.Equal(t, "alice", room.UserAID)
	assert.Equal(t, "bob", room.UserBID)
	_, parseErr := uuid.Parse(room.RoomID)
	assert.NoError(t, parseErr)
	assert.False(t, room.CreatedAt.IsZero())
}

func TestResolveRoom_DuplicateRaceRecovered(t *testing.T) {
	storageMock := new(MockStorage)
	winner := &models.ChatRoom{RoomID: "winner", UserAID: "alice", UserBID: "bob"}

	// First lookup misses, the insert loses the race, the re-query finds
	// the concurrent creator's room.
	storageMock.On("FindRoomByPair", "alice", "bob").Return(nil, nil).Once()
	storageMock.On("CreateRoom", mock.AnythingOfType("*models.ChatRoom")).Return(storage.ErrDuplicatePair)
	storageMock.On("FindRoomByPair", "alice", "bob").Return(winner, nil).Once()

	room, err := chat.ResolveRoom(storageMock, "alice", "bob")
	require.NoError(t, err)
	assert.Equal(t, "winner", room.RoomID)
}

func TestResolveRoom_UnresolvedRaceFails(t *testing.T) {
	storageMock := new(MockStorage)

	// Duplicate constraint fired but the winning row never shows up:
	// backend inconsistency, surfaced as RoomInitializationFailed.
	storageMock.On("FindRoomByPair", "alice", "bob").Return(nil, nil)
	storageMock.On("CreateRoom", mock.AnythingOfType("*models.ChatRoom")).Return(storage.ErrDuplicatePair)

	_, err := chat.ResolveRoom(storageMock, "alice", "bob")
	assert.ErrorIs(t, err, chat.ErrRoomInitializationFailed)
}

func TestResolveRoom_CreateErrorPassedThrough(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("FindRoomByPair", "alice", "bob").Return(nil, nil)
	storageMock.On("CreateRoom", mock.AnythingOfType("*models.ChatRoom")).Return(assert.AnError)

	_, err := chat.ResolveRoom(storageMock, "alice", "bob")
	assert.ErrorIs(t, err, assert.AnError)
	assert.NotErrorIs(t, err, chat.ErrRoomInitializationFailed)
}
