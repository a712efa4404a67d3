package chat_test

import (
	"testing"
	"time"

	"motomarket/backend/internal/chat"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestManager_RegisterUnregister(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("SweepStaleTyping", mock.AnythingOfType("time.Duration")).Return(int64(0), nil)

	hub := chat.NewManagerService(storageMock, newFakeFeed())
	clientA := newMockClient("user_A")

	go hub.Run()

	hub.RegisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.Contains(t, hub.Clients, "user_A")

	hub.UnregisterCh <- clientA
	time.Sleep(100 * time.Millisecond)
	assert.NotContains(t, hub.Clients, "user_A")
	assert.True(t, clientA.closed)
}

func TestManager_ReplacementClosesOldConnection(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("SweepStaleTyping", mock.AnythingOfType("time.Duration")).Return(int64(0), nil)

	hub := chat.NewManagerService(storageMock, newFakeFeed())
	first := newMockClient("user_A")
	second := newMockClient("user_A")

	go hub.Run()

	hub.RegisterCh <- first
	hub.RegisterCh <- second
	time.Sleep(100 * time.Millisecond)

	assert.True(t, first.closed, "older connection for the same user must be closed")
	assert.False(t, second.closed)

	// Unregister of the stale first client must not evict the second.
	hub.UnregisterCh <- first
	time.Sleep(100 * time.Millisecond)
	assert.Contains(t, hub.Clients, "user_A")
}

func TestManager_RunsTypingSweep(t *testing.T) {
	storageMock := new(MockStorage)
	storageMock.On("SweepStaleTyping", 75*time.Millisecond).Return(int64(2), nil)

	hub := chat.NewManagerService(storageMock, newFakeFeed())
	hub.SweepInterval = 50 * time.Millisecond
	hub.TypingStaleAfter = 75 * time.Millisecond

	go hub.Run()
	time.Sleep(180 * time.Millisecond)

	storageMock.AssertCalled(t, "SweepStaleTyping", 75*time.Millisecond)
}
