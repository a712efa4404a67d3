package chat

import (
	"sync"
	"testing"
	"time"

	"motomarket/backend/internal/models"
	"motomarket/backend/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore backs the websocket command tests with canned data. The
// embedded interface covers the methods a test never reaches.
type stubStore struct {
	storage.Storage
	room    *models.ChatRoom
	history []models.ChatMessage
	rooms   []models.ChatRoom
	users   map[string]*models.User
}

func (s *stubStore) FindRoomByPair(userX, userY string) (*models.ChatRoom, error) {
	return s.room, nil
}

func (s *stubStore) GetChatHistory(roomID string) ([]models.ChatMessage, error) {
	return s.history, nil
}

func (s *stubStore) ListRoomsForUser(userID string) ([]models.ChatRoom, error) {
	return s.rooms, nil
}

func (s *stubStore) GetUserByID(id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, storage.ErrUserNotFound
}

func (s *stubStore) LatestMessage(roomID string) (*models.ChatMessage, error) {
	if len(s.history) == 0 {
		return nil, nil
	}
	last := s.history[len(s.history)-1]
	return &last, nil
}

func (s *stubStore) CountUnread(roomID, userID string) (int64, error) {
	return 0, nil
}

func (s *stubStore) SetTyping(roomID, userID string, isTyping bool) error {
	return nil
}

func (s *stubStore) PublishEvent(ev models.Event) error {
	return nil
}

// stubFeed delivers emitted events synchronously.
type stubFeed struct {
	mu           sync.Mutex
	roomHandlers []EventHandler
	allHandlers  []EventHandler
}

func (f *stubFeed) SubscribeRoom(roomID string, fn EventHandler) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roomHandlers = append(f.roomHandlers, fn)
	return func() {}, nil
}

func (f *stubFeed) SubscribeAll(fn EventHandler) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.allHandlers = append(f.allHandlers, fn)
	return func() {}, nil
}

func (f *stubFeed) emit(ev models.Event) {
	f.mu.Lock()
	handlers := append(append([]EventHandler{}, f.roomHandlers...), f.allHandlers...)
	f.mu.Unlock()
	for _, fn := range handlers {
		fn(ev)
	}
}

func newStubClient(store *stubStore) (*WebSocketClient, *stubFeed) {
	feed := &stubFeed{}
	return &WebSocketClient{
		UserID: "alice",
		Hub:    NewManagerService(store, feed),
		Send:   make(chan Frame, 8),
	}, feed
}

func nextFrame(t *testing.T, c *WebSocketClient) Frame {
	t.Helper()
	select {
	case f := <-c.Send:
		return f
	case <-time.After(time.Second):
		t.Fatal("no frame pushed")
		return Frame{}
	}
}

func TestOpenedFrameHidesDeletedBody(t *testing.T) {
	deletedAt := time.Now()
	store := &stubStore{
		room: &models.ChatRoom{RoomID: "room1", UserAID: "alice", UserBID: "bob"},
		history: []models.ChatMessage{
			{ID: "m1", RoomID: "room1", SenderID: "bob", Body: "still here"},
			{ID: "m2", RoomID: "room1", SenderID: "bob", Body: "secret-body", DeletedAt: &deletedAt},
		},
	}
	client, _ := newStubClient(store)

	client.handle(Command{Action: "open", OtherID: "bob"})

	frame := nextFrame(t, client)
	require.Equal(t, "opened", frame.Type)
	require.Len(t, frame.Messages, 2)
	assert.Equal(t, "still here", frame.Messages[0].Body)
	assert.Empty(t, frame.Messages[1].Body, "soft-deleted body must not leave the server")
	assert.NotNil(t, frame.Messages[1].DeletedAt, "the tombstone itself stays visible")
}

func TestEventFrameHidesDeletedBody(t *testing.T) {
	store := &stubStore{
		room: &models.ChatRoom{RoomID: "room1", UserAID: "alice", UserBID: "bob"},
		history: []models.ChatMessage{
			{ID: "m1", RoomID: "room1", SenderID: "bob", Body: "secret-body"},
		},
	}
	client, feed := newStubClient(store)

	client.handle(Command{Action: "open", OtherID: "bob"})
	_ = nextFrame(t, client) // opened

	deletedAt := time.Now()
	feed.emit(models.Event{
		Kind:    models.EventMessageDeleted,
		RoomID:  "room1",
		Message: &models.ChatMessage{ID: "m1", RoomID: "room1", SenderID: "bob", Body: "secret-body", DeletedAt: &deletedAt},
	})

	frame := nextFrame(t, client)
	require.Equal(t, "event", frame.Type)
	require.NotNil(t, frame.Event)
	require.NotNil(t, frame.Event.Message)
	assert.Empty(t, frame.Event.Message.Body)
	assert.NotNil(t, frame.Event.Message.DeletedAt)
}

func TestInboxCommandStreamsSummaries(t *testing.T) {
	store := &stubStore{
		rooms: []models.ChatRoom{
			{RoomID: "room1", UserAID: "alice", UserBID: "bob", LastActivityAt: time.Now()},
		},
		history: []models.ChatMessage{
			{ID: "m1", RoomID: "room1", SenderID: "bob", Body: "deal"},
		},
		users: map[string]*models.User{
			"bob": {ID: "bob", DisplayName: "Bob"},
		},
	}
	client, feed := newStubClient(store)

	client.handle(Command{Action: "inbox"})

	frame := nextFrame(t, client)
	require.Equal(t, "inbox", frame.Type)
	require.Len(t, frame.Rooms, 1)
	assert.Equal(t, "bob", frame.Rooms[0].OtherID)
	assert.Equal(t, "deal", frame.Rooms[0].LastMessage.Body)

	// A message event anywhere invalidates; the client gets the signal and
	// re-requests.
	feed.emit(models.Event{Kind: models.EventMessageNew, RoomID: "room1",
		Message: &models.ChatMessage{ID: "m2"}})
	frame = nextFrame(t, client)
	assert.Equal(t, "inbox_update", frame.Type)

	client.handle(Command{Action: "inbox"})
	frame = nextFrame(t, client)
	assert.Equal(t, "inbox", frame.Type)
}

func TestPushAfterCloseIsDropped(t *testing.T) {
	client, _ := newStubClient(&stubStore{})

	client.Close()
	client.push(Frame{Type: "event"}) // must not panic or block

	_, ok := <-client.Send
	assert.False(t, ok, "send channel closed exactly once")

	client.Close() // no-op
}
