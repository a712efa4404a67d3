package chat_test

import (
	"sync"
	"time"

	"motomarket/backend/internal/chat"
	"motomarket/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

// MockStorage is a mock implementation of the storage.Storage interface.
// It uses testify/mock to allow flexible expectation setting in tests.
type MockStorage struct {
	mock.Mock
}

// User operations
func (m *MockStorage) SaveUser(user *models.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockStorage) GetUserByID(id string) (*models.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) GetUserByEmail(email string) (*models.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockStorage) UpdateUserReputation(userID string, delta int) error {
	args := m.Called(userID, delta)
	return args.Error(0)
}

// Room operations
func (m *MockStorage) CreateRoom(room *models.ChatRoom) error {
	args := m.Called(room)
	return args.Error(0)
}

func (m *MockStorage) FindRoomByPair(userX, userY string) (*models.ChatRoom, error) {
	args := m.Called(userX, userY)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) GetRoomByID(roomID string) (*models.ChatRoom, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatRoom), args.Error(1)
}

func (m *MockStorage) ListRoomsForUser(userID string) ([]models.ChatRoom, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatRoom), args.Error(1)
}

// Message operations
func (m *MockStorage) SaveMessage(msg *models.ChatMessage) error {
	args := m.Called(msg)
	return args.Error(0)
}

func (m *MockStorage) GetChatHistory(roomID string) ([]models.ChatMessage, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ChatMessage), args.Error(1)
}

func (m *MockStorage) GetMessageByID(id string) (*models.ChatMessage, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

func (m *MockStorage) LatestMessage(roomID string) (*models.ChatMessage, error) {
	args := m.Called(roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

func (m *MockStorage) CountUnread(roomID, userID string) (int64, error) {
	args := m.Called(roomID, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStorage) MarkMessageRead(messageID, readerID string) (*models.ChatMessage, error) {
	args := m.Called(messageID, readerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

func (m *MockStorage) SoftDeleteMessage(messageID, deleterID string) (*models.ChatMessage, error) {
	args := m.Called(messageID, deleterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ChatMessage), args.Error(1)
}

// Typing operations
func (m *MockStorage) SetTyping(roomID, userID string, isTyping bool) error {
	args := m.Called(roomID, userID, isTyping)
	return args.Error(0)
}

func (m *MockStorage) ActiveTypists(roomID string, staleAfter time.Duration) ([]string, error) {
	args := m.Called(roomID, staleAfter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockStorage) SweepStaleTyping(staleAfter time.Duration) (int64, error) {
	args := m.Called(staleAfter)
	return args.Get(0).(int64), args.Error(1)
}

// Vehicle operations
func (m *MockStorage) SaveVehicle(v *models.Vehicle) error {
	args := m.Called(v)
	return args.Error(0)
}

func (m *MockStorage) GetVehicleByID(id string) (*models.Vehicle, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Vehicle), args.Error(1)
}

func (m *MockStorage) ListVehicles(filter models.VehicleFilter) ([]models.Vehicle, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Vehicle), args.Error(1)
}

func (m *MockStorage) RemoveVehicle(id, sellerID string) error {
	args := m.Called(id, sellerID)
	return args.Error(0)
}

// Report operations
func (m *MockStorage) SaveReport(r *models.Report) error {
	args := m.Called(r)
	return args.Error(0)
}

func (m *MockStorage) CountRecentReports(targetID string, since time.Time) (int64, error) {
	args := m.Called(targetID, since)
	return args.Get(0).(int64), args.Error(1)
}

// Realtime
func (m *MockStorage) PublishEvent(ev models.Event) error {
	args := m.Called(ev)
	return args.Error(0)
}

// fakeFeed is an in-process Feed that delivers emitted events
// synchronously to every registered handler.
type fakeFeed struct {
	mu           sync.Mutex
	roomHandlers map[string][]chat.EventHandler
	allHandlers  []chat.EventHandler
	subErr       error
	unsubscribed int
}

func newFakeFeed() *fakeFeed {
	return &fakeFeed{roomHandlers: make(map[string][]chat.EventHandler)}
}

func (f *fakeFeed) SubscribeRoom(roomID string, fn chat.EventHandler) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return nil, f.subErr
	}
	f.roomHandlers[roomID] = append(f.roomHandlers[roomID], fn)
	return func() {
		f.mu.Lock()
		f.unsubscribed++
		f.mu.Unlock()
	}, nil
}

func (f *fakeFeed) SubscribeAll(fn chat.EventHandler) (func(), error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subErr != nil {
		return nil, f.subErr
	}
	f.allHandlers = append(f.allHandlers, fn)
	return func() {
		f.mu.Lock()
		f.unsubscribed++
		f.mu.Unlock()
	}, nil
}

func (f *fakeFeed) emit(ev models.Event) {
	f.mu.Lock()
	handlers := append([]chat.EventHandler{}, f.roomHandlers[ev.RoomID]...)
	handlers = append(handlers, f.allHandlers...)
	f.mu.Unlock()

	for _, fn := range handlers {
		fn(ev)
	}
}

func (f *fakeFeed) unsubscribeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.unsubscribed
}
