package storage

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"motomarket/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Sentinel errors shared by every storage implementation.
var (
	// ErrUnauthorized means the actor is not a room participant or violates
	// the read/delete actor constraints. Never retried.
	ErrUnauthorized = errors.New("actor is not allowed to perform this action")
	// ErrDuplicatePair means a room for the same participant pair already
	// exists. Callers treat it as non-fatal and re-query.
	ErrDuplicatePair   = errors.New("room already exists for participant pair")
	ErrRoomNotFound    = errors.New("chat room not found")
	ErrMessageNotFound = errors.New("message not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
)

type Storage interface {
	// Users
	SaveUser(user *models.User) error
	GetUserByID(id string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	UpdateUserReputation(userID string, delta int) error

	// Rooms
	CreateRoom(room *models.ChatRoom) error
	FindRoomByPair(userX, userY string) (*models.ChatRoom, error)
	GetRoomByID(roomID string) (*models.ChatRoom, error)
	ListRoomsForUser(userID string) ([]models.ChatRoom, error)

	// Messages
	SaveMessage(msg *models.ChatMessage) error
	GetChatHistory(roomID string) ([]models.ChatMessage, error)
	GetMessageByID(id string) (*models.ChatMessage, error)
	LatestMessage(roomID string) (*models.ChatMessage, error)
	CountUnread(roomID, userID string) (int64, error)
	MarkMessageRead(messageID, readerID string) (*models.ChatMessage, error)
	SoftDeleteMessage(messageID, deleterID string) (*models.ChatMessage, error)

	// Typing presence
	SetTyping(roomID, userID string, isTyping bool) error
	ActiveTypists(roomID string, staleAfter time.Duration) ([]string, error)
	SweepStaleTyping(staleAfter time.Duration) (int64, error)

	// Vehicles
	SaveVehicle(v *models.Vehicle) error
	GetVehicleByID(id string) (*models.Vehicle, error)
	ListVehicles(filter models.VehicleFilter) ([]models.Vehicle, error)
	RemoveVehicle(id, sellerID string) error

	// Reports
	SaveReport(r *models.Report) error
	CountRecentReports(targetID string, since time.Time) (int64, error)

	// Realtime
	PublishEvent(ev models.Event) error
}

// Service implements Storage on PostgreSQL (GORM) plus Redis for the
// realtime feed.
type Service struct {
	DB    *gorm.DB
	Redis *redis.Client
	Ctx   context.Context
}

// NewStorageService Constructor
func NewStorageService(db *gorm.DB, rdb *redis.Client) *Service {
	return &Service{
		DB:    db,
		Redis: rdb,
		Ctx:   context.Background(),
	}
}

// SaveUser persists a user (insert or update).
func (s *Service) SaveUser(user *models.User) error {
	return s.DB.Save(user).Error
}

func (s *Service) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get user %s: %v", id, err)
		return nil, err
	}
	return &user, nil
}

func (s *Service) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	err := s.DB.Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateUserReputation shifts the reputation score atomically in the store.
func (s *Service) UpdateUserReputation(userID string, delta int) error {
	return s.DB.Model(&models.User{}).
		Where("id = ?", userID).
		Update("reputation_score", gorm.Expr("reputation_score + ?", delta)).Error
}

// CreateRoom inserts a new room. Participants must already be in canonical
// order; a unique-constraint violation on the pair comes back as
// ErrDuplicatePair so concurrent creators can recover by re-querying.
func (s *Service) CreateRoom(room *models.ChatRoom) error {
	err := s.DB.Create(room).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicatePair
	}
	return err
}

// FindRoomByPair looks up the unique room for an unordered participant
// pair. Returns (nil, nil) when no room exists yet.
func (s *Service) FindRoomByPair(userX, userY string) (*models.ChatRoom, error) {
	a, b := models.CanonicalPair(userX, userY)

	var room models.ChatRoom
	err := s.DB.Where("user_a_id = ? AND user_b_id = ?", a, b).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		log.Printf("ERROR: Failed to find room for pair (%s, %s): %v", a, b, err)
		return nil, err
	}
	return &room, nil
}

func (s *Service) GetRoomByID(roomID string) (*models.ChatRoom, error) {
	var room models.ChatRoom
	err := s.DB.Where("room_id = ?", roomID).First(&room).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRoomNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get room %s: %v", roomID, err)
		return nil, err
	}
	return &room, nil
}

// ListRoomsForUser returns every room the user participates in, most
// recently active first. Two queries unioned, one per join direction.
func (s *Service) ListRoomsForUser(userID string) ([]models.ChatRoom, error) {
	var asA, asB []models.ChatRoom

	if err := s.DB.Where("user_a_id = ?", userID).Find(&asA).Error; err != nil {
		return nil, err
	}
	if err := s.DB.Where("user_b_id = ?", userID).Find(&asB).Error; err != nil {
		return nil, err
	}

	rooms := append(asA, asB...)
	sort.Slice(rooms, func(i, j int) bool {
		return rooms[i].LastActivityAt.After(rooms[j].LastActivityAt)
	})
	return rooms, nil
}
