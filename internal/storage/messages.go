package storage

import (
	"errors"
	"log"
	"time"

	"motomarket/backend/internal/models"

	"gorm.io/gorm"
)

// SaveMessage appends a message to its room and bumps the room's
// last-activity time in the same transaction. The sender must be one of
// the room's two participants.
func (s *Service) SaveMessage(msg *models.ChatMessage) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var room models.ChatRoom
		err := tx.Where("room_id = ?", msg.RoomID).First(&room).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRoomNotFound
		}
		if err != nil {
			return err
		}
		if !room.HasParticipant(msg.SenderID) {
			return ErrUnauthorized
		}

		now := time.Now()
		if msg.CreatedAt.IsZero() {
			msg.CreatedAt = now
		}
		if err := tx.Create(msg).Error; err != nil {
			log.Printf("ERROR: Failed to save message for room %s: %v", msg.RoomID, err)
			return err
		}

		return tx.Model(&models.ChatRoom{}).
			Where("room_id = ?", msg.RoomID).
			Update("last_activity_at", now).Error
	})
}

// GetChatHistory returns the room's messages ascending by creation time.
// Soft-deleted rows are included; callers decide rendering.
func (s *Service) GetChatHistory(roomID string) ([]models.ChatMessage, error) {
	var history []models.ChatMessage
	if err := s.DB.Where("room_id = ?", roomID).Order("created_at asc").Find(&history).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return history, nil
		}
		log.Printf("ERROR: Failed to get chat history for room %s: %v", roomID, err)
		return nil, err
	}
	return history, nil
}

func (s *Service) GetMessageByID(id string) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	err := s.DB.Where("id = ?", id).First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// LatestMessage returns the newest message in a room, or (nil, nil) for an
// empty room.
func (s *Service) LatestMessage(roomID string) (*models.ChatMessage, error) {
	var msg models.ChatMessage
	err := s.DB.Where("room_id = ?", roomID).Order("created_at desc").First(&msg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

// CountUnread counts incoming, not-yet-read, not-deleted messages for
// userID in a room.
func (s *Service) CountUnread(roomID, userID string) (int64, error) {
	var n int64
	err := s.DB.Model(&models.ChatMessage{}).
		Where("room_id = ? AND sender_id <> ? AND read_at IS NULL AND deleted_at IS NULL", roomID, userID).
		Count(&n).Error
	return n, err
}

// MarkMessageRead sets the read time. Only the receiving participant may
// do this; marking an already-read message is a no-op, not an error.
func (s *Service) MarkMessageRead(messageID, readerID string) (*models.ChatMessage, error) {
	msg, err := s.GetMessageByID(messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID == readerID {
		return nil, ErrUnauthorized
	}

	room, err := s.GetRoomByID(msg.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(readerID) {
		return nil, ErrUnauthorized
	}

	if msg.ReadAt != nil {
		return msg, nil // already read, keep the original timestamp
	}

	now := time.Now()
	msg.ReadAt = &now
	if err := s.DB.Model(msg).Update("read_at", now).Error; err != nil {
		log.Printf("ERROR: Failed to mark message %s read: %v", messageID, err)
		return nil, err
	}
	return msg, nil
}

// SoftDeleteMessage sets the delete time without removing the row. Only
// the original sender may delete.
func (s *Service) SoftDeleteMessage(messageID, deleterID string) (*models.ChatMessage, error) {
	msg, err := s.GetMessageByID(messageID)
	if err != nil {
		return nil, err
	}
	if msg.SenderID != deleterID {
		return nil, ErrUnauthorized
	}

	if msg.DeletedAt != nil {
		return msg, nil // already deleted
	}

	now := time.Now()
	msg.DeletedAt = &now
	if err := s.DB.Model(msg).Update("deleted_at", now).Error; err != nil {
		log.Printf("ERROR: Failed to soft-delete message %s: %v", messageID, err)
		return nil, err
	}
	return msg, nil
}
