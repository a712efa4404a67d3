package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChatMessage is one message inside a ChatRoom. Rows are append-only:
// after creation only ReadAt (set by the receiver) and DeletedAt (set by
// the sender) may change, and the row is never removed.
type ChatMessage struct {
	ID string `gorm:"primaryKey" json:"id"` // UUID
	// RoomID is the room the message belongs to.
	RoomID string `gorm:"type:text;not null;index:idx_room_msg" json:"room_id"`
	// SenderID must be one of the room's two participants.
	SenderID string `gorm:"type:text;not null;index:idx_room_msg" json:"sender_id"`
	// Body is the message text. Use DisplayBody when rendering.
	Body string `gorm:"type:text;not null" json:"body"`

	CreatedAt time.Time `json:"created_at"`
	// ReadAt is set once by the receiving participant.
	ReadAt *time.Time `json:"read_at,omitempty"`
	// DeletedAt marks a soft delete. Deliberately a plain *time.Time, not
	// gorm.DeletedAt: soft-deleted rows must still come back from queries.
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// BeforeCreate assigns a fresh UUID when no ID is set.
func (m *ChatMessage) BeforeCreate(tx *gorm.DB) (err error) {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return
}

// Deleted reports whether the message was soft-deleted by its sender.
func (m *ChatMessage) Deleted() bool {
	return m.DeletedAt != nil
}

// DisplayBody returns the body fit for rendering: empty once soft-deleted.
func (m *ChatMessage) DisplayBody() string {
	if m.Deleted() {
		return ""
	}
	return m.Body
}

// Sanitized returns a copy safe to hand to readers: a soft-deleted
// message keeps its row but never its original body.
func (m ChatMessage) Sanitized() ChatMessage {
	m.Body = m.DisplayBody()
	return m
}
