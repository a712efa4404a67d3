package models

import "time"

// TypingIndicator is the transient (room, user) -> last keystroke mapping.
// The composite primary key guarantees at most one row per pair; a new
// signal overwrites, never duplicates. Rows older than the passive-expiry
// window are treated as stale by readers and removed by the sweep.
type TypingIndicator struct {
	RoomID    string    `gorm:"primaryKey" json:"room_id"`
	UserID    string    `gorm:"primaryKey" json:"user_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
