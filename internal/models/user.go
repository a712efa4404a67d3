package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a marketplace account. It is referenced by vehicle
// listings as the seller and by chat rooms as a participant.
type User struct {
	ID           string `gorm:"primaryKey" json:"id"` // UUID
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	DisplayName  string `json:"display_name"`
	// AvatarURL is an opaque reference into external object storage.
	AvatarURL string `json:"avatar_url"`
	Phone     string `json:"phone,omitempty"`
	Location  string `json:"location,omitempty"`

	// ReputationScore is decremented by confirmed reports (see moderation).
	ReputationScore int        `json:"reputation_score"`
	SuspendedUntil  *time.Time `json:"suspended_until,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate is a GORM hook that assigns a fresh UUID when no ID is set.
func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return
}

// Suspended reports whether the account is currently suspended.
func (u *User) Suspended() bool {
	return u.SuspendedUntil != nil && u.SuspendedUntil.After(time.Now())
}
