package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report reason categories, weighted in config.ReportWeights.
const (
	ReportReasonSpam       = "spam"
	ReportReasonScam       = "scam"
	ReportReasonHarassment = "harassment"
)

// Report is filed by one chat participant against the other.
type Report struct {
	ID         string `gorm:"primaryKey" json:"id"` // UUID
	ReporterID string `gorm:"type:text;not null" json:"reporter_id"`
	TargetID   string `gorm:"type:text;not null;index" json:"target_id"`
	RoomID     string `gorm:"type:text;not null" json:"room_id"`
	Reason     string `gorm:"not null" json:"reason"`
	Comment    string `gorm:"type:text" json:"comment"`
	Status     string `gorm:"not null;default:new" json:"status"` // "new", "processed"

	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a fresh UUID when no ID is set.
func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return
}
