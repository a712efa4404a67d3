package storage

import (
	"time"

	"motomarket/backend/internal/models"

	"gorm.io/gorm/clause"
)

// SetTyping upserts the (room, user) indicator on true and deletes it on
// false. Repeated true calls refresh the timestamp, never duplicate.
func (s *Service) SetTyping(roomID, userID string, isTyping bool) error {
	if !isTyping {
		return s.DB.Delete(&models.TypingIndicator{}, "room_id = ? AND user_id = ?", roomID, userID).Error
	}

	row := models.TypingIndicator{
		RoomID:    roomID,
		UserID:    userID,
		UpdatedAt: time.Now(),
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "room_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"updated_at"}),
	}).Create(&row).Error
}

// ActiveTypists returns the users currently typing in a room. Rows older
// than staleAfter are excluded even if their delete notification was lost;
// this is the correctness backstop, the sweep is only hygiene.
func (s *Service) ActiveTypists(roomID string, staleAfter time.Duration) ([]string, error) {
	var userIDs []string
	cutoff := time.Now().Add(-staleAfter)
	err := s.DB.Model(&models.TypingIndicator{}).
		Where("room_id = ? AND updated_at > ?", roomID, cutoff).
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}

// SweepStaleTyping removes indicators older than staleAfter across all
// rooms. Run periodically by the chat hub.
func (s *Service) SweepStaleTyping(staleAfter time.Duration) (int64, error) {
	cutoff := time.Now().Add(-staleAfter)
	res := s.DB.Delete(&models.TypingIndicator{}, "updated_at <= ?", cutoff)
	return res.RowsAffected, res.Error
}
