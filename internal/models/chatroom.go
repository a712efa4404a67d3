package models

import "time"

// ChatRoom is the unique 1-on-1 conversation between two users.
// Participants are stored in canonical order (UserAID < UserBID) so the
// composite unique index holds regardless of who initiated contact.
type ChatRoom struct {
	// RoomID is the unique identifier for the chat room (UUID).
	RoomID string `gorm:"primaryKey" json:"room_id"`
	// UserAID is the lexicographically smaller participant ID.
	UserAID string `gorm:"uniqueIndex:idx_room_pair;not null" json:"user_a_id"`
	// UserBID is the lexicographically larger participant ID.
	UserBID string `gorm:"uniqueIndex:idx_room_pair;not null" json:"user_b_id"`
	// CreatedAt is when the pair first made contact.
	CreatedAt time.Time `json:"created_at"`
	// LastActivityAt is bumped by the storage layer on every saved message.
	LastActivityAt time.Time `json:"last_activity_at"`
}

// CanonicalPair orders two participant IDs the way ChatRoom stores them.
func CanonicalPair(x, y string) (a, b string) {
	if x < y {
		return x, y
	}
	return y, x
}

// HasParticipant reports whether userID is one of the room's two members.
func (r *ChatRoom) HasParticipant(userID string) bool {
	return r.UserAID == userID || r.UserBID == userID
}

// OtherParticipant returns the member that is not userID.
func (r *ChatRoom) OtherParticipant(userID string) string {
	if r.UserAID == userID {
		return r.UserBID
	}
	return r.UserAID
}
