package chat

import (
	"errors"
	"log"
	"time"

	"motomarket/backend/internal/models"
	"motomarket/backend/internal/storage"

	"github.com/google/uuid"
)

// ResolveRoom finds or lazily creates the unique room between two users.
// Participants are written in canonical order, so two users opening the
// conversation concurrently target the same unique index entry; the loser
// of that race recovers by re-querying for the winner's row.
func ResolveRoom(s storage.Storage, selfID, otherID string) (*models.ChatRoom, error) {
	if selfID == otherID {
		return nil, ErrSelfChat
	}

	room, err := s.FindRoomByPair(selfID, otherID)
	if err != nil {
		return nil, err
	}
	if room != nil {
		return room, nil
	}

	a, b := models.CanonicalPair(selfID, otherID)
	now := time.Now()
	room = &models.ChatRoom{
		RoomID:         uuid.New().String(),
		UserAID:        a,
		UserBID:        b,
		CreatedAt:      now,
		LastActivityAt: now,
	}

	err = s.CreateRoom(room)
	if err == nil {
		return room, nil
	}
	if !errors.Is(err, storage.ErrDuplicatePair) {
		return nil, err
	}

	// A concurrent creator inserted the pair first; their row must be
	// visible by now.
	existing, qerr := s.FindRoomByPair(selfID, otherID)
	if qerr != nil || existing == nil {
		log.Printf("ERROR: Room for pair (%s, %s) hit duplicate constraint but is not queryable: %v", a, b, qerr)
		return nil, ErrRoomInitializationFailed
	}
	return existing, nil
}
