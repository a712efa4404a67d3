package storage

import (
	"encoding/json"

	"motomarket/backend/internal/models"
)

// PublishEvent pushes a change notification onto the room's Redis channel.
// Subscribers (sessions, inboxes) pick it up through the chat.Feed.
func (s *Service) PublishEvent(ev models.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Redis.Publish(s.Ctx, ev.Channel(), payload).Err()
}
