package models

import "time"

// Event kinds carried over the realtime feed.
const (
	EventMessageNew     = "message_new"
	EventMessageRead    = "message_read"
	EventMessageDeleted = "message_deleted"
	EventTyping         = "typing"
)

// RoomChannelPrefix is the Redis channel namespace for per-room events.
// Subscribing to RoomChannelPattern covers every room (inbox view).
const (
	RoomChannelPrefix  = "chat:room:"
	RoomChannelPattern = RoomChannelPrefix + "*"
)

// Event is a row-level change notification pushed to subscribed clients.
// Message is set for the message_* kinds; UserID/IsTyping for typing.
type Event struct {
	Kind     string       `json:"kind"`
	RoomID   string       `json:"room_id"`
	Message  *ChatMessage `json:"message,omitempty"`
	UserID   string       `json:"user_id,omitempty"`
	IsTyping bool         `json:"is_typing,omitempty"`
	At       time.Time    `json:"at"`
}

// Channel returns the Redis channel this event is published on.
func (e Event) Channel() string {
	return RoomChannelPrefix + e.RoomID
}

// Sanitized returns a copy whose message payload is safe to hand to
// readers (see ChatMessage.Sanitized).
func (e Event) Sanitized() Event {
	if e.Message != nil {
		m := e.Message.Sanitized()
		e.Message = &m
	}
	return e
}
