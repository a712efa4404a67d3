package chat

import (
	"errors"
	"fmt"
	"sync"

	"motomarket/backend/internal/config"
	"motomarket/backend/internal/models"
	"motomarket/backend/internal/storage"
)

// RoomSummary is one inbox line: the room, the other participant, the
// latest message preview and the unread count.
type RoomSummary struct {
	Room        models.ChatRoom     `json:"room"`
	OtherID     string              `json:"other_id"`
	Other       *models.User        `json:"other,omitempty"`
	LastMessage *models.ChatMessage `json:"last_message,omitempty"`
	Unread      int64               `json:"unread"`
}

// Inbox aggregates all rooms a user participates in. It subscribes to the
// global feed and invalidates on any message event system-wide: the next
// read refetches from the store instead of merging incrementally, so local
// state cannot drift from the server.
type Inbox struct {
	mu        sync.Mutex
	userID    string
	store     storage.Storage
	summaries []RoomSummary
	stale     bool
	closed    bool

	unsubscribe func()
	notify      func() // optional "inbox changed" signal to the view layer
}

// OpenInbox subscribes and loads the initial snapshot. notify may be nil.
func OpenInbox(store storage.Storage, feed Feed, userID string, notify func()) (*Inbox, error) {
	in := &Inbox{
		userID: userID,
		store:  store,
		stale:  true,
		notify: notify,
	}

	unsub, err := feed.SubscribeAll(in.handleEvent)
	if err != nil {
		return nil, fmt.Errorf("%w: subscribing: %v", ErrChatInitFailed, err)
	}
	in.unsubscribe = unsub

	if _, err := in.ListRooms(); err != nil {
		unsub()
		return nil, fmt.Errorf("%w: loading inbox: %v", ErrChatInitFailed, err)
	}
	return in, nil
}

// ListRooms returns summaries descending by last activity, refetching if a
// change notification invalidated the snapshot.
func (in *Inbox) ListRooms() ([]RoomSummary, error) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if in.closed {
		return nil, ErrSessionClosed
	}
	if in.stale {
		if err := in.refreshLocked(); err != nil {
			return nil, err
		}
	}

	out := make([]RoomSummary, len(in.summaries))
	copy(out, in.summaries)
	return out, nil
}

// Close drops the global subscription. Further reads fail, late events are
// ignored.
func (in *Inbox) Close() {
	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return
	}
	in.closed = true
	unsub := in.unsubscribe
	in.mu.Unlock()

	if unsub != nil {
		unsub()
	}
}

func (in *Inbox) handleEvent(ev models.Event) {
	switch ev.Kind {
	case models.EventMessageNew, models.EventMessageRead, models.EventMessageDeleted:
	default:
		return // typing churn never invalidates the inbox
	}

	in.mu.Lock()
	if in.closed {
		in.mu.Unlock()
		return
	}
	in.stale = true
	notify := in.notify
	in.mu.Unlock()

	if notify != nil {
		notify()
	}
}

func (in *Inbox) refreshLocked() error {
	summaries, err := ListRoomSummaries(in.store, in.userID)
	if err != nil {
		return err
	}
	in.summaries = summaries
	in.stale = false
	return nil
}

// ListRoomSummaries builds the inbox view for a user: every room they
// participate in, most recently active first, with the other participant,
// latest message preview and unread count.
func ListRoomSummaries(store storage.Storage, userID string) ([]RoomSummary, error) {
	rooms, err := store.ListRoomsForUser(userID)
	if err != nil {
		return nil, err
	}
	if len(rooms) > config.DefaultInboxLimit {
		rooms = rooms[:config.DefaultInboxLimit]
	}

	summaries := make([]RoomSummary, 0, len(rooms))
	for _, room := range rooms {
		otherID := room.OtherParticipant(userID)

		other, err := store.GetUserByID(otherID)
		if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
			return nil, err
		}

		last, err := store.LatestMessage(room.RoomID)
		if err != nil {
			return nil, err
		}
		if last != nil {
			sanitized := last.Sanitized()
			last = &sanitized
		}

		unread, err := store.CountUnread(room.RoomID, userID)
		if err != nil {
			return nil, err
		}

		summaries = append(summaries, RoomSummary{
			Room:        room,
			OtherID:     otherID,
			Other:       other,
			LastMessage: last,
			Unread:      unread,
		})
	}

	return summaries, nil
}
