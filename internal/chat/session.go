package chat

import (
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"motomarket/backend/internal/config"
	"motomarket/backend/internal/models"
	"motomarket/backend/internal/storage"

	"github.com/google/uuid"
)

// SessionState is the lifecycle of one open conversation.
type SessionState int

const (
	StateInitializing SessionState = iota
	StateReady
	StateClosed
)

// MessageStatus tracks the optimistic-update lifecycle of a local entry.
type MessageStatus int

const (
	// StatusPending: shown locally, write not yet acknowledged.
	StatusPending MessageStatus = iota
	// StatusConfirmed: reconciled with the server-assigned row.
	StatusConfirmed
	// StatusFailed: write rejected; the entry is rolled back from the list.
	StatusFailed
)

// Entry is one message in the session's local list. LocalID is a stable
// client-generated correlation id, so a failed send rolls back exactly the
// right entry even when identical texts are in flight.
type Entry struct {
	LocalID string
	Status  MessageStatus
	Message models.ChatMessage
}

// SessionConfig carries the typing windows so tests can shrink them.
type SessionConfig struct {
	// QuietWindow is the debounce pause after the last keystroke before a
	// single "stopped typing" write goes out.
	QuietWindow time.Duration
	// StaleWindow auto-clears the partner's "typing..." state if the
	// explicit stop notification is lost.
	StaleWindow time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		QuietWindow: config.TypingQuietWindow,
		StaleWindow: config.TypingStaleWindow,
	}
}

// Session orchestrates one open conversation: room resolution, history,
// realtime subscription, optimistic sends and typing presence. All methods
// are safe for concurrent use by the caller and the feed goroutine.
type Session struct {
	mu    sync.Mutex
	state SessionState

	selfID string
	room   models.ChatRoom
	store  storage.Storage
	cfg    SessionConfig

	entries   []*Entry
	confirmed map[string]*Entry // server message id -> entry

	otherTyping  bool
	typingSeenAt time.Time
	staleTimer   *time.Timer

	selfTyping bool
	quietTimer *time.Timer

	unsubscribe func()
	notify      EventHandler // optional push to the view layer
}

// OpenSession resolves the room, loads history and subscribes to the room
// feed. Any failure after resolution surfaces as ErrChatInitFailed; there
// is no partial Ready state. notify may be nil.
func OpenSession(store storage.Storage, feed Feed, selfID, otherID string, cfg SessionConfig, notify EventHandler) (*Session, error) {
	room, err := ResolveRoom(store, selfID, otherID)
	if err != nil {
		return nil, err
	}

	s := &Session{
		state:     StateInitializing,
		selfID:    selfID,
		room:      *room,
		store:     store,
		cfg:       cfg,
		confirmed: make(map[string]*Entry),
		notify:    notify,
	}

	history, err := store.GetChatHistory(room.RoomID)
	if err != nil {
		return nil, fmt.Errorf("%w: loading history: %v", ErrChatInitFailed, err)
	}
	for _, m := range history {
		e := &Entry{LocalID: uuid.New().String(), Status: StatusConfirmed, Message: m}
		s.entries = append(s.entries, e)
		s.confirmed[m.ID] = e
	}

	unsub, err := feed.SubscribeRoom(room.RoomID, s.handleEvent)
	if err != nil {
		return nil, fmt.Errorf("%w: subscribing: %v", ErrChatInitFailed, err)
	}

	s.mu.Lock()
	s.unsubscribe = unsub
	s.state = StateReady
	s.mu.Unlock()
	return s, nil
}

// Room returns the resolved conversation room.
func (s *Session) Room() models.ChatRoom {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.room
}

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Messages returns a snapshot of the local list in insertion order
// (== chronological order per room). Soft-deleted entries come back with
// an empty body; the snapshot is what gets rendered.
func (s *Session) Messages() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		snap := *e
		snap.Message = snap.Message.Sanitized()
		out = append(out, snap)
	}
	return out
}

// Send validates locally, applies an optimistic pending entry, issues the
// write, and reconciles. On failure the pending entry is rolled back and
// the error surfaced for user-initiated retry; there is no hidden queue.
func (s *Session) Send(body string) (Entry, error) {
	text := strings.TrimSpace(body)
	if text == "" {
		return Entry{}, ErrEmptyMessage
	}
	if len(text) > config.MaxMessageLength {
		return Entry{}, ErrMessageTooLong
	}

	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return Entry{}, ErrSessionClosed
	}
	entry := &Entry{
		LocalID: uuid.New().String(),
		Status:  StatusPending,
		Message: models.ChatMessage{
			RoomID:    s.room.RoomID,
			SenderID:  s.selfID,
			Body:      text,
			CreatedAt: time.Now(),
		},
	}
	s.entries = append(s.entries, entry)
	roomID := s.room.RoomID
	s.mu.Unlock()

	msg := models.ChatMessage{RoomID: roomID, SenderID: s.selfID, Body: text}
	if err := s.store.SaveMessage(&msg); err != nil {
		s.rollback(entry.LocalID)
		return Entry{LocalID: entry.LocalID, Status: StatusFailed, Message: msg}, err
	}

	s.mu.Lock()
	var out Entry
	if echoed, ok := s.confirmed[msg.ID]; ok && echoed.LocalID != entry.LocalID {
		// The realtime echo raced ahead of the write ack and was adopted
		// by body-match; fold our pending entry into it.
		s.removeLocked(entry.LocalID)
		out = *echoed
	} else {
		entry.Status = StatusConfirmed
		entry.Message = msg
		s.confirmed[msg.ID] = entry
		out = *entry
	}
	s.mu.Unlock()

	s.publish(models.Event{
		Kind:    models.EventMessageNew,
		RoomID:  roomID,
		Message: &msg,
		UserID:  s.selfID,
		At:      time.Now(),
	})
	return out, nil
}

// Delete soft-deletes one of the caller's own messages.
func (s *Session) Delete(messageID string) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	roomID := s.room.RoomID
	s.mu.Unlock()

	msg, err := s.store.SoftDeleteMessage(messageID, s.selfID)
	if err != nil {
		return err
	}

	s.apply(*msg)
	s.publish(models.Event{
		Kind:    models.EventMessageDeleted,
		RoomID:  roomID,
		Message: msg,
		UserID:  s.selfID,
		At:      time.Now(),
	})
	return nil
}

// MarkRead stamps the read receipt on a message sent by the other
// participant. Safe to call repeatedly.
func (s *Session) MarkRead(messageID string) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	roomID := s.room.RoomID
	s.mu.Unlock()

	msg, err := s.store.MarkMessageRead(messageID, s.selfID)
	if err != nil {
		return err
	}

	s.apply(*msg)
	s.publish(models.Event{
		Kind:    models.EventMessageRead,
		RoomID:  roomID,
		Message: msg,
		UserID:  s.selfID,
		At:      time.Now(),
	})
	return nil
}

// SetTyping drives the debounced presence signal. Call with true on each
// keystroke: only the first call of a burst writes, later calls just reset
// the quiet timer, and the false write goes out once after the pause.
func (s *Session) SetTyping(active bool) error {
	s.mu.Lock()
	if s.state != StateReady {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	roomID := s.room.RoomID
	if active {
		if s.quietTimer != nil {
			s.quietTimer.Stop()
		}
		s.quietTimer = time.AfterFunc(s.cfg.QuietWindow, func() {
			_ = s.SetTyping(false)
		})
		if s.selfTyping {
			s.mu.Unlock()
			return nil // burst continues, timestamp refresh not needed
		}
		s.selfTyping = true
	} else {
		if !s.selfTyping {
			s.mu.Unlock()
			return nil
		}
		s.selfTyping = false
		if s.quietTimer != nil {
			s.quietTimer.Stop()
			s.quietTimer = nil
		}
	}
	s.mu.Unlock()

	if err := s.store.SetTyping(roomID, s.selfID, active); err != nil {
		return err
	}
	s.publish(models.Event{
		Kind:     models.EventTyping,
		RoomID:   roomID,
		UserID:   s.selfID,
		IsTyping: active,
		At:       time.Now(),
	})
	return nil
}

// OtherTyping reports whether the partner is typing. A signal older than
// the stale window no longer counts, even if the stop event was lost.
func (s *Session) OtherTyping() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.otherTyping && time.Since(s.typingSeenAt) < s.cfg.StaleWindow
}

// Close unsubscribes the feed, stops timers and clears any dangling typing
// indicator. Further calls and late event deliveries are no-ops. In-flight
// writes are not cancelled, only their result delivery is ignored.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	s.state = StateClosed
	wasTyping := s.selfTyping
	s.selfTyping = false
	if s.quietTimer != nil {
		s.quietTimer.Stop()
		s.quietTimer = nil
	}
	if s.staleTimer != nil {
		s.staleTimer.Stop()
		s.staleTimer = nil
	}
	unsub := s.unsubscribe
	roomID := s.room.RoomID
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if wasTyping {
		// Best effort; the passive expiry covers us if this write fails.
		if err := s.store.SetTyping(roomID, s.selfID, false); err == nil {
			s.publish(models.Event{
				Kind:   models.EventTyping,
				RoomID: roomID,
				UserID: s.selfID,
				At:     time.Now(),
			})
		}
	}
}

// handleEvent is the feed callback. Late deliveries after Close are
// ignored (liveness check).
func (s *Session) handleEvent(ev models.Event) {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}

	changed := false
	switch ev.Kind {
	case models.EventMessageNew:
		if ev.Message != nil {
			changed = s.applyIncomingLocked(*ev.Message)
		}
	case models.EventMessageRead, models.EventMessageDeleted:
		if ev.Message != nil {
			changed = s.applyLocked(*ev.Message)
		}
	case models.EventTyping:
		if ev.UserID != s.selfID {
			s.otherTyping = ev.IsTyping
			s.typingSeenAt = time.Now()
			if s.staleTimer != nil {
				s.staleTimer.Stop()
				s.staleTimer = nil
			}
			if ev.IsTyping {
				s.staleTimer = time.AfterFunc(s.cfg.StaleWindow, s.expireOtherTyping)
			}
			changed = true
		}
	}
	notify := s.notify
	s.mu.Unlock()

	if changed && notify != nil {
		notify(ev)
	}
}

// applyIncomingLocked reconciles a pushed INSERT with the local list.
// An echo of a message the sender already confirmed must not produce a
// second visible entry.
func (s *Session) applyIncomingLocked(msg models.ChatMessage) bool {
	if _, ok := s.confirmed[msg.ID]; ok {
		return false // echo of an already reconciled write
	}
	if msg.SenderID == s.selfID {
		// Echo arrived before the write ack: supersede the oldest pending
		// entry with the same body.
		for _, e := range s.entries {
			if e.Status == StatusPending && e.Message.Body == msg.Body {
				e.Status = StatusConfirmed
				e.Message = msg
				s.confirmed[msg.ID] = e
				return true
			}
		}
	}
	e := &Entry{LocalID: uuid.New().String(), Status: StatusConfirmed, Message: msg}
	s.entries = append(s.entries, e)
	s.confirmed[msg.ID] = e
	return true
}

func (s *Session) applyLocked(msg models.ChatMessage) bool {
	e, ok := s.confirmed[msg.ID]
	if !ok {
		return false
	}
	e.Message.ReadAt = msg.ReadAt
	e.Message.DeletedAt = msg.DeletedAt
	return true
}

// apply mirrors a mutation result into the local list outside handleEvent.
func (s *Session) apply(msg models.ChatMessage) {
	s.mu.Lock()
	s.applyLocked(msg)
	s.mu.Unlock()
}

func (s *Session) expireOtherTyping() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	changed := false
	if s.otherTyping && time.Since(s.typingSeenAt) >= s.cfg.StaleWindow {
		s.otherTyping = false
		changed = true
	}
	roomID := s.room.RoomID
	notify := s.notify
	s.mu.Unlock()

	if changed && notify != nil {
		notify(models.Event{Kind: models.EventTyping, RoomID: roomID, At: time.Now()})
	}
}

func (s *Session) rollback(localID string) {
	s.mu.Lock()
	s.removeLocked(localID)
	s.mu.Unlock()
}

func (s *Session) removeLocked(localID string) {
	for i, e := range s.entries {
		if e.LocalID == localID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			return
		}
	}
}

func (s *Session) publish(ev models.Event) {
	if err := s.store.PublishEvent(ev); err != nil {
		// Degraded but not fatal: readers fall back to refetch/expiry.
		log.Printf("ERROR: Failed to publish %s event for room %s: %v", ev.Kind, ev.RoomID, err)
	}
}
