package chat

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"motomarket/backend/internal/models"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 8192
)

// Command is a client -> server frame.
type Command struct {
	Action    string `json:"action"` // "open", "send", "typing", "read", "delete", "close", "inbox"
	OtherID   string `json:"other_id,omitempty"`
	Text      string `json:"text,omitempty"`
	MessageID string `json:"message_id,omitempty"`
	IsTyping  bool   `json:"is_typing,omitempty"`
}

// Frame is a server -> client frame. Message payloads are sanitized
// before they leave the server: a soft-deleted body never reaches a
// reader.
type Frame struct {
	Type     string               `json:"type"` // "opened", "event", "inbox", "inbox_update", "error"
	RoomID   string               `json:"room_id,omitempty"`
	Messages []models.ChatMessage `json:"messages,omitempty"`
	Event    *models.Event        `json:"event,omitempty"`
	Rooms    []RoomSummary        `json:"rooms,omitempty"`
	Error    string               `json:"error,omitempty"`
}

// WebSocketClient implements Client over a gorilla websocket connection.
// It owns at most one open Session plus an optional Inbox, driven by JSON
// commands.
type WebSocketClient struct {
	UserID string
	Conn   *websocket.Conn
	Hub    *ManagerService
	Send   chan Frame

	// session and inbox are accessed from the read pump only.
	session *Session
	inbox   *Inbox

	mu     sync.Mutex
	closed bool
}

func (c *WebSocketClient) GetUserID() string { return c.UserID }

// Run starts the pumps for the connection.
func (c *WebSocketClient) Run() {
	go c.writePump()
	go c.readPump()
}

// Close shuts the write pump down; the read pump stops when the
// connection closes.
func (c *WebSocketClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.Send)
}

func (c *WebSocketClient) readPump() {
	defer func() {
		if c.session != nil {
			c.session.Close()
			c.session = nil
		}
		if c.inbox != nil {
			c.inbox.Close()
			c.inbox = nil
		}
		c.Hub.UnregisterCh <- c
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("error reading message: %v", err)
			}
			break
		}

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			log.Printf("Error decoding command from client %s: %v", c.UserID, err)
			continue
		}

		c.handle(cmd)
	}
}

func (c *WebSocketClient) handle(cmd Command) {
	switch cmd.Action {
	case "open":
		if c.session != nil {
			c.session.Close()
			c.session = nil
		}
		session, err := OpenSession(c.Hub.Storage, c.Hub.Feed, c.UserID, cmd.OtherID,
			DefaultSessionConfig(), func(ev models.Event) {
				sanitized := ev.Sanitized()
				c.push(Frame{Type: "event", RoomID: ev.RoomID, Event: &sanitized})
			})
		if err != nil {
			c.push(Frame{Type: "error", Error: err.Error()})
			return
		}
		c.session = session

		entries := session.Messages()
		history := make([]models.ChatMessage, 0, len(entries))
		for _, e := range entries {
			history = append(history, e.Message)
		}
		c.push(Frame{Type: "opened", RoomID: session.Room().RoomID, Messages: history})

	case "send":
		if c.session == nil {
			c.push(Frame{Type: "error", Error: "no open conversation"})
			return
		}
		if _, err := c.session.Send(cmd.Text); err != nil {
			c.push(Frame{Type: "error", Error: err.Error()})
		}

	case "typing":
		if c.session != nil {
			if err := c.session.SetTyping(cmd.IsTyping); err != nil {
				log.Printf("Error setting typing for %s: %v", c.UserID, err)
			}
		}

	case "read":
		if c.session != nil {
			if err := c.session.MarkRead(cmd.MessageID); err != nil {
				c.push(Frame{Type: "error", Error: err.Error()})
			}
		}

	case "delete":
		if c.session != nil {
			if err := c.session.Delete(cmd.MessageID); err != nil {
				c.push(Frame{Type: "error", Error: err.Error()})
			}
		}

	case "close":
		if c.session != nil {
			c.session.Close()
			c.session = nil
		}

	case "inbox":
		// First request opens the live inbox; any message event anywhere
		// pushes an "inbox_update" signal and the client re-requests.
		if c.inbox == nil {
			inbox, err := OpenInbox(c.Hub.Storage, c.Hub.Feed, c.UserID, func() {
				c.push(Frame{Type: "inbox_update"})
			})
			if err != nil {
				c.push(Frame{Type: "error", Error: err.Error()})
				return
			}
			c.inbox = inbox
		}
		rooms, err := c.inbox.ListRooms()
		if err != nil {
			c.push(Frame{Type: "error", Error: err.Error()})
			return
		}
		c.push(Frame{Type: "inbox", Rooms: rooms})

	default:
		c.push(Frame{Type: "error", Error: "unknown action"})
	}
}

// push enqueues a frame without blocking the caller. Frames for a closed
// client are dropped; a full buffer means a slow consumer, and dropping a
// frame degrades to a refetch on their side.
func (c *WebSocketClient) push(f Frame) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.Send <- f:
	default:
		log.Printf("Dropping frame for slow client %s", c.UserID)
	}
}

func (c *WebSocketClient) writePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			data, err := json.Marshal(frame)
			if err != nil {
				log.Printf("Error encoding frame for client %s: %v", c.UserID, err)
				continue
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
