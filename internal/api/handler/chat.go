package handler

import (
	"log"
	"net/http"
	"strings"
	"time"

	"motomarket/backend/internal/chat"
	"motomarket/backend/internal/config"
	"motomarket/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type resolveRoomRequest struct {
	OtherID string `json:"other_id" binding:"required"`
}

// ResolveRoom finds or creates the room between the caller and another
// user. Safe to call repeatedly; concurrent calls converge on one room.
func (h *Handler) ResolveRoom(c *gin.Context) {
	var req resolveRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := chat.ResolveRoom(h.Storage, currentUserID(c), req.OtherID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"room": room})
}

// Inbox returns the caller's rooms with previews and unread counts.
func (h *Handler) Inbox(c *gin.Context) {
	summaries, err := chat.ListRoomSummaries(h.Storage, currentUserID(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": summaries})
}

// messageView is the rendered form of a message. Soft-deleted messages
// keep their row but never expose the original body.
type messageView struct {
	ID        string     `json:"id"`
	RoomID    string     `json:"room_id"`
	SenderID  string     `json:"sender_id"`
	Body      string     `json:"body"`
	CreatedAt time.Time  `json:"created_at"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	Deleted   bool       `json:"deleted"`
}

func renderMessage(m *models.ChatMessage) messageView {
	return messageView{
		ID:        m.ID,
		RoomID:    m.RoomID,
		SenderID:  m.SenderID,
		Body:      m.DisplayBody(),
		CreatedAt: m.CreatedAt,
		ReadAt:    m.ReadAt,
		Deleted:   m.Deleted(),
	}
}

// History returns the room's messages oldest first. Participants only.
func (h *Handler) History(c *gin.Context) {
	roomID := c.Param("id")

	room, err := h.Storage.GetRoomByID(roomID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	if !room.HasParticipant(currentUserID(c)) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room participant"})
		return
	}

	history, err := h.Storage.GetChatHistory(roomID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	views := make([]messageView, 0, len(history))
	for i := range history {
		views = append(views, renderMessage(&history[i]))
	}
	c.JSON(http.StatusOK, gin.H{"messages": views})
}

type sendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// SendMessage persists a message in the room and fans it out on the feed.
func (h *Handler) SendMessage(c *gin.Context) {
	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	body := strings.TrimSpace(req.Body)
	if body == "" {
		abortWithDomainError(c, chat.ErrEmptyMessage)
		return
	}
	if len(body) > config.MaxMessageLength {
		abortWithDomainError(c, chat.ErrMessageTooLong)
		return
	}

	msg := &models.ChatMessage{
		RoomID:   c.Param("id"),
		SenderID: currentUserID(c),
		Body:     body,
	}
	if err := h.Storage.SaveMessage(msg); err != nil {
		abortWithDomainError(c, err)
		return
	}

	h.publish(models.Event{
		Kind:    models.EventMessageNew,
		RoomID:  msg.RoomID,
		Message: msg,
		At:      time.Now(),
	})
	c.JSON(http.StatusCreated, gin.H{"message": renderMessage(msg)})
}

// MarkRead marks one message as read. Only the recipient may do this,
// and a second call is a no-op.
func (h *Handler) MarkRead(c *gin.Context) {
	msg, err := h.Storage.MarkMessageRead(c.Param("id"), currentUserID(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	h.publish(models.Event{
		Kind:    models.EventMessageRead,
		RoomID:  msg.RoomID,
		Message: msg,
		At:      time.Now(),
	})
	c.JSON(http.StatusOK, gin.H{"message": renderMessage(msg)})
}

// DeleteMessage soft-deletes the caller's own message.
func (h *Handler) DeleteMessage(c *gin.Context) {
	msg, err := h.Storage.SoftDeleteMessage(c.Param("id"), currentUserID(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	h.publish(models.Event{
		Kind:    models.EventMessageDeleted,
		RoomID:  msg.RoomID,
		Message: msg,
		At:      time.Now(),
	})
	c.JSON(http.StatusOK, gin.H{"message": renderMessage(msg)})
}

type typingRequest struct {
	IsTyping *bool `json:"is_typing" binding:"required"`
}

// SetTyping records the caller's typing state in the room and broadcasts
// it. The indicator also expires passively on the reader side.
func (h *Handler) SetTyping(c *gin.Context) {
	var req typingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	roomID := c.Param("id")
	userID := currentUserID(c)

	room, err := h.Storage.GetRoomByID(roomID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	if !room.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room participant"})
		return
	}

	if err := h.Storage.SetTyping(roomID, userID, *req.IsTyping); err != nil {
		abortWithDomainError(c, err)
		return
	}

	h.publish(models.Event{
		Kind:     models.EventTyping,
		RoomID:   roomID,
		UserID:   userID,
		IsTyping: *req.IsTyping,
		At:       time.Now(),
	})
	c.Status(http.StatusNoContent)
}

// ActiveTypists lists users currently typing in the room, excluding the
// caller. Entries older than the stale window are filtered out even if
// no explicit stop ever arrived.
func (h *Handler) ActiveTypists(c *gin.Context) {
	roomID := c.Param("id")
	userID := currentUserID(c)

	room, err := h.Storage.GetRoomByID(roomID)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	if !room.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a room participant"})
		return
	}

	typists, err := h.Storage.ActiveTypists(roomID, h.Hub.TypingStaleAfter)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	others := make([]string, 0, len(typists))
	for _, id := range typists {
		if id != userID {
			others = append(others, id)
		}
	}
	c.JSON(http.StatusOK, gin.H{"typing": others})
}

func (h *Handler) publish(ev models.Event) {
	if err := h.Storage.PublishEvent(ev); err != nil {
		log.Printf("ERROR: Failed to publish %s event for room %s: %v", ev.Kind, ev.RoomID, err)
	}
}
