package handler

import (
	"net/http"

	"motomarket/backend/internal/chat"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Allows connections from any origin. Tighten in production!
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the HTTP connection to a WebSocket session.
// Browsers cannot set headers on the upgrade request, so the token may
// come in either the Authorization header or the "token" query param.
func (h *Handler) ServeWebSocket(c *gin.Context) {
	tokenString := c.Query("token")
	if tokenString == "" {
		authHeader := c.GetHeader("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
			return
		}
		tokenString = authHeader[7:]
	}

	userID, err := h.validateAndGetUserID(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}

	user, err := h.Storage.GetUserByID(userID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}
	if user.Suspended() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account suspended"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to upgrade connection"})
		return
	}

	client := &chat.WebSocketClient{
		Hub:    h.Hub,
		UserID: userID,
		Conn:   conn,
		Send:   make(chan chat.Frame, 256),
	}

	h.Hub.RegisterCh <- client
	client.Run()
}
