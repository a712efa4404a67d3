package handler

import (
	"errors"
	"net/http"

	"motomarket/backend/internal/chat"
	"motomarket/backend/internal/config"
	"motomarket/backend/internal/moderation"
	"motomarket/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler carries the shared dependencies of all HTTP endpoints. The
// realtime feed is reached through the hub, which owns it.
type Handler struct {
	Hub        *chat.ManagerService
	Storage    storage.Storage
	Moderation *moderation.Service
	Cfg        *config.Config
}

func NewHandler(hub *chat.ManagerService, s storage.Storage, mod *moderation.Service, cfg *config.Config) *Handler {
	return &Handler{
		Hub:        hub,
		Storage:    s,
		Moderation: mod,
		Cfg:        cfg,
	}
}

// abortWithDomainError maps storage and chat errors onto HTTP statuses.
func abortWithDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, storage.ErrUnauthorized):
		c.JSON(http.StatusForbidden, gin.H{"error": "not allowed"})
	case errors.Is(err, storage.ErrRoomNotFound),
		errors.Is(err, storage.ErrMessageNotFound),
		errors.Is(err, storage.ErrUserNotFound),
		errors.Is(err, storage.ErrVehicleNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, chat.ErrEmptyMessage),
		errors.Is(err, chat.ErrMessageTooLong),
		errors.Is(err, chat.ErrSelfChat),
		errors.Is(err, moderation.ErrSelfReport):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
