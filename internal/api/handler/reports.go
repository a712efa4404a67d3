package handler

import (
	"net/http"

	"motomarket/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type reportRequest struct {
	RoomID   string `json:"room_id" binding:"required"`
	TargetID string `json:"target_id" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
	Comment  string `json:"comment"`
}

// FileReport records a report against the other participant of a room.
func (h *Handler) FileReport(c *gin.Context) {
	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	report := &models.Report{
		ReporterID: currentUserID(c),
		TargetID:   req.TargetID,
		RoomID:     req.RoomID,
		Reason:     req.Reason,
		Comment:    req.Comment,
	}
	if err := h.Moderation.HandleReport(report); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": report})
}
