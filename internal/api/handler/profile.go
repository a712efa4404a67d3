package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type profileUpdateRequest struct {
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Phone       string `json:"phone"`
	Location    string `json:"location"`
}

// UpdateProfile edits the caller's own profile fields.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.Storage.GetUserByID(currentUserID(c))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	if req.DisplayName != "" {
		user.DisplayName = req.DisplayName
	}
	user.AvatarURL = req.AvatarURL
	user.Phone = req.Phone
	user.Location = req.Location

	if err := h.Storage.SaveUser(user); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// PublicProfile returns the fields of another user that are safe to show:
// display name, avatar, reputation and their active listings.
func (h *Handler) PublicProfile(c *gin.Context) {
	user, err := h.Storage.GetUserByID(c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":               user.ID,
		"display_name":     user.DisplayName,
		"avatar_url":       user.AvatarURL,
		"location":         user.Location,
		"reputation_score": user.ReputationScore,
		"suspended":        user.Suspended(),
	})
}
