package handler

import (
	"net/http"

	"motomarket/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
)

type vehicleRequest struct {
	Make        string   `json:"make" binding:"required"`
	Model       string   `json:"model" binding:"required"`
	Year        int      `json:"year" binding:"required,gte=1900"`
	PriceCents  int64    `json:"price_cents" binding:"required,gt=0"`
	Mileage     int      `json:"mileage" binding:"gte=0"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	PhotoURLs   []string `json:"photo_urls"`
}

// CreateVehicle publishes a new listing owned by the caller.
func (h *Handler) CreateVehicle(c *gin.Context) {
	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle := &models.Vehicle{
		SellerID:    currentUserID(c),
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		PriceCents:  req.PriceCents,
		Mileage:     req.Mileage,
		Description: req.Description,
		Features:    pq.StringArray(req.Features),
		PhotoURLs:   pq.StringArray(req.PhotoURLs),
		Status:      models.VehicleStatusActive,
	}
	if err := h.Storage.SaveVehicle(vehicle); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

// ListVehicles searches listings. Public, filterable by query string.
func (h *Handler) ListVehicles(c *gin.Context) {
	var filter models.VehicleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if filter.Status == "" {
		filter.Status = models.VehicleStatusActive
	}

	vehicles, err := h.Storage.ListVehicles(filter)
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicles": vehicles})
}

// GetVehicle returns one listing. Public.
func (h *Handler) GetVehicle(c *gin.Context) {
	vehicle, err := h.Storage.GetVehicleByID(c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// UpdateVehicle edits a listing. Seller only.
func (h *Handler) UpdateVehicle(c *gin.Context) {
	vehicle, err := h.Storage.GetVehicleByID(c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	if vehicle.SellerID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the seller"})
		return
	}

	var req vehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	vehicle.Make = req.Make
	vehicle.Model = req.Model
	vehicle.Year = req.Year
	vehicle.PriceCents = req.PriceCents
	vehicle.Mileage = req.Mileage
	vehicle.Description = req.Description
	vehicle.Features = pq.StringArray(req.Features)
	vehicle.PhotoURLs = pq.StringArray(req.PhotoURLs)

	if err := h.Storage.SaveVehicle(vehicle); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// MarkVehicleSold flips an active listing to sold. Seller only.
func (h *Handler) MarkVehicleSold(c *gin.Context) {
	vehicle, err := h.Storage.GetVehicleByID(c.Param("id"))
	if err != nil {
		abortWithDomainError(c, err)
		return
	}
	if vehicle.SellerID != currentUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not the seller"})
		return
	}

	vehicle.Status = models.VehicleStatusSold
	if err := h.Storage.SaveVehicle(vehicle); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// RemoveVehicle takes a listing off the market. Seller only.
func (h *Handler) RemoveVehicle(c *gin.Context) {
	if err := h.Storage.RemoveVehicle(c.Param("id"), currentUserID(c)); err != nil {
		abortWithDomainError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
