package storage

import (
	"errors"
	"log"
	"strings"
	"time"

	"motomarket/backend/internal/models"

	"gorm.io/gorm"
)

// SaveVehicle persists a listing (insert or update).
func (s *Service) SaveVehicle(v *models.Vehicle) error {
	return s.DB.Save(v).Error
}

func (s *Service) GetVehicleByID(id string) (*models.Vehicle, error) {
	var v models.Vehicle
	err := s.DB.Where("id = ?", id).First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrVehicleNotFound
	}
	if err != nil {
		log.Printf("ERROR: Failed to get vehicle %s: %v", id, err)
		return nil, err
	}
	return &v, nil
}

// ListVehicles runs the typed search filter. Every condition binds through
// a placeholder; nothing from the filter is interpolated into SQL text.
func (s *Service) ListVehicles(filter models.VehicleFilter) ([]models.Vehicle, error) {
	q := s.DB.Model(&models.Vehicle{})

	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SellerID != "" {
		q = q.Where("seller_id = ?", filter.SellerID)
	}
	if filter.Make != "" {
		q = q.Where("lower(make) = lower(?)", filter.Make)
	}
	if filter.Model != "" {
		q = q.Where("lower(model) = lower(?)", filter.Model)
	}
	if filter.YearMin > 0 {
		q = q.Where("year >= ?", filter.YearMin)
	}
	if filter.YearMax > 0 {
		q = q.Where("year <= ?", filter.YearMax)
	}
	if filter.PriceMin > 0 {
		q = q.Where("price_cents >= ?", filter.PriceMin)
	}
	if filter.PriceMax > 0 {
		q = q.Where("price_cents <= ?", filter.PriceMax)
	}
	if filter.MileageMax > 0 {
		q = q.Where("mileage <= ?", filter.MileageMax)
	}
	if filter.Query != "" {
		like := "%" + strings.ToLower(filter.Query) + "%"
		q = q.Where("lower(description) LIKE ?", like)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q = q.Order("created_at desc").Limit(limit).Offset(filter.Offset)

	var vehicles []models.Vehicle
	if err := q.Find(&vehicles).Error; err != nil {
		log.Printf("ERROR: Failed to list vehicles: %v", err)
		return nil, err
	}
	return vehicles, nil
}

// RemoveVehicle marks a listing removed. Only the seller may remove it.
func (s *Service) RemoveVehicle(id, sellerID string) error {
	v, err := s.GetVehicleByID(id)
	if err != nil {
		return err
	}
	if v.SellerID != sellerID {
		return ErrUnauthorized
	}
	return s.DB.Model(v).Updates(map[string]interface{}{
		"status":     models.VehicleStatusRemoved,
		"updated_at": time.Now(),
	}).Error
}

// SaveReport persists a report filed from a chat room.
func (s *Service) SaveReport(r *models.Report) error {
	if r.Status == "" {
		r.Status = "new"
	}
	if err := s.DB.Create(r).Error; err != nil {
		log.Printf("ERROR: Failed to save report for room %s: %v", r.RoomID, err)
		return err
	}
	return nil
}

// CountRecentReports counts reports filed against a user since the cutoff.
func (s *Service) CountRecentReports(targetID string, since time.Time) (int64, error) {
	var n int64
	err := s.DB.Model(&models.Report{}).
		Where("target_id = ? AND created_at >= ?", targetID, since).
		Count(&n).Error
	return n, err
}
