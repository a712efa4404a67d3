package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Vehicle listing states.
const (
	VehicleStatusActive  = "active"
	VehicleStatusSold    = "sold"
	VehicleStatusRemoved = "removed"
)

// Vehicle is a for-sale listing owned by one seller.
type Vehicle struct {
	ID       string `gorm:"primaryKey" json:"id"` // UUID
	SellerID string `gorm:"type:text;not null;index" json:"seller_id"`

	Make        string `gorm:"not null" json:"make"`
	Model       string `gorm:"not null" json:"model"`
	Year        int    `gorm:"not null" json:"year"`
	PriceCents  int64  `gorm:"not null" json:"price_cents"`
	Mileage     int    `json:"mileage"`
	Description string `gorm:"type:text" json:"description"`

	// Features holds free-form tags ("sunroof", "awd").
	Features pq.StringArray `gorm:"type:text[]" json:"features"`
	// PhotoURLs are opaque references into external object storage.
	PhotoURLs pq.StringArray `gorm:"type:text[]" json:"photo_urls"`

	Status    string    `gorm:"not null;default:active;index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns a fresh UUID when no ID is set.
func (v *Vehicle) BeforeCreate(tx *gorm.DB) (err error) {
	if v.ID == "" {
		v.ID = uuid.New().String()
	}
	return
}

// VehicleFilter is the typed search predicate for listing queries.
// Every field binds through a placeholder; identifiers are never
// interpolated into filter expressions.
type VehicleFilter struct {
	Make       string `form:"make"`
	Model      string `form:"model"`
	YearMin    int    `form:"year_min"`
	YearMax    int    `form:"year_max"`
	PriceMin   int64  `form:"price_min"`
	PriceMax   int64  `form:"price_max"`
	MileageMax int    `form:"mileage_max"`
	SellerID   string `form:"seller_id"`
	Status     string `form:"status"`
	Query      string `form:"q"`
	Limit      int    `form:"limit"`
	Offset     int    `form:"offset"`
}
