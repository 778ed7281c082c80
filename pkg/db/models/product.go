package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalog entry priced in integer paise.
type Product struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Category   string    `gorm:"type:varchar(120)" json:"category,omitempty"`
	PricePaise int64     `gorm:"not null" json:"price_paise"`
	Available  bool      `gorm:"not null;default:true" json:"available"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName pins the table name for Product.
func (Product) TableName() string {
	return "products"
}
