package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderItem is a product line snapshotted onto an order at creation time.
// Name and unit price are copied from the catalog so later catalog edits do
// not rewrite purchase history.
type OrderItem struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID        uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID      uuid.UUID `gorm:"type:uuid;not null" json:"product_id"`
	Name           string    `gorm:"type:varchar(255);not null" json:"name"`
	Quantity       int       `gorm:"not null" json:"quantity"`
	UnitPricePaise int64     `gorm:"not null" json:"unit_price_paise"`
	TotalPaise     int64     `gorm:"not null" json:"total_paise"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName pins the table name for OrderItem.
func (OrderItem) TableName() string {
	return "order_items"
}
