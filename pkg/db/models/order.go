package models

import (
	"time"

	"github.com/freshkart/orders-backend/pkg/enums"
	"github.com/freshkart/orders-backend/pkg/types"
	"github.com/google/uuid"
)

// Order is a buyer purchase moving through the fulfilment lifecycle.
//
// GatewayOrderID carries the payment gateway's order identifier and is
// unique, which makes settlement of the same gateway order idempotent.
type Order struct {
	ID               uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	BuyerID          uuid.UUID           `gorm:"type:uuid;not null;index:idx_orders_buyer_created" json:"buyer_id"`
	Status           enums.OrderStatus   `gorm:"type:varchar(32);not null" json:"status"`
	PaymentStatus    enums.PaymentStatus `gorm:"type:varchar(16);not null" json:"payment_status"`
	PaymentMode      enums.PaymentMode   `gorm:"type:varchar(24);not null" json:"payment_mode"`
	Currency         enums.Currency      `gorm:"type:varchar(3);not null" json:"currency"`
	TotalPaise       int64               `gorm:"not null" json:"total_paise"`
	GatewayOrderID   *string             `gorm:"type:varchar(64);uniqueIndex:uq_orders_gateway_order" json:"gateway_order_id,omitempty"`
	GatewayPaymentID *string             `gorm:"type:varchar(64)" json:"gateway_payment_id,omitempty"`
	DeliveryAddress  types.Address       `gorm:"serializer:json" json:"delivery_address"`
	DeliveryDate     string              `gorm:"type:varchar(10)" json:"delivery_date,omitempty"`
	DeliveryWindow   string              `gorm:"type:varchar(32)" json:"delivery_window,omitempty"`
	DeliveredAt      *time.Time          `json:"delivered_at,omitempty"`
	CanceledAt       *time.Time          `json:"canceled_at,omitempty"`
	Items            []OrderItem         `gorm:"foreignKey:OrderID" json:"items,omitempty"`
	CreatedAt        time.Time           `gorm:"index:idx_orders_buyer_created" json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

// TableName pins the table name for Order.
func (Order) TableName() string {
	return "orders"
}
