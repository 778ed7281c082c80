package orders

import (
	"time"

	"github.com/freshkart/orders-backend/pkg/auth"
	"github.com/freshkart/orders-backend/pkg/enums"
	"github.com/freshkart/orders-backend/pkg/types"
	"github.com/google/uuid"
)

// Filters describe the inputs supported by the order lists.
type Filters struct {
	Status        *enums.OrderStatus
	PaymentStatus *enums.PaymentStatus
	DateFrom      *time.Time
	DateTo        *time.Time
}

// OrderSummary exposes the aggregated fields returned in order lists.
type OrderSummary struct {
	ID            uuid.UUID           `json:"id"`
	BuyerID       uuid.UUID           `json:"buyer_id"`
	CreatedAt     time.Time           `json:"created_at"`
	Status        enums.OrderStatus   `json:"status"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	PaymentMode   enums.PaymentMode   `json:"payment_mode"`
	Currency      enums.Currency      `json:"currency"`
	TotalPaise    int64               `json:"total_paise"`
	TotalItems    int                 `json:"total_items"`
}

// OrderList wraps the paginated orders plus the next page cursor.
type OrderList struct {
	Orders     []OrderSummary `json:"orders"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// NewItemInput is a single product line requested at checkout. Prices are
// looked up server-side; any client-supplied amounts are ignored.
type NewItemInput struct {
	ProductID uuid.UUID
	Quantity  int
}

// GatewayReference carries the verified gateway identifiers attached to an
// online order at settlement.
type GatewayReference struct {
	GatewayOrderID   string
	GatewayPaymentID string
}

// CreateOrderInput captures everything needed to place an order.
type CreateOrderInput struct {
	BuyerID         uuid.UUID
	PaymentMode     enums.PaymentMode
	Items           []NewItemInput
	DeliveryAddress types.Address
	DeliveryDate    string
	DeliveryWindow  string
	// Gateway is required for online orders and must be nil for
	// cash-on-delivery.
	Gateway *GatewayReference
}

// TransitionInput captures a requested lifecycle transition.
type TransitionInput struct {
	OrderID uuid.UUID
	Target  enums.OrderStatus
	Actor   auth.Identity
}
