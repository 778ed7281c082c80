package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/freshkart/orders-backend/pkg/db/models"
	"github.com/freshkart/orders-backend/pkg/enums"
	"github.com/freshkart/orders-backend/pkg/logger"
	"github.com/google/uuid"
)

const publishTimeout = 10 * time.Second

// OrderEvent is the payload published for order lifecycle changes.
type OrderEvent struct {
	Type           string              `json:"type"`
	OrderID        uuid.UUID           `json:"order_id"`
	BuyerID        uuid.UUID           `json:"buyer_id"`
	Status         enums.OrderStatus   `json:"status"`
	PreviousStatus enums.OrderStatus   `json:"previous_status,omitempty"`
	PaymentStatus  enums.PaymentStatus `json:"payment_status"`
	TotalPaise     int64               `json:"total_paise"`
	OccurredAt     time.Time           `json:"occurred_at"`
}

// eventPublisher abstracts the Pub/Sub publisher so tests can stub delivery.
type eventPublisher interface {
	Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error)
}

// Service publishes order lifecycle events. Delivery is fire-and-forget:
// failures are logged and never surfaced to the order mutation that
// triggered them.
type Service struct {
	publisher eventPublisher
	logger    *logger.Logger
}

// NewService wires the notifications publisher.
func NewService(publisher eventPublisher, logg *logger.Logger) (*Service, error) {
	if publisher == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Service{publisher: publisher, logger: logg}, nil
}

// OrderStatusChanged publishes the event for an order status change. The
// previous status is empty for newly created orders.
func (s *Service) OrderStatusChanged(ctx context.Context, order *models.Order, previous enums.OrderStatus) {
	if order == nil {
		return
	}
	event := buildEvent(order, previous)
	payload, err := json.Marshal(event)
	if err != nil {
		s.logger.Error(ctx, "marshal order event", err)
		return
	}
	go s.publish(context.WithoutCancel(ctx), event, payload)
}

func (s *Service) publish(ctx context.Context, event OrderEvent, payload []byte) {
	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	attrs := map[string]string{
		"event_type": event.Type,
		"order_id":   event.OrderID.String(),
	}
	serverID, err := s.publisher.Publish(ctx, payload, attrs)
	ctx = s.logger.WithFields(ctx, map[string]any{
		"event_type": event.Type,
		"order_id":   event.OrderID.String(),
	})
	if err != nil {
		s.logger.Error(ctx, "publish order event", err)
		return
	}
	s.logger.Info(s.logger.WithField(ctx, "message_id", serverID), "order event published")
}

func buildEvent(order *models.Order, previous enums.OrderStatus) OrderEvent {
	return OrderEvent{
		Type:           eventType(order.Status),
		OrderID:        order.ID,
		BuyerID:        order.BuyerID,
		Status:         order.Status,
		PreviousStatus: previous,
		PaymentStatus:  order.PaymentStatus,
		TotalPaise:     order.TotalPaise,
		OccurredAt:     time.Now().UTC(),
	}
}

func eventType(status enums.OrderStatus) string {
	switch status {
	case enums.OrderStatusConfirmed:
		return "order.confirmed"
	case enums.OrderStatusOutForDelivery:
		return "order.out_for_delivery"
	case enums.OrderStatusDelivered:
		return "order.delivered"
	case enums.OrderStatusCanceled:
		return "order.canceled"
	default:
		return "order.placed"
	}
}
