package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/freshkart/orders-backend/pkg/db/models"
	"github.com/freshkart/orders-backend/pkg/enums"
	"github.com/freshkart/orders-backend/pkg/logger"
)

type stubPublisher struct {
	data     []byte
	attrs    map[string]string
	err      error
	done     chan struct{}
}

func (s *stubPublisher) Publish(ctx context.Context, data []byte, attrs map[string]string) (string, error) {
	s.data = data
	s.attrs = attrs
	if s.done != nil {
		close(s.done)
	}
	if s.err != nil {
		return "", s.err
	}
	return "msg-123", nil
}

func confirmedOrder() *models.Order {
	return &models.Order{
		ID:            uuid.New(),
		BuyerID:       uuid.New(),
		Status:        enums.OrderStatusConfirmed,
		PaymentStatus: enums.PaymentStatusPaid,
		TotalPaise:    49900,
	}
}

func TestOrderStatusChangedPublishes(t *testing.T) {
	publisher := &stubPublisher{done: make(chan struct{})}
	svc, err := NewService(publisher, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)

	order := confirmedOrder()
	svc.OrderStatusChanged(context.Background(), order, enums.OrderStatusPending)

	select {
	case <-publisher.done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish never happened")
	}

	var event OrderEvent
	require.NoError(t, json.Unmarshal(publisher.data, &event))
	assert.Equal(t, "order.confirmed", event.Type)
	assert.Equal(t, order.ID, event.OrderID)
	assert.Equal(t, enums.OrderStatusPending, event.PreviousStatus)
	assert.Equal(t, order.ID.String(), publisher.attrs["order_id"])
	assert.Equal(t, "order.confirmed", publisher.attrs["event_type"])
}

func TestOrderStatusChangedSurvivesPublishError(t *testing.T) {
	publisher := &stubPublisher{done: make(chan struct{}), err: errors.New("topic gone")}
	svc, err := NewService(publisher, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)

	svc.OrderStatusChanged(context.Background(), confirmedOrder(), "")

	select {
	case <-publisher.done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish never happened")
	}
}

func TestOrderStatusChangedIgnoresNilOrder(t *testing.T) {
	publisher := &stubPublisher{}
	svc, err := NewService(publisher, logger.New(logger.Options{ServiceName: "test"}))
	require.NoError(t, err)

	svc.OrderStatusChanged(context.Background(), nil, "")
	assert.Nil(t, publisher.data)
}

func TestBuildEventTypes(t *testing.T) {
	cases := []struct {
		status enums.OrderStatus
		want   string
	}{
		{enums.OrderStatusPending, "order.placed"},
		{enums.OrderStatusConfirmed, "order.confirmed"},
		{enums.OrderStatusOutForDelivery, "order.out_for_delivery"},
		{enums.OrderStatusDelivered, "order.delivered"},
		{enums.OrderStatusCanceled, "order.canceled"},
	}
	for _, tc := range cases {
		t.Run(string(tc.status), func(t *testing.T) {
			order := confirmedOrder()
			order.Status = tc.status
			event := buildEvent(order, "")
			assert.Equal(t, tc.want, event.Type)
			assert.False(t, event.OccurredAt.IsZero())
		})
	}
}

func TestNewServiceValidation(t *testing.T) {
	_, err := NewService(nil, logger.New(logger.Options{ServiceName: "test"}))
	require.Error(t, err)

	_, err = NewService(&stubPublisher{}, nil)
	require.Error(t, err)
}
