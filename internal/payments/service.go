package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/freshkart/orders-backend/internal/orders"
	"github.com/freshkart/orders-backend/pkg/db/models"
	"github.com/freshkart/orders-backend/pkg/enums"
	pkgerrors "github.com/freshkart/orders-backend/pkg/errors"
	"github.com/freshkart/orders-backend/pkg/metrics"
	"github.com/freshkart/orders-backend/pkg/razorpay"
	"github.com/freshkart/orders-backend/pkg/types"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// gateway is the slice of the Razorpay adapter the settlement flow needs.
type gateway interface {
	CreateIntent(ctx context.Context, params razorpay.IntentParams) (*razorpay.Intent, error)
	KeyID() string
	KeySecret() string
}

// orderCreator places settled orders; satisfied by the orders service.
type orderCreator interface {
	CreateOrder(ctx context.Context, input orders.CreateOrderInput) (*models.Order, error)
}

// Service defines the payment intent and settlement operations.
type Service interface {
	CreateGatewayOrder(ctx context.Context, input CreateGatewayOrderInput) (*GatewayOrder, error)
	VerifyAndSettle(ctx context.Context, input VerifyInput) (*models.Order, error)
}

type service struct {
	gateway gateway
	orders  orderCreator
	metrics *metrics.OrderMetrics
}

// CreateGatewayOrderInput opens a gateway order ahead of checkout.
type CreateGatewayOrderInput struct {
	AmountRupees decimal.Decimal
	Currency     enums.Currency
	Receipt      string
}

// GatewayOrder is returned to the checkout client so it can open the payment
// widget. Amount is in paise, matching the gateway contract.
type GatewayOrder struct {
	OrderID     string
	AmountPaise int64
	Currency    enums.Currency
	KeyID       string
}

// VerifyInput carries the gateway callback fields plus the order the buyer
// is settling.
type VerifyInput struct {
	GatewayOrderID   string
	GatewayPaymentID string
	Signature        string

	BuyerID         uuid.UUID
	Items           []orders.NewItemInput
	DeliveryAddress types.Address
	DeliveryDate    string
	DeliveryWindow  string
}

// NewService builds the payments service with the required dependencies.
// Metrics are optional.
func NewService(gw gateway, orderSvc orderCreator, m *metrics.OrderMetrics) (Service, error) {
	if gw == nil {
		return nil, fmt.Errorf("payment gateway required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("order creator required")
	}
	return &service{
		gateway: gw,
		orders:  orderSvc,
		metrics: m,
	}, nil
}

func (s *service) CreateGatewayOrder(ctx context.Context, input CreateGatewayOrderInput) (*GatewayOrder, error) {
	start := time.Now()
	intent, err := s.gateway.CreateIntent(ctx, razorpay.IntentParams{
		AmountRupees: input.AmountRupees,
		Currency:     input.Currency,
		Receipt:      input.Receipt,
	})
	s.metrics.ObserveGateway("create_order", time.Since(start))
	if err != nil {
		return nil, err
	}

	return &GatewayOrder{
		OrderID:     intent.OrderID,
		AmountPaise: intent.AmountPaise,
		Currency:    intent.Currency,
		KeyID:       s.gateway.KeyID(),
	}, nil
}

// VerifyAndSettle checks the gateway signature and, on success, records the
// paid order. Settlement is idempotent on the gateway order id: replaying the
// same callback returns the already-created order.
func (s *service) VerifyAndSettle(ctx context.Context, input VerifyInput) (*models.Order, error) {
	orderID := strings.TrimSpace(input.GatewayOrderID)
	paymentID := strings.TrimSpace(input.GatewayPaymentID)
	signature := strings.TrimSpace(input.Signature)
	if orderID == "" || paymentID == "" || signature == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order id, payment id, and signature are required")
	}

	if !razorpay.VerifySignature(orderID, paymentID, signature, s.gateway.KeySecret()) {
		s.metrics.IncSettlement("rejected")
		return nil, pkgerrors.New(pkgerrors.CodeSignatureRejected, "payment could not be verified")
	}

	order, err := s.orders.CreateOrder(ctx, orders.CreateOrderInput{
		BuyerID:         input.BuyerID,
		PaymentMode:     enums.PaymentModeOnline,
		Items:           input.Items,
		DeliveryAddress: input.DeliveryAddress,
		DeliveryDate:    input.DeliveryDate,
		DeliveryWindow:  input.DeliveryWindow,
		Gateway: &orders.GatewayReference{
			GatewayOrderID:   orderID,
			GatewayPaymentID: paymentID,
		},
	})
	if err != nil {
		s.metrics.IncSettlement("failed")
		return nil, err
	}

	s.metrics.IncSettlement("verified")
	return order, nil
}
