package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshkart/orders-backend/api/middleware"
	"github.com/freshkart/orders-backend/internal/payments"
	"github.com/freshkart/orders-backend/pkg/auth"
	"github.com/freshkart/orders-backend/pkg/db/models"
	"github.com/freshkart/orders-backend/pkg/enums"
	pkgerrors "github.com/freshkart/orders-backend/pkg/errors"
)

type stubPaymentsService struct {
	createFn func(ctx context.Context, input payments.CreateGatewayOrderInput) (*payments.GatewayOrder, error)
	verifyFn func(ctx context.Context, input payments.VerifyInput) (*models.Order, error)
}

func (s stubPaymentsService) CreateGatewayOrder(ctx context.Context, input payments.CreateGatewayOrderInput) (*payments.GatewayOrder, error) {
	if s.createFn != nil {
		return s.createFn(ctx, input)
	}
	return &payments.GatewayOrder{}, nil
}

func (s stubPaymentsService) VerifyAndSettle(ctx context.Context, input payments.VerifyInput) (*models.Order, error) {
	if s.verifyFn != nil {
		return s.verifyFn(ctx, input)
	}
	return &models.Order{}, nil
}

func withBuyer(req *http.Request, buyerID uuid.UUID) *http.Request {
	ctx := middleware.WithIdentity(req.Context(), auth.Identity{
		UserID: buyerID,
		Role:   enums.MemberRoleCustomer,
	})
	return req.WithContext(ctx)
}

func verifyPaymentBody() string {
	return `{
		"razorpay_order_id": "order_MkTest1",
		"razorpay_payment_id": "pay_MkTest1",
		"razorpay_signature": "deadbeef",
		"items": [{"product_id": "` + uuid.NewString() + `", "quantity": 2}],
		"delivery_address": {
			"line1": "14 MG Road",
			"city": "Bengaluru",
			"state": "Karnataka",
			"postal_code": "560001",
			"phone": "9876543210"
		},
		"delivery_date": "2026-09-01",
		"delivery_window": "09:00-12:00"
	}`
}

func TestCreatePaymentOrderWireShape(t *testing.T) {
	svc := stubPaymentsService{
		createFn: func(ctx context.Context, input payments.CreateGatewayOrderInput) (*payments.GatewayOrder, error) {
			if !input.AmountRupees.Equal(decimal.NewFromFloat(499.50)) {
				t.Fatalf("unexpected amount %s", input.AmountRupees)
			}
			return &payments.GatewayOrder{
				OrderID:     "order_MkWire1",
				AmountPaise: 49950,
				Currency:    enums.CurrencyINR,
				KeyID:       "rzp_test_key",
			}, nil
		},
	}

	body := `{"amount": 499.50, "currency": "INR", "receipt": "rcpt_1001"}`
	req := httptest.NewRequest(http.MethodPost, "/payment/create-order", strings.NewReader(body))
	resp := httptest.NewRecorder()
	CreatePaymentOrder(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	// The checkout widget parses these fields directly; there is no envelope.
	want := `{"orderId":"order_MkWire1","amount":49950,"currency":"INR","keyId":"rzp_test_key"}`
	if got := strings.TrimSpace(resp.Body.String()); got != want {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestCreatePaymentOrderGatewayDown(t *testing.T) {
	svc := stubPaymentsService{
		createFn: func(ctx context.Context, input payments.CreateGatewayOrderInput) (*payments.GatewayOrder, error) {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "payment gateway unavailable")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/payment/create-order", strings.NewReader(`{"amount": 100}`))
	resp := httptest.NewRecorder()
	CreatePaymentOrder(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
}

func TestVerifyPaymentSuccessShape(t *testing.T) {
	buyerID := uuid.New()
	orderID := uuid.New()
	svc := stubPaymentsService{
		verifyFn: func(ctx context.Context, input payments.VerifyInput) (*models.Order, error) {
			if input.BuyerID != buyerID {
				t.Fatalf("unexpected buyer %s", input.BuyerID)
			}
			if input.GatewayOrderID != "order_MkTest1" || input.GatewayPaymentID != "pay_MkTest1" {
				t.Fatalf("unexpected gateway refs %s/%s", input.GatewayOrderID, input.GatewayPaymentID)
			}
			return &models.Order{
				ID:            orderID,
				BuyerID:       buyerID,
				Status:        enums.OrderStatusConfirmed,
				PaymentStatus: enums.PaymentStatusPaid,
			}, nil
		},
	}

	req := withBuyer(httptest.NewRequest(http.MethodPost, "/payment/verify-payment", strings.NewReader(verifyPaymentBody())), buyerID)
	resp := httptest.NewRecorder()
	VerifyPayment(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}

	var payload struct {
		Success bool `json:"success"`
		Order   struct {
			ID     uuid.UUID         `json:"id"`
			Status enums.OrderStatus `json:"status"`
		} `json:"order"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !payload.Success || payload.Order.ID != orderID || payload.Order.Status != enums.OrderStatusConfirmed {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestVerifyPaymentRejectedShape(t *testing.T) {
	svc := stubPaymentsService{
		verifyFn: func(ctx context.Context, input payments.VerifyInput) (*models.Order, error) {
			return nil, pkgerrors.New(pkgerrors.CodeSignatureRejected, "payment could not be verified")
		},
	}

	req := withBuyer(httptest.NewRequest(http.MethodPost, "/payment/verify-payment", strings.NewReader(verifyPaymentBody())), uuid.New())
	resp := httptest.NewRecorder()
	VerifyPayment(svc, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	// Exact historical body; clients string-match it.
	if got := strings.TrimSpace(resp.Body.String()); got != `{"error":"Invalid payment signature"}` {
		t.Fatalf("unexpected body %s", got)
	}
}

func TestVerifyPaymentRequiresGatewayFields(t *testing.T) {
	req := withBuyer(httptest.NewRequest(http.MethodPost, "/payment/verify-payment",
		strings.NewReader(`{"razorpay_order_id": "order_1"}`)), uuid.New())
	resp := httptest.NewRecorder()
	VerifyPayment(stubPaymentsService{}, nil).ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "razorpay_payment_id") {
		t.Fatalf("expected field detail in body: %s", resp.Body.String())
	}
}
