package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/freshkart/orders-backend/api/middleware"
	"github.com/freshkart/orders-backend/api/responses"
	"github.com/freshkart/orders-backend/api/validators"
	"github.com/freshkart/orders-backend/internal/orders"
	"github.com/freshkart/orders-backend/internal/payments"
	"github.com/freshkart/orders-backend/pkg/enums"
	pkgerrors "github.com/freshkart/orders-backend/pkg/errors"
	"github.com/freshkart/orders-backend/pkg/logger"
	"github.com/freshkart/orders-backend/pkg/types"
)

type createPaymentOrderRequest struct {
	Amount   decimal.Decimal `json:"amount" validate:"-"`
	Currency string          `json:"currency"`
	Receipt  string          `json:"receipt"`
}

// createPaymentOrderResponse keeps the historical wire shape consumed by the
// storefront checkout widget. It is written without the standard envelope.
type createPaymentOrderResponse struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId,omitempty"`
}

// CreatePaymentOrder opens a gateway order for the requested rupee amount.
func CreatePaymentOrder(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var req createPaymentOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		currency := enums.CurrencyINR
		if trimmed := strings.TrimSpace(req.Currency); trimmed != "" {
			parsed, err := enums.ParseCurrency(trimmed)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency"))
				return
			}
			currency = parsed
		}

		gatewayOrder, err := svc.CreateGatewayOrder(r.Context(), payments.CreateGatewayOrderInput{
			AmountRupees: req.Amount,
			Currency:     currency,
			Receipt:      strings.TrimSpace(req.Receipt),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, createPaymentOrderResponse{
			OrderID:  gatewayOrder.OrderID,
			Amount:   gatewayOrder.AmountPaise,
			Currency: gatewayOrder.Currency.String(),
			KeyID:    gatewayOrder.KeyID,
		})
	}
}

type verifyPaymentRequest struct {
	RazorpayOrderID   string             `json:"razorpay_order_id" validate:"required"`
	RazorpayPaymentID string             `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string             `json:"razorpay_signature" validate:"required"`
	Items             []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress   types.Address      `json:"delivery_address"`
	DeliveryDate      string             `json:"delivery_date"`
	DeliveryWindow    string             `json:"delivery_window"`
}

type orderItemRequest struct {
	ProductID string `json:"product_id" validate:"required,uuid"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

// VerifyPayment checks the gateway signature and records the settled order.
//
// The response shapes are part of the storefront contract and bypass the
// standard envelope: 200 {"success":true,"order":…} on acceptance and
// 400 {"error":"Invalid payment signature"} on rejection.
func VerifyPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		var req verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := parseOrderItems(req.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		order, err := svc.VerifyAndSettle(r.Context(), payments.VerifyInput{
			GatewayOrderID:   req.RazorpayOrderID,
			GatewayPaymentID: req.RazorpayPaymentID,
			Signature:        req.RazorpaySignature,
			BuyerID:          identity.UserID,
			Items:            items,
			DeliveryAddress:  req.DeliveryAddress,
			DeliveryDate:     req.DeliveryDate,
			DeliveryWindow:   req.DeliveryWindow,
		})
		if err != nil {
			if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeSignatureRejected {
				responses.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid payment signature"})
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"order":   order,
		})
	}
}

func parseOrderItems(reqItems []orderItemRequest) ([]orders.NewItemInput, error) {
	items := make([]orders.NewItemInput, 0, len(reqItems))
	for _, item := range reqItems {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		items = append(items, orders.NewItemInput{
			ProductID: productID,
			Quantity:  item.Quantity,
		})
	}
	return items, nil
}
