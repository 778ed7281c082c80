package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/freshkart/orders-backend/api/middleware"
	"github.com/freshkart/orders-backend/api/responses"
	"github.com/freshkart/orders-backend/api/validators"
	"github.com/freshkart/orders-backend/internal/orders"
	"github.com/freshkart/orders-backend/pkg/enums"
	pkgerrors "github.com/freshkart/orders-backend/pkg/errors"
	"github.com/freshkart/orders-backend/pkg/logger"
	"github.com/freshkart/orders-backend/pkg/pagination"
	"github.com/freshkart/orders-backend/pkg/types"
)

type createOrderRequest struct {
	PaymentMode     string             `json:"payment_mode" validate:"required,oneof=cash_on_delivery"`
	Items           []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	DeliveryAddress types.Address      `json:"delivery_address"`
	DeliveryDate    string             `json:"delivery_date"`
	DeliveryWindow  string             `json:"delivery_window"`
}

// CreateOrder places a cash-on-delivery order for the authenticated buyer.
// Online orders are placed through the payment verification flow instead.
func CreateOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		mode, err := enums.ParsePaymentMode(req.PaymentMode)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment mode"))
			return
		}

		items, err := parseOrderItems(req.Items)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		order, err := svc.CreateOrder(r.Context(), orders.CreateOrderInput{
			BuyerID:         identity.UserID,
			PaymentMode:     mode,
			Items:           items,
			DeliveryAddress: req.DeliveryAddress,
			DeliveryDate:    req.DeliveryDate,
			DeliveryWindow:  req.DeliveryWindow,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ListOrders returns the authenticated buyer's orders, newest first.
func ListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		params, filters, err := parseListQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		list, err := svc.ListForBuyer(r.Context(), identity, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

// GetOrder returns a single order. Buyers may only read their own orders.
func GetOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		order, err := svc.GetOrder(r.Context(), orderID, identity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// CancelOrder moves a non-terminal order to canceled.
func CancelOrder(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "orders service unavailable"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id"))
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		order, err := svc.TransitionStatus(r.Context(), orders.TransitionInput{
			OrderID: orderID,
			Target:  enums.OrderStatusCanceled,
			Actor:   identity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

func parseListQuery(r *http.Request) (pagination.Params, orders.Filters, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, orders.Filters{}, err
	}

	params := pagination.Params{
		Limit:  limit,
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}

	var filters orders.Filters
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return pagination.Params{}, orders.Filters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("payment_status")); raw != "" {
		status, err := enums.ParsePaymentStatus(raw)
		if err != nil {
			return pagination.Params{}, orders.Filters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment status filter")
		}
		filters.PaymentStatus = &status
	}
	if from, err := parseQueryDate(r, "date_from"); err != nil {
		return pagination.Params{}, orders.Filters{}, err
	} else if from != nil {
		filters.DateFrom = from
	}
	if to, err := parseQueryDate(r, "date_to"); err != nil {
		return pagination.Params{}, orders.Filters{}, err
	} else if to != nil {
		filters.DateTo = to
	}

	return params, filters, nil
}

func parseQueryDate(r *http.Request, key string) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date must use YYYY-MM-DD").WithDetails(map[string]any{"field": key})
	}
	return &parsed, nil
}
