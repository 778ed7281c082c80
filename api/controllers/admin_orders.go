package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/freshkart/orders-backend/api/middleware"
	"github.com/freshkart/orders-backend/api/responses"
	"github.com/freshkart/orders-backend/api/validators"
	"github.com/freshkart/orders-backend/internal/orders"
	"github.com/freshkart/orders-backend/pkg/enums"
	pkgerrors "github.com/freshkart/orders-backend/pkg/errors"
	"github.com/freshkart/orders-backend/pkg/logger"
)

// AdminListOrders returns orders across all buyers for operators.
func AdminListOrders(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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
		list, err := svc.ListAll(r.Context(), identity, params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, list)
	}
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=confirmed out_for_delivery delivered canceled"`
}

// AdminUpdateOrderStatus advances or cancels an order on behalf of an
// operator. The lifecycle rules are enforced by the service.
func AdminUpdateOrderStatus(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
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

		var req updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		target, err := enums.ParseOrderStatus(req.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target status"))
			return
		}

		identity := middleware.IdentityFromContext(r.Context())
		order, err := svc.TransitionStatus(r.Context(), orders.TransitionInput{
			OrderID: orderID,
			Target:  target,
			Actor:   identity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}
