package orders

import (
	"context"
	"fmt"
	"time"

	"github.com/freshkart/orders-backend/pkg/auth"
	"github.com/freshkart/orders-backend/pkg/db"
	"github.com/freshkart/orders-backend/pkg/db/models"
	"github.com/freshkart/orders-backend/pkg/enums"
	pkgerrors "github.com/freshkart/orders-backend/pkg/errors"
	"github.com/freshkart/orders-backend/pkg/metrics"
	"github.com/freshkart/orders-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const gatewayOrderConstraint = "uq_orders_gateway_order"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	LoadProducts(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type statusNotifier interface {
	OrderStatusChanged(ctx context.Context, order *models.Order, previous enums.OrderStatus)
}

// Service defines order lifecycle operations.
type Service interface {
	CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID, actor auth.Identity) (*models.Order, error)
	ListForBuyer(ctx context.Context, actor auth.Identity, params pagination.Params, filters Filters) (*OrderList, error)
	ListAll(ctx context.Context, actor auth.Identity, params pagination.Params, filters Filters) (*OrderList, error)
	TransitionStatus(ctx context.Context, input TransitionInput) (*models.Order, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	products productLoader
	notifier statusNotifier
	metrics  *metrics.OrderMetrics
}

// NewService builds an order service with the required dependencies. Metrics
// are optional; every recorder is nil-safe.
func NewService(repo Repository, tx txRunner, products productLoader, notifier statusNotifier, m *metrics.OrderMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if notifier == nil {
		return nil, fmt.Errorf("status notifier required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		products: products,
		notifier: notifier,
		metrics:  m,
	}, nil
}

// forwardTransitions is the lifecycle machine. Cancellation is handled
// separately: any non-terminal status may move to canceled.
var forwardTransitions = map[enums.OrderStatus][]enums.OrderStatus{
	enums.OrderStatusPending:        {enums.OrderStatusConfirmed, enums.OrderStatusOutForDelivery},
	enums.OrderStatusConfirmed:      {enums.OrderStatusOutForDelivery},
	enums.OrderStatusOutForDelivery: {enums.OrderStatusDelivered},
}

func canTransition(from, to enums.OrderStatus) bool {
	if from.IsTerminal() {
		return false
	}
	if to == enums.OrderStatusCanceled {
		return true
	}
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s *service) CreateOrder(ctx context.Context, input CreateOrderInput) (*models.Order, error) {
	if input.BuyerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer identity missing")
	}
	if !input.PaymentMode.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid payment mode")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for _, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item product id required")
		}
		if item.Quantity < 1 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1")
		}
	}
	if input.DeliveryAddress.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery address required")
	}

	switch input.PaymentMode {
	case enums.PaymentModeOnline:
		if input.Gateway == nil || input.Gateway.GatewayOrderID == "" || input.Gateway.GatewayPaymentID == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway reference required for online orders")
		}
	case enums.PaymentModeCashOnDelivery:
		if input.Gateway != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway reference not allowed for cash on delivery")
		}
	}

	var created *models.Order
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := s.buildOrder(ctx, tx, input)
		if err != nil {
			return err
		}
		if _, err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		// A duplicate gateway order id means this settlement was already
		// recorded; return the existing order instead of failing.
		if input.Gateway != nil && db.IsUniqueViolation(err, gatewayOrderConstraint) {
			existing, findErr := s.repo.FindByGatewayOrderID(ctx, input.Gateway.GatewayOrderID)
			if findErr != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load settled order")
			}
			// The replay is only safe for the buyer who settled the payment;
			// anyone else must not learn the order exists.
			if existing.BuyerID != input.BuyerID {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return existing, nil
		}
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
	}

	if created.Status == enums.OrderStatusConfirmed {
		s.notifier.OrderStatusChanged(ctx, created, "")
	}
	return created, nil
}

// buildOrder recomputes the total from catalog prices; client-supplied
// amounts never reach storage.
func (s *service) buildOrder(ctx context.Context, tx *gorm.DB, input CreateOrderInput) (*models.Order, error) {
	ids := make([]uuid.UUID, 0, len(input.Items))
	for _, item := range input.Items {
		ids = append(ids, item.ProductID)
	}

	products, err := s.products.LoadProducts(ctx, tx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}

	orderID := uuid.New()
	items := make([]models.OrderItem, 0, len(input.Items))
	var totalPaise int64
	for _, item := range input.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s not found", item.ProductID))
		}
		if !product.Available {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("product %s is unavailable", item.ProductID))
		}
		lineTotal := product.PricePaise * int64(item.Quantity)
		items = append(items, models.OrderItem{
			ID:             uuid.New(),
			OrderID:        orderID,
			ProductID:      product.ID,
			Name:           product.Name,
			Quantity:       item.Quantity,
			UnitPricePaise: product.PricePaise,
			TotalPaise:     lineTotal,
		})
		totalPaise += lineTotal
	}

	order := &models.Order{
		ID:              orderID,
		BuyerID:         input.BuyerID,
		PaymentMode:     input.PaymentMode,
		Currency:        enums.CurrencyINR,
		TotalPaise:      totalPaise,
		DeliveryAddress: input.DeliveryAddress,
		DeliveryDate:    input.DeliveryDate,
		DeliveryWindow:  input.DeliveryWindow,
		Items:           items,
	}

	if input.PaymentMode == enums.PaymentModeOnline {
		order.Status = enums.OrderStatusConfirmed
		order.PaymentStatus = enums.PaymentStatusPaid
		gatewayOrderID := input.Gateway.GatewayOrderID
		gatewayPaymentID := input.Gateway.GatewayPaymentID
		order.GatewayOrderID = &gatewayOrderID
		order.GatewayPaymentID = &gatewayPaymentID
	} else {
		order.Status = enums.OrderStatusPending
		order.PaymentStatus = enums.PaymentStatusPending
	}

	return order, nil
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID, actor auth.Identity) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	// Ownership mismatches read as not-found so buyers cannot probe for
	// other buyers' order ids.
	if order.BuyerID != actor.UserID && !actor.Can(auth.CapabilityOrderListAll) {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ListForBuyer(ctx context.Context, actor auth.Identity, params pagination.Params, filters Filters) (*OrderList, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	list, err := s.repo.ListForBuyer(ctx, actor.UserID, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list buyer orders")
	}
	return list, nil
}

func (s *service) ListAll(ctx context.Context, actor auth.Identity, params pagination.Params, filters Filters) (*OrderList, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !actor.Can(auth.CapabilityOrderListAll) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "operator capability required")
	}
	list, err := s.repo.ListAll(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return list, nil
}

func (s *service) TransitionStatus(ctx context.Context, input TransitionInput) (*models.Order, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	if input.Actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Target.IsValid() || input.Target == enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target status")
	}

	order, err := s.repo.FindByID(ctx, input.OrderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	if err := authorizeTransition(order, input); err != nil {
		return nil, err
	}

	from := order.Status
	if from.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("order is %s and can no longer change", from))
	}
	if !canTransition(from, input.Target) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("cannot transition from %s to %s", from, input.Target))
	}

	now := time.Now().UTC()
	updates := map[string]any{}
	switch input.Target {
	case enums.OrderStatusDelivered:
		updates["delivered_at"] = now
	case enums.OrderStatusCanceled:
		updates["canceled_at"] = now
	}

	ok, err := s.repo.UpdateStatus(ctx, order.ID, from, input.Target, updates)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if !ok {
		// Another transition committed first; this one loses.
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order status changed concurrently")
	}

	order.Status = input.Target
	switch input.Target {
	case enums.OrderStatusDelivered:
		order.DeliveredAt = &now
	case enums.OrderStatusCanceled:
		order.CanceledAt = &now
	}

	s.metrics.IncTransition(from.String(), input.Target.String())
	s.notifier.OrderStatusChanged(ctx, order, from)
	return order, nil
}

func authorizeTransition(order *models.Order, input TransitionInput) error {
	if input.Target == enums.OrderStatusCanceled {
		if !input.Actor.Can(auth.CapabilityOrderCancel) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "cancel capability required")
		}
		// Buyers may only cancel their own orders; operators may cancel any.
		// The mismatch reads as not-found, same as GetOrder.
		if !input.Actor.Can(auth.CapabilityOrderListAll) && order.BuyerID != input.Actor.UserID {
			return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil
	}
	if !input.Actor.Can(auth.CapabilityOrderAdvance) {
		return pkgerrors.New(pkgerrors.CodeForbidden, "operator capability required")
	}
	return nil
}
