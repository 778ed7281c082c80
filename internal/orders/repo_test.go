package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgdb "github.com/freshkart/orders-backend/pkg/db"
	"github.com/freshkart/orders-backend/pkg/db/models"
	"github.com/freshkart/orders-backend/pkg/enums"
	"github.com/freshkart/orders-backend/pkg/pagination"
	"github.com/freshkart/orders-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  buyer_id TEXT NOT NULL,
  status TEXT NOT NULL,
  payment_status TEXT NOT NULL,
  payment_mode TEXT NOT NULL,
  currency TEXT NOT NULL,
  total_paise INTEGER NOT NULL,
  gateway_order_id TEXT,
  gateway_payment_id TEXT,
  delivery_address TEXT NOT NULL,
  delivery_date TEXT,
  delivery_window TEXT,
  delivered_at DATETIME,
  canceled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	gatewayIdx := `
CREATE UNIQUE INDEX IF NOT EXISTS uq_orders_gateway_order
  ON orders (gateway_order_id) WHERE gateway_order_id IS NOT NULL;`
	orderItems := `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price_paise INTEGER NOT NULL,
  total_paise INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(gatewayIdx).Error)
	require.NoError(t, db.Exec(orderItems).Error)
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, buyerID uuid.UUID, status enums.OrderStatus, createdAt time.Time) *models.Order {
	t.Helper()

	orderID := uuid.New()
	order := &models.Order{
		ID:            orderID,
		BuyerID:       buyerID,
		Status:        status,
		PaymentStatus: enums.PaymentStatusPending,
		PaymentMode:   enums.PaymentModeCashOnDelivery,
		Currency:      enums.CurrencyINR,
		TotalPaise:    49900,
		DeliveryAddress: types.Address{
			Line1:      "14 MG Road",
			City:       "Bengaluru",
			State:      "Karnataka",
			PostalCode: "560001",
			Phone:      "9876543210",
		},
		Items: []models.OrderItem{
			{
				ID:             uuid.New(),
				OrderID:        orderID,
				ProductID:      uuid.New(),
				Name:           "Basmati Rice 5kg",
				Quantity:       1,
				UnitPricePaise: 49900,
				TotalPaise:     49900,
			},
		},
		CreatedAt: createdAt,
	}
	require.NoError(t, db.Create(order).Error)
	return order
}

func TestRepoCreateAndFindByID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	created := seedOrder(t, db, uuid.New(), enums.OrderStatusPending, time.Now().UTC())

	found, err := repo.FindByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Equal(t, enums.OrderStatusPending, found.Status)
	require.Len(t, found.Items, 1)
	assert.Equal(t, "Basmati Rice 5kg", found.Items[0].Name)

	_, err = repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoFindByGatewayOrderID(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	gatewayID := "order_" + uuid.NewString()
	order := seedOrder(t, db, uuid.New(), enums.OrderStatusConfirmed, time.Now().UTC())
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", order.ID).
		Update("gateway_order_id", gatewayID).Error)

	found, err := repo.FindByGatewayOrderID(context.Background(), gatewayID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = repo.FindByGatewayOrderID(context.Background(), "order_missing")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepoGatewayOrderUniqueness(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	gatewayID := "order_" + uuid.NewString()
	paymentID := "pay_" + uuid.NewString()

	first := seedOrder(t, db, uuid.New(), enums.OrderStatusConfirmed, time.Now().UTC())
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", first.ID).
		Updates(map[string]any{"gateway_order_id": gatewayID, "gateway_payment_id": paymentID}).Error)

	_, err := repo.CreateOrder(context.Background(), &models.Order{
		ID:             uuid.New(),
		BuyerID:        uuid.New(),
		Status:         enums.OrderStatusConfirmed,
		PaymentStatus:  enums.PaymentStatusPaid,
		PaymentMode:    enums.PaymentModeOnline,
		Currency:       enums.CurrencyINR,
		TotalPaise:     100,
		GatewayOrderID: &gatewayID,
		DeliveryAddress: types.Address{
			Line1: "1 Test Lane", City: "Pune", State: "Maharashtra", PostalCode: "411001", Phone: "9000000000",
		},
	})
	require.Error(t, err)
	assert.True(t, pkgdb.IsUniqueViolation(err, "uq_orders_gateway_order"))
}

func TestRepoListForBuyerPagination(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	buyerID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	seedOrder(t, db, buyerID, enums.OrderStatusPending, base.Add(-3*time.Hour))
	seedOrder(t, db, buyerID, enums.OrderStatusConfirmed, base.Add(-2*time.Hour))
	newest := seedOrder(t, db, buyerID, enums.OrderStatusConfirmed, base.Add(-1*time.Hour))
	// other buyers never leak into the list
	seedOrder(t, db, uuid.New(), enums.OrderStatusPending, base)

	page, err := repo.ListForBuyer(context.Background(), buyerID, pagination.Params{Limit: 2}, Filters{})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.Equal(t, newest.ID, page.Orders[0].ID)
	assert.Equal(t, 1, page.Orders[0].TotalItems)
	require.NotEmpty(t, page.NextCursor)

	rest, err := repo.ListForBuyer(context.Background(), buyerID, pagination.Params{Limit: 2, Cursor: page.NextCursor}, Filters{})
	require.NoError(t, err)
	require.Len(t, rest.Orders, 1)
	assert.Empty(t, rest.NextCursor)
}

func TestRepoListAllStatusFilter(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	buyerID := uuid.New()
	base := time.Now().UTC().Truncate(time.Second)
	seedOrder(t, db, buyerID, enums.OrderStatusPending, base.Add(-2*time.Hour))
	confirmed := seedOrder(t, db, buyerID, enums.OrderStatusConfirmed, base.Add(-1*time.Hour))

	status := enums.OrderStatusConfirmed
	list, err := repo.ListAll(context.Background(), pagination.Params{}, Filters{Status: &status})
	require.NoError(t, err)
	found := false
	for _, summary := range list.Orders {
		assert.Equal(t, enums.OrderStatusConfirmed, summary.Status)
		if summary.ID == confirmed.ID {
			found = true
		}
	}
	assert.True(t, found)
}

func TestRepoUpdateStatusCompareAndSwap(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	order := seedOrder(t, db, uuid.New(), enums.OrderStatusPending, time.Now().UTC())

	ok, err := repo.UpdateStatus(context.Background(), order.ID, enums.OrderStatusPending, enums.OrderStatusConfirmed, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	// the expected status no longer matches, so the swap loses
	ok, err = repo.UpdateStatus(context.Background(), order.ID, enums.OrderStatusPending, enums.OrderStatusOutForDelivery, nil)
	require.NoError(t, err)
	assert.False(t, ok)

	found, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusConfirmed, found.Status)
}
