package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/freshkart/orders-backend/pkg/db/models"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  price_paise INTEGER NOT NULL,
  available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(products).Error)
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, pricePaise int64, available bool) models.Product {
	t.Helper()

	product := models.Product{
		ID:         uuid.New(),
		Name:       name,
		Category:   "groceries",
		PricePaise: pricePaise,
		Available:  available,
	}
	require.NoError(t, db.Create(&product).Error)
	return product
}

func TestLoadProducts(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)

	rice := seedProduct(t, db, "Basmati Rice 5kg", 49900, true)
	dal := seedProduct(t, db, "Toor Dal 1kg", 15900, false)
	missing := uuid.New()

	got, err := svc.LoadProducts(context.Background(), nil, []uuid.UUID{rice.ID, dal.ID, rice.ID, missing})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, int64(49900), got[rice.ID].PricePaise)
	assert.False(t, got[dal.ID].Available)
	_, ok := got[missing]
	assert.False(t, ok)
}

func TestLoadProductsEmptyInput(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)

	got, err := svc.LoadProducts(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestLoadProductsUsesTransaction(t *testing.T) {
	db := setupCatalogTestDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)

	rice := seedProduct(t, db, "Basmati Rice 5kg", 49900, true)

	err = db.Transaction(func(tx *gorm.DB) error {
		got, err := svc.LoadProducts(context.Background(), tx, []uuid.UUID{rice.ID})
		require.NoError(t, err)
		assert.Len(t, got, 1)
		return nil
	})
	require.NoError(t, err)
}

func TestNewServiceRequiresDB(t *testing.T) {
	_, err := NewService(nil)
	require.Error(t, err)
}
