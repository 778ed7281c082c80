package catalog

import (
	"context"
	"fmt"

	"github.com/freshkart/orders-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service exposes the read-side catalog lookups the order flow needs.
// Catalog CRUD is owned upstream; this service only prices and validates.
type Service interface {
	LoadProducts(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Product, error)
}

type service struct {
	db *gorm.DB
}

// NewService builds a catalog reader bound to the provided DB.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("catalog db required")
	}
	return &service{db: db}, nil
}

// LoadProducts returns the products for the given ids keyed by id. Missing
// ids are simply absent from the map; callers decide whether that is an
// error. When tx is non-nil the lookup joins the caller's transaction.
func (s *service) LoadProducts(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	conn := s.db
	if tx != nil {
		conn = tx
	}

	unique := make([]uuid.UUID, 0, len(ids))
	seen := map[uuid.UUID]struct{}{}
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return map[uuid.UUID]models.Product{}, nil
	}

	var rows []models.Product
	if err := conn.WithContext(ctx).Where("id IN ?", unique).Find(&rows).Error; err != nil {
		return nil, err
	}

	products := make(map[uuid.UUID]models.Product, len(rows))
	for _, row := range rows {
		products[row.ID] = row
	}
	return products, nil
}
