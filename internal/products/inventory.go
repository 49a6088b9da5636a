package products

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
)

// Inventory adapts the catalog repository for callers that move reserved
// stock inside their own transaction (order lifecycle, checkout rollback).
type Inventory struct {
	repo Repository
}

// NewInventory builds the transactional stock adapter.
func NewInventory(repo Repository) (*Inventory, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	return &Inventory{repo: repo}, nil
}

// Reserve claims qty available stock items for an order item within tx.
func (i *Inventory) Reserve(ctx context.Context, tx *gorm.DB, productID, orderItemID uuid.UUID, qty int) ([]models.StockItem, error) {
	return i.repo.WithTx(tx).ReserveStockItems(ctx, productID, orderItemID, qty)
}

// Release returns an order item's reserved stock to the available pool.
func (i *Inventory) Release(ctx context.Context, tx *gorm.DB, orderItemID uuid.UUID) error {
	return i.repo.WithTx(tx).ReleaseStockItems(ctx, orderItemID)
}

// Deliver marks an order item's reserved stock delivered and returns the rows
// so the caller can assemble the delivery payload.
func (i *Inventory) Deliver(ctx context.Context, tx *gorm.DB, orderItemID uuid.UUID) ([]models.StockItem, error) {
	return i.repo.WithTx(tx).MarkStockDelivered(ctx, orderItemID)
}
