package products

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
)

// Repository defines persistence operations for the product catalog and its
// deliverable stock.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActive(ctx context.Context) ([]models.Product, error)
	FindBySlug(ctx context.Context, slug string) (*models.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
	CountAvailableStock(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error)
	CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error
	AddStockItems(ctx context.Context, items []models.StockItem) error
	ReserveStockItems(ctx context.Context, productID uuid.UUID, orderItemID uuid.UUID, qty int) ([]models.StockItem, error)
	ReleaseStockItems(ctx context.Context, orderItemID uuid.UUID) error
	MarkStockDelivered(ctx context.Context, orderItemID uuid.UUID) ([]models.StockItem, error)
}
