package products

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListActive(ctx context.Context) ([]models.Product, error) {
	var list []models.Product
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) FindBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("slug = ?", slug).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindActiveByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var list []models.Product
	err := r.db.WithContext(ctx).
		Where("id IN ? AND is_active = ?", ids, true).
		Find(&list).Error
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) CountAvailableStock(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	counts := make(map[uuid.UUID]int, len(productIDs))
	if len(productIDs) == 0 {
		return counts, nil
	}

	type stockRow struct {
		ProductID uuid.UUID
		Total     int
	}
	var rows []stockRow
	err := r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Select("product_id, COUNT(*) AS total").
		Where("product_id IN ? AND status = ?", productIDs, enums.StockItemStatusAvailable).
		Group("product_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.ProductID] = row.Total
	}
	return counts, nil
}

func (r *repository) CreateProduct(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

func (r *repository) UpdateProduct(ctx context.Context, id uuid.UUID, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *repository) AddStockItems(ctx context.Context, items []models.StockItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// ReserveStockItems flips qty available rows to reserved for the given order
// item. The conditional UPDATE reports how many rows it actually claimed, so a
// concurrent checkout draining the same product surfaces as a conflict instead
// of a double reservation.
func (r *repository) ReserveStockItems(ctx context.Context, productID uuid.UUID, orderItemID uuid.UUID, qty int) ([]models.StockItem, error) {
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reservation qty must be positive")
	}

	var candidates []models.StockItem
	err := r.db.WithContext(ctx).
		Where("product_id = ? AND status = ?", productID, enums.StockItemStatusAvailable).
		Order("created_at ASC").
		Limit(qty).
		Find(&candidates).Error
	if err != nil {
		return nil, err
	}
	if len(candidates) < qty {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")
	}

	ids := make([]uuid.UUID, 0, len(candidates))
	for _, item := range candidates {
		ids = append(ids, item.ID)
	}

	result := r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("id IN ? AND status = ?", ids, enums.StockItemStatusAvailable).
		Updates(map[string]any{
			"status":        enums.StockItemStatusReserved,
			"order_item_id": orderItemID,
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if int(result.RowsAffected) < qty {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")
	}

	for i := range candidates {
		candidates[i].Status = enums.StockItemStatusReserved
		candidates[i].OrderItemID = &orderItemID
	}
	return candidates, nil
}

func (r *repository) ReleaseStockItems(ctx context.Context, orderItemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("order_item_id = ? AND status = ?", orderItemID, enums.StockItemStatusReserved).
		Updates(map[string]any{
			"status":        enums.StockItemStatusAvailable,
			"order_item_id": nil,
		}).Error
}

func (r *repository) MarkStockDelivered(ctx context.Context, orderItemID uuid.UUID) ([]models.StockItem, error) {
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).
		Model(&models.StockItem{}).
		Where("order_item_id = ? AND status = ?", orderItemID, enums.StockItemStatusReserved).
		Updates(map[string]any{
			"status":       enums.StockItemStatusDelivered,
			"delivered_at": now,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	var delivered []models.StockItem
	err := r.db.WithContext(ctx).
		Where("order_item_id = ?", orderItemID).
		Order("created_at ASC").
		Find(&delivered).Error
	if err != nil {
		return nil, err
	}
	return delivered, nil
}
