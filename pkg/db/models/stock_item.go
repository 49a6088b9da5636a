package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
)

// StockItem is a single deliverable unit of a digital product: an account
// credential, a license key, or any one-line secret released after payment.
type StockItem struct {
	ID          uuid.UUID             `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID   uuid.UUID             `gorm:"column:product_id;type:uuid;not null;index"`
	Content     string                `gorm:"column:content;not null"`
	Status      enums.StockItemStatus `gorm:"column:status;type:text;not null;default:'available';index"`
	OrderItemID *uuid.UUID            `gorm:"column:order_item_id;type:uuid;index"`
	DeliveredAt *time.Time            `gorm:"column:delivered_at"`
	CreatedAt   time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
