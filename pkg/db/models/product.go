package models

import (
	"time"

	"github.com/google/uuid"
)

// Product is a digital good sold by the storefront. Stock is counted from
// the available StockItem rows, never stored on the product itself.
type Product struct {
	ID                   uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Slug                 string      `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Name                 string      `gorm:"column:name;not null"`
	Description          *string     `gorm:"column:description"`
	Category             string      `gorm:"column:category;not null"`
	PriceCents           int         `gorm:"column:price_cents;not null"`
	MinQty               int         `gorm:"column:min_qty;not null;default:1"`
	MaxQty               int         `gorm:"column:max_qty;not null;default:10"`
	IsActive             bool        `gorm:"column:is_active;not null;default:true"`
	PostSaleInstructions *string     `gorm:"column:post_sale_instructions"`
	StockItems           []StockItem `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt            time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
