package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/types"
)

// Coupon holds the discount rules admins configure for the storefront.
// Codes are stored uppercase; zero means "no limit" for MaxUses,
// MaxOrderCents and MaxDiscountCents.
type Coupon struct {
	ID               uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code             string             `gorm:"column:code;type:text;not null;uniqueIndex"`
	DiscountType     enums.DiscountType `gorm:"column:discount_type;type:text;not null"`
	DiscountValue    int                `gorm:"column:discount_value;not null"`
	MaxUses          int                `gorm:"column:max_uses;not null;default:0"`
	UsedCount        int                `gorm:"column:used_count;not null;default:0"`
	MinOrderCents    int                `gorm:"column:min_order_cents;not null;default:0"`
	MaxOrderCents    int                `gorm:"column:max_order_cents;not null;default:0"`
	MaxDiscountCents int                `gorm:"column:max_discount_cents;not null;default:0"`
	IsActive         bool               `gorm:"column:is_active;not null;default:true"`
	ValidFrom        *time.Time         `gorm:"column:valid_from"`
	ValidUntil       *time.Time         `gorm:"column:valid_until"`
	ProductIDs       types.StringList   `gorm:"column:product_ids;type:jsonb;serializer:json"`
	CategoryIDs      types.StringList   `gorm:"column:category_ids;type:jsonb;serializer:json"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// IsRestricted reports whether the coupon only applies to specific
// products or categories.
func (c Coupon) IsRestricted() bool {
	return len(c.ProductIDs) > 0 || len(c.CategoryIDs) > 0
}
