package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/types"
)

// Order is a storefront purchase. Line items snapshot price and quantity at
// order time; DeliveredItems carries the released content once delivered.
type Order struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber    int64                `gorm:"column:order_number;not null;uniqueIndex;autoIncrement"`
	CustomerEmail  string               `gorm:"column:customer_email;not null;index"`
	CustomerName   string               `gorm:"column:customer_name;not null"`
	Status         enums.OrderStatus    `gorm:"column:status;type:text;not null;default:'pending';index"`
	SubtotalCents  int                  `gorm:"column:subtotal_cents;not null"`
	DiscountCents  int                  `gorm:"column:discount_cents;not null;default:0"`
	TotalCents     int                  `gorm:"column:total_cents;not null"`
	CouponCode     *string              `gorm:"column:coupon_code"`
	DeliveredItems types.DeliveredItems `gorm:"column:delivered_items;type:jsonb;serializer:json"`
	Items          []OrderItem          `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Transaction    *PaymentTransaction  `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	PaidAt         *time.Time           `gorm:"column:paid_at"`
	DeliveredAt    *time.Time           `gorm:"column:delivered_at"`
	CancelledAt    *time.Time           `gorm:"column:cancelled_at"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
