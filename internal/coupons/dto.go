package coupons

import (
	"time"

	"github.com/google/uuid"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
)

// ValidateItem is one cart line considered for coupon eligibility.
type ValidateItem struct {
	ProductID      uuid.UUID `json:"product_id" validate:"required"`
	Category       string    `json:"category"`
	UnitPriceCents int       `json:"unit_price_cents" validate:"gte=0"`
	Qty            int       `json:"qty" validate:"gte=1"`
}

// ValidateInput is the read-only coupon check performed before checkout.
type ValidateInput struct {
	Code       string         `json:"code" validate:"required"`
	OrderCents int            `json:"order_cents" validate:"gte=0"`
	Items      []ValidateItem `json:"items"`
}

// ValidateResult reports the discount a coupon yields for the given cart.
type ValidateResult struct {
	Coupon        models.Coupon `json:"-"`
	Code          string        `json:"code"`
	DiscountCents int           `json:"discount_cents"`
	EligibleCents int           `json:"eligible_cents"`
}

// CreateCouponInput is the admin payload for a new coupon.
type CreateCouponInput struct {
	Code             string     `json:"code" validate:"required,min=3,max=40"`
	DiscountType     string     `json:"discount_type" validate:"required,oneof=percentage fixed"`
	DiscountValue    int        `json:"discount_value" validate:"required,gt=0"`
	MaxUses          int        `json:"max_uses" validate:"gte=0"`
	MinOrderCents    int        `json:"min_order_cents" validate:"gte=0"`
	MaxOrderCents    int        `json:"max_order_cents" validate:"gte=0"`
	MaxDiscountCents int        `json:"max_discount_cents" validate:"gte=0"`
	ValidFrom        *time.Time `json:"valid_from,omitempty"`
	ValidUntil       *time.Time `json:"valid_until,omitempty"`
	ProductIDs       []string   `json:"product_ids,omitempty"`
	CategoryIDs      []string   `json:"category_ids,omitempty"`
}

// CouponView is the admin-facing coupon shape.
type CouponView struct {
	ID               uuid.UUID          `json:"id"`
	Code             string             `json:"code"`
	DiscountType     enums.DiscountType `json:"discount_type"`
	DiscountValue    int                `json:"discount_value"`
	MaxUses          int                `json:"max_uses"`
	UsedCount        int                `json:"used_count"`
	MinOrderCents    int                `json:"min_order_cents"`
	MaxOrderCents    int                `json:"max_order_cents"`
	MaxDiscountCents int                `json:"max_discount_cents"`
	IsActive         bool               `json:"is_active"`
	ValidFrom        *time.Time         `json:"valid_from,omitempty"`
	ValidUntil       *time.Time         `json:"valid_until,omitempty"`
	ProductIDs       []string           `json:"product_ids,omitempty"`
	CategoryIDs      []string           `json:"category_ids,omitempty"`
}

func toCouponView(coupon models.Coupon) CouponView {
	return CouponView{
		ID:               coupon.ID,
		Code:             coupon.Code,
		DiscountType:     coupon.DiscountType,
		DiscountValue:    coupon.DiscountValue,
		MaxUses:          coupon.MaxUses,
		UsedCount:        coupon.UsedCount,
		MinOrderCents:    coupon.MinOrderCents,
		MaxOrderCents:    coupon.MaxOrderCents,
		MaxDiscountCents: coupon.MaxDiscountCents,
		IsActive:         coupon.IsActive,
		ValidFrom:        coupon.ValidFrom,
		ValidUntil:       coupon.ValidUntil,
		ProductIDs:       coupon.ProductIDs,
		CategoryIDs:      coupon.CategoryIDs,
	}
}
