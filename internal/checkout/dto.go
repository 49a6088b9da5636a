package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
)

// CheckoutItemInput is one requested cart line.
type CheckoutItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Qty       int       `json:"qty" validate:"required,gte=1"`
}

// CheckoutInput is the guest checkout payload.
type CheckoutInput struct {
	CustomerEmail string              `json:"customer_email" validate:"required,email"`
	CustomerName  string              `json:"customer_name" validate:"required,min=2,max=160"`
	Document      string              `json:"document,omitempty" validate:"omitempty,max=20"`
	CouponCode    string              `json:"coupon_code,omitempty"`
	Items         []CheckoutItemInput `json:"items" validate:"required,min=1,dive"`
}

// QuoteLine reports the priced, clamped version of one requested line.
type QuoteLine struct {
	ProductID      uuid.UUID `json:"product_id"`
	Name           string    `json:"name"`
	RequestedQty   int       `json:"requested_qty"`
	Qty            int       `json:"qty"`
	UnitPriceCents int       `json:"unit_price_cents"`
	TotalCents     int       `json:"total_cents"`
	Adjusted       bool      `json:"adjusted"`
	AdjustReason   string    `json:"adjust_reason,omitempty"`

	category string
}

// Quote is the priced cart before checkout, with coupon applied.
type Quote struct {
	Lines         []QuoteLine `json:"lines"`
	SubtotalCents int         `json:"subtotal_cents"`
	DiscountCents int         `json:"discount_cents"`
	TotalCents    int         `json:"total_cents"`
	CouponCode    string      `json:"coupon_code,omitempty"`
}

// CheckoutResult is returned to the buyer after the order is created: the
// order reference plus everything needed to pay the PIX charge. A status of
// "paid" means a coupon covered the full amount and no charge was opened, so
// the payment fields are absent.
type CheckoutResult struct {
	OrderID       uuid.UUID         `json:"order_id"`
	OrderNumber   int64             `json:"order_number"`
	Status        enums.OrderStatus `json:"status"`
	TotalCents    int               `json:"total_cents"`
	DiscountCents int               `json:"discount_cents"`
	QRCodeBase64  string            `json:"qr_code_base64,omitempty"`
	CopyPasteCode string            `json:"copy_paste_code,omitempty"`
	ExpiresAt     *time.Time        `json:"expires_at,omitempty"`
}
