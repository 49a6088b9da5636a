package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
)

// OrderCreatedEvent signals a new checkout that is waiting on PIX payment.
type OrderCreatedEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   int64     `json:"order_number"`
	CustomerEmail string    `json:"customer_email"`
	TotalCents    int       `json:"total_cents"`
	CouponCode    *string   `json:"coupon_code,omitempty"`
}

// OrderPaidEvent is emitted when the PIX charge completes.
type OrderPaidEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   int64     `json:"order_number"`
	ProviderTxnID string    `json:"provider_txn_id"`
	AmountCents   int       `json:"amount_cents"`
	PaidAt        time.Time `json:"paid_at"`
}

// OrderDeliveredEvent reports that stock contents were released to the buyer.
type OrderDeliveredEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	ItemCount   int       `json:"item_count"`
	DeliveredAt time.Time `json:"delivered_at"`
}

// OrderFailedEvent is emitted when the gateway reports the charge failed.
type OrderFailedEvent struct {
	OrderID       uuid.UUID `json:"order_id"`
	OrderNumber   int64     `json:"order_number"`
	ProviderTxnID string    `json:"provider_txn_id"`
	Reason        string    `json:"reason,omitempty"`
}

// OrderCancelledEvent is emitted for manual cancellations of pending orders.
type OrderCancelledEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	CancelledAt time.Time `json:"cancelled_at"`
	Reason      string    `json:"reason,omitempty"`
}

// OrderExpiredEvent describes pending orders swept by the TTL job.
type OrderExpiredEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber int64     `json:"order_number"`
	PendingFor  string    `json:"pending_for"`
}

// CouponRedeemedEvent records a successful coupon redemption at checkout.
type CouponRedeemedEvent struct {
	CouponID     uuid.UUID          `json:"coupon_id"`
	Code         string             `json:"code"`
	OrderID      uuid.UUID          `json:"order_id"`
	DiscountType enums.DiscountType `json:"discount_type"`
	SavedCents   int                `json:"saved_cents"`
}
