package orders

import (
	"time"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/types"
)

// OrderItemView is one purchased line on the public order shape.
type OrderItemView struct {
	Name           string `json:"name"`
	Qty            int    `json:"qty"`
	UnitPriceCents int    `json:"unit_price_cents"`
	TotalCents     int    `json:"total_cents"`
}

// PaymentView carries the PIX charge data the buyer needs to pay.
type PaymentView struct {
	Status        enums.PaymentStatus `json:"status"`
	QRCodeBase64  string              `json:"qr_code_base64,omitempty"`
	CopyPasteCode string              `json:"copy_paste_code,omitempty"`
}

// PublicOrderView is the guest-facing order shape looked up by order number
// plus customer email. It never includes delivered content; that goes through
// the delivery endpoint.
type PublicOrderView struct {
	OrderNumber   int64             `json:"order_number"`
	Status        enums.OrderStatus `json:"status"`
	CustomerName  string            `json:"customer_name"`
	SubtotalCents int               `json:"subtotal_cents"`
	DiscountCents int               `json:"discount_cents"`
	TotalCents    int               `json:"total_cents"`
	CouponCode    *string           `json:"coupon_code,omitempty"`
	Items         []OrderItemView   `json:"items"`
	Payment       *PaymentView      `json:"payment,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	PaidAt        *time.Time        `json:"paid_at,omitempty"`
	DeliveredAt   *time.Time        `json:"delivered_at,omitempty"`
}

// DeliveryView is the released content for a delivered order.
type DeliveryView struct {
	OrderNumber int64                `json:"order_number"`
	DeliveredAt time.Time            `json:"delivered_at"`
	Items       types.DeliveredItems `json:"items"`
}

func toPublicOrderView(order models.Order) PublicOrderView {
	items := make([]OrderItemView, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemView{
			Name:           item.Name,
			Qty:            item.Qty,
			UnitPriceCents: item.UnitPriceCents,
			TotalCents:     item.TotalCents,
		})
	}

	view := PublicOrderView{
		OrderNumber:   order.OrderNumber,
		Status:        order.Status,
		CustomerName:  order.CustomerName,
		SubtotalCents: order.SubtotalCents,
		DiscountCents: order.DiscountCents,
		TotalCents:    order.TotalCents,
		CouponCode:    order.CouponCode,
		Items:         items,
		CreatedAt:     order.CreatedAt,
		PaidAt:        order.PaidAt,
		DeliveredAt:   order.DeliveredAt,
	}

	if order.Transaction != nil {
		payment := PaymentView{Status: order.Transaction.Status}
		// QR data is only useful while the charge is still payable.
		if order.Status == enums.OrderStatusPending {
			payment.QRCodeBase64 = order.Transaction.QRCodeBase64
			payment.CopyPasteCode = order.Transaction.CopyPasteCode
		}
		view.Payment = &payment
	}
	return view
}
