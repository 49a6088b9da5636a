package checkout

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/internal/coupons"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/orders"
	"github.com/itsrogermachado/novaeramtds-sub001/internal/products"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/config"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/outbox"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/outbox/payloads"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/pix"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type pixGateway interface {
	CreateCharge(ctx context.Context, req pix.ChargeRequest) (*pix.Charge, error)
}

type couponValidator interface {
	Validate(ctx context.Context, input coupons.ValidateInput) (*coupons.ValidateResult, error)
}

type orderDeliverer interface {
	Deliver(ctx context.Context, orderID uuid.UUID) error
}

// StockReserver claims available stock for an order item within tx.
type StockReserver interface {
	Reserve(ctx context.Context, tx *gorm.DB, productID, orderItemID uuid.UUID, qty int) ([]models.StockItem, error)
}

// Service prices carts and turns them into pending orders with a PIX charge
// attached. Everything in Execute shares one transaction: a gateway failure
// rolls the order, reservation, and coupon redemption back together. An order
// whose coupon covers the full amount skips the gateway and is paid on
// creation.
type Service interface {
	Quote(ctx context.Context, input CheckoutInput) (*Quote, error)
	Execute(ctx context.Context, input CheckoutInput) (*CheckoutResult, error)
}

type service struct {
	products    products.Repository
	couponRepo  coupons.Repository
	validator   couponValidator
	orders      orders.Repository
	reserver    StockReserver
	tx          txRunner
	outbox      outboxEmitter
	gateway     pixGateway
	deliverer   orderDeliverer
	pixCfg      config.PixConfig
	logg        *logger.Logger
	now         func() time.Time
}

// NewService builds the checkout service.
func NewService(
	productsRepo products.Repository,
	couponRepo coupons.Repository,
	validator couponValidator,
	ordersRepo orders.Repository,
	reserver StockReserver,
	tx txRunner,
	emitter outboxEmitter,
	gateway pixGateway,
	deliverer orderDeliverer,
	pixCfg config.PixConfig,
	logg *logger.Logger,
) (Service, error) {
	if productsRepo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if couponRepo == nil || validator == nil {
		return nil, fmt.Errorf("coupon dependencies required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if reserver == nil {
		return nil, fmt.Errorf("stock reserver required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("pix gateway required")
	}
	if deliverer == nil {
		return nil, fmt.Errorf("order deliverer required")
	}
	return &service{
		products:   productsRepo,
		couponRepo: couponRepo,
		validator:  validator,
		orders:     ordersRepo,
		reserver:   reserver,
		tx:         tx,
		outbox:     emitter,
		gateway:    gateway,
		deliverer:  deliverer,
		pixCfg:     pixCfg,
		logg:       logg,
		now:        time.Now,
	}, nil
}

func (s *service) Quote(ctx context.Context, input CheckoutInput) (*Quote, error) {
	lines, subtotal, err := s.priceCart(ctx, input.Items, true)
	if err != nil {
		return nil, err
	}

	quote := &Quote{
		Lines:         lines,
		SubtotalCents: subtotal,
		TotalCents:    subtotal,
	}

	code := strings.TrimSpace(input.CouponCode)
	if code != "" {
		result, err := s.validator.Validate(ctx, coupons.ValidateInput{
			Code:       code,
			OrderCents: subtotal,
			Items:      toValidateItems(lines),
		})
		if err != nil {
			return nil, err
		}
		quote.DiscountCents = result.DiscountCents
		quote.TotalCents = subtotal - result.DiscountCents
		quote.CouponCode = result.Code
		if quote.TotalCents < 0 {
			quote.TotalCents = 0
		}
	}
	return quote, nil
}

func (s *service) Execute(ctx context.Context, input CheckoutInput) (*CheckoutResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.CustomerEmail))
	name := strings.TrimSpace(input.CustomerName)
	if email == "" || name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer email and name required")
	}

	lines, subtotal, err := s.priceCart(ctx, input.Items, false)
	if err != nil {
		return nil, err
	}

	var couponResult *coupons.ValidateResult
	code := strings.TrimSpace(input.CouponCode)
	if code != "" {
		couponResult, err = s.validator.Validate(ctx, coupons.ValidateInput{
			Code:       code,
			OrderCents: subtotal,
			Items:      toValidateItems(lines),
		})
		if err != nil {
			return nil, err
		}
	}

	discount := 0
	var couponCode *string
	if couponResult != nil {
		discount = couponResult.DiscountCents
		couponCode = &couponResult.Code
	}
	total := subtotal - discount
	if total < 0 {
		total = 0
	}

	now := s.now().UTC()
	expiresIn := time.Duration(s.pixCfg.ExpirationSecs) * time.Second
	free := total == 0

	var result *CheckoutResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		ordersRepo := s.orders.WithTx(tx)

		row := &models.Order{
			CustomerEmail: email,
			CustomerName:  name,
			Status:        enums.OrderStatusPending,
			SubtotalCents: subtotal,
			DiscountCents: discount,
			TotalCents:    total,
			CouponCode:    couponCode,
		}
		if free {
			row.Status = enums.OrderStatusPaid
			row.PaidAt = &now
		}
		order, err := ordersRepo.CreateOrder(ctx, row)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}

		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			items = append(items, models.OrderItem{
				ID:             uuid.New(),
				OrderID:        order.ID,
				ProductID:      line.ProductID,
				Name:           line.Name,
				Category:       line.category,
				Qty:            line.Qty,
				UnitPriceCents: line.UnitPriceCents,
				TotalCents:     line.TotalCents,
			})
		}
		if err := ordersRepo.CreateOrderItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order items")
		}

		for _, item := range items {
			if _, err := s.reserver.Reserve(ctx, tx, item.ProductID, item.ID, item.Qty); err != nil {
				return err
			}
		}

		if couponResult != nil {
			if err := s.couponRepo.WithTx(tx).Redeem(ctx, couponResult.Coupon.ID); err != nil {
				return err
			}
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventCouponRedeemed,
				AggregateType: enums.AggregateCoupon,
				AggregateID:   couponResult.Coupon.ID,
				Data: payloads.CouponRedeemedEvent{
					CouponID:     couponResult.Coupon.ID,
					Code:         couponResult.Code,
					OrderID:      order.ID,
					DiscountType: couponResult.Coupon.DiscountType,
					SavedCents:   discount,
				},
			}); err != nil {
				return err
			}
		}

		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCreated,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderCreatedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				CustomerEmail: email,
				TotalCents:    total,
				CouponCode:    couponCode,
			},
		}); err != nil {
			return err
		}

		// Nothing to collect: the coupon covered the whole order. No charge
		// is opened and the order is paid at creation.
		if free {
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventOrderPaid,
				AggregateType: enums.AggregateOrder,
				AggregateID:   order.ID,
				Data: payloads.OrderPaidEvent{
					OrderID:     order.ID,
					OrderNumber: order.OrderNumber,
					AmountCents: 0,
					PaidAt:      now,
				},
			}); err != nil {
				return err
			}
			result = &CheckoutResult{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				Status:        enums.OrderStatusPaid,
				TotalCents:    0,
				DiscountCents: discount,
			}
			return nil
		}

		charge, err := s.gateway.CreateCharge(ctx, pix.ChargeRequest{
			AmountCents:   total,
			PayerName:     name,
			PayerEmail:    email,
			PayerDocument: strings.TrimSpace(input.Document),
			ExpiresIn:     expiresIn,
		})
		if err != nil {
			return err
		}

		txn := &models.PaymentTransaction{
			OrderID:       order.ID,
			ProviderTxnID: charge.TransactionID,
			Status:        enums.PaymentStatusPendente,
			AmountCents:   total,
			QRCodeBase64:  charge.QRCodeBase64,
			CopyPasteCode: charge.CopyPasteCode,
			PayerName:     name,
		}
		if doc := strings.TrimSpace(input.Document); doc != "" {
			txn.PayerDocument = &doc
		}
		if _, err := ordersRepo.CreateTransaction(ctx, txn); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment transaction")
		}

		expiresAt := now.Add(expiresIn)
		result = &CheckoutResult{
			OrderID:       order.ID,
			OrderNumber:   order.OrderNumber,
			Status:        enums.OrderStatusPending,
			TotalCents:    total,
			DiscountCents: discount,
			QRCodeBase64:  charge.QRCodeBase64,
			CopyPasteCode: charge.CopyPasteCode,
			ExpiresAt:     &expiresAt,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if free {
		// Same policy as the paid-webhook path: a delivery failure leaves
		// the order paid for manual resolution.
		if err := s.deliverer.Deliver(ctx, result.OrderID); err != nil {
			if s.logg != nil {
				s.logg.Error(s.logg.WithOrderID(ctx, result.OrderID.String()), "free order delivery failed", err)
			}
		}
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithOrderID(ctx, result.OrderID.String()), "checkout completed")
	}
	return result, nil
}

// priceCart loads active products and clamps each requested qty to the
// product bounds and, in quote mode, to the available stock. Execute leaves
// stock enforcement to the reservation so the check and the claim are a
// single atomic step.
func (s *service) priceCart(ctx context.Context, items []CheckoutItemInput, clampToStock bool) ([]QuoteLine, int, error) {
	if len(items) == 0 {
		return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	merged := make(map[uuid.UUID]int, len(items))
	ordered := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if item.ProductID == uuid.Nil || item.Qty <= 0 {
			return nil, 0, pkgerrors.New(pkgerrors.CodeValidation, "invalid cart line")
		}
		if _, seen := merged[item.ProductID]; !seen {
			ordered = append(ordered, item.ProductID)
		}
		merged[item.ProductID] += item.Qty
	}

	loaded, err := s.products.FindActiveByIDs(ctx, ordered)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load products")
	}
	byID := make(map[uuid.UUID]models.Product, len(loaded))
	for _, product := range loaded {
		byID[product.ID] = product
	}

	var stock map[uuid.UUID]int
	if clampToStock {
		stock, err = s.products.CountAvailableStock(ctx, ordered)
		if err != nil {
			return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count stock")
		}
	}

	lines := make([]QuoteLine, 0, len(ordered))
	subtotal := 0
	for _, id := range ordered {
		product, ok := byID[id]
		if !ok {
			return nil, 0, pkgerrors.New(pkgerrors.CodeNotFound, "product unavailable")
		}

		requested := merged[id]
		qty := requested
		adjusted := false
		reason := ""

		if qty < product.MinQty {
			qty = product.MinQty
			adjusted = true
			reason = "raised to product minimum"
		}
		if qty > product.MaxQty {
			qty = product.MaxQty
			adjusted = true
			reason = "capped at product maximum"
		}
		if clampToStock {
			available := stock[id]
			if available == 0 {
				return nil, 0, pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")
			}
			if qty > available {
				qty = available
				adjusted = true
				reason = "capped at available stock"
			}
		}

		line := QuoteLine{
			ProductID:      product.ID,
			Name:           product.Name,
			RequestedQty:   requested,
			Qty:            qty,
			UnitPriceCents: product.PriceCents,
			TotalCents:     product.PriceCents * qty,
			Adjusted:       adjusted,
			AdjustReason:   reason,
			category:       product.Category,
		}
		lines = append(lines, line)
		subtotal += line.TotalCents
	}
	return lines, subtotal, nil
}

func toValidateItems(lines []QuoteLine) []coupons.ValidateItem {
	out := make([]coupons.ValidateItem, 0, len(lines))
	for _, line := range lines {
		out = append(out, coupons.ValidateItem{
			ProductID:      line.ProductID,
			Category:       line.category,
			UnitPriceCents: line.UnitPriceCents,
			Qty:            line.Qty,
		})
	}
	return out
}
