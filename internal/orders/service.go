package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/config"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/outbox"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/outbox/payloads"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// StockKeeper releases or delivers the stock reserved for an order item
// within the caller's transaction.
type StockKeeper interface {
	Release(ctx context.Context, tx *gorm.DB, orderItemID uuid.UUID) error
	Deliver(ctx context.Context, tx *gorm.DB, orderItemID uuid.UUID) ([]models.StockItem, error)
}

// ProductFinder resolves products for delivery payload assembly.
type ProductFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type deliveryCache interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	CacheKey(scope, id string) string
}

// Service owns the order lifecycle after checkout: payment-driven
// transitions, content delivery, guest lookup, and admin listing.
type Service interface {
	ApplyPaymentStatus(ctx context.Context, providerTxnID string, status enums.PaymentStatus) error
	Deliver(ctx context.Context, orderID uuid.UUID) error
	Cancel(ctx context.Context, orderID uuid.UUID, actor *outbox.ActorRef, reason string) error
	Expire(ctx context.Context, orderID uuid.UUID) error
	GuestLookup(ctx context.Context, orderNumber int64, email string) (*PublicOrderView, error)
	GetDelivery(ctx context.Context, orderNumber int64, email string) (*DeliveryView, error)
	ListRecent(ctx context.Context, limit int) ([]PublicOrderView, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxEmitter
	stock    StockKeeper
	products ProductFinder
	cache    deliveryCache
	cacheTTL time.Duration
	logg     *logger.Logger
	now      func() time.Time
}

// NewService builds the order lifecycle service.
func NewService(
	repo Repository,
	tx txRunner,
	emitter outboxEmitter,
	stock StockKeeper,
	products ProductFinder,
	cache deliveryCache,
	deliveryCfg config.DeliveryConfig,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if emitter == nil {
		return nil, fmt.Errorf("outbox emitter required")
	}
	if stock == nil {
		return nil, fmt.Errorf("stock keeper required")
	}
	if products == nil {
		return nil, fmt.Errorf("product finder required")
	}
	return &service{
		repo:     repo,
		tx:       tx,
		outbox:   emitter,
		stock:    stock,
		products: products,
		cache:    cache,
		cacheTTL: deliveryCfg.CacheTTL,
		logg:     logg,
		now:      time.Now,
	}, nil
}

// ApplyPaymentStatus is the single transition path shared by the webhook, the
// client poll endpoint, and the reconcile job. A COMPLETO charge marks the
// order paid and triggers delivery; FALHA releases the reservation and fails
// the order. Repeated terminal notifications are no-ops.
func (s *service) ApplyPaymentStatus(ctx context.Context, providerTxnID string, status enums.PaymentStatus) error {
	if providerTxnID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "provider transaction id required")
	}
	if !status.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown payment status")
	}

	txn, err := s.repo.FindTransactionByProviderTxnID(ctx, providerTxnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "payment transaction not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment transaction")
	}

	if txn.Status.IsTerminal() {
		if txn.Status == status {
			return nil
		}
		return pkgerrors.New(pkgerrors.CodeStateConflict, "payment already settled")
	}
	if status == enums.PaymentStatusPendente {
		now := s.now().UTC()
		return s.repo.UpdateTransaction(ctx, txn.ID, map[string]any{"last_checked_at": now})
	}

	switch status {
	case enums.PaymentStatusCompleto:
		if err := s.markPaid(ctx, txn); err != nil {
			return err
		}
		// Delivery runs outside the payment transaction: a delivery failure
		// must leave the order paid for manual resolution, not void the
		// payment record.
		if err := s.Deliver(ctx, txn.OrderID); err != nil {
			if s.logg != nil {
				s.logg.Error(s.logg.WithOrderID(ctx, txn.OrderID.String()), "order delivery failed after payment", err)
			}
		}
		return nil
	case enums.PaymentStatusFalha:
		return s.markFailed(ctx, txn)
	}
	return nil
}

func (s *service) markPaid(ctx context.Context, txn *models.PaymentTransaction) error {
	now := s.now().UTC()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, txn.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !order.Status.CanTransitionTo(enums.OrderStatusPaid) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be marked paid")
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, order.Status, enums.OrderStatusPaid, map[string]any{
			"paid_at": now,
		}); err != nil {
			return err
		}
		if err := repo.UpdateTransaction(ctx, txn.ID, map[string]any{
			"status":          enums.PaymentStatusCompleto,
			"last_checked_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transaction")
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderPaid,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderPaidEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				ProviderTxnID: txn.ProviderTxnID,
				AmountCents:   txn.AmountCents,
				PaidAt:        now,
			},
		})
	})
}

func (s *service) markFailed(ctx context.Context, txn *models.PaymentTransaction) error {
	now := s.now().UTC()
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, txn.OrderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !order.Status.CanTransitionTo(enums.OrderStatusFailed) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be marked failed")
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, order.Status, enums.OrderStatusFailed, nil); err != nil {
			return err
		}
		if err := repo.UpdateTransaction(ctx, txn.ID, map[string]any{
			"status":          enums.PaymentStatusFalha,
			"last_checked_at": now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transaction")
		}
		if err := s.releaseOrderStock(ctx, tx, order.ID); err != nil {
			return err
		}

		// The webhook and the poll path can both observe FALHA before either
		// commits; the duplicate emission collapses on the aggregate.
		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderFailed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderFailedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				ProviderTxnID: txn.ProviderTxnID,
				Reason:        "gateway reported FALHA",
			},
		})
	})
}

// Deliver releases the reserved stock contents of a paid order and freezes the
// payload on the order row.
func (s *service) Deliver(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	now := s.now().UTC()

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !order.Status.CanTransitionTo(enums.OrderStatusDelivered) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order is not paid")
		}

		delivered := make(types.DeliveredItems, 0, len(order.Items))
		for _, item := range order.Items {
			stockItems, err := s.stock.Deliver(ctx, tx, item.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release stock contents")
			}
			contents := make([]string, 0, len(stockItems))
			for _, stockItem := range stockItems {
				contents = append(contents, stockItem.Content)
			}

			entry := types.DeliveredItem{
				ProductName: item.Name,
				Qty:         item.Qty,
				Contents:    contents,
			}
			if product, err := s.products.FindByID(ctx, item.ProductID); err == nil && product.PostSaleInstructions != nil {
				entry.Instructions = *product.PostSaleInstructions
			}
			delivered = append(delivered, entry)
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, order.Status, enums.OrderStatusDelivered, map[string]any{
			"delivered_at":    now,
			"delivered_items": delivered,
		}); err != nil {
			return err
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderDelivered,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderDeliveredEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				ItemCount:   len(delivered),
				DeliveredAt: now,
			},
		})
	})
}

// Cancel voids a pending order. Delivered orders are immutable; the request
// is refused rather than clawing content back.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, actor *outbox.ActorRef, reason string) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	now := s.now().UTC()

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if !order.Status.CanTransitionTo(enums.OrderStatusCancelled) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be cancelled")
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, order.Status, enums.OrderStatusCancelled, map[string]any{
			"cancelled_at": now,
		}); err != nil {
			return err
		}
		if err := s.releaseOrderStock(ctx, tx, order.ID); err != nil {
			return err
		}
		if order.Transaction != nil && !order.Transaction.Status.IsTerminal() {
			if err := repo.UpdateTransaction(ctx, order.Transaction.ID, map[string]any{
				"status": enums.PaymentStatusFalha,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transaction")
			}
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Actor:         actor,
			Data: payloads.OrderCancelledEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				CancelledAt: now,
				Reason:      reason,
			},
		})
	})
}

// Expire is the TTL sweep path: same mechanics as Cancel but emits
// order_expired so downstream consumers can tell abandonment from manual
// cancellation.
func (s *service) Expire(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	now := s.now().UTC()

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
		}
		if order.Status != enums.OrderStatusPending {
			return nil
		}

		if err := repo.UpdateOrderStatus(ctx, order.ID, enums.OrderStatusPending, enums.OrderStatusCancelled, map[string]any{
			"cancelled_at": now,
		}); err != nil {
			return err
		}
		if err := s.releaseOrderStock(ctx, tx, order.ID); err != nil {
			return err
		}
		if order.Transaction != nil && !order.Transaction.Status.IsTerminal() {
			if err := repo.UpdateTransaction(ctx, order.Transaction.ID, map[string]any{
				"status": enums.PaymentStatusFalha,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update transaction")
			}
		}

		return s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventOrderExpired,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Data: payloads.OrderExpiredEvent{
				OrderID:     order.ID,
				OrderNumber: order.OrderNumber,
				PendingFor:  now.Sub(order.CreatedAt).Round(time.Second).String(),
			},
		})
	})
}

func (s *service) GuestLookup(ctx context.Context, orderNumber int64, email string) (*PublicOrderView, error) {
	if orderNumber <= 0 || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number and email required")
	}

	order, err := s.repo.FindByNumberAndEmail(ctx, orderNumber, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	view := toPublicOrderView(*order)
	return &view, nil
}

func (s *service) GetDelivery(ctx context.Context, orderNumber int64, email string) (*DeliveryView, error) {
	if orderNumber <= 0 || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order number and email required")
	}

	if s.cache != nil {
		key := s.cache.CacheKey("delivery", strconv.FormatInt(orderNumber, 10))
		if raw, err := s.cache.Get(ctx, key); err == nil && raw != "" {
			var cached DeliveryView
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				// Credentials are still checked against the database even on a
				// cache hit; the cache only skips payload assembly.
				if _, err := s.repo.FindByNumberAndEmail(ctx, orderNumber, email); err == nil {
					return &cached, nil
				}
			}
		}
	}

	order, err := s.repo.FindByNumberAndEmail(ctx, orderNumber, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	if order.Status != enums.OrderStatusDelivered || order.DeliveredAt == nil {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order not delivered")
	}

	view := &DeliveryView{
		OrderNumber: order.OrderNumber,
		DeliveredAt: *order.DeliveredAt,
		Items:       order.DeliveredItems,
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if raw, err := json.Marshal(view); err == nil {
			key := s.cache.CacheKey("delivery", strconv.FormatInt(orderNumber, 10))
			if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil && s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "order_number", orderNumber), "delivery cache write failed")
			}
		}
	}
	return view, nil
}

func (s *service) ListRecent(ctx context.Context, limit int) ([]PublicOrderView, error) {
	list, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	views := make([]PublicOrderView, 0, len(list))
	for _, order := range list {
		views = append(views, toPublicOrderView(order))
	}
	return views, nil
}

func (s *service) releaseOrderStock(ctx context.Context, tx *gorm.DB, orderID uuid.UUID) error {
	items, err := s.repo.WithTx(tx).FindItemsByOrder(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order items")
	}
	for _, item := range items {
		if err := s.stock.Release(ctx, tx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release stock")
		}
	}
	return nil
}
