package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/internal/orders"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/pix"
)

type chargeReader interface {
	GetCharge(ctx context.Context, transactionID string) (*pix.Charge, error)
}

type orderTransitioner interface {
	ApplyPaymentStatus(ctx context.Context, providerTxnID string, status enums.PaymentStatus) error
}

// StatusView is the poll response for a pending checkout.
type StatusView struct {
	OrderID     uuid.UUID           `json:"order_id"`
	Status      enums.PaymentStatus `json:"status"`
	OrderStatus enums.OrderStatus   `json:"order_status"`
	CheckedAt   time.Time           `json:"checked_at"`
}

// Service is the client-pull side of payment settlement: the storefront polls
// it while waiting for the PIX charge, and the reconcile job reuses the same
// check for stale transactions.
type Service interface {
	CheckStatus(ctx context.Context, orderID uuid.UUID) (*StatusView, error)
	CheckTransaction(ctx context.Context, providerTxnID string) error
}

type service struct {
	repo    orders.Repository
	gateway chargeReader
	orders  orderTransitioner
	logg    *logger.Logger
	now     func() time.Time
}

// NewService builds the payment status service.
func NewService(repo orders.Repository, gateway chargeReader, transitioner orderTransitioner, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if gateway == nil {
		return nil, fmt.Errorf("pix gateway required")
	}
	if transitioner == nil {
		return nil, fmt.Errorf("order transitioner required")
	}
	return &service{
		repo:    repo,
		gateway: gateway,
		orders:  transitioner,
		logg:    logg,
		now:     time.Now,
	}, nil
}

// CheckStatus returns the stored state for settled charges and only reaches
// the gateway while the transaction is still PENDENTE. A status change drives
// the order through the same transition path the webhook uses.
func (s *service) CheckStatus(ctx context.Context, orderID uuid.UUID) (*StatusView, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}

	txn, err := s.repo.FindTransactionByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment transaction not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment transaction")
	}

	now := s.now().UTC()
	if !txn.Status.IsTerminal() {
		charge, err := s.gateway.GetCharge(ctx, txn.ProviderTxnID)
		if err != nil {
			return nil, err
		}
		if charge.Status != txn.Status {
			if err := s.orders.ApplyPaymentStatus(ctx, txn.ProviderTxnID, charge.Status); err != nil {
				return nil, err
			}
			txn.Status = charge.Status
		} else {
			if err := s.repo.UpdateTransaction(ctx, txn.ID, map[string]any{"last_checked_at": now}); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record status check")
			}
		}
	}

	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}

	return &StatusView{
		OrderID:     orderID,
		Status:      txn.Status,
		OrderStatus: order.Status,
		CheckedAt:   now,
	}, nil
}

// CheckTransaction is the reconcile-job entry point: query the gateway for one
// provider transaction and apply whatever state it reports.
func (s *service) CheckTransaction(ctx context.Context, providerTxnID string) error {
	if providerTxnID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "provider transaction id required")
	}

	charge, err := s.gateway.GetCharge(ctx, providerTxnID)
	if err != nil {
		return err
	}
	return s.orders.ApplyPaymentStatus(ctx, providerTxnID, charge.Status)
}
