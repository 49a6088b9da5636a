package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
)

// Repository defines persistence operations for orders and their PIX
// transactions.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) (*models.Order, error)
	CreateOrderItems(ctx context.Context, items []models.OrderItem) error
	CreateTransaction(ctx context.Context, txn *models.PaymentTransaction) (*models.PaymentTransaction, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByNumberAndEmail(ctx context.Context, orderNumber int64, email string) (*models.Order, error)
	FindItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error)
	FindTransactionByOrder(ctx context.Context, orderID uuid.UUID) (*models.PaymentTransaction, error)
	FindTransactionByProviderTxnID(ctx context.Context, providerTxnID string) (*models.PaymentTransaction, error)
	FindPendingOrdersBefore(ctx context.Context, cutoff time.Time) ([]models.Order, error)
	FindPendingTransactions(ctx context.Context, lastCheckedBefore time.Time, limit int) ([]models.PaymentTransaction, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to enums.OrderStatus, updates map[string]any) error
	UpdateOrder(ctx context.Context, orderID uuid.UUID, updates map[string]any) error
	UpdateTransaction(ctx context.Context, txnID uuid.UUID, updates map[string]any) error
	ListRecent(ctx context.Context, limit int) ([]models.Order, error)
}
