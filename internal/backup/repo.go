package backup

import (
	"context"

	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
)

// Snapshot holds one consistent read of every domain table.
type Snapshot struct {
	Users               []models.User
	Products            []models.Product
	StockItems          []models.StockItem
	Coupons             []models.Coupon
	Orders              []models.Order
	OrderItems          []models.OrderItem
	PaymentTransactions []models.PaymentTransaction
	Operations          []models.Operation
	Expenses            []models.Expense
	Goals               []models.Goal
}

type Repository interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Snapshot reads all tables inside one transaction so the export is
// internally consistent even while checkouts are running.
func (r *repository) Snapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		reads := []struct {
			name string
			dest any
		}{
			{"users", &snap.Users},
			{"products", &snap.Products},
			{"stock_items", &snap.StockItems},
			{"coupons", &snap.Coupons},
			{"orders", &snap.Orders},
			{"order_items", &snap.OrderItems},
			{"payment_transactions", &snap.PaymentTransactions},
			{"operations", &snap.Operations},
			{"expenses", &snap.Expenses},
			{"goals", &snap.Goals},
		}
		for _, read := range reads {
			if err := tx.Table(read.name).Order("created_at ASC").Find(read.dest).Error; err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reading "+read.name)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
