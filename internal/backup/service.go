package backup

import (
	"context"
	"fmt"
	"time"

	"github.com/itsrogermachado/novaeramtds-sub001/internal/users"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
)

// Export is the full backup document streamed to the admin.
type Export struct {
	Meta                ExportMeta                  `json:"meta"`
	Users               []users.UserView            `json:"users"`
	Products            []models.Product            `json:"products"`
	StockItems          []models.StockItem          `json:"stock_items"`
	Coupons             []models.Coupon             `json:"coupons"`
	Orders              []models.Order              `json:"orders"`
	OrderItems          []models.OrderItem          `json:"order_items"`
	PaymentTransactions []models.PaymentTransaction `json:"payment_transactions"`
	Operations          []models.Operation          `json:"operations"`
	Expenses            []models.Expense            `json:"expenses"`
	Goals               []models.Goal               `json:"goals"`
}

// ExportMeta describes when and what was exported.
type ExportMeta struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Service     string         `json:"service"`
	RowCounts   map[string]int `json:"row_counts"`
}

// Service produces full-database exports for the admin backup endpoint.
type Service interface {
	Export(ctx context.Context) (*Export, error)
}

type service struct {
	repo        Repository
	serviceName string
	logg        *logger.Logger
	now         func() time.Time
}

func NewService(repo Repository, serviceName string, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("backup repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, serviceName: serviceName, logg: logg, now: time.Now}, nil
}

// Export reads every domain table and assembles one JSON document. User rows
// go through the transport view so password hashes never leave the database.
func (s *service) Export(ctx context.Context) (*Export, error) {
	snap, err := s.repo.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	userViews := make([]users.UserView, 0, len(snap.Users))
	for _, u := range snap.Users {
		userViews = append(userViews, users.ToView(u))
	}

	export := &Export{
		Users:               userViews,
		Products:            snap.Products,
		StockItems:          snap.StockItems,
		Coupons:             snap.Coupons,
		Orders:              snap.Orders,
		OrderItems:          snap.OrderItems,
		PaymentTransactions: snap.PaymentTransactions,
		Operations:          snap.Operations,
		Expenses:            snap.Expenses,
		Goals:               snap.Goals,
	}
	export.Meta = ExportMeta{
		GeneratedAt: s.now().UTC(),
		Service:     s.serviceName,
		RowCounts: map[string]int{
			"users":                len(export.Users),
			"products":             len(export.Products),
			"stock_items":          len(export.StockItems),
			"coupons":              len(export.Coupons),
			"orders":               len(export.Orders),
			"order_items":          len(export.OrderItems),
			"payment_transactions": len(export.PaymentTransactions),
			"operations":           len(export.Operations),
			"expenses":             len(export.Expenses),
			"goals":                len(export.Goals),
		},
	}

	s.logg.Info(s.logg.WithField(ctx, "tables", len(export.Meta.RowCounts)), "backup export generated")
	return export, nil
}
