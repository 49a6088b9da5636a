package finance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
)

// MonthlyRow is one month of aggregated dashboard numbers.
type MonthlyRow struct {
	Month        int `json:"month"`
	ProfitCents  int `json:"profit_cents"`
	ExpenseCents int `json:"expense_cents"`
	NetCents     int `json:"net_cents"`
	TrendCents   int `json:"trend_cents"`
}

// Repository defines persistence for the finance dashboard. Every query is
// scoped to the owning user.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateOperation(ctx context.Context, op *models.Operation) (*models.Operation, error)
	FindOperation(ctx context.Context, userID, id uuid.UUID) (*models.Operation, error)
	ListOperations(ctx context.Context, userID uuid.UUID, year int) ([]models.Operation, error)
	UpdateOperation(ctx context.Context, userID, id uuid.UUID, updates map[string]any) error
	DeleteOperation(ctx context.Context, userID, id uuid.UUID) error

	CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	ListExpenses(ctx context.Context, userID uuid.UUID, year int) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, userID, id uuid.UUID, updates map[string]any) error
	DeleteExpense(ctx context.Context, userID, id uuid.UUID) error

	CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error)
	FindGoal(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error)
	ListGoals(ctx context.Context, userID uuid.UUID) ([]models.Goal, error)
	UpdateGoal(ctx context.Context, userID, id uuid.UUID, updates map[string]any) error
	DeleteGoal(ctx context.Context, userID, id uuid.UUID) error

	MonthlyAggregates(ctx context.Context, userID uuid.UUID, year int) ([]MonthlyRow, error)
}
