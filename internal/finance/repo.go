package finance

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{db: tx}
}

func (r *repository) CreateOperation(ctx context.Context, op *models.Operation) (*models.Operation, error) {
	if err := r.db.WithContext(ctx).Create(op).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating operation")
	}
	return op, nil
}

func (r *repository) FindOperation(ctx context.Context, userID, id uuid.UUID) (*models.Operation, error) {
	var op models.Operation
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&op).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "operation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding operation")
	}
	return &op, nil
}

func (r *repository) ListOperations(ctx context.Context, userID uuid.UUID, year int) ([]models.Operation, error) {
	var ops []models.Operation
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if year > 0 {
		start, end := yearBounds(year)
		q = q.Where("occurred_at >= ? AND occurred_at < ?", start, end)
	}
	if err := q.Order("occurred_at DESC").Find(&ops).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing operations")
	}
	return ops, nil
}

func (r *repository) UpdateOperation(ctx context.Context, userID, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Operation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "updating operation")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "operation not found")
	}
	return nil
}

func (r *repository) DeleteOperation(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Operation{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "deleting operation")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "operation not found")
	}
	return nil
}

func (r *repository) CreateExpense(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	if err := r.db.WithContext(ctx).Create(expense).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating expense")
	}
	return expense, nil
}

func (r *repository) ListExpenses(ctx context.Context, userID uuid.UUID, year int) ([]models.Expense, error) {
	var expenses []models.Expense
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if year > 0 {
		start, end := yearBounds(year)
		q = q.Where("spent_at >= ? AND spent_at < ?", start, end)
	}
	if err := q.Order("spent_at DESC").Find(&expenses).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing expenses")
	}
	return expenses, nil
}

func (r *repository) UpdateExpense(ctx context.Context, userID, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "updating expense")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
	}
	return nil
}

func (r *repository) DeleteExpense(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Expense{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "deleting expense")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "expense not found")
	}
	return nil
}

func (r *repository) CreateGoal(ctx context.Context, goal *models.Goal) (*models.Goal, error) {
	if err := r.db.WithContext(ctx).Create(goal).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating goal")
	}
	return goal, nil
}

func (r *repository) FindGoal(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error) {
	var goal models.Goal
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&goal).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "goal not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "finding goal")
	}
	return &goal, nil
}

func (r *repository) ListGoals(ctx context.Context, userID uuid.UUID) ([]models.Goal, error) {
	var goals []models.Goal
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&goals).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing goals")
	}
	return goals, nil
}

func (r *repository) UpdateGoal(ctx context.Context, userID, id uuid.UUID, updates map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&models.Goal{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "updating goal")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "goal not found")
	}
	return nil
}

func (r *repository) DeleteGoal(ctx context.Context, userID, id uuid.UUID) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Goal{})
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, res.Error, "deleting goal")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "goal not found")
	}
	return nil
}

type monthAmount struct {
	Month int
	Total int
}

// MonthlyAggregates sums settled operation profit and expenses per month of
// the given year. Months with no rows are still present in the result with
// zeroed amounts so the dashboard always renders twelve columns.
func (r *repository) MonthlyAggregates(ctx context.Context, userID uuid.UUID, year int) ([]MonthlyRow, error) {
	start, end := yearBounds(year)

	var profits []monthAmount
	err := r.db.WithContext(ctx).
		Model(&models.Operation{}).
		Select(monthExpr(r.db, "occurred_at")+" AS month, COALESCE(SUM(profit_cents), 0) AS total").
		Where("user_id = ? AND occurred_at >= ? AND occurred_at < ? AND result IN ?",
			userID, start, end, []string{"green", "red"}).
		Group("month").
		Scan(&profits).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating operations")
	}

	var expenses []monthAmount
	err = r.db.WithContext(ctx).
		Model(&models.Expense{}).
		Select(monthExpr(r.db, "spent_at")+" AS month, COALESCE(SUM(amount_cents), 0) AS total").
		Where("user_id = ? AND spent_at >= ? AND spent_at < ?", userID, start, end).
		Group("month").
		Scan(&expenses).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating expenses")
	}

	rows := make([]MonthlyRow, 12)
	for i := range rows {
		rows[i].Month = i + 1
	}
	for _, p := range profits {
		if p.Month >= 1 && p.Month <= 12 {
			rows[p.Month-1].ProfitCents = p.Total
		}
	}
	for _, e := range expenses {
		if e.Month >= 1 && e.Month <= 12 {
			rows[e.Month-1].ExpenseCents = e.Total
		}
	}
	for i := range rows {
		rows[i].NetCents = rows[i].ProfitCents - rows[i].ExpenseCents
	}
	return rows, nil
}

func yearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}

// monthExpr returns the dialect-specific expression extracting the month
// number from a timestamp column. Only sqlite and postgres are supported, the
// same pair the connection layer knows about.
func monthExpr(db *gorm.DB, column string) string {
	if db.Dialector.Name() == "sqlite" {
		return "CAST(strftime('%m', " + column + ") AS INTEGER)"
	}
	return "EXTRACT(MONTH FROM " + column + ")::int"
}
