package finance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/enums"
	pkgerrors "github.com/itsrogermachado/novaeramtds-sub001/pkg/errors"
	"github.com/itsrogermachado/novaeramtds-sub001/pkg/logger"
)

// Service is the finance dashboard: per-user operations, expenses, goals,
// monthly aggregation and the dutching stake calculator.
type Service interface {
	CreateOperation(ctx context.Context, userID uuid.UUID, input CreateOperationInput) (*OperationView, error)
	SettleOperation(ctx context.Context, userID, id uuid.UUID, input SettleOperationInput) (*OperationView, error)
	ListOperations(ctx context.Context, userID uuid.UUID, year int) ([]OperationView, error)
	DeleteOperation(ctx context.Context, userID, id uuid.UUID) error

	CreateExpense(ctx context.Context, userID uuid.UUID, input CreateExpenseInput) (*ExpenseView, error)
	ListExpenses(ctx context.Context, userID uuid.UUID, year int) ([]ExpenseView, error)
	DeleteExpense(ctx context.Context, userID, id uuid.UUID) error

	CreateGoal(ctx context.Context, userID uuid.UUID, input CreateGoalInput) (*GoalView, error)
	ListGoals(ctx context.Context, userID uuid.UUID) ([]GoalView, error)
	UpdateGoalProgress(ctx context.Context, userID, id uuid.UUID, input UpdateGoalProgressInput) (*GoalView, error)
	AbandonGoal(ctx context.Context, userID, id uuid.UUID) error
	DeleteGoal(ctx context.Context, userID, id uuid.UUID) error

	MonthlySummary(ctx context.Context, userID uuid.UUID, year int) (*MonthlySummaryView, error)
	Dutching(ctx context.Context, input DutchingInput) (*DutchingResult, error)
}

type service struct {
	repo Repository
	logg *logger.Logger
	now  func() time.Time
}

func NewService(repo Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("finance repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

func (s *service) CreateOperation(ctx context.Context, userID uuid.UUID, input CreateOperationInput) (*OperationView, error) {
	odds, err := parseOdds(input.Odds)
	if err != nil {
		return nil, err
	}
	op := &models.Operation{
		ID:         uuid.New(),
		UserID:     userID,
		Title:      strings.TrimSpace(input.Title),
		Market:     input.Market,
		StakeCents: input.StakeCents,
		Odds:       odds.String(),
		Result:     enums.OperationResultPending,
		OccurredAt: input.OccurredAt,
	}
	created, err := s.repo.CreateOperation(ctx, op)
	if err != nil {
		return nil, err
	}
	view := toOperationView(*created)
	return &view, nil
}

// SettleOperation moves a pending operation to green/red/void. Profit is
// derived from stake and odds unless the caller supplies an explicit amount
// (partial cashouts settle below the full return).
func (s *service) SettleOperation(ctx context.Context, userID, id uuid.UUID, input SettleOperationInput) (*OperationView, error) {
	result, err := enums.ParseOperationResult(input.Result)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid operation result")
	}
	if result == enums.OperationResultPending {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "operations cannot be settled back to pending")
	}

	op, err := s.repo.FindOperation(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if op.Result != enums.OperationResultPending {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "operation already settled")
	}

	profit := 0
	switch result {
	case enums.OperationResultGreen:
		if input.ProfitCents != nil {
			profit = *input.ProfitCents
		} else {
			odds, parseErr := parseOdds(op.Odds)
			if parseErr != nil {
				return nil, parseErr
			}
			stake := decimal.NewFromInt(int64(op.StakeCents))
			profit = int(stake.Mul(odds).Floor().IntPart()) - op.StakeCents
		}
	case enums.OperationResultRed:
		if input.ProfitCents != nil {
			profit = *input.ProfitCents
		} else {
			profit = -op.StakeCents
		}
	case enums.OperationResultVoid:
		// stake returned, nothing won or lost
	}

	updates := map[string]any{
		"result":       result,
		"profit_cents": profit,
	}
	if err := s.repo.UpdateOperation(ctx, userID, id, updates); err != nil {
		return nil, err
	}
	op.Result = result
	op.ProfitCents = profit
	view := toOperationView(*op)
	return &view, nil
}

func (s *service) ListOperations(ctx context.Context, userID uuid.UUID, year int) ([]OperationView, error) {
	ops, err := s.repo.ListOperations(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	views := make([]OperationView, 0, len(ops))
	for _, op := range ops {
		views = append(views, toOperationView(op))
	}
	return views, nil
}

func (s *service) DeleteOperation(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteOperation(ctx, userID, id)
}

func (s *service) CreateExpense(ctx context.Context, userID uuid.UUID, input CreateExpenseInput) (*ExpenseView, error) {
	expense := &models.Expense{
		ID:          uuid.New(),
		UserID:      userID,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(strings.ToLower(input.Category)),
		AmountCents: input.AmountCents,
		SpentAt:     input.SpentAt,
	}
	created, err := s.repo.CreateExpense(ctx, expense)
	if err != nil {
		return nil, err
	}
	view := toExpenseView(*created)
	return &view, nil
}

func (s *service) ListExpenses(ctx context.Context, userID uuid.UUID, year int) ([]ExpenseView, error) {
	expenses, err := s.repo.ListExpenses(ctx, userID, year)
	if err != nil {
		return nil, err
	}
	views := make([]ExpenseView, 0, len(expenses))
	for _, e := range expenses {
		views = append(views, toExpenseView(e))
	}
	return views, nil
}

func (s *service) DeleteExpense(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteExpense(ctx, userID, id)
}

func (s *service) CreateGoal(ctx context.Context, userID uuid.UUID, input CreateGoalInput) (*GoalView, error) {
	if input.Deadline != nil && input.Deadline.Before(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "goal deadline is in the past")
	}
	goal := &models.Goal{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       strings.TrimSpace(input.Title),
		TargetCents: input.TargetCents,
		Deadline:    input.Deadline,
		Status:      enums.GoalStatusActive,
	}
	created, err := s.repo.CreateGoal(ctx, goal)
	if err != nil {
		return nil, err
	}
	view := toGoalView(*created)
	return &view, nil
}

func (s *service) ListGoals(ctx context.Context, userID uuid.UUID) ([]GoalView, error) {
	goals, err := s.repo.ListGoals(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]GoalView, 0, len(goals))
	for _, g := range goals {
		views = append(views, toGoalView(g))
	}
	return views, nil
}

// UpdateGoalProgress records new progress and flips the goal to reached once
// the target is hit. Abandoned goals are frozen.
func (s *service) UpdateGoalProgress(ctx context.Context, userID, id uuid.UUID, input UpdateGoalProgressInput) (*GoalView, error) {
	goal, err := s.repo.FindGoal(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if goal.Status == enums.GoalStatusAbandoned {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "goal was abandoned")
	}

	updates := map[string]any{"current_cents": input.CurrentCents}
	status := goal.Status
	if input.CurrentCents >= goal.TargetCents {
		status = enums.GoalStatusReached
	} else {
		status = enums.GoalStatusActive
	}
	if status != goal.Status {
		updates["status"] = status
	}
	if err := s.repo.UpdateGoal(ctx, userID, id, updates); err != nil {
		return nil, err
	}
	goal.CurrentCents = input.CurrentCents
	goal.Status = status
	view := toGoalView(*goal)
	return &view, nil
}

func (s *service) AbandonGoal(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.UpdateGoal(ctx, userID, id, map[string]any{
		"status": enums.GoalStatusAbandoned,
	})
}

func (s *service) DeleteGoal(ctx context.Context, userID, id uuid.UUID) error {
	return s.repo.DeleteGoal(ctx, userID, id)
}

// MonthlySummary aggregates the year per month and derives the trend as the
// net delta against the previous month. January has no predecessor inside the
// requested year, so its trend is its own net.
func (s *service) MonthlySummary(ctx context.Context, userID uuid.UUID, year int) (*MonthlySummaryView, error) {
	if year < 2000 || year > 2100 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "year out of range")
	}
	rows, err := s.repo.MonthlyAggregates(ctx, userID, year)
	if err != nil {
		return nil, err
	}

	summary := &MonthlySummaryView{Year: year, Months: rows}
	for i := range rows {
		if i == 0 {
			rows[i].TrendCents = rows[i].NetCents
		} else {
			rows[i].TrendCents = rows[i].NetCents - rows[i-1].NetCents
		}
		summary.TotalProfitCents += rows[i].ProfitCents
		summary.TotalExpenseCents += rows[i].ExpenseCents
		summary.TotalNetCents += rows[i].NetCents
	}
	return summary, nil
}

// Dutching splits a total stake across selections so every winning outcome
// pays the same return. Stakes are proportional to 1/odds, floored to the
// cent, with the rounding remainder assigned to the first selection so the
// stakes always sum to the requested total.
func (s *service) Dutching(_ context.Context, input DutchingInput) (*DutchingResult, error) {
	if input.TotalStakeCents <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total stake must be positive")
	}
	if len(input.Odds) < 2 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "dutching needs at least two selections")
	}

	odds := make([]decimal.Decimal, 0, len(input.Odds))
	inverseSum := decimal.Zero
	for _, raw := range input.Odds {
		o, err := parseOdds(raw)
		if err != nil {
			return nil, err
		}
		odds = append(odds, o)
		inverseSum = inverseSum.Add(decimal.New(1, 0).DivRound(o, 12))
	}

	total := decimal.NewFromInt(int64(input.TotalStakeCents))
	result := &DutchingResult{TotalStakeCents: input.TotalStakeCents}
	allocated := 0
	for _, o := range odds {
		share := total.Mul(decimal.New(1, 0).DivRound(o, 12)).DivRound(inverseSum, 12)
		stake := int(share.Floor().IntPart())
		result.Selections = append(result.Selections, DutchingSelection{
			Odds:       o.String(),
			StakeCents: stake,
		})
		allocated += stake
	}
	if remainder := input.TotalStakeCents - allocated; remainder > 0 {
		result.Selections[0].StakeCents += remainder
	}

	// Profit is quoted from the worst selection so it is never overstated
	// after cent rounding.
	for i, sel := range result.Selections {
		ret := decimal.NewFromInt(int64(sel.StakeCents)).Mul(odds[i]).Floor()
		result.Selections[i].ReturnCents = int(ret.IntPart())
		profit := result.Selections[i].ReturnCents - input.TotalStakeCents
		if i == 0 || profit < result.ProfitCents {
			result.ProfitCents = profit
		}
	}
	return result, nil
}

func parseOdds(raw string) (decimal.Decimal, error) {
	o, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "odds must be a decimal number")
	}
	if o.LessThanOrEqual(decimal.New(1, 0)) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "odds must be greater than 1.0")
	}
	return o, nil
}
