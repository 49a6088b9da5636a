package finance

import (
	"time"

	"github.com/google/uuid"

	"github.com/itsrogermachado/novaeramtds-sub001/pkg/db/models"
)

type CreateOperationInput struct {
	Title       string    `json:"title" validate:"required,max=200"`
	Market      *string   `json:"market" validate:"omitempty,max=100"`
	StakeCents  int       `json:"stake_cents" validate:"required,gt=0"`
	Odds        string    `json:"odds" validate:"required"`
	OccurredAt  time.Time `json:"occurred_at" validate:"required"`
}

type SettleOperationInput struct {
	Result      string `json:"result" validate:"required"`
	ProfitCents *int   `json:"profit_cents"`
}

type CreateExpenseInput struct {
	Description string    `json:"description" validate:"required,max=200"`
	Category    string    `json:"category" validate:"required,max=100"`
	AmountCents int       `json:"amount_cents" validate:"required,gt=0"`
	SpentAt     time.Time `json:"spent_at" validate:"required"`
}

type CreateGoalInput struct {
	Title       string     `json:"title" validate:"required,max=200"`
	TargetCents int        `json:"target_cents" validate:"required,gt=0"`
	Deadline    *time.Time `json:"deadline"`
}

type UpdateGoalProgressInput struct {
	CurrentCents int `json:"current_cents" validate:"gte=0"`
}

type OperationView struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Market      *string   `json:"market,omitempty"`
	StakeCents  int       `json:"stake_cents"`
	Odds        string    `json:"odds"`
	Result      string    `json:"result"`
	ProfitCents int       `json:"profit_cents"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type ExpenseView struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	AmountCents int       `json:"amount_cents"`
	SpentAt     time.Time `json:"spent_at"`
}

type GoalView struct {
	ID           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	TargetCents  int        `json:"target_cents"`
	CurrentCents int        `json:"current_cents"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Status       string     `json:"status"`
}

// MonthlySummaryView is the dashboard payload: twelve months of aggregates
// plus year totals.
type MonthlySummaryView struct {
	Year              int          `json:"year"`
	Months            []MonthlyRow `json:"months"`
	TotalProfitCents  int          `json:"total_profit_cents"`
	TotalExpenseCents int          `json:"total_expense_cents"`
	TotalNetCents     int          `json:"total_net_cents"`
}

type DutchingInput struct {
	TotalStakeCents int      `json:"total_stake_cents" validate:"required,gt=0"`
	Odds            []string `json:"odds" validate:"required,min=2"`
}

type DutchingSelection struct {
	Odds        string `json:"odds"`
	StakeCents  int    `json:"stake_cents"`
	ReturnCents int    `json:"return_cents"`
}

type DutchingResult struct {
	TotalStakeCents int                 `json:"total_stake_cents"`
	Selections      []DutchingSelection `json:"selections"`
	ProfitCents     int                 `json:"profit_cents"`
}

func toOperationView(op models.Operation) OperationView {
	return OperationView{
		ID:          op.ID,
		Title:       op.Title,
		Market:      op.Market,
		StakeCents:  op.StakeCents,
		Odds:        op.Odds,
		Result:      string(op.Result),
		ProfitCents: op.ProfitCents,
		OccurredAt:  op.OccurredAt,
	}
}

func toExpenseView(e models.Expense) ExpenseView {
	return ExpenseView{
		ID:          e.ID,
		Description: e.Description,
		Category:    e.Category,
		AmountCents: e.AmountCents,
		SpentAt:     e.SpentAt,
	}
}

func toGoalView(g models.Goal) GoalView {
	return GoalView{
		ID:           g.ID,
		Title:        g.Title,
		TargetCents:  g.TargetCents,
		CurrentCents: g.CurrentCents,
		Deadline:     g.Deadline,
		Status:       string(g.Status),
	}
}
