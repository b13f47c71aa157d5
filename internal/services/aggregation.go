package services

import (
	"context"
	"time"

	"budgetbook/internal/core"

	"github.com/shopspring/decimal"
)

// BudgetProgress is how far a budget's spending has progressed inside its
// current period window. Percentage exceeding 100 is a valid over-budget
// state, not an error.
type BudgetProgress struct {
	BudgetID   int64           `json:"budgetId"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
}

// BudgetRuleProgress is spending against a percentage-of-income allocation
// bucket for the current calendar month.
type BudgetRuleProgress struct {
	RuleID     int64           `json:"ruleId"`
	Budget     decimal.Decimal `json:"budget"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage float64         `json:"percentage"`
}

// GetBudgetProgress sums the tenant's expenses for the budget's category
// inside the period window containing now.
func (s *LedgerService) GetBudgetProgress(ctx context.Context, budgetID int64, now time.Time) (BudgetProgress, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return BudgetProgress{}, err
	}
	b, err := s.store.GetBudget(ctx, budgetID, t.ID)
	if err != nil {
		return BudgetProgress{}, err
	}

	window := core.PeriodWindow(b.Period, now)
	entries, err := s.store.ListEntriesInWindow(ctx, t.ID, window)
	if err != nil {
		return BudgetProgress{}, err
	}

	spent := decimal.Zero
	for _, e := range entries {
		if e.Category == b.Category && e.IsExpense() {
			spent = spent.Add(e.Magnitude())
		}
	}

	return BudgetProgress{
		BudgetID:   b.ID,
		Spent:      spent,
		Remaining:  remaining(b.Amount, spent),
		Percentage: percentage(spent, b.Amount),
	}, nil
}

// GetBudgetRuleProgress computes the rule's ceiling from the given monthly
// income and sums the tenant's expenses assigned to the rule during the
// calendar month containing now.
func (s *LedgerService) GetBudgetRuleProgress(ctx context.Context, ruleID int64, monthlyIncome decimal.Decimal, now time.Time) (BudgetRuleProgress, error) {
	t, err := s.requireTenant(ctx)
	if err != nil {
		return BudgetRuleProgress{}, err
	}
	r, err := s.store.GetVisibleBudgetRule(ctx, ruleID, t.ID)
	if err != nil {
		return BudgetRuleProgress{}, err
	}

	budget := monthlyIncome.Mul(decimal.NewFromFloat(r.Percentage)).Div(decimal.NewFromInt(100))

	entries, err := s.store.ListEntriesInWindow(ctx, t.ID, core.MonthWindow(now))
	if err != nil {
		return BudgetRuleProgress{}, err
	}

	spent := decimal.Zero
	for _, e := range entries {
		if e.BudgetRuleID != nil && *e.BudgetRuleID == r.ID && e.IsExpense() {
			spent = spent.Add(e.Magnitude())
		}
	}

	return BudgetRuleProgress{
		RuleID:     r.ID,
		Budget:     budget,
		Spent:      spent,
		Remaining:  remaining(budget, spent),
		Percentage: percentage(spent, budget),
	}, nil
}

// remaining clamps limit - spent at zero.
func remaining(limit, spent decimal.Decimal) decimal.Decimal {
	rem := limit.Sub(spent)
	if rem.Sign() < 0 {
		return decimal.Zero
	}
	return rem
}

// percentage returns spent/limit*100, or 0 for a non-positive limit.
func percentage(spent, limit decimal.Decimal) float64 {
	if limit.Sign() <= 0 {
		return 0
	}
	p, _ := spent.Div(limit).Mul(decimal.NewFromInt(100)).Float64()
	return p
}
