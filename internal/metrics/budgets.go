package metrics

import (
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

var onTrackRatio = decimal.RequireFromString("0.8")

type (
	// BudgetComparison pairs a budget with the spending realised against it.
	BudgetComparison struct {
		Category string
		Budget   decimal.Decimal
		Actual   decimal.Decimal
	}

	// BudgetStatus is the progress view of a single budget. Progress is Percent
	// capped at 100.
	BudgetStatus struct {
		Category  string
		Budget    decimal.Decimal
		Spent     decimal.Decimal
		Remaining decimal.Decimal
		Percent   decimal.Decimal
		Progress  decimal.Decimal
		Over      bool
	}

	budgetUsage struct {
		budget core.Budget
		spent  decimal.Decimal
	}
)

// CompareBudgets returns one entry per budget filed under month, in budget order.
func CompareBudgets(txs []core.Transaction, budgets []core.Budget, month core.Month, loc *time.Location) []BudgetComparison {
	usage := usageFor(txs, budgets, month, loc)
	out := make([]BudgetComparison, 0, len(usage))
	for _, u := range usage {
		out = append(out, BudgetComparison{
			Category: u.budget.Category,
			Budget:   round2(u.budget.Amount),
			Actual:   round2(u.spent),
		})
	}
	return out
}

// BudgetStatuses reports spent, remaining and percentage used for each budget of month.
func BudgetStatuses(txs []core.Transaction, budgets []core.Budget, month core.Month, loc *time.Location) []BudgetStatus {
	usage := usageFor(txs, budgets, month, loc)
	out := make([]BudgetStatus, 0, len(usage))
	for _, u := range usage {
		pct := decimal.Zero
		if u.budget.Amount.IsPositive() {
			pct = u.spent.Div(u.budget.Amount).Mul(hundred)
		}
		progress := pct
		if progress.GreaterThan(hundred) {
			progress = hundred
		}
		out = append(out, BudgetStatus{
			Category:  u.budget.Category,
			Budget:    round2(u.budget.Amount),
			Spent:     round2(u.spent),
			Remaining: round2(u.budget.Amount.Sub(u.spent)),
			Percent:   pct.Round(1),
			Progress:  progress.Round(1),
			Over:      u.spent.GreaterThan(u.budget.Amount),
		})
	}
	return out
}

func usageFor(txs []core.Transaction, budgets []core.Budget, month core.Month, loc *time.Location) []budgetUsage {
	var out []budgetUsage
	for _, b := range budgets {
		if b.Month != month {
			continue
		}
		out = append(out, budgetUsage{budget: b, spent: spentIn(txs, b.Category, month, loc)})
	}
	return out
}

func (u budgetUsage) over() bool {
	return u.spent.GreaterThan(u.budget.Amount)
}

// onTrack leaves spending between 80% and 100% of the budget in neither group.
func (u budgetUsage) onTrack() bool {
	return u.spent.LessThanOrEqual(u.budget.Amount.Mul(onTrackRatio))
}
