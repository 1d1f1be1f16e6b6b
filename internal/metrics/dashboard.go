package metrics

import (
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// Snapshot is the store content the engine works on.
type Snapshot struct {
	Transactions []core.Transaction
	Budgets      []core.Budget
}

// Dashboard bundles every derived view for one reference instant.
type Dashboard struct {
	GeneratedFor time.Time
	Month        core.Month
	Current      Totals
	Previous     Totals
	// ExpenseChange is nil when the previous month had no expenses.
	ExpenseChange *decimal.Decimal
	Categories    []CategoryTotal
	Series        []SeriesPoint
	Budgets       []BudgetComparison
	BudgetStatus  []BudgetStatus
	Insights      []Insight
	NoInsights    bool
}

// Compute derives the full dashboard for the month containing now.
func Compute(s Snapshot, now time.Time) Dashboard {
	loc := now.Location()
	month := core.MonthOf(now, loc)

	d := Dashboard{
		GeneratedFor: now,
		Month:        month,
		Current:      MonthlyTotals(s.Transactions, month, loc),
		Previous:     MonthlyTotals(s.Transactions, month.Prev(), loc),
		Categories:   CategoryBreakdown(s.Transactions, month, loc),
		Series:       MonthlySeries(s.Transactions, now),
		Budgets:      CompareBudgets(s.Transactions, s.Budgets, month, loc),
		BudgetStatus: BudgetStatuses(s.Transactions, s.Budgets, month, loc),
		Insights:     Insights(s.Transactions, s.Budgets, now),
	}
	if pct, ok := ExpenseChange(d.Current.Expenses, d.Previous.Expenses); ok {
		pct = pct.Round(1)
		d.ExpenseChange = &pct
	}
	d.NoInsights = len(d.Insights) == 0
	return d
}
