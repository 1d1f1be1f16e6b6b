package metrics

import (
	"fmt"
	"strings"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

const (
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"

	InsightOverBudget  InsightKind = "over_budget"
	InsightTopCategory InsightKind = "top_category"
	InsightOnTrack     InsightKind = "on_track"
	InsightTrend       InsightKind = "spending_trend"

	// NoInsightsMessage is shown when no rule produced an insight.
	NoInsightsMessage = "No insights available yet"
)

var trendThreshold = decimal.NewFromInt(10)

type (
	Severity    string
	InsightKind string

	// Insight is a classified observation about the month's spending. Only the
	// payload fields relevant to Kind are set.
	Insight struct {
		Kind        InsightKind
		Severity    Severity
		Title       string
		Description string

		Count         int
		Categories    []string
		Category      string
		Amount        decimal.Decimal
		PercentChange decimal.Decimal
		Direction     string
	}
)

// Insights evaluates the insight rules for the month containing now. The result
// is ordered over budget, top category, on track, trend. An empty, non-nil slice
// means nothing noteworthy was found.
func Insights(txs []core.Transaction, budgets []core.Budget, now time.Time) []Insight {
	loc := now.Location()
	month := core.MonthOf(now, loc)
	usage := usageFor(txs, budgets, month, loc)

	out := make([]Insight, 0, 4)
	if in, ok := overBudgetInsight(usage); ok {
		out = append(out, in)
	}
	if in, ok := topCategoryInsight(expensesByCategory(txs, month, loc)); ok {
		out = append(out, in)
	}
	if in, ok := onTrackInsight(usage); ok {
		out = append(out, in)
	}
	current := MonthlyTotals(txs, month, loc).Expenses
	previous := MonthlyTotals(txs, month.Prev(), loc).Expenses
	if in, ok := trendInsight(current, previous); ok {
		out = append(out, in)
	}
	return out
}

func overBudgetInsight(usage []budgetUsage) (Insight, bool) {
	var names []string
	for _, u := range usage {
		if u.over() {
			names = append(names, u.budget.Category)
		}
	}
	if len(names) == 0 {
		return Insight{}, false
	}
	return Insight{
		Kind:        InsightOverBudget,
		Severity:    SeverityWarning,
		Title:       "Over Budget Alert",
		Description: fmt.Sprintf("You're over budget in %d %s: %s", len(names), pluralCategory(len(names)), strings.Join(names, ", ")),
		Count:       len(names),
		Categories:  names,
	}, true
}

// topCategoryInsight needs a strictly positive total; the first category seen wins ties.
func topCategoryInsight(sums []CategoryTotal) (Insight, bool) {
	top := CategoryTotal{Amount: decimal.Zero}
	for _, s := range sums {
		if s.Amount.GreaterThan(top.Amount) {
			top = s
		}
	}
	if top.Category == "" {
		return Insight{}, false
	}
	return Insight{
		Kind:        InsightTopCategory,
		Severity:    SeverityInfo,
		Title:       "Top Spending Category",
		Description: fmt.Sprintf("%s accounts for %s of your expenses this month", top.Category, core.FormatDollars(top.Amount)),
		Category:    top.Category,
		Amount:      round2(top.Amount),
	}, true
}

func onTrackInsight(usage []budgetUsage) (Insight, bool) {
	var names []string
	for _, u := range usage {
		if u.onTrack() {
			names = append(names, u.budget.Category)
		}
	}
	if len(names) == 0 {
		return Insight{}, false
	}
	return Insight{
		Kind:        InsightOnTrack,
		Severity:    SeveritySuccess,
		Title:       "Budget Goals on Track",
		Description: fmt.Sprintf("You're doing well in %d %s: %s", len(names), pluralCategory(len(names)), strings.Join(names, ", ")),
		Count:       len(names),
		Categories:  names,
	}, true
}

func trendInsight(current, previous decimal.Decimal) (Insight, bool) {
	pct, ok := ExpenseChange(current, previous)
	if !ok {
		return Insight{}, false
	}
	severity := SeverityInfo
	switch {
	case pct.GreaterThan(trendThreshold):
		severity = SeverityWarning
	case pct.LessThan(trendThreshold.Neg()):
		severity = SeveritySuccess
	}
	direction := "lower"
	if pct.IsPositive() {
		direction = "higher"
	}
	magnitude := pct.Abs().Round(1)
	return Insight{
		Kind:          InsightTrend,
		Severity:      severity,
		Title:         "Monthly Spending Trend",
		Description:   fmt.Sprintf("Your spending is %s%% %s than last month", magnitude.StringFixed(1), direction),
		PercentChange: pct.Round(1),
		Direction:     direction,
	}, true
}

func pluralCategory(n int) string {
	if n == 1 {
		return "category"
	}
	return "categories"
}
