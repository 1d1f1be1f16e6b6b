// Package metrics derives financial summaries from a snapshot of transactions and
// budgets. Every function is pure: inputs are never modified and the reference
// instant is always passed in explicitly.
package metrics

import (
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

// SeriesLength is the number of months covered by MonthlySeries, current month included.
const SeriesLength = 6

var hundred = decimal.NewFromInt(100)

type (
	// Totals summarises one calendar month.
	Totals struct {
		Month    core.Month
		Income   decimal.Decimal
		Expenses decimal.Decimal
		Net      decimal.Decimal
		Count    int
	}

	CategoryTotal struct {
		Category string
		Amount   decimal.Decimal
	}

	SeriesPoint struct {
		Month    core.Month
		Label    string
		Income   decimal.Decimal
		Expenses decimal.Decimal
	}
)

func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MonthlyTotals sums income and expenses of the transactions dated in month.
// Dates are read in loc; a nil loc uses each date's own location.
func MonthlyTotals(txs []core.Transaction, month core.Month, loc *time.Location) Totals {
	out := Totals{Month: month, Income: decimal.Zero, Expenses: decimal.Zero}
	for _, t := range txs {
		if !month.Contains(t.Date, loc) {
			continue
		}
		out.Count++
		switch t.Type {
		case core.Income:
			out.Income = out.Income.Add(t.Magnitude())
		case core.Expense:
			out.Expenses = out.Expenses.Add(t.Magnitude())
		}
	}
	out.Net = out.Income.Sub(out.Expenses)
	return out
}

// ExpenseChange is the month-over-month change in percent. ok is false when
// there is no previous spending to compare against.
func ExpenseChange(current, previous decimal.Decimal) (pct decimal.Decimal, ok bool) {
	if !previous.IsPositive() {
		return decimal.Zero, false
	}
	return current.Sub(previous).Div(previous).Mul(hundred), true
}

// CategoryBreakdown sums the month's expenses per category, in first-seen order.
// Categories without a qualifying transaction are omitted.
func CategoryBreakdown(txs []core.Transaction, month core.Month, loc *time.Location) []CategoryTotal {
	sums := expensesByCategory(txs, month, loc)
	out := make([]CategoryTotal, 0, len(sums))
	for _, s := range sums {
		out = append(out, CategoryTotal{Category: s.Category, Amount: round2(s.Amount)})
	}
	return out
}

// MonthlySeries returns income and expenses for the SeriesLength months ending
// with the month of now, oldest first. Months without transactions are zero.
func MonthlySeries(txs []core.Transaction, now time.Time) []SeriesPoint {
	current := core.MonthOf(now, now.Location())
	out := make([]SeriesPoint, 0, SeriesLength)
	for i := SeriesLength - 1; i >= 0; i-- {
		m := current.AddMonths(-i)
		totals := MonthlyTotals(txs, m, now.Location())
		out = append(out, SeriesPoint{
			Month:    m,
			Label:    m.Label(),
			Income:   round2(totals.Income),
			Expenses: round2(totals.Expenses),
		})
	}
	return out
}

// expensesByCategory keeps exact sums and first-seen order; ties are resolved
// by callers walking the slice front to back.
func expensesByCategory(txs []core.Transaction, month core.Month, loc *time.Location) []CategoryTotal {
	var out []CategoryTotal
	index := make(map[string]int)
	for _, t := range txs {
		if t.Type != core.Expense || !month.Contains(t.Date, loc) {
			continue
		}
		key := core.BucketOf(t.Category)
		i, ok := index[key]
		if !ok {
			i = len(out)
			index[key] = i
			out = append(out, CategoryTotal{Category: key, Amount: decimal.Zero})
		}
		out[i].Amount = out[i].Amount.Add(t.Magnitude())
	}
	return out
}

// spentIn is the exact expense total of one category in month.
func spentIn(txs []core.Transaction, category string, month core.Month, loc *time.Location) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		if t.Type == core.Expense && t.Category == category && month.Contains(t.Date, loc) {
			sum = sum.Add(t.Magnitude())
		}
	}
	return sum
}
