package metrics

import (
	"testing"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	now       = time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	thisMonth = core.Month{Year: 2025, Month: time.March}
	lastMonth = core.Month{Year: 2025, Month: time.February}
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func tx(amount string, kind core.Kind, category string, date time.Time) core.Transaction {
	return core.Transaction{
		ID:          category + date.Format(time.RFC3339Nano) + amount,
		Amount:      dec(amount),
		Description: "test",
		Category:    category,
		Date:        date,
		Type:        kind,
	}
}

func day(m core.Month, d int) time.Time {
	return time.Date(m.Year, m.Month, d, 10, 0, 0, 0, time.UTC)
}

func budget(category, amount string, m core.Month) core.Budget {
	return core.Budget{ID: category + m.String(), Category: category, Amount: dec(amount), Month: m}
}

// scenarioA is one income and one expense in the current month.
func scenarioA() []core.Transaction {
	return []core.Transaction{
		tx("100", core.Income, core.IncomeCategory, day(thisMonth, 2)),
		tx("40", core.Expense, core.FoodDining, day(thisMonth, 3)),
	}
}

func TestMonthlyTotals_ScenarioA(t *testing.T) {
	got := MonthlyTotals(scenarioA(), thisMonth, time.UTC)

	assert.True(t, got.Income.Equal(dec("100")), "income %s", got.Income)
	assert.True(t, got.Expenses.Equal(dec("40")), "expenses %s", got.Expenses)
	assert.True(t, got.Net.Equal(dec("60")), "net %s", got.Net)
	assert.Equal(t, 2, got.Count)
}

func TestMonthlyTotals_IgnoresSignAndOtherMonths(t *testing.T) {
	txs := []core.Transaction{
		tx("-25.50", core.Expense, core.Groceries, day(thisMonth, 1)),
		tx("-10", core.Income, core.IncomeCategory, day(thisMonth, 1)),
		tx("999", core.Expense, core.Groceries, day(lastMonth, 28)),
		tx("5", core.Expense, core.Groceries, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)),
	}
	got := MonthlyTotals(txs, thisMonth, time.UTC)

	assert.True(t, got.Expenses.Equal(dec("25.5")))
	assert.True(t, got.Income.Equal(dec("10")))
	assert.True(t, got.Net.Equal(dec("-15.5")))
	assert.Equal(t, 2, got.Count)
}

func TestMonthlyTotals_Empty(t *testing.T) {
	got := MonthlyTotals(nil, thisMonth, time.UTC)

	assert.True(t, got.Income.IsZero())
	assert.True(t, got.Expenses.IsZero())
	assert.True(t, got.Net.IsZero())
	assert.Zero(t, got.Count)
}

func TestMonthlyTotals_UsesLocation(t *testing.T) {
	east := time.FixedZone("UTC+3", 3*60*60)
	late := time.Date(2025, time.February, 28, 22, 0, 0, 0, time.UTC)
	txs := []core.Transaction{tx("30", core.Expense, core.Travel, late)}

	assert.Equal(t, 1, MonthlyTotals(txs, lastMonth, time.UTC).Count)
	assert.Equal(t, 1, MonthlyTotals(txs, thisMonth, east).Count)
	assert.Zero(t, MonthlyTotals(txs, lastMonth, east).Count)
}

func TestMonthlyTotals_CalendarDatesWestOfUTC(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	date, err := core.ParseDate("2025-04-01")
	require.NoError(t, err)
	txs := []core.Transaction{tx("40", core.Expense, core.FoodDining, date)}

	april := core.Month{Year: 2025, Month: time.April}
	assert.True(t, dec("40").Equal(MonthlyTotals(txs, april, ny).Expenses))
	assert.Zero(t, MonthlyTotals(txs, april.Prev(), ny).Count)

	d := Compute(Snapshot{Transactions: txs}, time.Date(2025, time.April, 15, 12, 0, 0, 0, ny))
	assert.True(t, dec("40").Equal(d.Current.Expenses))
	assert.True(t, d.Previous.Expenses.IsZero())
}

func TestExpenseChange(t *testing.T) {
	pct, ok := ExpenseChange(dec("150"), dec("100"))
	require.True(t, ok)
	assert.True(t, pct.Equal(dec("50")), "pct %s", pct)

	pct, ok = ExpenseChange(dec("75"), dec("100"))
	require.True(t, ok)
	assert.True(t, pct.Equal(dec("-25")), "pct %s", pct)

	_, ok = ExpenseChange(dec("75"), decimal.Zero)
	assert.False(t, ok)
}

func TestCategoryBreakdown(t *testing.T) {
	txs := []core.Transaction{
		tx("12.10", core.Expense, core.Groceries, day(thisMonth, 1)),
		tx("7.25", core.Expense, core.Transportation, day(thisMonth, 2)),
		tx("0.15", core.Expense, core.Groceries, day(thisMonth, 3)),
		tx("300", core.Income, core.IncomeCategory, day(thisMonth, 3)),
		tx("80", core.Expense, core.Shopping, day(lastMonth, 3)),
		tx("3", core.Expense, "Crypto", day(thisMonth, 4)),
		tx("2", core.Expense, "", day(thisMonth, 4)),
	}

	got := CategoryBreakdown(txs, thisMonth, time.UTC)

	require.Len(t, got, 4)
	assert.Equal(t, core.Groceries, got[0].Category)
	assert.True(t, got[0].Amount.Equal(dec("12.25")))
	assert.Equal(t, core.Transportation, got[1].Category)
	assert.Equal(t, "Crypto", got[2].Category)
	assert.Equal(t, core.Uncategorized, got[3].Category)
}

func TestCategoryBreakdown_RoundsForDisplay(t *testing.T) {
	txs := []core.Transaction{
		tx("1.004", core.Expense, core.Other, day(thisMonth, 1)),
		tx("1.002", core.Expense, core.Other, day(thisMonth, 1)),
	}
	got := CategoryBreakdown(txs, thisMonth, time.UTC)
	require.Len(t, got, 1)
	assert.Equal(t, "2.01", got[0].Amount.StringFixed(2))
}

func TestCategoryBreakdown_ConservesExpenseTotal(t *testing.T) {
	txs := []core.Transaction{
		tx("10.10", core.Expense, core.Groceries, day(thisMonth, 1)),
		tx("20.20", core.Expense, core.Healthcare, day(thisMonth, 2)),
		tx("30.30", core.Expense, core.Groceries, day(thisMonth, 3)),
		tx("-4.40", core.Expense, core.Education, day(thisMonth, 4)),
		tx("1000", core.Income, core.IncomeCategory, day(thisMonth, 5)),
	}
	sum := decimal.Zero
	for _, c := range CategoryBreakdown(txs, thisMonth, time.UTC) {
		sum = sum.Add(c.Amount)
	}
	assert.True(t, sum.Equal(MonthlyTotals(txs, thisMonth, time.UTC).Expenses), "sum %s", sum)
}

func TestMonthlySeries(t *testing.T) {
	txs := []core.Transaction{
		tx("100", core.Income, core.IncomeCategory, day(thisMonth, 1)),
		tx("40", core.Expense, core.FoodDining, day(thisMonth, 2)),
		tx("60", core.Expense, core.Travel, day(core.Month{Year: 2024, Month: time.October}, 2)),
		tx("70", core.Expense, core.Travel, day(core.Month{Year: 2024, Month: time.September}, 2)),
	}

	got := MonthlySeries(txs, now)

	require.Len(t, got, SeriesLength)
	labels := make([]string, 0, len(got))
	for i, p := range got {
		labels = append(labels, p.Label)
		if i > 0 {
			assert.True(t, got[i-1].Month.Before(p.Month))
		}
	}
	assert.Equal(t, []string{"Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}, labels)
	assert.Equal(t, core.Month{Year: 2024, Month: time.October}, got[0].Month)
	assert.True(t, got[0].Expenses.Equal(dec("60")))
	assert.True(t, got[5].Income.Equal(dec("100")))
	assert.True(t, got[5].Expenses.Equal(dec("40")))
	assert.True(t, got[2].Income.IsZero())
}

func TestMonthlySeries_EmptyInput(t *testing.T) {
	got := MonthlySeries(nil, time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC))

	require.Len(t, got, SeriesLength)
	assert.Equal(t, core.Month{Year: 2024, Month: time.August}, got[0].Month)
	assert.Equal(t, core.Month{Year: 2025, Month: time.January}, got[5].Month)
	for _, p := range got {
		assert.True(t, p.Income.IsZero())
		assert.True(t, p.Expenses.IsZero())
	}
}

func TestCompareBudgets_ScenarioB(t *testing.T) {
	budgets := []core.Budget{
		budget(core.FoodDining, "50", thisMonth),
		budget(core.Travel, "500", lastMonth),
	}

	got := CompareBudgets(scenarioA(), budgets, thisMonth, time.UTC)

	require.Len(t, got, 1)
	assert.Equal(t, core.FoodDining, got[0].Category)
	assert.True(t, got[0].Budget.Equal(dec("50")))
	assert.True(t, got[0].Actual.Equal(dec("40")))
}

func TestCompareBudgets_NoBudgets(t *testing.T) {
	got := CompareBudgets(scenarioA(), nil, thisMonth, time.UTC)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestBudgetStatuses(t *testing.T) {
	txs := []core.Transaction{
		tx("30", core.Expense, core.Groceries, day(thisMonth, 1)),
		tx("150", core.Expense, core.Shopping, day(thisMonth, 2)),
	}
	budgets := []core.Budget{
		budget(core.Groceries, "120", thisMonth),
		budget(core.Shopping, "100", thisMonth),
	}

	got := BudgetStatuses(txs, budgets, thisMonth, time.UTC)

	require.Len(t, got, 2)
	assert.True(t, got[0].Remaining.Equal(dec("90")))
	assert.True(t, got[0].Percent.Equal(dec("25")))
	assert.False(t, got[0].Over)

	assert.True(t, got[1].Remaining.Equal(dec("-50")))
	assert.True(t, got[1].Percent.Equal(dec("150")))
	assert.True(t, got[1].Progress.Equal(dec("100")))
	assert.True(t, got[1].Over)
}

func TestInsights_ScenarioB(t *testing.T) {
	budgets := []core.Budget{budget(core.FoodDining, "50", thisMonth)}

	got := Insights(scenarioA(), budgets, now)

	require.Len(t, got, 2)
	assert.Equal(t, InsightTopCategory, got[0].Kind)
	assert.Equal(t, InsightOnTrack, got[1].Kind)
	assert.Equal(t, SeveritySuccess, got[1].Severity)
	assert.Equal(t, "You're doing well in 1 category: Food & Dining", got[1].Description)
	assert.Equal(t, []string{core.FoodDining}, got[1].Categories)
	for _, in := range got {
		assert.NotEqual(t, InsightOverBudget, in.Kind)
	}
}

func TestInsights_ScenarioC_NoTrendWithoutPreviousSpending(t *testing.T) {
	txs := append(scenarioA(), tx("500", core.Income, core.IncomeCategory, day(lastMonth, 10)))

	got := Insights(txs, nil, now)

	for _, in := range got {
		assert.NotEqual(t, InsightTrend, in.Kind)
	}
}

func TestInsights_ScenarioD_TopCategoryTieKeepsFirstSeen(t *testing.T) {
	txs := []core.Transaction{
		tx("25", core.Expense, core.Shopping, day(thisMonth, 1)),
		tx("25", core.Expense, core.Shopping, day(thisMonth, 2)),
		tx("50", core.Expense, core.Travel, day(thisMonth, 3)),
	}

	got := Insights(txs, nil, now)

	require.Len(t, got, 1)
	assert.Equal(t, InsightTopCategory, got[0].Kind)
	assert.Equal(t, core.Shopping, got[0].Category)
	assert.Equal(t, "Shopping accounts for $50.00 of your expenses this month", got[0].Description)
}

func TestInsights_OverBudgetAndOrder(t *testing.T) {
	txs := []core.Transaction{
		tx("60", core.Expense, core.FoodDining, day(thisMonth, 1)),
		tx("120", core.Expense, core.Shopping, day(thisMonth, 2)),
		tx("10", core.Expense, core.Travel, day(thisMonth, 2)),
		tx("100", core.Expense, core.Travel, day(lastMonth, 2)),
	}
	budgets := []core.Budget{
		budget(core.FoodDining, "50", thisMonth),
		budget(core.Shopping, "100", thisMonth),
		budget(core.Travel, "200", thisMonth),
	}

	got := Insights(txs, budgets, now)

	require.Len(t, got, 4)
	assert.Equal(t, []InsightKind{InsightOverBudget, InsightTopCategory, InsightOnTrack, InsightTrend},
		[]InsightKind{got[0].Kind, got[1].Kind, got[2].Kind, got[3].Kind})

	assert.Equal(t, "Over Budget Alert", got[0].Title)
	assert.Equal(t, "You're over budget in 2 categories: Food & Dining, Shopping", got[0].Description)
	assert.Equal(t, 2, got[0].Count)
	assert.Equal(t, SeverityWarning, got[0].Severity)

	assert.Equal(t, core.Shopping, got[1].Category)

	assert.Equal(t, []string{core.Travel}, got[2].Categories)

	// 190 vs 100 last month
	assert.Equal(t, SeverityWarning, got[3].Severity)
	assert.Equal(t, "higher", got[3].Direction)
	assert.Equal(t, "Your spending is 90.0% higher than last month", got[3].Description)
}

func TestInsights_ExactlyAtBudgetIsNeitherOverNorOnTrack(t *testing.T) {
	txs := []core.Transaction{tx("50", core.Expense, core.Groceries, day(thisMonth, 1))}
	budgets := []core.Budget{budget(core.Groceries, "50", thisMonth)}

	got := Insights(txs, budgets, now)

	require.Len(t, got, 1)
	assert.Equal(t, InsightTopCategory, got[0].Kind)
}

func TestInsights_TrendSeverity(t *testing.T) {
	cases := []struct {
		current   string
		severity  Severity
		direction string
		text      string
	}{
		{"111", SeverityWarning, "higher", "Your spending is 11.0% higher than last month"},
		{"110", SeverityInfo, "higher", "Your spending is 10.0% higher than last month"},
		{"100", SeverityInfo, "lower", "Your spending is 0.0% lower than last month"},
		{"90", SeverityInfo, "lower", "Your spending is 10.0% lower than last month"},
		{"89.5", SeveritySuccess, "lower", "Your spending is 10.5% lower than last month"},
	}
	for _, tc := range cases {
		t.Run(tc.current, func(t *testing.T) {
			txs := []core.Transaction{
				tx("100", core.Expense, core.Other, day(lastMonth, 5)),
				tx(tc.current, core.Expense, core.Other, day(thisMonth, 5)),
			}
			got := Insights(txs, nil, now)
			require.Len(t, got, 2)
			trend := got[1]
			assert.Equal(t, InsightTrend, trend.Kind)
			assert.Equal(t, tc.severity, trend.Severity)
			assert.Equal(t, tc.direction, trend.Direction)
			assert.Equal(t, tc.text, trend.Description)
		})
	}
}

func TestInsights_EmptyInput(t *testing.T) {
	got := Insights(nil, nil, now)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestInsights_TrendAcrossYearBoundary(t *testing.T) {
	jan := core.Month{Year: 2025, Month: time.January}
	dec2024 := core.Month{Year: 2024, Month: time.December}
	txs := []core.Transaction{
		tx("200", core.Expense, core.Other, day(dec2024, 20)),
		tx("100", core.Expense, core.Other, day(jan, 5)),
	}

	got := Insights(txs, nil, time.Date(2025, time.January, 31, 9, 0, 0, 0, time.UTC))

	require.Len(t, got, 2)
	assert.Equal(t, SeveritySuccess, got[1].Severity)
	assert.Equal(t, "Your spending is 50.0% lower than last month", got[1].Description)
}

func TestCompute(t *testing.T) {
	txs := append(scenarioA(), tx("20", core.Expense, core.FoodDining, day(lastMonth, 1)))
	budgets := []core.Budget{budget(core.FoodDining, "50", thisMonth)}
	snap := Snapshot{Transactions: txs, Budgets: budgets}

	d := Compute(snap, now)

	assert.Equal(t, thisMonth, d.Month)
	assert.Equal(t, lastMonth, d.Previous.Month)
	require.NotNil(t, d.ExpenseChange)
	assert.True(t, d.ExpenseChange.Equal(dec("100")))
	assert.Len(t, d.Series, SeriesLength)
	assert.Len(t, d.Budgets, 1)
	assert.Len(t, d.BudgetStatus, 1)
	assert.False(t, d.NoInsights)
	assert.Equal(t, d, Compute(snap, now), "compute must be idempotent")
}

func TestCompute_NoData(t *testing.T) {
	d := Compute(Snapshot{}, now)

	assert.Nil(t, d.ExpenseChange)
	assert.True(t, d.NoInsights)
	assert.Empty(t, d.Categories)
	assert.Empty(t, d.Budgets)
	assert.Len(t, d.Series, SeriesLength)
}

func TestEngineDoesNotMutateInput(t *testing.T) {
	txs := scenarioA()
	budgets := []core.Budget{budget(core.FoodDining, "50", thisMonth)}
	before := make([]core.Transaction, len(txs))
	copy(before, txs)

	Compute(Snapshot{Transactions: txs, Budgets: budgets}, now)

	assert.Equal(t, before, txs)
	assert.True(t, budgets[0].Amount.Equal(dec("50")))
}

func TestNetIdentityHolds(t *testing.T) {
	sets := [][]core.Transaction{
		nil,
		scenarioA(),
		{
			tx("0.01", core.Income, core.IncomeCategory, day(thisMonth, 1)),
			tx("1234.56", core.Expense, core.RentMortgage, day(thisMonth, 1)),
			tx("-3.33", core.Income, core.IncomeCategory, day(thisMonth, 9)),
		},
	}
	for i, txs := range sets {
		got := MonthlyTotals(txs, thisMonth, time.UTC)
		assert.True(t, got.Net.Equal(got.Income.Sub(got.Expenses)), "set %d", i)
	}
}
