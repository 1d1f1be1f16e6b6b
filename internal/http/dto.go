package http

import (
	"time"

	"fintrack/internal/core"
	"fintrack/internal/metrics"

	"github.com/shopspring/decimal"
)

// Money travels as JSON numbers; amounts are rounded to cents first so the
// float conversion never shows binary noise beyond two decimals.

type transactionDTO struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	Type        string  `json:"type"`
}

type budgetDTO struct {
	ID       string  `json:"id"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Month    string  `json:"month"`
}

type totalsDTO struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
	Count    int     `json:"count"`
}

type categoryTotalDTO struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type seriesPointDTO struct {
	Month    string  `json:"month"`
	Label    string  `json:"label"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

type budgetComparisonDTO struct {
	Category string  `json:"category"`
	Budget   float64 `json:"budget"`
	Actual   float64 `json:"actual"`
}

type budgetStatusDTO struct {
	Category  string  `json:"category"`
	Budget    float64 `json:"budget"`
	Spent     float64 `json:"spent"`
	Remaining float64 `json:"remaining"`
	Percent   float64 `json:"percent"`
	Progress  float64 `json:"progress"`
	Over      bool    `json:"over"`
}

type insightDTO struct {
	Kind          string   `json:"kind"`
	Severity      string   `json:"severity"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Count         int      `json:"count,omitempty"`
	Categories    []string `json:"categories,omitempty"`
	Category      string   `json:"category,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	PercentChange *float64 `json:"percent_change,omitempty"`
	Direction     string   `json:"direction,omitempty"`
}

type insightsDTO struct {
	Month      string       `json:"month"`
	Insights   []insightDTO `json:"insights"`
	NoInsights bool         `json:"no_insights"`
	Message    string       `json:"message,omitempty"`
}

type dashboardDTO struct {
	GeneratedFor  string                `json:"generated_for"`
	Month         string                `json:"month"`
	Current       totalsDTO             `json:"current"`
	Previous      totalsDTO             `json:"previous"`
	ExpenseChange *float64              `json:"expense_change"`
	Categories    []categoryTotalDTO    `json:"categories"`
	Series        []seriesPointDTO      `json:"series"`
	Budgets       []budgetComparisonDTO `json:"budgets"`
	BudgetStatus  []budgetStatusDTO     `json:"budget_status"`
	Insights      []insightDTO          `json:"insights"`
	NoInsights    bool                  `json:"no_insights"`
	Message       string                `json:"message,omitempty"`
}

type categoriesDTO struct {
	Categories       []string `json:"categories"`
	BudgetCategories []string `json:"budget_categories"`
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func percent(d decimal.Decimal) float64 {
	return d.Round(1).InexactFloat64()
}

// formatDate keeps calendar dates short and full instants exact.
func formatDate(t time.Time) string {
	if u := t.UTC(); u.Hour() == 0 && u.Minute() == 0 && u.Second() == 0 && u.Nanosecond() == 0 {
		return u.Format("2006-01-02")
	}
	return t.Format(time.RFC3339)
}

func toTransactionDTO(t core.Transaction) transactionDTO {
	return transactionDTO{
		ID:          t.ID,
		Amount:      money(t.Amount),
		Description: t.Description,
		Category:    t.Category,
		Date:        formatDate(t.Date),
		Type:        string(t.Type),
	}
}

func toTransactionDTOs(txs []core.Transaction) []transactionDTO {
	out := make([]transactionDTO, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionDTO(t))
	}
	return out
}

func toBudgetDTO(b core.Budget) budgetDTO {
	return budgetDTO{
		ID:       b.ID,
		Category: b.Category,
		Amount:   money(b.Amount),
		Month:    b.Month.String(),
	}
}

func toBudgetDTOs(budgets []core.Budget) []budgetDTO {
	out := make([]budgetDTO, 0, len(budgets))
	for _, b := range budgets {
		out = append(out, toBudgetDTO(b))
	}
	return out
}

func toTotalsDTO(t metrics.Totals) totalsDTO {
	return totalsDTO{
		Month:    t.Month.String(),
		Income:   money(t.Income),
		Expenses: money(t.Expenses),
		Net:      money(t.Net),
		Count:    t.Count,
	}
}

func toInsightDTOs(in []metrics.Insight) []insightDTO {
	out := make([]insightDTO, 0, len(in))
	for _, i := range in {
		dto := insightDTO{
			Kind:        string(i.Kind),
			Severity:    string(i.Severity),
			Title:       i.Title,
			Description: i.Description,
			Count:       i.Count,
			Categories:  i.Categories,
			Category:    i.Category,
			Direction:   i.Direction,
		}
		switch i.Kind {
		case metrics.InsightTopCategory:
			v := money(i.Amount)
			dto.Amount = &v
		case metrics.InsightTrend:
			v := percent(i.PercentChange)
			dto.PercentChange = &v
		}
		out = append(out, dto)
	}
	return out
}

func noInsightsMessage(empty bool) string {
	if empty {
		return metrics.NoInsightsMessage
	}
	return ""
}

func toInsightsDTO(d metrics.Dashboard) insightsDTO {
	return insightsDTO{
		Month:      d.Month.String(),
		Insights:   toInsightDTOs(d.Insights),
		NoInsights: d.NoInsights,
		Message:    noInsightsMessage(d.NoInsights),
	}
}

func toDashboardDTO(d metrics.Dashboard) dashboardDTO {
	out := dashboardDTO{
		GeneratedFor: d.GeneratedFor.Format(time.RFC3339),
		Month:        d.Month.String(),
		Current:      toTotalsDTO(d.Current),
		Previous:     toTotalsDTO(d.Previous),
		Categories:   make([]categoryTotalDTO, 0, len(d.Categories)),
		Series:       make([]seriesPointDTO, 0, len(d.Series)),
		Budgets:      make([]budgetComparisonDTO, 0, len(d.Budgets)),
		BudgetStatus: make([]budgetStatusDTO, 0, len(d.BudgetStatus)),
		Insights:     toInsightDTOs(d.Insights),
		NoInsights:   d.NoInsights,
		Message:      noInsightsMessage(d.NoInsights),
	}
	if d.ExpenseChange != nil {
		v := percent(*d.ExpenseChange)
		out.ExpenseChange = &v
	}
	for _, c := range d.Categories {
		out.Categories = append(out.Categories, categoryTotalDTO{Category: c.Category, Amount: money(c.Amount)})
	}
	for _, p := range d.Series {
		out.Series = append(out.Series, seriesPointDTO{
			Month:    p.Month.String(),
			Label:    p.Label,
			Income:   money(p.Income),
			Expenses: money(p.Expenses),
		})
	}
	for _, b := range d.Budgets {
		out.Budgets = append(out.Budgets, budgetComparisonDTO{Category: b.Category, Budget: money(b.Budget), Actual: money(b.Actual)})
	}
	for _, s := range d.BudgetStatus {
		out.BudgetStatus = append(out.BudgetStatus, budgetStatusDTO{
			Category:  s.Category,
			Budget:    money(s.Budget),
			Spent:     money(s.Spent),
			Remaining: money(s.Remaining),
			Percent:   percent(s.Percent),
			Progress:  percent(s.Progress),
			Over:      s.Over,
		})
	}
	return out
}
