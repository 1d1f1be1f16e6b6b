package core

import "strings"

const (
	FoodDining     = "Food & Dining"
	Transportation = "Transportation"
	Shopping       = "Shopping"
	Entertainment  = "Entertainment"
	BillsUtilities = "Bills & Utilities"
	Healthcare     = "Healthcare"
	Travel         = "Travel"
	Education      = "Education"
	Groceries      = "Groceries"
	RentMortgage   = "Rent/Mortgage"
	IncomeCategory = "Income"
	Other          = "Other"
	Uncategorized  = "Uncategorized"
)

var categories = []string{
	FoodDining,
	Transportation,
	Shopping,
	Entertainment,
	BillsUtilities,
	Healthcare,
	Travel,
	Education,
	Groceries,
	RentMortgage,
	IncomeCategory,
	Other,
}

// Categories returns the recognized categories in display order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// BudgetCategories returns the categories a budget may target (all but Income).
func BudgetCategories() []string {
	out := make([]string, 0, len(categories)-1)
	for _, c := range categories {
		if c != IncomeCategory {
			out = append(out, c)
		}
	}
	return out
}

func IsCategory(s string) bool {
	for _, c := range categories {
		if c == s {
			return true
		}
	}
	return false
}

func IsBudgetCategory(s string) bool {
	return s != IncomeCategory && IsCategory(s)
}

// NormalizeCategory maps free text onto a recognized category, matching
// case-insensitively. Unknown values are returned trimmed but otherwise intact.
func NormalizeCategory(s string) string {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(c, s) {
			return c
		}
	}
	return s
}

// BucketOf is the aggregation key for a category. Blank categories share one bucket.
func BucketOf(category string) string {
	if strings.TrimSpace(category) == "" {
		return Uncategorized
	}
	return category
}
