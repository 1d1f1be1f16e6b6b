package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

type (
	// Kind classifies a transaction. Sums never trust the amount sign, only the kind.
	Kind string

	Transaction struct {
		ID          string
		Amount      decimal.Decimal
		Description string
		Category    string
		Date        time.Time
		Type        Kind
	}

	// Budget is a spending ceiling for one category in one calendar month.
	Budget struct {
		ID       string
		Category string
		Amount   decimal.Decimal
		Month    Month
	}
)

const maxDescriptionLen = 200

// IsValid reports whether k is one of the known transaction kinds.
func (k Kind) IsValid() bool {
	return k == Income || k == Expense
}

// ParseKind normalizes s into a Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if !k.IsValid() {
		return "", &ValidationError{Field: "type", Reason: "must be income or expense"}
	}
	return k, nil
}

// Magnitude returns the absolute monetary value of the transaction.
func (t Transaction) Magnitude() decimal.Decimal {
	return t.Amount.Abs()
}

func (t Transaction) Validate() error {
	if t.Date.IsZero() {
		return &ValidationError{Field: "date", Reason: "is required"}
	}
	if len(strings.TrimSpace(t.Description)) == 0 {
		return &ValidationError{Field: "description", Reason: "is required"}
	}
	if len(t.Description) > maxDescriptionLen {
		return &ValidationError{Field: "description", Reason: "too long (max 200 characters)"}
	}
	if !IsCategory(t.Category) {
		return &ValidationError{Field: "category", Reason: "unknown category " + quote(t.Category)}
	}
	if !t.Type.IsValid() {
		return &ValidationError{Field: "type", Reason: "must be income or expense"}
	}
	return nil
}

func (b Budget) Validate() error {
	if !IsBudgetCategory(b.Category) {
		return &ValidationError{Field: "category", Reason: "not a budget category " + quote(b.Category)}
	}
	if !b.Amount.IsPositive() {
		return &ValidationError{Field: "amount", Reason: "must be greater than zero"}
	}
	if b.Month.IsZero() {
		return &ValidationError{Field: "month", Reason: "is required"}
	}
	return nil
}

func quote(s string) string {
	return "\"" + s + "\""
}
