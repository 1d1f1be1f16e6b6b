package core

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		Amount:      decimal.NewFromInt(12),
		Description: "lunch",
		Category:    FoodDining,
		Date:        time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Type:        Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	negative := good
	negative.Amount = decimal.NewFromInt(-12)
	if err := negative.Validate(); err != nil {
		t.Fatalf("sign is informational, got %v", err)
	}

	mutate := func(f func(*Transaction)) Transaction {
		tx := good
		f(&tx)
		return tx
	}
	bads := []struct {
		field string
		tx    Transaction
	}{
		{"date", mutate(func(tx *Transaction) { tx.Date = time.Time{} })},
		{"description", mutate(func(tx *Transaction) { tx.Description = "  " })},
		{"description", mutate(func(tx *Transaction) { tx.Description = strings.Repeat("x", 201) })},
		{"category", mutate(func(tx *Transaction) { tx.Category = "Gadgets" })},
		{"type", mutate(func(tx *Transaction) { tx.Type = "transfer" })},
	}
	for i, tc := range bads {
		err := tc.tx.Validate()
		if err == nil {
			t.Fatalf("case %d expected error", i)
		}
		if !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected ErrValidation, got %v", i, err)
		}
		var ve *ValidationError
		if !errors.As(err, &ve) || ve.Field != tc.field {
			t.Fatalf("case %d expected field %q, got %v", i, tc.field, err)
		}
	}
}

func TestBudgetValidate(t *testing.T) {
	m := Month{Year: 2025, Month: time.March}
	good := Budget{Category: Groceries, Amount: decimal.NewFromInt(300), Month: m}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Budget{
		{Category: IncomeCategory, Amount: decimal.NewFromInt(1), Month: m},
		{Category: "Gadgets", Amount: decimal.NewFromInt(1), Month: m},
		{Category: Groceries, Amount: decimal.Zero, Month: m},
		{Category: Groceries, Amount: decimal.NewFromInt(-5), Month: m},
		{Category: Groceries, Amount: decimal.NewFromInt(5)},
	}
	for i, b := range bads {
		if err := b.Validate(); !errors.Is(err, ErrValidation) {
			t.Fatalf("case %d expected validation error, got %v", i, err)
		}
	}
}

func TestParseKind(t *testing.T) {
	cases := []struct {
		in   string
		want Kind
		ok   bool
	}{
		{"income", Income, true},
		{" Expense ", Expense, true},
		{"EXPENSE", Expense, true},
		{"", "", false},
		{"refund", "", false},
	}
	for _, tc := range cases {
		got, err := ParseKind(tc.in)
		if tc.ok && (err != nil || got != tc.want) {
			t.Fatalf("%q expected %q, got %q (err=%v)", tc.in, tc.want, got, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestCategories(t *testing.T) {
	all := Categories()
	if len(all) != 12 || all[0] != FoodDining || all[11] != Other {
		t.Fatalf("unexpected categories %v", all)
	}
	all[0] = "mutated"
	if Categories()[0] != FoodDining {
		t.Fatalf("Categories must return a copy")
	}

	budget := BudgetCategories()
	if len(budget) != 11 {
		t.Fatalf("expected 11 budget categories, got %d", len(budget))
	}
	for _, c := range budget {
		if c == IncomeCategory {
			t.Fatalf("Income must not be a budget category")
		}
	}
	if !IsBudgetCategory(RentMortgage) || IsBudgetCategory(IncomeCategory) {
		t.Fatalf("IsBudgetCategory mismatch")
	}
}

func TestNormalizeCategory(t *testing.T) {
	if got := NormalizeCategory(" food & dining "); got != FoodDining {
		t.Fatalf("expected %q, got %q", FoodDining, got)
	}
	if got := NormalizeCategory(" Crypto "); got != "Crypto" {
		t.Fatalf("unknown category should be kept, got %q", got)
	}
	if BucketOf("") != Uncategorized || BucketOf("   ") != Uncategorized {
		t.Fatalf("blank categories should bucket as %q", Uncategorized)
	}
	if BucketOf("Crypto") != "Crypto" {
		t.Fatalf("unknown category should be its own bucket")
	}
}
