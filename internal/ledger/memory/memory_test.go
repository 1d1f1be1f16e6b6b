package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"

	"github.com/shopspring/decimal"
)

func sampleTx(desc string, day int) core.Transaction {
	return core.Transaction{
		Amount:      decimal.NewFromInt(10),
		Description: desc,
		Category:    core.Groceries,
		Date:        time.Date(2025, 3, day, 0, 0, 0, 0, time.UTC),
		Type:        core.Expense,
	}
}

func TestTransactionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	a, err := s.CreateTransaction(ctx, sampleTx("older", 1))
	if err != nil || a.ID == "" {
		t.Fatalf("unexpected create: %+v err=%v", a, err)
	}
	b, _ := s.CreateTransaction(ctx, sampleTx("newer", 20))

	list, _ := s.ListTransactions(ctx)
	if len(list) != 2 || list[0].ID != b.ID || list[1].ID != a.ID {
		t.Fatalf("expected newest first, got %+v", list)
	}

	a.Description = "edited"
	if _, err := s.UpdateTransaction(ctx, a); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := s.GetTransaction(ctx, a.ID)
	if got.Description != "edited" {
		t.Fatalf("update not applied: %+v", got)
	}

	if err := s.DeleteTransaction(ctx, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := s.DeleteTransaction(ctx, a.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("repeat delete should fail with ErrNotFound, got %v", err)
	}
	ghost := sampleTx("ghost", 2)
	ghost.ID = "missing"
	if _, err := s.UpdateTransaction(ctx, ghost); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetTransaction(ctx, "missing"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateRejectsInvalid(t *testing.T) {
	s := New()
	bad := sampleTx("", 1)
	if _, err := s.CreateTransaction(context.Background(), bad); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	list, _ := s.ListTransactions(context.Background())
	if len(list) != 0 {
		t.Fatalf("failed create must not change state")
	}
}

func TestUpsertBudgetReplaces(t *testing.T) {
	ctx := context.Background()
	s := New()
	m := core.Month{Year: 2025, Month: time.March}

	first, err := s.UpsertBudget(ctx, core.Budget{Category: core.Shopping, Amount: decimal.NewFromInt(100), Month: m})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	second, err := s.UpsertBudget(ctx, core.Budget{Category: core.Shopping, Amount: decimal.NewFromInt(250), Month: m})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("replace should keep id %s, got %s", first.ID, second.ID)
	}
	_, _ = s.UpsertBudget(ctx, core.Budget{Category: core.Shopping, Amount: decimal.NewFromInt(5), Month: m.Prev()})

	budgets, _ := s.ListBudgets(ctx)
	if len(budgets) != 2 {
		t.Fatalf("expected 2 budgets, got %d", len(budgets))
	}
	if !budgets[0].Amount.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected amount 250, got %s", budgets[0].Amount)
	}
}

func TestNewFromFilesSeeds(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFromFiles(dir)
	if err != nil {
		t.Fatalf("missing seed file should not fail: %v", err)
	}
	if list, _ := s.ListTransactions(context.Background()); len(list) != 0 {
		t.Fatalf("expected empty store")
	}

	content := "# date,type,category,amount,description\n" +
		"2025-03-01,income,income,2500,Salary\n" +
		"\n" +
		"2025-03-02,expense,Groceries,54.20,\"Market, weekly run\"\n" +
		"2025-03-03,expense,Other,5,\"Say \"\"hi\"\"\"\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_transactions.csv"), []byte(content), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	s, err = NewFromFiles(dir)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	list, _ := s.ListTransactions(context.Background())
	if len(list) != 3 {
		t.Fatalf("expected 3 seeded transactions, got %d", len(list))
	}
	if list[0].Description != `Say "hi"` || list[1].Description != "Market, weekly run" || list[2].Category != core.IncomeCategory {
		t.Fatalf("unexpected seed content: %+v", list)
	}

	// An unquoted comma gives the record a sixth field.
	unquoted := "2025-03-01,income,income,2500,Salary\n2025-03-02,expense,Groceries,54.20,Market, weekly run\n"
	if err := os.WriteFile(filepath.Join(dir, "seed_transactions.csv"), []byte(unquoted), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	if _, err := NewFromFiles(dir); err == nil {
		t.Fatalf("expected error for record with too many fields")
	}

	if err := os.WriteFile(filepath.Join(dir, "seed_transactions.csv"), []byte("# header\n2025-03-01,gift,Other,1,x\n"), 0o644); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	_, err = NewFromFiles(dir)
	if err == nil || !strings.Contains(err.Error(), "seed line 2") {
		t.Fatalf("expected error naming seed line 2, got %v", err)
	}
}
