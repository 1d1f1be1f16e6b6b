package ledger

import (
	"context"

	"fintrack/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionStore persists transactions. Update and Delete return
	// core.ErrNotFound for unknown ids.
	TransactionStore interface {
		// ListTransactions returns every transaction, newest first by date.
		ListTransactions(ctx context.Context) ([]core.Transaction, error)
		GetTransaction(ctx context.Context, id string) (core.Transaction, error)
		CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error)
		DeleteTransaction(ctx context.Context, id string) error
	}

	// BudgetStore keeps at most one budget per (category, month).
	BudgetStore interface {
		ListBudgets(ctx context.Context) ([]core.Budget, error)
		// UpsertBudget replaces the amount of an existing (category, month) budget,
		// keeping its id, or stores b as a new budget.
		UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	}

	Store interface {
		TransactionStore
		BudgetStore
		Ping(ctx context.Context) error
		Close() error
	}

	// Mirror receives a copy of every ledger change (e.g. a spreadsheet).
	Mirror interface {
		UpsertTransaction(ctx context.Context, tx core.Transaction) error
		DeleteTransaction(ctx context.Context, id string) error
		UpsertBudget(ctx context.Context, b core.Budget) error
		// Replace overwrites the mirror with the full ledger content.
		Replace(ctx context.Context, txs []core.Transaction, budgets []core.Budget) error
	}
)
