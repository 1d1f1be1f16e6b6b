package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fintrack/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// dateLayout is fixed width so that text ordering matches chronological ordering.
const dateLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db)}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w: %w", core.ErrStorage, err)
	}
	return nil
}

func (r *SQLiteRepository) ListTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.queries.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w: %w", core.ErrStorage, err)
	}
	out := make([]core.Transaction, 0, len(rows))
	for _, row := range rows {
		tx, err := toTransaction(row)
		if err != nil {
			return nil, fmt.Errorf("decode transaction %s: %w: %w", row.ID, core.ErrStorage, err)
		}
		out = append(out, tx)
	}
	return out, nil
}

func (r *SQLiteRepository) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %s: %w: %w", id, core.ErrStorage, err)
	}
	tx, err := toTransaction(row)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("decode transaction %s: %w: %w", id, core.ErrStorage, err)
	}
	return tx, nil
}

func (r *SQLiteRepository) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if err := r.queries.CreateTransaction(ctx, fromTransaction(tx)); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w: %w", core.ErrStorage, err)
	}

	slog.InfoContext(ctx, "Transaction saved to SQLite",
		"id", tx.ID,
		"type", tx.Type,
		"category", tx.Category,
		"amount", tx.Amount.String())

	return normalized(tx), nil
}

func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	n, err := r.queries.UpdateTransaction(ctx, fromTransaction(tx))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction %s: %w: %w", tx.ID, core.ErrStorage, err)
	}
	if n == 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return normalized(tx), nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, id string) error {
	n, err := r.queries.DeleteTransaction(ctx, id)
	if err != nil {
		return fmt.Errorf("delete transaction %s: %w: %w", id, core.ErrStorage, err)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.queries.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w: %w", core.ErrStorage, err)
	}
	out := make([]core.Budget, 0, len(rows))
	for _, row := range rows {
		b, err := toBudget(row)
		if err != nil {
			return nil, fmt.Errorf("decode budget %s: %w: %w", row.ID, core.ErrStorage, err)
		}
		out = append(out, b)
	}
	return out, nil
}

// UpsertBudget relies on the UNIQUE (category, month) constraint, so concurrent
// writers for the same pair end with the last amount written.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	row, err := r.queries.UpsertBudget(ctx, BudgetRow{
		ID:       b.ID,
		Category: b.Category,
		Month:    b.Month.String(),
		Amount:   b.Amount.String(),
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w: %w", core.ErrStorage, err)
	}

	slog.InfoContext(ctx, "Budget saved to SQLite",
		"id", row.ID,
		"category", row.Category,
		"month", row.Month,
		"amount", row.Amount)

	saved, err := toBudget(row)
	if err != nil {
		return core.Budget{}, fmt.Errorf("decode budget %s: %w: %w", row.ID, core.ErrStorage, err)
	}
	return saved, nil
}

func fromTransaction(tx core.Transaction) TransactionRow {
	return TransactionRow{
		ID:          tx.ID,
		Amount:      tx.Amount.String(),
		Description: tx.Description,
		Category:    tx.Category,
		Date:        tx.Date.UTC().Format(dateLayout),
		Type:        string(tx.Type),
	}
}

func toTransaction(row TransactionRow) (core.Transaction, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse amount %q: %w", row.Amount, err)
	}
	date, err := time.Parse(dateLayout, row.Date)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("parse date %q: %w", row.Date, err)
	}
	return core.Transaction{
		ID:          row.ID,
		Amount:      amount,
		Description: row.Description,
		Category:    row.Category,
		Date:        date,
		Type:        core.Kind(row.Type),
	}, nil
}

func toBudget(row BudgetRow) (core.Budget, error) {
	amount, err := decimal.NewFromString(row.Amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse amount %q: %w", row.Amount, err)
	}
	month, err := core.ParseMonth(row.Month)
	if err != nil {
		return core.Budget{}, fmt.Errorf("parse month %q: %w", row.Month, err)
	}
	return core.Budget{ID: row.ID, Category: row.Category, Amount: amount, Month: month}, nil
}

// normalized returns tx as it reads back from the database.
func normalized(tx core.Transaction) core.Transaction {
	tx.Date = tx.Date.UTC()
	return tx
}
