package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type TransactionRow struct {
	ID          string
	Amount      string
	Description string
	Category    string
	Date        string
	Type        string
}

type BudgetRow struct {
	ID       string
	Category string
	Month    string
	Amount   string
}

const listTransactions = `-- name: ListTransactions :many
SELECT id, amount, description, category, date, type
FROM transactions
ORDER BY date DESC, created_at DESC
`

func (q *Queries) ListTransactions(ctx context.Context) ([]TransactionRow, error) {
	rows, err := q.db.QueryContext(ctx, listTransactions)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TransactionRow
	for rows.Next() {
		var i TransactionRow
		if err := rows.Scan(&i.ID, &i.Amount, &i.Description, &i.Category, &i.Date, &i.Type); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getTransaction = `-- name: GetTransaction :one
SELECT id, amount, description, category, date, type
FROM transactions
WHERE id = ?
`

func (q *Queries) GetTransaction(ctx context.Context, id string) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, getTransaction, id)
	var i TransactionRow
	err := row.Scan(&i.ID, &i.Amount, &i.Description, &i.Category, &i.Date, &i.Type)
	return i, err
}

const createTransaction = `-- name: CreateTransaction :exec
INSERT INTO transactions (id, amount, description, category, date, type)
VALUES (?, ?, ?, ?, ?, ?)
`

func (q *Queries) CreateTransaction(ctx context.Context, arg TransactionRow) error {
	_, err := q.db.ExecContext(ctx, createTransaction,
		arg.ID,
		arg.Amount,
		arg.Description,
		arg.Category,
		arg.Date,
		arg.Type,
	)
	return err
}

const updateTransaction = `-- name: UpdateTransaction :execrows
UPDATE transactions
SET amount = ?, description = ?, category = ?, date = ?, type = ?, updated_at = CURRENT_TIMESTAMP
WHERE id = ?
`

func (q *Queries) UpdateTransaction(ctx context.Context, arg TransactionRow) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateTransaction,
		arg.Amount,
		arg.Description,
		arg.Category,
		arg.Date,
		arg.Type,
		arg.ID,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deleteTransaction = `-- name: DeleteTransaction :execrows
DELETE FROM transactions WHERE id = ?
`

func (q *Queries) DeleteTransaction(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteTransaction, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const listBudgets = `-- name: ListBudgets :many
SELECT id, category, month, amount
FROM budgets
ORDER BY month DESC, category ASC
`

func (q *Queries) ListBudgets(ctx context.Context) ([]BudgetRow, error) {
	rows, err := q.db.QueryContext(ctx, listBudgets)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []BudgetRow
	for rows.Next() {
		var i BudgetRow
		if err := rows.Scan(&i.ID, &i.Category, &i.Month, &i.Amount); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const upsertBudget = `-- name: UpsertBudget :one
INSERT INTO budgets (id, category, month, amount)
VALUES (?, ?, ?, ?)
ON CONFLICT (category, month) DO UPDATE
SET amount = excluded.amount, updated_at = CURRENT_TIMESTAMP
RETURNING id, category, month, amount
`

func (q *Queries) UpsertBudget(ctx context.Context, arg BudgetRow) (BudgetRow, error) {
	row := q.db.QueryRowContext(ctx, upsertBudget,
		arg.ID,
		arg.Category,
		arg.Month,
		arg.Amount,
	)
	var i BudgetRow
	err := row.Scan(&i.ID, &i.Category, &i.Month, &i.Amount)
	return i, err
}
