package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

// MirrorWorker applies ledger events to a Mirror, reading transaction content
// from the store since events only carry ids.
type MirrorWorker struct {
	store  ledger.Store
	mirror ledger.Mirror
}

func NewMirrorWorker(store ledger.Store, mirror ledger.Mirror) *MirrorWorker {
	return &MirrorWorker{store: store, mirror: mirror}
}

// HandleLedgerEvent processes a single ledger event from AMQP. A returned error
// requeues the delivery.
func (w *MirrorWorker) HandleLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.InfoContext(ctx, "Processing ledger event",
		"event_id", ev.ID,
		"type", ev.Type,
		"transaction_id", ev.TransactionID)

	switch ev.Type {
	case amqp.TransactionCreated, amqp.TransactionUpdated:
		tx, err := w.store.GetTransaction(ctx, ev.TransactionID)
		if errors.Is(err, core.ErrNotFound) {
			// Deleted before we got here; the delete event follows.
			slog.WarnContext(ctx, "Transaction no longer exists, skipping", "transaction_id", ev.TransactionID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("get transaction from storage: %w", err)
		}
		if err := w.mirror.UpsertTransaction(ctx, tx); err != nil {
			return fmt.Errorf("mirror transaction: %w", err)
		}

	case amqp.TransactionDeleted:
		if err := w.mirror.DeleteTransaction(ctx, ev.TransactionID); err != nil {
			return fmt.Errorf("mirror delete: %w", err)
		}

	case amqp.BudgetUpserted:
		b, err := ev.Budget.ToBudget()
		if err != nil {
			slog.ErrorContext(ctx, "Dropping budget event with bad payload", "event_id", ev.ID, "error", err)
			return nil
		}
		if err := w.mirror.UpsertBudget(ctx, b); err != nil {
			return fmt.Errorf("mirror budget: %w", err)
		}

	default:
		slog.WarnContext(ctx, "Ignoring unknown ledger event", "type", ev.Type)
	}
	return nil
}

// Resync rewrites the mirror from the full store content. It is the backup
// path for events lost while the worker was down.
func (w *MirrorWorker) Resync(ctx context.Context) error {
	txs, err := w.store.ListTransactions(ctx)
	if err != nil {
		return fmt.Errorf("list transactions: %w", err)
	}
	budgets, err := w.store.ListBudgets(ctx)
	if err != nil {
		return fmt.Errorf("list budgets: %w", err)
	}
	if err := w.mirror.Replace(ctx, txs, budgets); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	slog.InfoContext(ctx, "Mirror resynced",
		"transactions", len(txs),
		"budgets", len(budgets))
	return nil
}

// RunResync calls Resync every interval until ctx is done. Failures are logged
// and retried on the next tick.
func (w *MirrorWorker) RunResync(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := w.Resync(ctx); err != nil {
				slog.ErrorContext(ctx, "Periodic resync failed", "error", err)
			}
		}
	}
}
