package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/metrics"

	"golang.org/x/sync/errgroup"
)

// EventPublisher announces committed ledger changes. *amqp.Client implements it.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
	Close() error
}

// LedgerService orchestrates ledger operations across the store, the dashboard
// cache and the event publisher.
type LedgerService struct {
	store     ledger.Store
	publisher EventPublisher
	dashboard cache.Cache[metrics.Dashboard]
	clock     func() time.Time

	// generation counts mutations; a dashboard computed across one is not cached.
	mu         sync.Mutex
	generation uint64
}

type Option func(*LedgerService)

// WithPublisher enables best-effort event publishing after each mutation.
func WithPublisher(p EventPublisher) Option {
	return func(s *LedgerService) { s.publisher = p }
}

// WithDashboardCache caches computed dashboards per reference month.
func WithDashboardCache(c cache.Cache[metrics.Dashboard]) Option {
	return func(s *LedgerService) { s.dashboard = c }
}

func WithClock(now func() time.Time) Option {
	return func(s *LedgerService) { s.clock = now }
}

func NewLedgerService(store ledger.Store, opts ...Option) *LedgerService {
	s := &LedgerService{store: store, clock: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now is the service's reference instant.
func (s *LedgerService) Now() time.Time {
	return s.clock()
}

func (s *LedgerService) ListTransactions(ctx context.Context, f core.Filter) ([]core.Transaction, error) {
	txs, err := s.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	if f.IsEmpty() {
		return txs, nil
	}
	return f.Apply(txs), nil
}

func (s *LedgerService) GetTransaction(ctx context.Context, id string) (core.Transaction, error) {
	tx, err := s.store.GetTransaction(ctx, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction: %w", err)
	}
	return tx, nil
}

// CreateTransaction validates and stores tx, then publishes a created event.
func (s *LedgerService) CreateTransaction(ctx context.Context, tx core.Transaction) (core.Transaction, error) {
	tx.ID = ""
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	saved, err := s.store.CreateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("create transaction: %w", err)
	}
	s.afterMutation(ctx, amqp.NewTransactionEvent(amqp.TransactionCreated, saved.ID))
	return saved, nil
}

// UpdateTransaction replaces every field of the transaction identified by id.
func (s *LedgerService) UpdateTransaction(ctx context.Context, id string, tx core.Transaction) (core.Transaction, error) {
	tx.ID = id
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	saved, err := s.store.UpdateTransaction(ctx, tx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}
	s.afterMutation(ctx, amqp.NewTransactionEvent(amqp.TransactionUpdated, saved.ID))
	return saved, nil
}

func (s *LedgerService) DeleteTransaction(ctx context.Context, id string) error {
	if err := s.store.DeleteTransaction(ctx, id); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.afterMutation(ctx, amqp.NewTransactionEvent(amqp.TransactionDeleted, id))
	return nil
}

// ListBudgets returns every budget, or only those of month when it is non-zero.
func (s *LedgerService) ListBudgets(ctx context.Context, month core.Month) ([]core.Budget, error) {
	budgets, err := s.store.ListBudgets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	if month.IsZero() {
		return budgets, nil
	}
	out := make([]core.Budget, 0, len(budgets))
	for _, b := range budgets {
		if b.Month == month {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *LedgerService) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.ID = ""
	if err := b.Validate(); err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	saved, err := s.store.UpsertBudget(ctx, b)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	s.afterMutation(ctx, amqp.NewBudgetEvent(saved))
	return saved, nil
}

// Snapshot loads transactions and budgets concurrently.
func (s *LedgerService) Snapshot(ctx context.Context) (metrics.Snapshot, error) {
	var snap metrics.Snapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		txs, err := s.store.ListTransactions(gctx)
		if err != nil {
			return fmt.Errorf("list transactions: %w", err)
		}
		snap.Transactions = txs
		return nil
	})
	g.Go(func() error {
		budgets, err := s.store.ListBudgets(gctx)
		if err != nil {
			return fmt.Errorf("list budgets: %w", err)
		}
		snap.Budgets = budgets
		return nil
	})
	if err := g.Wait(); err != nil {
		return metrics.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	return snap, nil
}

// Dashboard computes (or serves from cache) the metrics for the month containing at.
func (s *LedgerService) Dashboard(ctx context.Context, at time.Time) (metrics.Dashboard, error) {
	key := dashboardKey(at)
	if s.dashboard != nil {
		if d, ok := s.dashboard.Get(key); ok {
			slog.DebugContext(ctx, "Dashboard served from cache", "key", key)
			d.GeneratedFor = at
			return d, nil
		}
	}

	gen := s.currentGeneration()
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return metrics.Dashboard{}, fmt.Errorf("compute dashboard: %w", err)
	}
	d := metrics.Compute(snap, at)

	if s.dashboard != nil {
		s.mu.Lock()
		if s.generation == gen {
			s.dashboard.Set(key, d)
		} else {
			slog.DebugContext(ctx, "Ledger changed during dashboard computation, not caching", "key", key)
		}
		s.mu.Unlock()
	}
	return d, nil
}

func (s *LedgerService) currentGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}

// Ping reports whether the store is reachable.
func (s *LedgerService) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *LedgerService) afterMutation(ctx context.Context, ev *amqp.LedgerEvent) {
	s.mu.Lock()
	s.generation++
	if s.dashboard != nil {
		s.dashboard.Clear()
	}
	s.mu.Unlock()

	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping ledger event", "type", ev.Type)
		return
	}
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		// The mutation is committed; the mirror catches up on the next resync.
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", ev.Type,
			"event_id", ev.ID,
			"error", err)
	}
}

// Close releases the publisher. The store is owned by the backend factory.
func (s *LedgerService) Close() error {
	var errs []error
	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("close ledger service: %w", err)
	}
	return nil
}

func dashboardKey(at time.Time) string {
	return core.MonthOf(at, at.Location()).String() + "@" + at.Location().String()
}
