package memory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"fintrack/internal/core"

	"github.com/google/uuid"
)

// Store is an in-process ledger. It keeps copies, so callers never share state with it.
type Store struct {
	mu      sync.Mutex
	txs     []core.Transaction
	budgets []core.Budget
}

func New() *Store {
	return &Store{}
}

// NewFromFiles seeds the store from base/seed_transactions.csv, one
// "date,type,category,amount,description" CSV record per line. Fields may be
// quoted. A missing file leaves the store empty; # comment lines are skipped.
func NewFromFiles(base string) (*Store, error) {
	s := New()
	f, err := os.Open(filepath.Join(base, "seed_transactions.csv"))
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 5
	r.Comment = '#'
	r.TrimLeadingSpace = true
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		line, _ := r.FieldPos(0)
		tx, err := parseSeedRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("seed line %d: %w", line, err)
		}
		if _, err := s.CreateTransaction(context.Background(), tx); err != nil {
			return nil, fmt.Errorf("seed line %d: %w", line, err)
		}
	}
	return s, nil
}

func (s *Store) ListTransactions(_ context.Context) ([]core.Transaction, error) {
	s.mu.Lock()
	out := append([]core.Transaction(nil), s.txs...)
	s.mu.Unlock()
	slices.SortStableFunc(out, func(a, b core.Transaction) int {
		return b.Date.Compare(a.Date)
	})
	return out, nil
}

func (s *Store) GetTransaction(_ context.Context, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return s.txs[i], nil
}

// CreateTransaction stores tx, assigning an id when it has none.
func (s *Store) CreateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexOf(tx.ID) >= 0 {
		return core.Transaction{}, fmt.Errorf("create transaction %s: %w: duplicate id", tx.ID, core.ErrStorage)
	}
	s.txs = append(s.txs, tx)
	return tx, nil
}

func (s *Store) UpdateTransaction(_ context.Context, tx core.Transaction) (core.Transaction, error) {
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(tx.ID)
	if i < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	s.txs[i] = tx
	return tx, nil
}

func (s *Store) DeleteTransaction(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(id)
	if i < 0 {
		return core.ErrNotFound
	}
	s.txs = slices.Delete(s.txs, i, i+1)
	return nil
}

func (s *Store) ListBudgets(_ context.Context) ([]core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Budget(nil), s.budgets...), nil
}

func (s *Store) UpsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.budgets {
		if existing.Category == b.Category && existing.Month == b.Month {
			s.budgets[i].Amount = b.Amount
			return s.budgets[i], nil
		}
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	s.budgets = append(s.budgets, b)
	return b, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

func (s *Store) indexOf(id string) int {
	return slices.IndexFunc(s.txs, func(t core.Transaction) bool { return t.ID == id })
}

func parseSeedRecord(rec []string) (core.Transaction, error) {
	date, err := core.ParseDate(rec[0])
	if err != nil {
		return core.Transaction{}, err
	}
	kind, err := core.ParseKind(rec[1])
	if err != nil {
		return core.Transaction{}, err
	}
	amount, err := core.ParseAmount(rec[3])
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		Date:        date,
		Type:        kind,
		Category:    core.NormalizeCategory(rec[2]),
		Amount:      amount,
		Description: strings.TrimSpace(rec[4]),
	}, nil
}
