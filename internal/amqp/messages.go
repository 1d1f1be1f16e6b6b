package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"fintrack/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	TransactionCreated EventType = "transaction.created"
	TransactionUpdated EventType = "transaction.updated"
	TransactionDeleted EventType = "transaction.deleted"
	BudgetUpserted     EventType = "budget.upserted"
)

type EventType string

func (t EventType) IsValid() bool {
	switch t {
	case TransactionCreated, TransactionUpdated, TransactionDeleted, BudgetUpserted:
		return true
	}
	return false
}

// LedgerEvent announces one committed ledger change. Transaction events carry
// only the id; consumers read the current row from the store.
type LedgerEvent struct {
	ID            string         `json:"id"`
	Type          EventType      `json:"type"`
	TransactionID string         `json:"transaction_id,omitempty"`
	Budget        *BudgetPayload `json:"budget,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

// BudgetPayload is the wire form of a budget; money travels as a decimal string.
type BudgetPayload struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Month    string `json:"month"`
	Amount   string `json:"amount"`
}

func NewTransactionEvent(t EventType, transactionID string) *LedgerEvent {
	return &LedgerEvent{
		ID:            uuid.NewString(),
		Type:          t,
		TransactionID: transactionID,
		Timestamp:     time.Now().UTC(),
	}
}

func NewBudgetEvent(b core.Budget) *LedgerEvent {
	return &LedgerEvent{
		ID:   uuid.NewString(),
		Type: BudgetUpserted,
		Budget: &BudgetPayload{
			ID:       b.ID,
			Category: b.Category,
			Month:    b.Month.String(),
			Amount:   b.Amount.String(),
		},
		Timestamp: time.Now().UTC(),
	}
}

// ToBudget decodes the payload back into a domain budget.
func (p *BudgetPayload) ToBudget() (core.Budget, error) {
	month, err := core.ParseMonth(p.Month)
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget month: %w", err)
	}
	amount, err := decimal.NewFromString(p.Amount)
	if err != nil {
		return core.Budget{}, fmt.Errorf("budget amount: %w", err)
	}
	return core.Budget{ID: p.ID, Category: p.Category, Month: month, Amount: amount}, nil
}

func (m *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerEventFromJSON decodes and sanity-checks a message body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var msg LedgerEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.Type.IsValid() {
		return nil, fmt.Errorf("unknown event type %q", msg.Type)
	}
	if msg.Type == BudgetUpserted {
		if msg.Budget == nil {
			return nil, fmt.Errorf("%s event without budget", msg.Type)
		}
	} else if msg.TransactionID == "" {
		return nil, fmt.Errorf("%s event without transaction id", msg.Type)
	}
	return &msg, nil
}
