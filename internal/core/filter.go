package core

import "strings"

// Filter narrows a transaction list. Empty fields match everything.
type Filter struct {
	Query    string
	Category string
	Type     Kind
}

func (f Filter) IsEmpty() bool {
	return strings.TrimSpace(f.Query) == "" && f.Category == "" && f.Type == ""
}

// Match reports whether t passes every non-empty criterion.
func (f Filter) Match(t Transaction) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(t.Description), q) &&
			!strings.Contains(strings.ToLower(t.Category), q) {
			return false
		}
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return true
}

// Apply returns the matching transactions in input order. txs is not modified.
func (f Filter) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
