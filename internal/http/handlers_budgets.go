package http

import (
	"net/http"

	"fintrack/internal/log"
)

// handleListBudgets lists budgets, optionally restricted by ?month=YYYY-MM.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonthQuery(r.URL.Query(), "month")
	if err != nil {
		ValidationErrorResponse(err).Write(w)
		return
	}
	budgets, err := s.ledger.ListBudgets(r.Context(), month)
	if err != nil {
		s.writeServiceError(w, r, err, "", "Failed to list budgets", log.OpList)
		return
	}
	NewResponse().JSON(toBudgetDTOs(budgets)).Write(w)
}

// handleUpsertBudget creates or replaces the budget for a (month, category).
func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeBodyError(w, err)
		return
	}
	b, err := ParseBudget(p, s.ledger.Now())
	if err != nil {
		writeBodyError(w, err)
		return
	}

	saved, err := s.ledger.UpsertBudget(r.Context(), b)
	if err != nil {
		s.writeServiceError(w, r, err, "", "Failed to save budget", log.OpUpsert)
		return
	}

	s.appMetrics.budgetsUpserted.Add(1)
	s.structured.LogLedgerChange(r.Context(), "Budget saved", log.OpUpsert,
		log.NewFields().WithBudget(saved))

	NewResponse().Status(http.StatusCreated).JSON(toBudgetDTO(saved)).Write(w)
}
