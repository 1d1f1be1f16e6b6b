package http

import (
	"net/http"

	"fintrack/internal/log"

	"github.com/go-chi/chi/v5"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		ValidationErrorResponse(err).Write(w)
		return
	}
	txs, err := s.ledger.ListTransactions(r.Context(), filter)
	if err != nil {
		s.writeServiceError(w, r, err, "", "Failed to list transactions", log.OpList)
		return
	}
	NewResponse().JSON(toTransactionDTOs(txs)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.GetTransaction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeServiceError(w, r, err, "Transaction not found", "Failed to load transaction", log.OpRead)
		return
	}
	NewResponse().JSON(toTransactionDTO(tx)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeBodyError(w, err)
		return
	}
	tx, err := ParseTransaction(p)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	created, err := s.ledger.CreateTransaction(r.Context(), tx)
	if err != nil {
		s.writeServiceError(w, r, err, "", "Failed to create transaction", log.OpCreate)
		return
	}

	s.appMetrics.transactionsCreated.Add(1)
	s.structured.LogLedgerChange(r.Context(), "Transaction created", log.OpCreate,
		log.NewFields().WithTransaction(created))

	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+created.ID).
		JSON(toTransactionDTO(created)).
		Write(w)
}

// handleUpdateTransaction replaces the whole transaction; every field is
// required just as on create.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r)
	if err := p.Parse(); err != nil {
		writeBodyError(w, err)
		return
	}
	tx, err := ParseTransaction(p)
	if err != nil {
		writeBodyError(w, err)
		return
	}

	updated, err := s.ledger.UpdateTransaction(r.Context(), chi.URLParam(r, "id"), tx)
	if err != nil {
		s.writeServiceError(w, r, err, "Transaction not found", "Failed to update transaction", log.OpUpdate)
		return
	}

	s.appMetrics.transactionsUpdated.Add(1)
	s.structured.LogLedgerChange(r.Context(), "Transaction updated", log.OpUpdate,
		log.NewFields().WithTransaction(updated))

	NewResponse().JSON(toTransactionDTO(updated)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.ledger.DeleteTransaction(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err, "Transaction not found", "Failed to delete transaction", log.OpDelete)
		return
	}

	s.appMetrics.transactionsDeleted.Add(1)
	s.structured.LogLedgerChange(r.Context(), "Transaction deleted", log.OpDelete,
		log.NewFields().WithTransactionID(id))

	w.WriteHeader(http.StatusNoContent)
}
