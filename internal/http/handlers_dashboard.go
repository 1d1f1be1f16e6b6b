package http

import (
	"net/http"

	"fintrack/internal/log"
)

// handleDashboard returns every derived metric for the month containing ?at=.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	at, err := ParseReferenceTime(r.URL.Query(), s.ledger.Now())
	if err != nil {
		ValidationErrorResponse(err).Write(w)
		return
	}
	d, err := s.ledger.Dashboard(r.Context(), at)
	if err != nil {
		s.writeServiceError(w, r, err, "", "Failed to compute dashboard", log.OpCompute)
		return
	}
	NewResponse().JSON(toDashboardDTO(d)).Write(w)
}

// handleInsights returns only the insight list of the dashboard.
func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	at, err := ParseReferenceTime(r.URL.Query(), s.ledger.Now())
	if err != nil {
		ValidationErrorResponse(err).Write(w)
		return
	}
	d, err := s.ledger.Dashboard(r.Context(), at)
	if err != nil {
		s.writeServiceError(w, r, err, "", "Failed to compute insights", log.OpCompute)
		return
	}
	NewResponse().JSON(toInsightsDTO(d)).Write(w)
}
