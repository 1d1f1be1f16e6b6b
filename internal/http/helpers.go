package http

import (
	"errors"
	"net/http"
	"strings"

	"fintrack/internal/core"
	"fintrack/internal/log"
)

// sanitizeInput removes control characters except tab, newline and carriage
// return, and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// writeServiceError maps a service error onto the API's status codes.
// failure is the generic message used for unexpected errors, e.g.
// "Failed to create transaction".
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error, notFound, failure, operation string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		ValidationErrorResponse(err).Write(w)
	case errors.Is(err, core.ErrNotFound):
		NotFoundError(notFound).Write(w)
	default:
		s.structured.LogError(r.Context(), failure, err, log.ComponentLedger, operation,
			log.NewFields().WithErrorType(errorType(err)))
		InternalServerError(failure).Write(w)
	}
}

func errorType(err error) string {
	if errors.Is(err, core.ErrStorage) {
		return log.ErrorTypeDatabase
	}
	return log.ErrorTypeInternal
}

// writeBodyError answers a body that failed to parse or convert: 400 for an
// undecodable body, 422 for a bad field.
func writeBodyError(w http.ResponseWriter, err error) {
	if errors.Is(err, errMalformedBody) {
		BadRequestError("Invalid request body").Write(w)
		return
	}
	ValidationErrorResponse(err).Write(w)
}
