package core

import "errors"

var (
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	// ErrStorage wraps failures of the persistence collaborator (connectivity, driver errors).
	ErrStorage = errors.New("storage failure")

	ErrInvalidAmount = &ValidationError{Field: "amount", Reason: "must be a number"}
)

// ValidationError reports a malformed create/update payload.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Field + " " + e.Reason
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
