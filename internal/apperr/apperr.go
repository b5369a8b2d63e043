// Package apperr defines the pre-upgrade error kinds the HTTP layer maps to
// status codes, generalizing the engine-error envelope pattern down to this
// server's three request-time error kinds.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel kinds. Wrap one of these with fmt.Errorf("%w: ...", ErrX) and
// the HTTP layer recovers the kind with errors.Is.
var (
	ErrValidation      = errors.New("validation failed")
	ErrAdmissionDenied = errors.New("admission denied")
	ErrUnknownGame     = errors.New("unknown game")
)

// Validation wraps a field-level validation failure.
func Validation(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// AdmissionDenied reports that identity has exhausted its quota.
func AdmissionDenied(identity string) error {
	return fmt.Errorf("%w: identity %q", ErrAdmissionDenied, identity)
}

// UnknownGame reports that id has no entry in the registry.
func UnknownGame(id string) error {
	return fmt.Errorf("%w: id %q", ErrUnknownGame, id)
}
