// Package apperrors defines the error taxonomy shared by repositories,
// services and handlers. Repositories translate driver errors into these;
// handlers translate them into HTTP status codes.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated means no valid identity was presented.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the identity is known but the policy rejects the action.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound covers both nonexistent identifiers and identifiers outside
	// the caller's visibility scope. The two cases are deliberately
	// indistinguishable so inaccessible resources do not leak their existence.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials means a login attempt failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a payload that is well-formed JSON but violates a
// domain rule (duplicate name, bad enum value, underage user, immutable field
// change, and so on). Field may be empty for whole-payload violations.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidation builds a ValidationError for the given field.
func NewValidation(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}
