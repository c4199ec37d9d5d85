// Package apperrors defines the error categories shared by the service layer
// so controllers can map them to HTTP status codes consistently.
package apperrors

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed input rejected before any state change.
	ErrValidation = errors.New("validation failed")

	// ErrAccessDenied marks requests by a non-owner against a private resource.
	ErrAccessDenied = errors.New("access denied")

	// ErrVersionConflict marks an optimistic-concurrency mismatch. The caller
	// must re-read and retry; the stored record is never silently overwritten.
	ErrVersionConflict = errors.New("version conflict")

	// ErrNotFound marks lookups for ids that do not exist.
	ErrNotFound = errors.New("not found")
)

// Validationf wraps ErrValidation with a detail message.
func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrValidation}, args...)...)
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return errors.Is(err, ErrValidation) }

// IsAccessDenied reports whether err is an access-denied error.
func IsAccessDenied(err error) bool { return errors.Is(err, ErrAccessDenied) }

// IsVersionConflict reports whether err is a version-conflict error.
func IsVersionConflict(err error) bool { return errors.Is(err, ErrVersionConflict) }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
