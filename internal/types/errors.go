package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies boundary failures so callers can branch without string
// matching.
type ErrorKind string

const (
	KindPermissionDenied    ErrorKind = "permission_denied"
	KindNotAuthenticated    ErrorKind = "not_authenticated"
	KindInvalidInput        ErrorKind = "invalid_input"
	KindNoCurrentPrice      ErrorKind = "no_current_price"
	KindUpstreamUnavailable ErrorKind = "upstream_unavailable"
	KindInternal            ErrorKind = "internal"
)

// Error is the typed failure returned at every boundary: a kind plus a
// human-readable message. Validation always precedes mutation, so an Error
// implies no state change on the failing operation.
type Error struct {
	Kind    ErrorKind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds a typed boundary error.
func NewError(kind ErrorKind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from err, unwrapping as needed. Unclassified
// errors report KindInternal.
func KindOf(err error) ErrorKind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind ErrorKind) bool {
	return err != nil && KindOf(err) == kind
}
