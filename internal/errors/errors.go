// Package errors defines the failure kinds produced by the task tracking core.
//
// The set is closed: every core operation returns either a success value or an
// error whose Kind is one of UserNotFound, TaskNotFound or InvalidInput. The
// HTTP boundary maps a Kind to a status code and a fixed message; it never
// inspects store state.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind identifies a class of core failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindUserNotFound
	KindTaskNotFound
	KindInvalidInput
)

// String returns the fixed, client-facing message for the kind.
func (k Kind) String() string {
	switch k {
	case KindUserNotFound:
		return "User not found"
	case KindTaskNotFound:
		return "Task not found"
	case KindInvalidInput:
		return "Invalid input"
	default:
		return "Internal error"
	}
}

// Error is a core failure of a given kind.
type Error struct {
	Kind Kind
}

func (e *Error) Error() string { return e.Kind.String() }

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Standard sentinel errors. Compare with errors.Is.
var (
	ErrUserNotFound = &Error{Kind: KindUserNotFound}
	ErrTaskNotFound = &Error{Kind: KindTaskNotFound}
	ErrInvalidInput = &Error{Kind: KindInvalidInput}
)

// ValidationError reports which field was rejected and why. It unwraps to
// ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// KindOf returns the kind carried by err, or KindUnknown when err is not a
// core failure.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	var v *ValidationError
	if stderrors.As(err, &v) {
		return KindInvalidInput
	}
	return KindUnknown
}

// IsNotFound reports whether err is a user or task lookup failure.
func IsNotFound(err error) bool {
	switch KindOf(err) {
	case KindUserNotFound, KindTaskNotFound:
		return true
	}
	return false
}

// IsValidationError reports whether err is an InvalidInput failure.
func IsValidationError(err error) bool {
	return KindOf(err) == KindInvalidInput
}

// FromMessage maps a fixed client-facing message back to its kind. Used by
// API clients decoding error bodies.
func FromMessage(msg string) Kind {
	for _, k := range []Kind{KindUserNotFound, KindTaskNotFound, KindInvalidInput} {
		if k.String() == msg {
			return k
		}
	}
	return KindUnknown
}
