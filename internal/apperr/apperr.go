// Package apperr classifies service failures into the small set of kinds
// the HTTP layer knows how to report. Every error leaving the appointment
// service carries exactly one Kind.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	// Internal covers database/connectivity failures and anything
	// unclassified; the underlying message is preserved.
	Internal Kind = iota
	// NotFound covers missing appointments, doctors, patients and empty
	// result sets.
	NotFound
	// Authorization covers callers lacking the required role or ownership.
	Authorization
	// Validation covers malformed or out-of-range input, e.g. an
	// appointment time that is not in the future.
	Validation
)

func (k Kind) String() string {
	switch k {
	case NotFound:
		return "not_found"
	case Authorization:
		return "authorization"
	case Validation:
		return "validation"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to its fixed response status.
func (k Kind) HTTPStatus() int {
	switch k {
	case NotFound:
		return http.StatusNotFound
	case Authorization:
		return http.StatusForbidden
	case Validation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets callers match on kind with a bare &Error{Kind: k} target.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New builds a classified error with a fixed message.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf builds a classified error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap classifies an underlying error, keeping its message reachable
// through Unwrap.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from any error in the chain; unclassified
// errors report Internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Internal
}
