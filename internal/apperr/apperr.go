// Package apperr defines the error taxonomy surfaced at the service boundary.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindInvalidInput Kind = "invalid_input"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindAuthFailure  Kind = "auth_failure"
	KindValidation   Kind = "validation_error"
	KindUnavailable  Kind = "unavailable"
	KindInternal     Kind = "internal"
)

// Error carries a machine-readable kind and code plus a human message.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Wrap returns a copy of e that also wraps cause. errors.Is(result, e) stays true.
func (e *Error) Wrap(cause error) error {
	return &wrapped{e: &Error{Kind: e.Kind, Code: e.Code, Message: e.Message, Err: cause}, sentinel: e}
}

// Withf returns a copy of e whose message is replaced by the formatted text.
func (e *Error) Withf(format string, args ...any) error {
	return &wrapped{e: &Error{Kind: e.Kind, Code: e.Code, Message: fmt.Sprintf(format, args...)}, sentinel: e}
}

type wrapped struct {
	e        *Error
	sentinel *Error
}

func (w *wrapped) Error() string { return w.e.Error() }

func (w *wrapped) Unwrap() error { return w.e.Err }

func (w *wrapped) Is(target error) bool {
	return target == w.sentinel
}

func (w *wrapped) As(target any) bool {
	if t, ok := target.(**Error); ok {
		*t = w.e
		return true
	}
	return false
}

func New(kind Kind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func InvalidInput(code, msg string) *Error { return New(KindInvalidInput, code, msg) }
func Conflict(code, msg string) *Error     { return New(KindConflict, code, msg) }
func NotFound(code, msg string) *Error     { return New(KindNotFound, code, msg) }
func AuthFailure(code, msg string) *Error  { return New(KindAuthFailure, code, msg) }
func Validation(code, msg string) *Error   { return New(KindValidation, code, msg) }
func Unavailable(code, msg string) *Error  { return New(KindUnavailable, code, msg) }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As extracts the *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
