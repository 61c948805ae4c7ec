package ratingdomain

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a rating engine error.
type ErrorKind string

const (
	KindValidation        ErrorKind = "validation"
	KindNotFound          ErrorKind = "not_found"
	KindStateConflict     ErrorKind = "state_conflict"
	KindTransactionFailed ErrorKind = "transaction_failed"
)

// Sentinels for errors.Is matching. Any *Error of the same kind matches.
var (
	ErrValidation        = &Error{Kind: KindValidation}
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrStateConflict     = &Error{Kind: KindStateConflict}
	ErrTransactionFailed = &Error{Kind: KindTransactionFailed}
)

// Error is a rating engine error carrying a kind and a human readable message.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	default:
		return string(e.Kind)
	}
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func (e *Error) Unwrap() error { return e.Err }

func Validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func StateConflictf(format string, args ...any) *Error {
	return &Error{Kind: KindStateConflict, Message: fmt.Sprintf(format, args...)}
}

// TransactionFailed wraps a storage failure that aborted a unit of work.
func TransactionFailed(message string, err error) *Error {
	return &Error{Kind: KindTransactionFailed, Message: message, Err: err}
}
