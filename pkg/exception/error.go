package exception

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the transport layer.
type Kind uint8

const (
	KindInternal Kind = iota
	KindInvalid
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindUnprocessable
	KindUnavailable
	KindRateLimited
)

var kindNames = [...]string{
	KindInternal:      "INTERNAL",
	KindInvalid:       "INVALID_REQUEST",
	KindUnauthorized:  "UNAUTHORIZED",
	KindForbidden:     "FORBIDDEN",
	KindNotFound:      "NOT_FOUND",
	KindConflict:      "CONFLICT",
	KindUnprocessable: "UNPROCESSABLE",
	KindUnavailable:   "SERVICE_UNAVAILABLE",
	KindRateLimited:   "RATE_LIMIT_EXCEEDED",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[KindInternal]
}

// Error is a classified error with an optional cause and field hint.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies cause under kind.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Invalid reports a rejected input field.
func Invalid(field, message string) *Error {
	return &Error{Kind: KindInvalid, Message: message, Field: field}
}

// Conflict reports a uniqueness or reference violation.
func Conflict(message string, cause error) *Error {
	return &Error{Kind: KindConflict, Message: message, Cause: cause}
}

// KindOf returns the classification of err. Unclassified errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// As extracts the outermost classified error.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
