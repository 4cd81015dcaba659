package services

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindConflict
	KindUnauthorized
	KindNotFound
	KindWrongMethod
	KindConfig
	KindExternal
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindConflict:
		return "conflict"
	case KindUnauthorized:
		return "unauthorized"
	case KindNotFound:
		return "not_found"
	case KindWrongMethod:
		return "wrong_method"
	case KindConfig:
		return "config_error"
	case KindExternal:
		return "external_service_error"
	default:
		return "internal_error"
	}
}

// Error is the only error type the service returns. Message is safe to show to callers;
// Err carries the underlying cause for logs. Detail is upstream information that may
// also be shown, and is only set where the upstream is known to be safe to echo.
type Error struct {
	Kind    Kind
	Message string
	Field   string
	Detail  string
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

// KindOf returns the Kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func validationError(field, msg string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: msg}
}

func conflictError(field, msg string, err error) *Error {
	return &Error{Kind: KindConflict, Field: field, Message: msg, Err: err}
}

func unauthorizedError(msg string, err error) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg, Err: err}
}

func notFoundError(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

func wrongMethodError(msg string) *Error {
	return &Error{Kind: KindWrongMethod, Message: msg}
}

func configError(msg string, err error) *Error {
	return &Error{Kind: KindConfig, Message: msg, Err: err}
}

func externalError(msg string, err error) *Error {
	return &Error{Kind: KindExternal, Message: msg, Err: err}
}

func internalError(op string, err error) *Error {
	return &Error{Kind: KindInternal, Message: "Server error", Err: fmt.Errorf("%s: %w", op, err)}
}
