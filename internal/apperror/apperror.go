// Package apperror defines the error taxonomy shared by the repository,
// service and handler layers.
package apperror

import (
	"errors"
	"net/http"
)

// Kind is the coarse category of a failure. Clients use it to tell
// "retry later" from "request is wrong" from "resource doesn't exist".
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindInvalidState
	KindTransient
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidState:
		return "invalid_state"
	case KindTransient:
		return "transient"
	default:
		return "internal"
	}
}

// HTTPStatus maps a kind to the status code written by the HTTP layer.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindInvalidState:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindTransient:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Code is a machine-readable error code.
type Code string

const (
	CodeInternal Code = "INTERNAL"

	// Validation
	CodeInvalidInput Code = "INVALID_INPUT"

	// Not found
	CodeEventNotFound        Code = "EVENT_NOT_FOUND"
	CodeUserNotFound         Code = "USER_NOT_FOUND"
	CodeRegistrationNotFound Code = "NOT_REGISTERED"

	// Conflict
	CodeEventFull         Code = "EVENT_FULL"
	CodeAlreadyRegistered Code = "ALREADY_REGISTERED"
	CodeEmailTaken        Code = "EMAIL_TAKEN"
	CodeStillReferenced   Code = "STILL_REFERENCED"

	// Invalid state
	CodePastEvent Code = "PAST_EVENT"

	// Transient
	CodeUnavailable Code = "UNAVAILABLE"
)

// Kind returns the category a code belongs to.
func (c Code) Kind() Kind {
	switch c {
	case CodeInvalidInput:
		return KindValidation
	case CodeEventNotFound, CodeUserNotFound, CodeRegistrationNotFound:
		return KindNotFound
	case CodeEventFull, CodeAlreadyRegistered, CodeEmailTaken, CodeStillReferenced:
		return KindConflict
	case CodePastEvent:
		return KindInvalidState
	case CodeUnavailable:
		return KindTransient
	default:
		return KindInternal
	}
}

// Error is the domain error type.
type Error struct {
	Code    Code
	Message string            // safe to show to clients
	Fields  map[string]string // field-level validation messages
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// Kind returns the category of the error's code.
func (e *Error) Kind() Kind {
	return e.Code.Kind()
}

// New creates an error with the given code and client-facing message.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap creates an error with the given code that keeps cause in the chain.
func Wrap(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Message: msg, Cause: cause}
}

// Invalid creates a validation error carrying per-field messages.
func Invalid(msg string, fields map[string]string) *Error {
	return &Error{Code: CodeInvalidInput, Message: msg, Fields: fields}
}

// Sentinels for errors.Is comparisons. Matching is by code only.
var (
	ErrEventNotFound        = New(CodeEventNotFound, "event not found")
	ErrUserNotFound         = New(CodeUserNotFound, "user not found")
	ErrRegistrationNotFound = New(CodeRegistrationNotFound, "not registered")
	ErrEventFull            = New(CodeEventFull, "event full")
	ErrAlreadyRegistered    = New(CodeAlreadyRegistered, "already registered")
	ErrEmailTaken           = New(CodeEmailTaken, "email already exists")
	ErrPastEvent            = New(CodePastEvent, "past event")
	ErrStillReferenced      = New(CodeStillReferenced, "resource still has registrations")
)

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal for anything else.
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind()
	}
	return KindInternal
}
