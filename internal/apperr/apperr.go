// Package apperr carries domain error codes from services to the HTTP
// boundary.
package apperr

import (
	"errors"
	"net/http"
)

type Code string

const (
	// CodeUserNotFound means an authenticated identity has no backing user
	// row. It is a server-side inconsistency, not a client error.
	CodeUserNotFound Code = "user_not_found"
	CodeNotFound     Code = "not_found"
	CodeForbidden    Code = "forbidden"
	CodeValidation   Code = "validation"
	CodeConflict     Code = "conflict"
	CodeUnauthorized Code = "unauthorized"
	CodeInternal     Code = "internal"
)

// Error is a coded error with a client-facing message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

func Wrap(err error, code Code, msg string) error {
	return &Error{Code: code, Message: msg, Err: err}
}

func NotFound(msg string) error   { return New(CodeNotFound, msg) }
func Forbidden(msg string) error  { return New(CodeForbidden, msg) }
func Validation(msg string) error { return New(CodeValidation, msg) }
func Conflict(msg string) error   { return New(CodeConflict, msg) }

// HasCode reports whether any error in err's chain is an *Error with code.
func HasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or
// CodeInternal when there is none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Message returns the client-facing message for err. Internal errors get a
// generic message so store details never leak.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Code != CodeInternal {
		return e.Message
	}
	return "internal server error"
}

// Status maps err to an HTTP status code.
func Status(err error) int {
	switch CodeOf(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeForbidden:
		return http.StatusForbidden
	case CodeValidation:
		return http.StatusBadRequest
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
