// Package apperr defines the error contract shared by services and HTTP handlers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an AppError.
type Code string

// Error codes
const (
	CodeValidation      Code = "VALIDATION"
	CodeAuthorization   Code = "AUTHORIZATION"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeExternalService Code = "EXTERNAL_SERVICE"
	CodePersistence     Code = "PERSISTENCE"
)

// AppError carries a code, the operation that failed, a message safe to show the
// user and the wrapped cause.
type AppError struct {
	Code    Code
	Op      string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	default:
		return e.Message
	}
}

func (e *AppError) Unwrap() error { return e.Err }

// E builds an AppError.
func E(code Code, op, msg string, err error) error {
	return &AppError{Code: code, Op: op, Message: msg, Err: err}
}

// Validation is a shortcut for a CodeValidation error without cause.
func Validation(op, msg string) error { return E(CodeValidation, op, msg, nil) }

// Forbidden is a shortcut for a CodeAuthorization error without cause.
func Forbidden(op, msg string) error { return E(CodeAuthorization, op, msg, nil) }

// NotFound is a shortcut for a CodeNotFound error without cause.
func NotFound(op, msg string) error { return E(CodeNotFound, op, msg, nil) }

// Persistence wraps a store failure.
func Persistence(op, msg string, err error) error { return E(CodePersistence, op, msg, err) }

// External wraps an upstream service failure.
func External(op, msg string, err error) error { return E(CodeExternalService, op, msg, err) }

// CodeOf returns the code of err, or "" when err is not an AppError.
func CodeOf(err error) Code {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

// Is reports whether err is an AppError with the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// Message returns the user-facing message of err.
func Message(err error) string {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return err.Error()
}

// HTTPStatus maps err to the response status used by the handlers.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeAuthorization:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
