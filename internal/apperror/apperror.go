// Package apperror defines the error taxonomy shared by the service and
// transport layers. Services return *AppError values; handlers map them onto
// HTTP statuses and machine-readable codes.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type ErrorType string

const (
	TypeValidation             ErrorType = "validation_error"
	TypeUnauthenticated        ErrorType = "unauthenticated"
	TypeForbidden              ErrorType = "forbidden"
	TypeNotFound               ErrorType = "not_found"
	TypeReferenceNotFound      ErrorType = "reference_not_found"
	TypeDuplicate              ErrorType = "duplicate"
	TypeConflict               ErrorType = "conflict"
	TypeConcurrentModification ErrorType = "concurrent_modification"
	TypeInternal               ErrorType = "internal_error"
)

// Machine-readable codes surfaced to API clients.
const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeUnauthenticated     = "UNAUTHORIZED"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeClientNotFound      = "CLIENT_NOT_FOUND"
	CodeMachineTypeNotFound = "MACHINE_TYPE_NOT_FOUND"
	CodeDuplicate           = "DUPLICATE"
	CodeInUse               = "IN_USE"
	CodeSelfDelete          = "SELF_DELETE"
	CodeVersionMismatch     = "VERSION_MISMATCH"
	CodeServerError         = "SERVER_ERROR"
)

// FieldError names one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type AppError struct {
	Type    ErrorType
	Code    string
	Message string
	Status  int
	Details []FieldError
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error { return e.cause }

// WithCause attaches the underlying error for logging. It is never exposed to
// API clients.
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

func newError(t ErrorType, status int, code, message string) *AppError {
	return &AppError{Type: t, Code: code, Message: message, Status: status}
}

func NewValidation(message string, details ...FieldError) *AppError {
	e := newError(TypeValidation, http.StatusBadRequest, CodeValidation, message)
	e.Details = details
	return e
}

// NewBadRequest is a 400 that is not tied to field validation, e.g. self-deletion.
func NewBadRequest(code, message string) *AppError {
	return newError(TypeValidation, http.StatusBadRequest, code, message)
}

func NewUnauthenticated(message string) *AppError {
	return newError(TypeUnauthenticated, http.StatusUnauthorized, CodeUnauthenticated, message)
}

func NewInvalidCredentials() *AppError {
	return newError(TypeUnauthenticated, http.StatusUnauthorized, CodeInvalidCredentials, "Invalid username or password")
}

func NewForbidden(message string) *AppError {
	return newError(TypeForbidden, http.StatusForbidden, CodeForbidden, message)
}

func NewNotFound(entity string) *AppError {
	return newError(TypeNotFound, http.StatusNotFound, CodeNotFound, entity+" not found")
}

// NewReferenceNotFound reports a dangling reference in the request body. It
// maps to 404 like NotFound but carries a code naming the referenced entity.
func NewReferenceNotFound(code, message string) *AppError {
	return newError(TypeReferenceNotFound, http.StatusNotFound, code, message)
}

func NewDuplicate(message string, field string) *AppError {
	e := newError(TypeDuplicate, http.StatusConflict, CodeDuplicate, message)
	if field != "" {
		e.Details = []FieldError{{Field: field, Message: message}}
	}
	return e
}

func NewConflict(code, message string) *AppError {
	return newError(TypeConflict, http.StatusConflict, code, message)
}

func NewConcurrentModification(entity string) *AppError {
	return newError(TypeConcurrentModification, http.StatusPreconditionFailed, CodeVersionMismatch,
		entity+" was modified by another request; reload and retry")
}

func NewInternal(message string, cause error) *AppError {
	return newError(TypeInternal, http.StatusInternalServerError, CodeServerError, message).WithCause(cause)
}

// Sentinel errors raised by repositories. Services translate them into
// *AppError values carrying entity-specific messages.
var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicate       = errors.New("duplicate key")
	ErrVersionMismatch = errors.New("version mismatch")
)

func Get(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

func Is(err error, t ErrorType) bool {
	appErr := Get(err)
	return appErr != nil && appErr.Type == t
}
