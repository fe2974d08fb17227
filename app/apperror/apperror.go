// Package apperror defines the error type every handler-level failure is funneled through.
// Each error carries a Type that decides the HTTP status and optional structured Data that
// is returned to the client alongside the message.
package apperror

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorizes application errors.
type ErrorType int

const (
	// InternalError is the fallback for unexpected store or runtime failures.
	InternalError ErrorType = iota
	// ValidationError is a rejected payload or a missing image.
	ValidationError
	// UnauthenticatedError is a bad password or a missing/invalid token.
	UnauthenticatedError
	// ForbiddenError is an ownership violation.
	ForbiddenError
	// NotFoundError is a missing resource.
	NotFoundError
	// BadRequestError is a body that could not be decoded at all.
	BadRequestError
)

// AppError is an error with a status category and optional client-facing detail.
type AppError struct {
	Type    ErrorType
	Message string
	Data    any
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// StatusCode returns the HTTP status code for the error type.
func (e *AppError) StatusCode() int {
	switch e.Type {
	case ValidationError:
		return http.StatusUnprocessableEntity
	case UnauthenticatedError:
		return http.StatusUnauthorized
	case ForbiddenError:
		return http.StatusForbidden
	case NotFoundError:
		return http.StatusNotFound
	case BadRequestError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Response is the JSON body written for every failed request.
type Response struct {
	Message string `json:"message"`
	Error   any    `json:"error"`
}

// ToResponse converts the error to its client payload. Internal errors never expose
// the wrapped cause.
func (e *AppError) ToResponse() Response {
	return Response{Message: e.Message, Error: e.Data}
}

func New(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

// NewValidation creates a 422 error carrying field-level details.
func NewValidation(message string, data any) *AppError {
	return &AppError{Type: ValidationError, Message: message, Data: data}
}

func NewUnauthenticated(message string, err error) *AppError {
	return New(UnauthenticatedError, message, err)
}

func NewForbidden(message string) *AppError {
	return New(ForbiddenError, message, nil)
}

func NewNotFound(message string, err error) *AppError {
	return New(NotFoundError, message, err)
}

func NewBadRequest(message string, err error) *AppError {
	return New(BadRequestError, message, err)
}

func NewInternal(message string, err error) *AppError {
	return New(InternalError, message, err)
}

// From extracts an *AppError from err's chain, wrapping anything else as internal.
func From(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return NewInternal("Internal server error", err)
}

// Is reports whether err carries an AppError of type t.
func Is(err error, t ErrorType) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Type == t
}

// Write sends e as the JSON error body with its status code.
func Write(w http.ResponseWriter, e *AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.StatusCode())
	json.NewEncoder(w).Encode(e.ToResponse())
}
