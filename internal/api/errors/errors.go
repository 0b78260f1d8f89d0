package errors

import (
	"fmt"
	"net/http"
)

// ErrorKind classifies an API error for status mapping and client handling.
type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindBadRequest   ErrorKind = "bad_request"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindInternal     ErrorKind = "internal"
)

var kindStatus = map[ErrorKind]int{
	KindValidation:   http.StatusUnprocessableEntity,
	KindBadRequest:   http.StatusBadRequest,
	KindNotFound:     http.StatusNotFound,
	KindUnauthorized: http.StatusUnauthorized,
	KindForbidden:    http.StatusForbidden,
	KindConflict:     http.StatusConflict,
}

// APIError is the JSON error body returned by every handler. Quota denials
// ride on KindForbidden with the window named in Details.
type APIError struct {
	Kind      ErrorKind         `json:"kind"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// HTTPStatus maps the error kind to a status code. Unknown kinds are
// treated as internal.
func (e *APIError) HTTPStatus() int {
	if s, ok := kindStatus[e.Kind]; ok {
		return s
	}
	return http.StatusInternalServerError
}

// NewValidationError reports per-field failures from request validation.
func NewValidationError(message string, fields map[string]string) *APIError {
	return &APIError{
		Kind:    KindValidation,
		Message: message,
		Details: fields,
	}
}

func NewBadRequestError(message string) *APIError {
	return &APIError{Kind: KindBadRequest, Message: message}
}

// NewNotFoundError names the missing resource. Ownership misses use this
// too, so a caller cannot distinguish another user's resource from an
// absent one.
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewUnauthorizedError(message string) *APIError {
	return &APIError{Kind: KindUnauthorized, Message: message}
}

func NewForbiddenError(message string) *APIError {
	return &APIError{Kind: KindForbidden, Message: message}
}

// NewConflictError covers invalid state transitions, e.g. cancelling a
// finished job.
func NewConflictError(message string) *APIError {
	return &APIError{Kind: KindConflict, Message: message}
}

func NewInternalError(message string) *APIError {
	return &APIError{Kind: KindInternal, Message: message}
}
