package apierror

import (
	"fmt"
	"net/http"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type APIError struct {
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    string       `json:"details,omitempty"`
	Fields     []FieldError `json:"fields,omitempty"`
	HTTPStatus int          `json:"-"`

	cause error
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying failure of upstream errors for logging.
func (e *APIError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

func Validation(fields ...FieldError) *APIError {
	message := "validation failed"
	if len(fields) == 1 {
		message = fields[0].Message
	}
	return &APIError{Code: "VALIDATION_ERROR", Message: message, Fields: fields, HTTPStatus: http.StatusBadRequest}
}

func Unauthorized(code string, message string) *APIError {
	return New(code, message, "", http.StatusUnauthorized)
}

func Forbidden(code string, message string) *APIError {
	return New(code, message, "", http.StatusForbidden)
}

func NotFound(code string, message string) *APIError {
	return New(code, message, "", http.StatusNotFound)
}

// Conflict reports a duplicate resource. The public API answers these with 400.
func Conflict(code string, message string) *APIError {
	return New(code, message, "", http.StatusBadRequest)
}

// Upstream hides cause from the client behind a generic message; the cause
// stays reachable through errors.Unwrap for server-side logging.
func Upstream(message string, cause error) *APIError {
	return &APIError{Code: "UPSTREAM_ERROR", Message: message, HTTPStatus: http.StatusInternalServerError, cause: cause}
}
