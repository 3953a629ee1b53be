package client

import (
	"errors"
	"fmt"
)

// ErrNoRefreshToken is returned when a refresh is needed but none is stored.
var ErrNoRefreshToken = errors.New("no refresh token stored")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a failed API response.
type APIError struct {
	StatusCode int
	Code       string       `json:"code"`
	Message    string       `json:"message"`
	Details    string       `json:"details,omitempty"`
	Fields     []FieldError `json:"fields,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 401
}
