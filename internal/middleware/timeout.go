package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go-watchlist/internal/model"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout caps each request at timeout. An overrun answers 503 with the
// REQUEST_TIMEOUT error envelope and cancels the handler's context.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	body, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: "REQUEST_TIMEOUT", Message: "Request timed out"},
	})

	return func(next http.Handler) http.Handler {
		limited := http.TimeoutHandler(next, timeout, string(body))
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Handlers behind this middleware all answer JSON; the timeout
			// body is written without one of its own.
			w.Header().Set("Content-Type", "application/json")
			limited.ServeHTTP(w, r)
		})
	}
}
