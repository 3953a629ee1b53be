package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"go-watchlist/internal/middleware"
	"go-watchlist/internal/model"
	"go-watchlist/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
		body.Fields = apiErr.Fields
		if cause := errors.Unwrap(apiErr); cause != nil {
			slog.ErrorContext(r.Context(), "upstream failure",
				"request_id", middleware.RequestIDFromContext(r.Context()),
				"code", apiErr.Code,
				"error", cause.Error(),
			)
		}
	} else if errors.Is(err, model.ErrUserNotFound) {
		status = http.StatusBadRequest
		body.Code = "USER_NOT_FOUND"
		body.Message = "User not found"
	} else if errors.Is(err, model.ErrUserAlreadyExists) {
		status = http.StatusBadRequest
		body.Code = "USER_EXISTS"
		body.Message = "User already exists"
	} else if errors.Is(err, model.ErrInvalidCredentials) {
		status = http.StatusBadRequest
		body.Code = "INVALID_CREDENTIALS"
		body.Message = "Invalid Credentials"
	} else if errors.Is(err, model.ErrInvalidOrExpiredToken) {
		status = http.StatusBadRequest
		body.Code = "INVALID_RESET_TOKEN"
		body.Message = "Invalid or expired token"
	} else if errors.Is(err, model.ErrEntryNotFound) {
		status = http.StatusNotFound
		body.Code = "ENTRY_NOT_FOUND"
		body.Message = "Watchlist entry not found"
	} else if errors.Is(err, model.ErrAlreadyListed) {
		status = http.StatusBadRequest
		body.Code = "ALREADY_LISTED"
		body.Message = "Title is already on your watchlist"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		body.Code = "VALIDATION_ERROR"
		body.Message = "Invalid input"
	} else {
		slog.ErrorContext(r.Context(), "unhandled error in writeError",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"error", err.Error(),
		)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

// decodeJSON reads the request body into dst. An empty body decodes as {}.
func decodeJSON(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return apierror.New("BAD_REQUEST", "invalid JSON body", "", http.StatusBadRequest)
	}
	return nil
}

func parseIntOrDefault(raw string, fallback int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return value
}

func isPayloadTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "request body too large")
}

func requireIdentity(w http.ResponseWriter, r *http.Request) (model.Identity, bool) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		writeError(w, r, apierror.Unauthorized("NO_TOKEN", "No token, authorization denied"))
		return model.Identity{}, false
	}
	return identity, true
}
