// Package handler exposes the HTTP surface. Handlers decode requests, call
// services, and translate domain errors to status codes; no business rules
// live here.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kellyw/taskdeck/internal/apperror"
)

// ErrorResponse is the error shape every endpoint returns.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			slog.Error("encoding JSON response", slog.String("error", err.Error()))
		}
	}
}

// writeError maps domain errors to HTTP statuses. Store errors distinguish
// retryable (503) from rejected (502) so clients know whether to retry.
func writeError(w http.ResponseWriter, err error) {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		status := http.StatusInternalServerError
		errorType := "internal_error"

		switch {
		case errors.Is(err, apperror.ErrValidation):
			status = http.StatusBadRequest
			errorType = "validation_error"
		case errors.Is(err, apperror.ErrNotFound):
			status = http.StatusNotFound
			errorType = "not_found"
		case errors.Is(err, apperror.ErrForbidden):
			status = http.StatusForbidden
			errorType = "forbidden"
		case errors.Is(err, apperror.ErrDuplicateUsername), errors.Is(err, apperror.ErrDuplicateEmail):
			status = http.StatusConflict
			errorType = "conflict"
		case errors.Is(err, apperror.ErrStoreUnavailable):
			status = http.StatusServiceUnavailable
			errorType = "store_unavailable"
		case errors.Is(err, apperror.ErrStoreRejected), errors.Is(err, apperror.ErrIndexNotConfigured):
			status = http.StatusBadGateway
			errorType = "store_rejected"
		}

		writeJSON(w, status, ErrorResponse{
			Error:   errorType,
			Message: appErr.Message,
			Field:   appErr.Field,
		})
		return
	}

	// Unknown errors stay opaque to the client.
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error:   "internal_error",
		Message: "an internal error occurred",
	})
}
