// Package handlers contains the HTTP layer: request decoding, service
// dispatch and the mapping from the error taxonomy to status codes.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/softdesk/softdesk-api/pkg/apperrors"
)

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// RespondError maps a service error to its HTTP representation. Scope misses
// and nonexistent identifiers both arrive as ErrNotFound and leave as 404;
// validation failures carry their reason, everything unexpected is logged
// and collapsed to a 500.
func RespondError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *apperrors.ValidationError

	var writeErr error
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		writeErr = ErrorResponse(w, http.StatusNotFound, "not_found", "Resource not found")
	case errors.Is(err, apperrors.ErrForbidden):
		writeErr = ErrorResponse(w, http.StatusForbidden, "forbidden", "You do not have permission to perform this action")
	case errors.Is(err, apperrors.ErrUnauthenticated):
		writeErr = ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required")
	case errors.As(err, &verr):
		writeErr = ErrorResponse(w, http.StatusUnprocessableEntity, "validation_failed", verr.Error())
	default:
		logger.Error("Request failed", zap.Error(err))
		writeErr = ErrorResponse(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
	if writeErr != nil {
		logger.Error("Failed to write error response", zap.Error(writeErr))
	}
}

// DecodeJSON decodes a request body into dst, rejecting unknown garbage with
// a 400. Returns false when a response has already been written.
func DecodeJSON(w http.ResponseWriter, r *http.Request, logger *zap.Logger, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return false
	}
	return true
}
