package handlers

import (
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/softdesk/softdesk-api/pkg/auth"
	"github.com/softdesk/softdesk-api/pkg/models"
)

// currentUser pulls the authenticated user from the context. The auth
// middleware guarantees presence on protected routes; a miss means a wiring
// bug, answered with a 401 all the same.
func currentUser(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (*models.User, bool) {
	user, ok := auth.GetCurrentUser(r.Context())
	if !ok {
		if err := ErrorResponse(w, http.StatusUnauthorized, "unauthorized", "Authentication required"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return nil, false
	}
	return user, true
}

// pathID parses the named path parameter as a UUID, answering a 400 on
// malformed input.
func pathID(w http.ResponseWriter, r *http.Request, logger *zap.Logger, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		if err := ErrorResponse(w, http.StatusBadRequest, "invalid_id", "Invalid identifier format"); err != nil {
			logger.Error("Failed to write error response", zap.Error(err))
		}
		return uuid.Nil, false
	}
	return id, true
}
