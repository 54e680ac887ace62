package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/softdesk/softdesk-api/pkg/apperrors"
	"github.com/softdesk/softdesk-api/pkg/auth"
	"github.com/softdesk/softdesk-api/pkg/services"
)

// TokenHandler handles credential exchange. These are the only API routes
// that do not require a bearer token.
type TokenHandler struct {
	users  services.UserService
	tokens auth.TokenService
	logger *zap.Logger
}

// NewTokenHandler creates a new token handler.
func NewTokenHandler(users services.UserService, tokens auth.TokenService, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{users: users, tokens: tokens, logger: logger}
}

// RegisterRoutes registers the token handler's routes on the given mux.
func (h *TokenHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/token", h.Obtain)
	mux.HandleFunc("POST /api/token/refresh", h.Refresh)
}

type obtainTokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshTokenRequest struct {
	Refresh string `json:"refresh"`
}

type refreshTokenResponse struct {
	Access string `json:"access"`
}

// Obtain handles POST /api/token
func (h *TokenHandler) Obtain(w http.ResponseWriter, r *http.Request) {
	var req obtainTokenRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, apperrors.ErrInvalidCredentials) {
			RespondError(w, h.logger, apperrors.ErrUnauthenticated)
			return
		}
		RespondError(w, h.logger, err)
		return
	}

	pair, err := h.tokens.IssuePair(user)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, pair); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}

// Refresh handles POST /api/token/refresh
func (h *TokenHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshTokenRequest
	if !DecodeJSON(w, r, h.logger, &req) {
		return
	}

	userID, err := h.tokens.ValidateRefresh(req.Refresh)
	if err != nil {
		RespondError(w, h.logger, apperrors.ErrUnauthenticated)
		return
	}

	// The subject must still resolve to an active account; deactivated
	// users cannot mint new access tokens from an old refresh token.
	user, err := h.users.GetActive(r.Context(), userID)
	if err != nil {
		RespondError(w, h.logger, apperrors.ErrUnauthenticated)
		return
	}

	access, err := h.tokens.IssueAccess(user)
	if err != nil {
		RespondError(w, h.logger, err)
		return
	}

	if err := WriteJSON(w, http.StatusOK, refreshTokenResponse{Access: access}); err != nil {
		h.logger.Error("Failed to write response", zap.Error(err))
	}
}
