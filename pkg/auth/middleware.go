package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/softdesk/softdesk-api/pkg/models"
)

// UserLoader resolves a token subject to a live account. Inactive or deleted
// accounts do not resolve, so a token outlives its account by at most one
// lookup.
type UserLoader interface {
	GetActive(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Middleware provides HTTP authentication middleware. It validates the
// bearer token and loads the current user record so downstream policy checks
// see up-to-date role flags rather than whatever the token was minted with.
type Middleware struct {
	tokens TokenService
	users  UserLoader
	logger *zap.Logger
}

// NewMiddleware creates a new auth middleware.
func NewMiddleware(tokens TokenService, users UserLoader, logger *zap.Logger) *Middleware {
	return &Middleware{
		tokens: tokens,
		users:  users,
		logger: logger,
	}
}

// RequireAuth validates the bearer token and puts the authenticated user in
// the request context. Every failure mode is a 401; no anonymous access
// exists anywhere in the API.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tokenString, ok := bearerToken(r)
		if !ok {
			m.unauthorized(w, "Authentication required")
			return
		}

		userID, err := m.tokens.ValidateAccess(tokenString)
		if err != nil {
			m.logger.Debug("Token validation failed",
				zap.String("path", r.URL.Path),
				zap.Error(err))
			m.unauthorized(w, "Invalid or expired token")
			return
		}

		user, err := m.users.GetActive(r.Context(), userID)
		if err != nil {
			m.logger.Debug("Token subject did not resolve to an active user",
				zap.String("user_id", userID.String()),
				zap.Error(err))
			m.unauthorized(w, "Invalid or expired token")
			return
		}

		RecordIdentity(r.Context(), user)
		next(w, r.WithContext(SetCurrentUser(r.Context(), user)))
	}
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// unauthorized returns a 401 response with JSON error body.
func (m *Middleware) unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   "unauthorized",
		"message": message,
	})
}
