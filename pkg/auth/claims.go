// Package auth provides JWT-based authentication for softdesk-api. Tokens
// are issued by the service itself and signed with an HMAC secret.
package auth

import (
	"context"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/softdesk/softdesk-api/pkg/models"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const (
	// CurrentUserKey is the context key for the authenticated user record.
	CurrentUserKey contextKey = "currentUser"
	// requestIdentityKey is the context key for the access-log identity slot.
	requestIdentityKey contextKey = "requestIdentity"
)

// Token type values carried in the typ claim.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claims represents the JWT claims issued by softdesk-api. The subject is
// the user's UUID; TokenType distinguishes access from refresh tokens so one
// cannot stand in for the other.
type Claims struct {
	jwt.RegisteredClaims
	TokenType string `json:"typ"`
}

// GetCurrentUser retrieves the authenticated user from the request context.
// Returns nil and false if no user is present.
func GetCurrentUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(CurrentUserKey).(*models.User)
	return user, ok
}

// SetCurrentUser stores the authenticated user in the context.
func SetCurrentUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, CurrentUserKey, user)
}

// RequestIdentity is a mutable slot the access logger plants in the context
// before authentication runs. RequireAuth fills it once the bearer token has
// resolved to an account, so the log line can name the principal even though
// the logger sits outside the auth layer.
type RequestIdentity struct {
	UserID   uuid.UUID
	Username string
	resolved bool
}

// Resolved reports whether authentication filled the slot.
func (ri *RequestIdentity) Resolved() bool {
	return ri != nil && ri.resolved
}

// WithRequestIdentity plants an empty identity slot in the context and
// returns it alongside the derived context.
func WithRequestIdentity(ctx context.Context) (context.Context, *RequestIdentity) {
	identity := &RequestIdentity{}
	return context.WithValue(ctx, requestIdentityKey, identity), identity
}

// RecordIdentity fills the identity slot, if the context carries one.
func RecordIdentity(ctx context.Context, user *models.User) {
	identity, ok := ctx.Value(requestIdentityKey).(*RequestIdentity)
	if !ok {
		return
	}
	identity.UserID = user.ID
	identity.Username = user.Username
	identity.resolved = true
}
