package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/softdesk/softdesk-api/pkg/models"
)

// Common token errors.
var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrWrongTokenType = errors.New("wrong token type")
)

// TokenPair is an access/refresh token pair returned on login.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// TokenService issues and validates the JWTs used as bearer credentials.
type TokenService interface {
	// IssuePair issues a fresh access/refresh pair for the user.
	IssuePair(user *models.User) (*TokenPair, error)
	// IssueAccess issues a fresh access token for the user.
	IssueAccess(user *models.User) (string, error)
	// ValidateAccess parses an access token and returns the subject user ID.
	ValidateAccess(tokenString string) (uuid.UUID, error)
	// ValidateRefresh parses a refresh token and returns the subject user ID.
	ValidateRefresh(tokenString string) (uuid.UUID, error)
}

// tokenService implements TokenService with HMAC-SHA256 signing.
type tokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenService creates a TokenService signing with the given secret.
func NewTokenService(secret string, accessTTL, refreshTTL time.Duration) TokenService {
	return &tokenService{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// IssuePair issues a fresh access/refresh pair for the user.
func (s *tokenService) IssuePair(user *models.User) (*TokenPair, error) {
	access, err := s.issue(user, TokenTypeAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.issue(user, TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}

// IssueAccess issues a fresh access token for the user.
func (s *tokenService) IssueAccess(user *models.User) (string, error) {
	return s.issue(user, TokenTypeAccess, s.accessTTL)
}

func (s *tokenService) issue(user *models.User, tokenType string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		TokenType: tokenType,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s token: %w", tokenType, err)
	}
	return signed, nil
}

// ValidateAccess parses an access token and returns the subject user ID.
func (s *tokenService) ValidateAccess(tokenString string) (uuid.UUID, error) {
	return s.validate(tokenString, TokenTypeAccess)
}

// ValidateRefresh parses a refresh token and returns the subject user ID.
func (s *tokenService) ValidateRefresh(tokenString string) (uuid.UUID, error) {
	return s.validate(tokenString, TokenTypeRefresh)
}

func (s *tokenService) validate(tokenString, wantType string) (uuid.UUID, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return uuid.Nil, ErrInvalidToken
	}

	if claims.TokenType != wantType {
		return uuid.Nil, ErrWrongTokenType
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}

// Ensure tokenService implements TokenService at compile time.
var _ TokenService = (*tokenService)(nil)
