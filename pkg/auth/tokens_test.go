package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/softdesk/softdesk-api/pkg/models"
)

func newTestTokenService() TokenService {
	return NewTokenService("test-secret", 15*time.Minute, 24*time.Hour)
}

func TestTokenService_RoundTrip(t *testing.T) {
	svc := newTestTokenService()
	user := &models.User{ID: uuid.New()}

	pair, err := svc.IssuePair(user)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}
	if pair.Access == "" || pair.Refresh == "" {
		t.Fatal("expected non-empty access and refresh tokens")
	}

	gotID, err := svc.ValidateAccess(pair.Access)
	if err != nil {
		t.Fatalf("ValidateAccess failed: %v", err)
	}
	if gotID != user.ID {
		t.Errorf("expected subject %s, got %s", user.ID, gotID)
	}

	gotID, err = svc.ValidateRefresh(pair.Refresh)
	if err != nil {
		t.Fatalf("ValidateRefresh failed: %v", err)
	}
	if gotID != user.ID {
		t.Errorf("expected subject %s, got %s", user.ID, gotID)
	}
}

func TestTokenService_TypeConfusionRejected(t *testing.T) {
	svc := newTestTokenService()
	user := &models.User{ID: uuid.New()}

	pair, err := svc.IssuePair(user)
	if err != nil {
		t.Fatalf("IssuePair failed: %v", err)
	}

	// A refresh token is not a valid bearer credential and vice versa.
	if _, err := svc.ValidateAccess(pair.Refresh); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("expected ErrWrongTokenType for refresh-as-access, got %v", err)
	}
	if _, err := svc.ValidateRefresh(pair.Access); !errors.Is(err, ErrWrongTokenType) {
		t.Errorf("expected ErrWrongTokenType for access-as-refresh, got %v", err)
	}
}

func TestTokenService_WrongSecretRejected(t *testing.T) {
	svc := newTestTokenService()
	other := NewTokenService("other-secret", 15*time.Minute, 24*time.Hour)
	user := &models.User{ID: uuid.New()}

	access, err := svc.IssueAccess(user)
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}

	if _, err := other.ValidateAccess(access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken across secrets, got %v", err)
	}
}

func TestTokenService_ExpiredRejected(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute, -time.Minute)
	user := &models.User{ID: uuid.New()}

	access, err := svc.IssueAccess(user)
	if err != nil {
		t.Fatalf("IssueAccess failed: %v", err)
	}

	if _, err := svc.ValidateAccess(access); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestTokenService_GarbageRejected(t *testing.T) {
	svc := newTestTokenService()

	for _, tokenString := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.ValidateAccess(tokenString); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("expected ErrInvalidToken for %q, got %v", tokenString, err)
		}
	}
}
