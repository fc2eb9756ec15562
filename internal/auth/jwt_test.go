package auth

import (
	"errors"
	"testing"
	"time"
)

func newTestManager(accessTTL, refreshTTL time.Duration) *Manager {
	return NewManager("access-secret", "refresh-secret", accessTTL, refreshTTL)
}

func TestIssueAccess_RoundTrip(t *testing.T) {
	m := newTestManager(time.Hour, 24*time.Hour)

	raw, exp, err := m.IssueAccess(7, "ops@example.com", "ADMIN")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	if time.Until(exp) < 55*time.Minute {
		t.Fatalf("expiry too close: %v", exp)
	}

	claims, err := m.VerifyAccess(raw)
	if err != nil {
		t.Fatalf("VerifyAccess error: %v", err)
	}

	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID error: %v", err)
	}

	if id != 7 || claims.Email != "ops@example.com" || claims.Role != "ADMIN" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerifyAccess_Expired(t *testing.T) {
	m := newTestManager(-time.Minute, 24*time.Hour)

	raw, _, err := m.IssueAccess(7, "ops@example.com", "ADMIN")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	_, err = m.VerifyAccess(raw)

	if !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyAccess_Garbage(t *testing.T) {
	m := newTestManager(time.Hour, 24*time.Hour)

	_, err := m.VerifyAccess("not.a.jwt")

	if !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
}

// A refresh token must never pass access verification: different secret
// and different typ claim.
func TestTokenTypeConfusion(t *testing.T) {
	m := newTestManager(time.Hour, 24*time.Hour)

	refresh, _, err := m.IssueRefresh(7, "ops@example.com")
	if err != nil {
		t.Fatalf("IssueRefresh error: %v", err)
	}

	if _, err := m.VerifyAccess(refresh); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("refresh token accepted as access token: %v", err)
	}

	access, _, err := m.IssueAccess(7, "ops@example.com", "ADMIN")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	if _, err := m.VerifyRefresh(access); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("access token accepted as refresh token: %v", err)
	}
}

func TestDecodeUnverified_ExpiredToken(t *testing.T) {
	m := newTestManager(-time.Minute, 24*time.Hour)

	raw, _, err := m.IssueAccess(42, "ops@example.com", "SUBADMIN")
	if err != nil {
		t.Fatalf("IssueAccess error: %v", err)
	}

	claims, err := m.DecodeUnverified(raw)
	if err != nil {
		t.Fatalf("DecodeUnverified error: %v", err)
	}

	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID error: %v", err)
	}

	if id != 42 {
		t.Fatalf("expected subject 42, got %d", id)
	}
}
