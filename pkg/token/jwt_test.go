package token

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", 2)
	id := uuid.New()

	tok, exp, err := m.GenerateSessionToken(id)
	if err != nil {
		t.Fatal(err)
	}
	if d := time.Until(exp); d < 119*time.Minute || d > 2*time.Hour {
		t.Errorf("unexpected expiry %v", exp)
	}

	claims, err := m.VerifyToken(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	got, err := claims.SessionID()
	if err != nil || got != id {
		t.Fatalf("session id %v (%v), want %v", got, err, id)
	}
}

func TestVerifyRejects(t *testing.T) {
	m := NewJWTManager("test-secret", 1)
	tok, _, err := m.GenerateSessionToken(uuid.New())
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewJWTManager("other-secret", 1).VerifyToken(tok); err == nil {
		t.Error("token signed with another secret must be rejected")
	}
	if _, err := m.VerifyToken(tok[:len(tok)-2]); err == nil {
		t.Error("truncated token must be rejected")
	}
	if _, err := m.VerifyToken("not-a-jwt"); err == nil {
		t.Error("garbage must be rejected")
	}

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Kind: kindCounsel,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})
	s, _ := expired.SignedString([]byte("test-secret"))
	if _, err := m.VerifyToken(s); err == nil {
		t.Error("expired token must be rejected")
	}

	wrongKind := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Kind:             "access",
		RegisteredClaims: jwt.RegisteredClaims{Subject: uuid.NewString()},
	})
	s, _ = wrongKind.SignedString([]byte("test-secret"))
	if _, err := m.VerifyToken(s); err == nil || !strings.Contains(err.Error(), "kind") {
		t.Errorf("token of another kind must be rejected, got %v", err)
	}

	badSubject := jwt.NewWithClaims(jwt.SigningMethodHS256, SessionClaims{
		Kind:             kindCounsel,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "42"},
	})
	s, _ = badSubject.SignedString([]byte("test-secret"))
	if _, err := m.VerifyToken(s); err == nil {
		t.Error("non-uuid subject must be rejected")
	}
}

func TestGenerateRandomString(t *testing.T) {
	a, b := GenerateRandomString(16), GenerateRandomString(16)
	if len(a) != 32 || a == b {
		t.Errorf("unexpected random strings %q %q", a, b)
	}
}
