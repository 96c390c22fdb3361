package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/erazemk/zaloga/internal/model"
)

func signToken(t *testing.T, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("backend-secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return signed
}

func TestInspect(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, Claims{
		Role: model.RoleManager,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "ana@example.com",
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})

	info, err := Inspect(token)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if info.Subject != "ana@example.com" {
		t.Errorf("expected subject ana@example.com, got %q", info.Subject)
	}
	if info.Role != model.RoleManager {
		t.Errorf("expected role MANAGER, got %q", info.Role)
	}
	if !info.ExpiresAt.Equal(exp) {
		t.Errorf("expected expiry %v, got %v", exp, info.ExpiresAt)
	}
	if info.Expired(time.Now()) {
		t.Error("token should not be expired")
	}
}

func TestInspectExpired(t *testing.T) {
	// Signature and expiry are not enforced; the token is still readable.
	token := signToken(t, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "old@example.com",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})

	info, err := Inspect(token)
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if !info.Expired(time.Now()) {
		t.Error("expected expired token")
	}
}

func TestInspectOpaque(t *testing.T) {
	if _, err := Inspect("not-a-token"); err != ErrNotJWT {
		t.Errorf("expected ErrNotJWT, got %v", err)
	}
}

func TestInfoWithoutExpiryNeverExpires(t *testing.T) {
	if (Info{}).Expired(time.Now()) {
		t.Error("zero expiry should not be expired")
	}
}
