package auth

import (
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/civicwatch/hazard-service/internal/domain"
)

func signToken(t *testing.T, secret string, method jwt.SigningMethod, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(method, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestParseTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret")
	signed := signToken(t, "test-secret", jwt.SigningMethodHS256, Claims{
		SubjectID: "analyst-1",
		Role:      domain.RoleAnalyst,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})

	claims, err := tm.ParseToken(signed)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.SubjectID != "analyst-1" || claims.Role != domain.RoleAnalyst {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("right-secret")
	signed := signToken(t, "wrong-secret", jwt.SigningMethodHS256, Claims{SubjectID: "analyst-1"})

	if _, err := tm.ParseToken(signed); err == nil {
		t.Fatal("token signed with a different secret must fail")
	}
}

func TestParseTokenRejectsWrongMethod(t *testing.T) {
	tm := NewTokenManager("test-secret")
	signed := signToken(t, "test-secret", jwt.SigningMethodHS384, Claims{SubjectID: "analyst-1"})

	if _, err := tm.ParseToken(signed); err == nil {
		t.Fatal("non-HS256 tokens must be rejected")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret")
	signed := signToken(t, "test-secret", jwt.SigningMethodHS256, Claims{
		SubjectID: "analyst-1",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
	})

	if _, err := tm.ParseToken(signed); err == nil {
		t.Fatal("expired token must fail")
	}
}
