package auth

import (
	"errors"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"aiContentStudio/internal/testutil"
)

const testSecret = testutil.TestSecret

func TestIssuer_RoundTrip(t *testing.T) {
	iss := NewIssuer(testSecret, 0)
	tok, err := iss.Issue(42)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := iss.Verify(tok)
	if err != nil || id != 42 {
		t.Fatalf("verify: id=%d err=%v", id, err)
	}
}

func TestIssuer_TokenCarriesOnlyIdentity(t *testing.T) {
	iss := NewIssuer(testSecret, time.Hour)
	tok, _ := iss.Issue(7)
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		t.Fatalf("parse: %v", err)
	}
	for k := range claims {
		switch k {
		case "sub", "exp", "iat":
		default:
			t.Fatalf("unexpected claim %q in token", k)
		}
	}
	exp, _ := claims.GetExpirationTime()
	if d := time.Until(exp.Time); d < 59*time.Minute || d > time.Hour {
		t.Fatalf("unexpected expiry in %v", d)
	}
}

func TestIssuer_DefaultTTLIsSevenDays(t *testing.T) {
	iss := NewIssuer(testSecret, 0)
	tok, _ := iss.Issue(1)
	claims := jwt.MapClaims{}
	_, _, _ = jwt.NewParser().ParseUnverified(tok, claims)
	exp, _ := claims.GetExpirationTime()
	if d := time.Until(exp.Time); d < DefaultTokenTTL-time.Minute || d > DefaultTokenTTL {
		t.Fatalf("default ttl not applied: %v", d)
	}
}

func TestIssuer_Rejections(t *testing.T) {
	iss := NewIssuer(testSecret, 0)

	expired := testutil.GenerateJWTHS256(t, testSecret, 1, -time.Minute)
	if _, err := iss.Verify(expired); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expected ErrExpiredToken, got %v", err)
	}

	foreign := testutil.GenerateJWTHS256(t, "other-secret", 1, time.Hour)
	if _, err := iss.Verify(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for wrong secret, got %v", err)
	}

	if _, err := iss.Verify("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for garbage, got %v", err)
	}

	noSub, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	if _, err := iss.Verify(noSub); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for missing sub, got %v", err)
	}

	noExp, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "1"}).SignedString([]byte(testSecret))
	if _, err := iss.Verify(noExp); err == nil {
		t.Fatalf("expected rejection for token without expiry")
	}

	if _, err := NewIssuer("", 0).Issue(1); err == nil {
		t.Fatalf("expected error for empty secret")
	}
}

func TestPassword(t *testing.T) {
	h, err := HashPassword("secret1")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if h == "secret1" {
		t.Fatalf("password stored in clear")
	}
	h2, _ := HashPassword("secret1")
	if h == h2 {
		t.Fatalf("hash is not salted")
	}
	if !CheckPassword(h, "secret1") || CheckPassword(h, "secret2") {
		t.Fatalf("check mismatch")
	}
}
