package token

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func mintTestToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("failed to mint test token: %v", err)
	}
	return raw
}

func TestParseFullClaimSet(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	raw := mintTestToken(t, jwt.MapClaims{
		"sub":       "u1",
		"iat":       now.Unix(),
		"exp":       now.Add(time.Hour).Unix(),
		"auth_time": now.Add(-time.Minute).Unix(),
		"auth": map[string]any{
			"sign_in_provider": "google.com",
			"tenant":           "t-9",
		},
		"custom_role": "admin",
	})

	res, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if res.Token != raw {
		t.Fatal("expected raw token preserved on result")
	}
	if res.Subject != "u1" {
		t.Fatalf("expected subject u1, got %q", res.Subject)
	}
	if !res.IssuedAt.Equal(now) {
		t.Fatalf("expected iat %v, got %v", now, res.IssuedAt)
	}
	if !res.ExpiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("expected exp %v, got %v", now.Add(time.Hour), res.ExpiresAt)
	}
	if !res.AuthTime.Equal(now.Add(-time.Minute)) {
		t.Fatalf("expected auth_time %v, got %v", now.Add(-time.Minute), res.AuthTime)
	}
	if res.SignInProvider != "google.com" {
		t.Fatalf("expected provider google.com, got %q", res.SignInProvider)
	}
	if res.TenantID != "t-9" {
		t.Fatalf("expected tenant t-9, got %q", res.TenantID)
	}
	if res.Claims["custom_role"] != "admin" {
		t.Fatalf("expected custom claim surfaced, got %v", res.Claims["custom_role"])
	}
}

func TestParseMinimalClaims(t *testing.T) {
	raw := mintTestToken(t, jwt.MapClaims{"sub": "u2"})

	res, err := Parse(raw)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Subject != "u2" {
		t.Fatalf("expected subject u2, got %q", res.Subject)
	}
	if !res.IssuedAt.IsZero() || !res.ExpiresAt.IsZero() || !res.AuthTime.IsZero() {
		t.Fatal("expected zero times for absent claims")
	}
	if res.SignInProvider != "" || res.TenantID != "" {
		t.Fatal("expected empty session block fields when claim is absent")
	}
}

func TestParseRejectsMalformedInput(t *testing.T) {
	for _, raw := range []string{"", "not-a-jwt", "a.b", "!!!.???.###"} {
		if _, err := Parse(raw); !errors.Is(err, ErrMalformed) {
			t.Fatalf("Parse(%q): expected ErrMalformed, got %v", raw, err)
		}
	}
}

func TestExpired(t *testing.T) {
	now := time.Now().Truncate(time.Second)

	res := &Result{ExpiresAt: now.Add(time.Hour)}
	if res.Expired(now) {
		t.Fatal("expected token valid before expiry")
	}
	if !res.Expired(now.Add(time.Hour)) {
		t.Fatal("expected token expired exactly at expiry")
	}

	zero := &Result{}
	if !zero.Expired(now) {
		t.Fatal("expected zero expiry to count as expired")
	}

	var nilRes *Result
	if !nilRes.Expired(now) {
		t.Fatal("expected nil result to count as expired")
	}
}
