// Package token inspects bridge-issued ID tokens.
//
// [Parse] decodes the JWT payload without verifying the signature: token
// validation is owned by the native bridge and its backend, and this layer
// only surfaces the claims for display and routing decisions. Never use a
// parsed Result to make a trust decision.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformed is returned when the raw string is not a decodable JWT.
var ErrMalformed = errors.New("malformed id token")

// Result carries the decoded payload of an ID token.
type Result struct {
	// Token is the raw compact JWT the result was parsed from.
	Token string
	// Subject is the account UID the token was minted for.
	Subject string
	// IssuedAt is the token mint time.
	IssuedAt time.Time
	// ExpiresAt is the token expiry time.
	ExpiresAt time.Time
	// AuthTime is when the user last authenticated, per the auth_time claim.
	AuthTime time.Time
	// SignInProvider identifies the provider used for the session, when the
	// backend stamps one.
	SignInProvider string
	// TenantID is the tenant the session belongs to, when stamped.
	TenantID string
	// Claims is the full decoded payload.
	Claims map[string]any
}

// Parse decodes raw without signature verification.
func Parse(raw string) (*Result, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, ErrMalformed
	}

	res := &Result{
		Token:  raw,
		Claims: map[string]any(claims),
	}

	if sub, err := claims.GetSubject(); err == nil {
		res.Subject = sub
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		res.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		res.ExpiresAt = exp.Time
	}
	if at, ok := claims["auth_time"].(float64); ok {
		res.AuthTime = time.Unix(int64(at), 0)
	}

	// The session block mirrors the shape native backends mint:
	// {"auth": {"sign_in_provider": "...", "tenant": "..."}}.
	if block, ok := claims["auth"].(map[string]any); ok {
		if p, ok := block["sign_in_provider"].(string); ok {
			res.SignInProvider = p
		}
		if t, ok := block["tenant"].(string); ok {
			res.TenantID = t
		}
	}

	return res, nil
}

// Expired reports whether the token's exp claim is in the past. A zero
// ExpiresAt counts as expired.
func (r *Result) Expired(now time.Time) bool {
	if r == nil || r.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(r.ExpiresAt)
}
