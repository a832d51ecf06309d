package localbridge

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type tokenMinter struct {
	key    []byte
	issuer string
	ttl    time.Duration
}

func newTokenMinter(key []byte, issuer string, ttl time.Duration) (*tokenMinter, error) {
	if len(key) < 16 {
		return nil, errors.New("signing key must be at least 16 bytes")
	}
	if issuer == "" {
		issuer = "localbridge"
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &tokenMinter{key: key, issuer: issuer, ttl: ttl}, nil
}

type idTokenClaims struct {
	AuthTime int64          `json:"auth_time"`
	Auth     map[string]any `json:"auth,omitempty"`
	jwt.RegisteredClaims
}

// mintIDToken issues the session's ID token. The "auth" block carries the
// sign-in provider and tenant, matching the shape the token package decodes.
func (m *tokenMinter) mintIDToken(uid, tenantID, signInProvider string, authTime time.Time) (string, error) {
	now := time.Now()

	block := map[string]any{}
	if signInProvider != "" {
		block["sign_in_provider"] = signInProvider
	}
	if tenantID != "" {
		block["tenant"] = tenantID
	}
	if len(block) == 0 {
		block = nil
	}

	claims := idTokenClaims{
		AuthTime: authTime.Unix(),
		Auth:     block,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uid,
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.key)
}

// parseCustomToken accepts an HS256 token signed with the same key and
// returns its subject. Used for the custom-token sign-in path.
func (m *tokenMinter) parseCustomToken(raw string) (string, error) {
	parsed, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return m.key, nil
	})
	if err != nil || !parsed.Valid {
		return "", errors.New("custom token rejected")
	}
	sub, err := parsed.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", errors.New("custom token missing subject")
	}
	return sub, nil
}
