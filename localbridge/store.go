package localbridge

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	errAccountNotFound = errors.New("account not found")
	errEmailTaken      = errors.New("email already mapped")
	errLinkTaken       = errors.New("provider credential already mapped")
)

// account is the persisted form of one identity.
type account struct {
	UID           string         `json:"uid"`
	TenantID      string         `json:"tenant_id,omitempty"`
	Email         string         `json:"email,omitempty"`
	PasswordHash  string         `json:"password_hash,omitempty"`
	DisplayName   string         `json:"display_name,omitempty"`
	PhotoURL      string         `json:"photo_url,omitempty"`
	PhoneNumber   string         `json:"phone_number,omitempty"`
	EmailVerified bool           `json:"email_verified"`
	Anonymous     bool           `json:"anonymous"`
	Disabled      bool           `json:"disabled"`
	Providers     []providerLink `json:"providers,omitempty"`
	CreatedAt     int64          `json:"created_at"`
	LastSignInAt  int64          `json:"last_sign_in_at"`
}

type providerLink struct {
	ProviderID string `json:"provider_id"`
	Subject    string `json:"subject"` // provider-side identifier (email, token hash)
}

// accountStore maps accounts, email reservations, provider-credential
// reservations, and one-shot email tokens onto Redis keys under a shared
// prefix.
type accountStore struct {
	rdb    redis.UniversalClient
	prefix string
}

func newAccountStore(rdb redis.UniversalClient, prefix string) *accountStore {
	if prefix == "" {
		prefix = "ab"
	}
	return &accountStore{rdb: rdb, prefix: prefix}
}

func (s *accountStore) acctKey(tenantID, uid string) string {
	return s.prefix + ":acct:" + tenantID + ":" + uid
}

func (s *accountStore) emailKey(tenantID, email string) string {
	return s.prefix + ":email:" + tenantID + ":" + email
}

func (s *accountStore) linkKey(tenantID, providerID, subject string) string {
	return s.prefix + ":link:" + tenantID + ":" + providerID + ":" + subject
}

func (s *accountStore) tokenKey(kind, tenantID, target string) string {
	return s.prefix + ":" + kind + ":" + tenantID + ":" + target
}

func (s *accountStore) save(ctx context.Context, acct *account) error {
	blob, err := json.Marshal(acct)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.acctKey(acct.TenantID, acct.UID), blob, 0).Err()
}

func (s *accountStore) byUID(ctx context.Context, tenantID, uid string) (*account, error) {
	blob, err := s.rdb.Get(ctx, s.acctKey(tenantID, uid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	var acct account
	if err := json.Unmarshal(blob, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (s *accountStore) byEmail(ctx context.Context, tenantID, email string) (*account, error) {
	uid, err := s.rdb.Get(ctx, s.emailKey(tenantID, email)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, errAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.byUID(ctx, tenantID, uid)
}

func (s *accountStore) byLink(ctx context.Context, tenantID, providerID, subject string) (*account, error) {
	uid, err := s.rdb.Get(ctx, s.linkKey(tenantID, providerID, subject)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, errAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.byUID(ctx, tenantID, uid)
}

// reserveEmail claims the email for uid. SETNX keeps two concurrent sign-ups
// from sharing an address.
func (s *accountStore) reserveEmail(ctx context.Context, tenantID, email, uid string) error {
	ok, err := s.rdb.SetNX(ctx, s.emailKey(tenantID, email), uid, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return errEmailTaken
	}
	return nil
}

func (s *accountStore) releaseEmail(ctx context.Context, tenantID, email string) error {
	return s.rdb.Del(ctx, s.emailKey(tenantID, email)).Err()
}

func (s *accountStore) reserveLink(ctx context.Context, tenantID, providerID, subject, uid string) error {
	ok, err := s.rdb.SetNX(ctx, s.linkKey(tenantID, providerID, subject), uid, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return errLinkTaken
	}
	return nil
}

func (s *accountStore) releaseLink(ctx context.Context, tenantID, providerID, subject string) error {
	return s.rdb.Del(ctx, s.linkKey(tenantID, providerID, subject)).Err()
}

func (s *accountStore) delete(ctx context.Context, acct *account) error {
	keys := []string{s.acctKey(acct.TenantID, acct.UID)}
	if acct.Email != "" {
		keys = append(keys, s.emailKey(acct.TenantID, acct.Email))
	}
	for _, link := range acct.Providers {
		keys = append(keys, s.linkKey(acct.TenantID, link.ProviderID, link.Subject))
	}
	return s.rdb.Del(ctx, keys...).Err()
}

// putToken stores a one-shot verification or reset token.
func (s *accountStore) putToken(ctx context.Context, kind, tenantID, target, token string, ttl time.Duration) error {
	return s.rdb.Set(ctx, s.tokenKey(kind, tenantID, target), token, ttl).Err()
}

// takeToken compares-and-consumes a one-shot token. Returns false on
// mismatch or absence; the token survives a mismatch.
func (s *accountStore) takeToken(ctx context.Context, kind, tenantID, target, token string) (bool, error) {
	key := s.tokenKey(kind, tenantID, target)
	stored, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if stored != token {
		return false, nil
	}
	return true, s.rdb.Del(ctx, key).Err()
}

// subjectForToken derives a stable provider-side subject for an opaque
// credential token without storing the token itself.
func subjectForToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return base64.RawURLEncoding.EncodeToString(sum[:16])
}
