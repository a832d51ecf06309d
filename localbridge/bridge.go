package localbridge

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Codeseer/authbridge"
)

// Config tunes the local bridge. Zero fields fall back to defaults; only
// SigningKey is required.
type Config struct {
	// RedisPrefix namespaces all keys. Defaults to "ab".
	RedisPrefix string
	// SigningKey is the HS256 key for ID tokens and custom tokens. Required,
	// minimum 16 bytes.
	SigningKey []byte
	// Issuer is stamped into minted tokens. Defaults to "localbridge".
	Issuer string
	// TokenTTL bounds ID token lifetime. Defaults to 1h.
	TokenTTL time.Duration
	// RecentLoginWindow bounds how old a session's last authentication may be
	// for sensitive operations (password update, delete). Defaults to 5m.
	RecentLoginWindow time.Duration
	// EmailTokenTTL bounds verification and reset tokens. Defaults to 15m.
	EmailTokenTTL time.Duration
	// Hash tunes argon2id password hashing.
	Hash HashConfig
}

func (c Config) withDefaults() Config {
	if c.RedisPrefix == "" {
		c.RedisPrefix = "ab"
	}
	if c.TokenTTL <= 0 {
		c.TokenTTL = time.Hour
	}
	if c.RecentLoginWindow <= 0 {
		c.RecentLoginWindow = 5 * time.Minute
	}
	if c.EmailTokenTTL <= 0 {
		c.EmailTokenTTL = 15 * time.Minute
	}
	return c
}

// Bridge is a Redis-backed implementation of [authbridge.Bridge]. Like a
// device-side native SDK it models a single session: at most one signed-in
// principal at a time, with state transitions pushed to the subscribed
// handler.
type Bridge struct {
	cfg    Config
	store  *accountStore
	hasher *hasher
	minter *tokenMinter

	mu          sync.Mutex
	handler     authbridge.StateHandler
	cur         *account
	curProvider string
	authTime    time.Time
	cachedToken string

	// emitMu serializes handler invocation so the facade's event handler
	// never runs concurrently with itself.
	emitMu sync.Mutex
}

// New builds a Bridge on the given Redis client.
func New(rdb redis.UniversalClient, cfg Config) (*Bridge, error) {
	if rdb == nil {
		return nil, errors.New("redis client required")
	}
	cfg = cfg.withDefaults()

	minter, err := newTokenMinter(cfg.SigningKey, cfg.Issuer, cfg.TokenTTL)
	if err != nil {
		return nil, err
	}

	return &Bridge{
		cfg:    cfg,
		store:  newAccountStore(rdb, cfg.RedisPrefix),
		hasher: newHasher(cfg.Hash),
		minter: minter,
	}, nil
}

// Subscribe implements [authbridge.Bridge]. Later subscriptions replace
// earlier ones; the facade subscribes exactly once.
func (b *Bridge) Subscribe(handler authbridge.StateHandler) {
	b.mu.Lock()
	b.handler = handler
	b.mu.Unlock()
}

// CurrentUser implements [authbridge.Bridge].
func (b *Bridge) CurrentUser(_ context.Context) (authbridge.AuthState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked(), nil
}

func (b *Bridge) stateLocked() authbridge.AuthState {
	if b.cur == nil {
		return authbridge.AuthState{}
	}
	rec := recordOf(b.cur)
	return authbridge.AuthState{Authenticated: true, User: &rec}
}

// emit pushes the current state to the handler, serialized, outside b.mu so
// listener callbacks may re-enter the bridge.
func (b *Bridge) emit() {
	b.mu.Lock()
	handler := b.handler
	state := b.stateLocked()
	b.mu.Unlock()

	if handler == nil {
		return
	}
	b.emitMu.Lock()
	defer b.emitMu.Unlock()
	handler(state)
}

func (b *Bridge) beginSession(acct *account, provider string) {
	b.mu.Lock()
	b.cur = acct
	b.curProvider = provider
	b.authTime = time.Now()
	b.cachedToken = ""
	b.mu.Unlock()
	b.emit()
}

func (b *Bridge) requireCurrent() (*account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cur == nil {
		return nil, authbridge.ErrNoCurrentUser
	}
	return b.cur, nil
}

// refreshSession updates the live session account and notifies, keeping the
// facade's cached handle in sync.
func (b *Bridge) refreshSession(acct *account) {
	b.mu.Lock()
	b.cur = acct
	b.mu.Unlock()
	b.emit()
}

// CreateUser implements [authbridge.Bridge]. The new account is signed in
// immediately.
func (b *Bridge) CreateUser(ctx context.Context, email, password string) (authbridge.UserRecord, error) {
	tenantID := authbridge.TenantIDFromContext(ctx)

	if !validEmail(email) {
		return authbridge.UserRecord{}, authbridge.ErrInvalidEmail
	}
	if len(password) < 6 {
		return authbridge.UserRecord{}, authbridge.ErrWeakPassword
	}

	hash, err := b.hasher.hash(password)
	if err != nil {
		return authbridge.UserRecord{}, internalError(err)
	}

	now := time.Now()
	acct := &account{
		UID:          uuid.NewString(),
		TenantID:     tenantID,
		Email:        email,
		PasswordHash: hash,
		Providers:    []providerLink{{ProviderID: "password", Subject: email}},
		CreatedAt:    now.Unix(),
		LastSignInAt: now.Unix(),
	}

	if err := b.store.reserveEmail(ctx, tenantID, email, acct.UID); err != nil {
		if errors.Is(err, errEmailTaken) {
			return authbridge.UserRecord{}, authbridge.ErrEmailAlreadyInUse
		}
		return authbridge.UserRecord{}, internalError(err)
	}
	if err := b.store.save(ctx, acct); err != nil {
		_ = b.store.releaseEmail(ctx, tenantID, email)
		return authbridge.UserRecord{}, internalError(err)
	}

	b.beginSession(acct, "password")
	return recordOf(acct), nil
}

// SignInWithPassword implements [authbridge.Bridge].
func (b *Bridge) SignInWithPassword(ctx context.Context, email, password string) (authbridge.UserRecord, error) {
	tenantID := authbridge.TenantIDFromContext(ctx)

	acct, err := b.store.byEmail(ctx, tenantID, email)
	if errors.Is(err, errAccountNotFound) {
		return authbridge.UserRecord{}, authbridge.ErrUserNotFound
	}
	if err != nil {
		return authbridge.UserRecord{}, internalError(err)
	}
	if acct.Disabled {
		return authbridge.UserRecord{}, authbridge.ErrUserDisabled
	}

	ok, err := b.hasher.verify(password, acct.PasswordHash)
	if err != nil || !ok {
		return authbridge.UserRecord{}, authbridge.ErrWrongPassword
	}

	acct.LastSignInAt = time.Now().Unix()
	if err := b.store.save(ctx, acct); err != nil {
		return authbridge.UserRecord{}, internalError(err)
	}

	b.beginSession(acct, "password")
	return recordOf(acct), nil
}

// SignInWithCustomToken implements [authbridge.Bridge]. The token must be an
// HS256 JWT signed with the bridge key; an unknown subject gets a fresh
// account, matching how native backends treat backend-minted tokens.
func (b *Bridge) SignInWithCustomToken(ctx context.Context, token string) (authbridge.UserRecord, error) {
	tenantID := authbridge.TenantIDFromContext(ctx)

	uid, err := b.minter.parseCustomToken(token)
	if err != nil {
		return authbridge.UserRecord{}, authbridge.ErrInvalidCustomToken
	}

	acct, err := b.store.byUID(ctx, tenantID, uid)
	if errors.Is(err, errAccountNotFound) {
		now := time.Now()
		acct = &account{
			UID:          uid,
			TenantID:     tenantID,
			CreatedAt:    now.Unix(),
			LastSignInAt: now.Unix(),
		}
		if err := b.store.save(ctx, acct); err != nil {
			return authbridge.UserRecord{}, internalError(err)
		}
	} else if err != nil {
		return authbridge.UserRecord{}, internalError(err)
	} else {
		if acct.Disabled {
			return authbridge.UserRecord{}, authbridge.ErrUserDisabled
		}
		acct.LastSignInAt = time.Now().Unix()
		if err := b.store.save(ctx, acct); err != nil {
			return authbridge.UserRecord{}, internalError(err)
		}
	}

	b.beginSession(acct, "custom")
	return recordOf(acct), nil
}

// SignInWithCredential implements [authbridge.Bridge]. Password credentials
// take the password path; other providers find or create the account mapped
// to the credential.
func (b *Bridge) SignInWithCredential(ctx context.Context, cred authbridge.Credential) (authbridge.UserRecord, error) {
	if cred.ProviderID == "" || cred.Token == "" {
		return authbridge.UserRecord{}, authbridge.ErrInvalidCredential
	}
	if cred.ProviderID == "password" {
		return b.SignInWithPassword(ctx, cred.Token, cred.Secret)
	}

	tenantID := authbridge.TenantIDFromContext(ctx)
	subject := subjectForToken(cred.Token)

	acct, err := b.store.byLink(ctx, tenantID, cred.ProviderID, subject)
	if errors.Is(err, errAccountNotFound) {
		now := time.Now()
		acct = &account{
			UID:          uuid.NewString(),
			TenantID:     tenantID,
			Providers:    []providerLink{{ProviderID: cred.ProviderID, Subject: subject}},
			CreatedAt:    now.Unix(),
			LastSignInAt: now.Unix(),
		}
		if err := b.store.reserveLink(ctx, tenantID, cred.ProviderID, subject, acct.UID); err != nil {
			return authbridge.UserRecord{}, internalError(err)
		}
		if err := b.store.save(ctx, acct); err != nil {
			return authbridge.UserRecord{}, internalError(err)
		}
	} else if err != nil {
		return authbridge.UserRecord{}, internalError(err)
	} else {
		if acct.Disabled {
			return authbridge.UserRecord{}, authbridge.ErrUserDisabled
		}
		acct.LastSignInAt = time.Now().Unix()
		if err := b.store.save(ctx, acct); err != nil {
			return authbridge.UserRecord{}, internalError(err)
		}
	}

	b.beginSession(acct, cred.ProviderID)
	return recordOf(acct), nil
}

// SignInAnonymously implements [authbridge.Bridge].
func (b *Bridge) SignInAnonymously(ctx context.Context) (authbridge.UserRecord, error) {
	tenantID := authbridge.TenantIDFromContext(ctx)
	now := time.Now()
	acct := &account{
		UID:          uuid.NewString(),
		TenantID:     tenantID,
		Anonymous:    true,
		CreatedAt:    now.Unix(),
		LastSignInAt: now.Unix(),
	}
	if err := b.store.save(ctx, acct); err != nil {
		return authbridge.UserRecord{}, internalError(err)
	}

	b.beginSession(acct, "anonymous")
	return recordOf(acct), nil
}

// Reauthenticate implements [authbridge.Bridge].
func (b *Bridge) Reauthenticate(ctx context.Context, cred authbridge.Credential) (authbridge.UserRecord, error) {
	acct, err := b.requireCurrent()
	if err != nil {
		return authbridge.UserRecord{}, err
	}

	switch cred.ProviderID {
	case "password":
		if cred.Token != acct.Email {
			return authbridge.UserRecord{}, authbridge.ErrInvalidCredential
		}
		ok, err := b.hasher.verify(cred.Secret, acct.PasswordHash)
		if err != nil || !ok {
			return authbridge.UserRecord{}, authbridge.ErrWrongPassword
		}
	default:
		subject := subjectForToken(cred.Token)
		if !hasLink(acct, cred.ProviderID, subject) {
			return authbridge.UserRecord{}, authbridge.ErrInvalidCredential
		}
	}

	b.mu.Lock()
	b.authTime = time.Now()
	b.mu.Unlock()

	return recordOf(acct), nil
}

// SignOut implements [authbridge.Bridge]. Signing out with nobody signed in
// is a no-op, as on native SDKs.
func (b *Bridge) SignOut(_ context.Context) error {
	b.mu.Lock()
	was := b.cur
	b.cur = nil
	b.curProvider = ""
	b.cachedToken = ""
	b.mu.Unlock()

	if was != nil {
		b.emit()
	}
	return nil
}

// IDToken implements [authbridge.Bridge].
func (b *Bridge) IDToken(_ context.Context, forceRefresh bool) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cur == nil {
		return "", authbridge.ErrNoCurrentUser
	}
	if b.cachedToken != "" && !forceRefresh {
		return b.cachedToken, nil
	}

	raw, err := b.minter.mintIDToken(b.cur.UID, b.cur.TenantID, b.curProvider, b.authTime)
	if err != nil {
		return "", internalError(err)
	}
	b.cachedToken = raw
	return raw, nil
}

func (b *Bridge) recentLoginOK() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Since(b.authTime) <= b.cfg.RecentLoginWindow
}

func recordOf(acct *account) authbridge.UserRecord {
	info := make([]authbridge.UserInfo, 0, len(acct.Providers))
	for _, link := range acct.Providers {
		info = append(info, authbridge.UserInfo{
			ProviderID: link.ProviderID,
			UID:        link.Subject,
			Email:      acct.Email,
		})
	}

	providerID := ""
	if len(acct.Providers) > 0 {
		providerID = acct.Providers[0].ProviderID
	}

	return authbridge.UserRecord{
		UID:           acct.UID,
		Email:         acct.Email,
		DisplayName:   acct.DisplayName,
		PhotoURL:      acct.PhotoURL,
		PhoneNumber:   acct.PhoneNumber,
		EmailVerified: acct.EmailVerified,
		Anonymous:     acct.Anonymous,
		ProviderID:    providerID,
		TenantID:      acct.TenantID,
		ProviderData:  info,
		CreatedAt:     time.Unix(acct.CreatedAt, 0),
		LastSignInAt:  time.Unix(acct.LastSignInAt, 0),
	}
}

func hasLink(acct *account, providerID, subject string) bool {
	for _, link := range acct.Providers {
		if link.ProviderID == providerID && link.Subject == subject {
			return true
		}
	}
	return false
}

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\n")
}

func internalError(err error) *authbridge.Error {
	return &authbridge.Error{Code: authbridge.CodeInternal, Message: err.Error()}
}

func newEmailToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
