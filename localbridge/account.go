package localbridge

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Codeseer/authbridge"
)

const (
	tokenKindVerify = "verify"
	tokenKindReset  = "reset"
)

// LinkWithCredential implements [authbridge.Bridge]. Linking a password
// credential onto an anonymous account upgrades it to a permanent one.
func (b *Bridge) LinkWithCredential(ctx context.Context, cred authbridge.Credential) (authbridge.UserRecord, error) {
	acct, err := b.requireCurrent()
	if err != nil {
		return authbridge.UserRecord{}, err
	}
	if cred.ProviderID == "" || cred.Token == "" {
		return authbridge.UserRecord{}, authbridge.ErrInvalidCredential
	}

	if cred.ProviderID == "password" {
		if acct.PasswordHash != "" {
			return authbridge.UserRecord{}, authbridge.ErrProviderAlreadyLinked
		}
		if !validEmail(cred.Token) {
			return authbridge.UserRecord{}, authbridge.ErrInvalidEmail
		}
		if len(cred.Secret) < 6 {
			return authbridge.UserRecord{}, authbridge.ErrWeakPassword
		}
		if err := b.store.reserveEmail(ctx, acct.TenantID, cred.Token, acct.UID); err != nil {
			if errors.Is(err, errEmailTaken) {
				return authbridge.UserRecord{}, authbridge.ErrCredentialAlreadyInUse
			}
			return authbridge.UserRecord{}, internalError(err)
		}

		hash, err := b.hasher.hash(cred.Secret)
		if err != nil {
			_ = b.store.releaseEmail(ctx, acct.TenantID, cred.Token)
			return authbridge.UserRecord{}, internalError(err)
		}

		acct.Email = cred.Token
		acct.PasswordHash = hash
		acct.Anonymous = false
		acct.Providers = append(acct.Providers, providerLink{ProviderID: "password", Subject: cred.Token})
	} else {
		subject := subjectForToken(cred.Token)
		for _, link := range acct.Providers {
			if link.ProviderID == cred.ProviderID {
				return authbridge.UserRecord{}, authbridge.ErrProviderAlreadyLinked
			}
		}
		if err := b.store.reserveLink(ctx, acct.TenantID, cred.ProviderID, subject, acct.UID); err != nil {
			if errors.Is(err, errLinkTaken) {
				return authbridge.UserRecord{}, authbridge.ErrCredentialAlreadyInUse
			}
			return authbridge.UserRecord{}, internalError(err)
		}
		acct.Anonymous = false
		acct.Providers = append(acct.Providers, providerLink{ProviderID: cred.ProviderID, Subject: subject})
	}

	if err := b.store.save(ctx, acct); err != nil {
		return authbridge.UserRecord{}, internalError(err)
	}

	b.refreshSession(acct)
	return recordOf(acct), nil
}

// UnlinkProvider implements [authbridge.Bridge].
func (b *Bridge) UnlinkProvider(ctx context.Context, providerID string) (authbridge.UserRecord, error) {
	acct, err := b.requireCurrent()
	if err != nil {
		return authbridge.UserRecord{}, err
	}

	idx := -1
	for i, link := range acct.Providers {
		if link.ProviderID == providerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return authbridge.UserRecord{}, authbridge.ErrNoSuchProvider
	}

	removed := acct.Providers[idx]
	acct.Providers = append(acct.Providers[:idx:idx], acct.Providers[idx+1:]...)
	if providerID == "password" {
		if acct.Email != "" {
			_ = b.store.releaseEmail(ctx, acct.TenantID, acct.Email)
		}
		acct.Email = ""
		acct.PasswordHash = ""
		acct.EmailVerified = false
	} else {
		_ = b.store.releaseLink(ctx, acct.TenantID, removed.ProviderID, removed.Subject)
	}

	if err := b.store.save(ctx, acct); err != nil {
		return authbridge.UserRecord{}, internalError(err)
	}

	b.refreshSession(acct)
	return recordOf(acct), nil
}

// UpdateEmail implements [authbridge.Bridge]. The new address starts
// unverified.
func (b *Bridge) UpdateEmail(ctx context.Context, email string) (authbridge.UserRecord, error) {
	acct, err := b.requireCurrent()
	if err != nil {
		return authbridge.UserRecord{}, err
	}
	if !validEmail(email) {
		return authbridge.UserRecord{}, authbridge.ErrInvalidEmail
	}
	if email == acct.Email {
		return recordOf(acct), nil
	}

	if err := b.store.reserveEmail(ctx, acct.TenantID, email, acct.UID); err != nil {
		if errors.Is(err, errEmailTaken) {
			return authbridge.UserRecord{}, authbridge.ErrEmailAlreadyInUse
		}
		return authbridge.UserRecord{}, internalError(err)
	}
	if acct.Email != "" {
		_ = b.store.releaseEmail(ctx, acct.TenantID, acct.Email)
	}

	acct.Email = email
	acct.EmailVerified = false
	for i := range acct.Providers {
		if acct.Providers[i].ProviderID == "password" {
			acct.Providers[i].Subject = email
		}
	}

	if err := b.store.save(ctx, acct); err != nil {
		return authbridge.UserRecord{}, internalError(err)
	}

	b.refreshSession(acct)
	return recordOf(acct), nil
}

// UpdatePassword implements [authbridge.Bridge]. Requires a recent
// authentication.
func (b *Bridge) UpdatePassword(ctx context.Context, newPassword string) error {
	acct, err := b.requireCurrent()
	if err != nil {
		return err
	}
	if !b.recentLoginOK() {
		return authbridge.ErrRequiresRecentLogin
	}
	if len(newPassword) < 6 {
		return authbridge.ErrWeakPassword
	}

	hash, err := b.hasher.hash(newPassword)
	if err != nil {
		return internalError(err)
	}
	acct.PasswordHash = hash

	if err := b.store.save(ctx, acct); err != nil {
		return internalError(err)
	}
	return nil
}

// UpdateProfile implements [authbridge.Bridge].
func (b *Bridge) UpdateProfile(ctx context.Context, update authbridge.ProfileUpdate) (authbridge.UserRecord, error) {
	acct, err := b.requireCurrent()
	if err != nil {
		return authbridge.UserRecord{}, err
	}

	if update.DisplayName != nil {
		acct.DisplayName = *update.DisplayName
	}
	if update.PhotoURL != nil {
		acct.PhotoURL = *update.PhotoURL
	}

	if err := b.store.save(ctx, acct); err != nil {
		return authbridge.UserRecord{}, internalError(err)
	}

	b.refreshSession(acct)
	return recordOf(acct), nil
}

// SendEmailVerification implements [authbridge.Bridge]. No mail is sent; the
// token is stored and retrievable with [Bridge.EmailVerificationToken].
func (b *Bridge) SendEmailVerification(ctx context.Context) error {
	acct, err := b.requireCurrent()
	if err != nil {
		return err
	}
	if acct.Email == "" {
		return authbridge.ErrOperationNotAllowed
	}

	token, err := newEmailToken()
	if err != nil {
		return internalError(err)
	}
	if err := b.store.putToken(ctx, tokenKindVerify, acct.TenantID, acct.UID, token, b.cfg.EmailTokenTTL); err != nil {
		return internalError(err)
	}
	return nil
}

// SendPasswordResetEmail implements [authbridge.Bridge]. Unknown addresses
// are rejected; the token is retrievable with [Bridge.PasswordResetToken].
func (b *Bridge) SendPasswordResetEmail(ctx context.Context, email string) error {
	tenantID := authbridge.TenantIDFromContext(ctx)

	if _, err := b.store.byEmail(ctx, tenantID, email); err != nil {
		if errors.Is(err, errAccountNotFound) {
			return authbridge.ErrUserNotFound
		}
		return internalError(err)
	}

	token, err := newEmailToken()
	if err != nil {
		return internalError(err)
	}
	if err := b.store.putToken(ctx, tokenKindReset, tenantID, email, token, b.cfg.EmailTokenTTL); err != nil {
		return internalError(err)
	}
	return nil
}

// ReloadUser implements [authbridge.Bridge].
func (b *Bridge) ReloadUser(ctx context.Context) (authbridge.UserRecord, error) {
	acct, err := b.requireCurrent()
	if err != nil {
		return authbridge.UserRecord{}, err
	}

	fresh, err := b.store.byUID(ctx, acct.TenantID, acct.UID)
	if errors.Is(err, errAccountNotFound) {
		return authbridge.UserRecord{}, authbridge.ErrUserNotFound
	}
	if err != nil {
		return authbridge.UserRecord{}, internalError(err)
	}

	b.refreshSession(fresh)
	return recordOf(fresh), nil
}

// DeleteUser implements [authbridge.Bridge]. Requires a recent
// authentication; the resulting sign-out is emitted as a state event.
func (b *Bridge) DeleteUser(ctx context.Context) error {
	acct, err := b.requireCurrent()
	if err != nil {
		return err
	}
	if !b.recentLoginOK() {
		return authbridge.ErrRequiresRecentLogin
	}

	if err := b.store.delete(ctx, acct); err != nil {
		return internalError(err)
	}

	b.mu.Lock()
	b.cur = nil
	b.curProvider = ""
	b.cachedToken = ""
	b.mu.Unlock()
	b.emit()
	return nil
}

/*
====================================
DEV / TEST HELPERS
====================================

The local bridge sends no real email, so the one-shot tokens are exposed for
retrieval and the confirm endpoints a hosted backend would serve are offered
as methods.
*/

// EmailVerificationToken returns the pending verification token for uid, or
// "" when none is pending.
func (b *Bridge) EmailVerificationToken(ctx context.Context, tenantID, uid string) (string, error) {
	token, err := b.store.rdb.Get(ctx, b.store.tokenKey(tokenKindVerify, tenantID, uid)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return token, err
}

// PasswordResetToken returns the pending reset token for email, or "".
func (b *Bridge) PasswordResetToken(ctx context.Context, tenantID, email string) (string, error) {
	token, err := b.store.rdb.Get(ctx, b.store.tokenKey(tokenKindReset, tenantID, email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return token, err
}

// ConfirmEmailVerification consumes a verification token and marks the
// account's email verified.
func (b *Bridge) ConfirmEmailVerification(ctx context.Context, tenantID, uid, token string) error {
	ok, err := b.store.takeToken(ctx, tokenKindVerify, tenantID, uid, token)
	if err != nil {
		return internalError(err)
	}
	if !ok {
		return authbridge.ErrInvalidCredential
	}

	acct, err := b.store.byUID(ctx, tenantID, uid)
	if err != nil {
		return internalError(err)
	}
	acct.EmailVerified = true
	if err := b.store.save(ctx, acct); err != nil {
		return internalError(err)
	}

	b.mu.Lock()
	isCurrent := b.cur != nil && b.cur.UID == uid
	if isCurrent {
		b.cur = acct
	}
	b.mu.Unlock()
	if isCurrent {
		b.emit()
	}
	return nil
}

// ConfirmPasswordReset consumes a reset token and installs a new password.
func (b *Bridge) ConfirmPasswordReset(ctx context.Context, tenantID, email, token, newPassword string) error {
	ok, err := b.store.takeToken(ctx, tokenKindReset, tenantID, email, token)
	if err != nil {
		return internalError(err)
	}
	if !ok {
		return authbridge.ErrInvalidCredential
	}
	if len(newPassword) < 6 {
		return authbridge.ErrWeakPassword
	}

	acct, err := b.store.byEmail(ctx, tenantID, email)
	if err != nil {
		return internalError(err)
	}
	hash, err := b.hasher.hash(newPassword)
	if err != nil {
		return internalError(err)
	}
	acct.PasswordHash = hash
	if err := b.store.save(ctx, acct); err != nil {
		return internalError(err)
	}
	return nil
}

// SetAccountDisabled flips the disabled flag, as a backend console would. A
// disabled current user stays signed in until the next sign-in attempt.
func (b *Bridge) SetAccountDisabled(ctx context.Context, tenantID, uid string, disabled bool) error {
	acct, err := b.store.byUID(ctx, tenantID, uid)
	if errors.Is(err, errAccountNotFound) {
		return authbridge.ErrUserNotFound
	}
	if err != nil {
		return internalError(err)
	}
	acct.Disabled = disabled
	if err := b.store.save(ctx, acct); err != nil {
		return internalError(err)
	}
	return nil
}

// MintCustomToken signs a custom token for uid, as an app backend holding
// the shared key would. Exposed for the custom-token sign-in path in
// development.
func (b *Bridge) MintCustomToken(uid string) (string, error) {
	return b.minter.mintIDToken(uid, "", "", time.Now())
}
