package authbridge

import (
	"context"
	"sync"

	"github.com/Codeseer/authbridge/token"
)

// User is the handle for an authenticated principal. Downstream code may
// hold it across state transitions: while the same principal stays signed
// in, new state events mutate the handle in place rather than replacing it,
// so held references never go stale.
//
// All user-scoped operations forward to the bridge's current user. After
// sign-out the bridge rejects them with an auth/no-current-user code; the
// handle itself performs no local check.
type User struct {
	client *Client

	mu  sync.RWMutex
	rec UserRecord
}

func newUser(c *Client, rec UserRecord) *User {
	return &User{client: c, rec: rec}
}

// apply overwrites the record in place. Called by the state handler (and by
// user-scoped operations that return a fresh record) under the handle's own
// lock.
func (u *User) apply(rec UserRecord) {
	u.mu.Lock()
	u.rec = rec
	u.mu.Unlock()
}

// UID returns the stable account identifier.
func (u *User) UID() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.rec.UID
}

// Email returns the account email, or "".
func (u *User) Email() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.rec.Email
}

// DisplayName returns the display name, or "".
func (u *User) DisplayName() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.rec.DisplayName
}

// PhotoURL returns the avatar URL, or "".
func (u *User) PhotoURL() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.rec.PhotoURL
}

// PhoneNumber returns the account phone number, or "".
func (u *User) PhoneNumber() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.rec.PhoneNumber
}

// EmailVerified reports whether the account email has been verified.
func (u *User) EmailVerified() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.rec.EmailVerified
}

// IsAnonymous reports whether the account was created by anonymous sign-in.
func (u *User) IsAnonymous() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.rec.Anonymous
}

// TenantID returns the tenant the account belongs to, or "".
func (u *User) TenantID() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.rec.TenantID
}

// ProviderData lists the identity providers linked to the account.
func (u *User) ProviderData() []UserInfo {
	u.mu.RLock()
	defer u.mu.RUnlock()
	out := make([]UserInfo, len(u.rec.ProviderData))
	copy(out, u.rec.ProviderData)
	return out
}

// Record returns a copy of the underlying snapshot.
func (u *User) Record() UserRecord {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return cloneRecord(u.rec)
}

func (u *User) forwarding() (*Client, error) {
	if u == nil || u.client == nil || u.client.bridge == nil {
		return nil, ErrClientNotReady
	}
	return u.client, nil
}

// Reauthenticate re-proves the user's identity with a fresh credential.
// Required by some backends before sensitive operations
// (auth/requires-recent-login).
func (u *User) Reauthenticate(ctx context.Context, cred Credential) error {
	c, err := u.forwarding()
	if err != nil {
		return err
	}

	rec, err := c.bridge.Reauthenticate(ctx, cred)
	if err != nil {
		c.metricInc(MetricReauthFailure)
		c.emitAudit(ctx, auditEventReauthFailure, false, u.UID(), err, func() map[string]string {
			return map[string]string{
				"provider": cred.ProviderID,
			}
		})
		return err
	}

	u.apply(rec)
	c.metricInc(MetricReauthSuccess)
	c.emitAudit(ctx, auditEventReauthSuccess, true, rec.UID, nil, nil)
	return nil
}

// LinkWithCredential attaches an additional provider identity to the
// account. Upgrading an anonymous account to a permanent one is the common
// use.
func (u *User) LinkWithCredential(ctx context.Context, cred Credential) error {
	c, err := u.forwarding()
	if err != nil {
		return err
	}

	rec, err := c.bridge.LinkWithCredential(ctx, cred)
	if err != nil {
		c.metricInc(MetricLinkFailure)
		c.emitAudit(ctx, auditEventLinkFailure, false, u.UID(), err, func() map[string]string {
			return map[string]string{
				"provider": cred.ProviderID,
			}
		})
		return err
	}

	u.apply(rec)
	c.metricInc(MetricLinkSuccess)
	c.emitAudit(ctx, auditEventLinkSuccess, true, rec.UID, nil, func() map[string]string {
		return map[string]string{
			"provider": cred.ProviderID,
		}
	})
	return nil
}

// UnlinkProvider detaches a linked provider identity.
func (u *User) UnlinkProvider(ctx context.Context, providerID string) error {
	c, err := u.forwarding()
	if err != nil {
		return err
	}

	rec, err := c.bridge.UnlinkProvider(ctx, providerID)
	if err != nil {
		c.emitAudit(ctx, auditEventOperationFailure, false, u.UID(), err, func() map[string]string {
			return map[string]string{
				"op":       "unlink_provider",
				"provider": providerID,
			}
		})
		return err
	}

	u.apply(rec)
	c.metricInc(MetricUnlink)
	c.emitAudit(ctx, auditEventUnlink, true, rec.UID, nil, func() map[string]string {
		return map[string]string{
			"provider": providerID,
		}
	})
	return nil
}

// UpdateEmail changes the account email.
func (u *User) UpdateEmail(ctx context.Context, email string) error {
	c, err := u.forwarding()
	if err != nil {
		return err
	}

	rec, err := c.bridge.UpdateEmail(ctx, email)
	if err != nil {
		c.emitAudit(ctx, auditEventOperationFailure, false, u.UID(), err, func() map[string]string {
			return map[string]string{
				"op": "update_email",
			}
		})
		return err
	}

	u.apply(rec)
	c.metricInc(MetricEmailUpdated)
	c.emitAudit(ctx, auditEventEmailUpdated, true, rec.UID, nil, nil)
	return nil
}

// UpdatePassword changes the account password.
func (u *User) UpdatePassword(ctx context.Context, newPassword string) error {
	c, err := u.forwarding()
	if err != nil {
		return err
	}

	if err := c.bridge.UpdatePassword(ctx, newPassword); err != nil {
		c.emitAudit(ctx, auditEventOperationFailure, false, u.UID(), err, func() map[string]string {
			return map[string]string{
				"op": "update_password",
			}
		})
		return err
	}

	c.metricInc(MetricPasswordUpdated)
	c.emitAudit(ctx, auditEventPasswordUpdated, true, u.UID(), nil, nil)
	return nil
}

// UpdateProfile changes the display name and/or photo URL. Nil fields in
// update are left untouched.
func (u *User) UpdateProfile(ctx context.Context, update ProfileUpdate) error {
	c, err := u.forwarding()
	if err != nil {
		return err
	}

	rec, err := c.bridge.UpdateProfile(ctx, update)
	if err != nil {
		c.emitAudit(ctx, auditEventOperationFailure, false, u.UID(), err, func() map[string]string {
			return map[string]string{
				"op": "update_profile",
			}
		})
		return err
	}

	u.apply(rec)
	c.metricInc(MetricProfileUpdated)
	c.emitAudit(ctx, auditEventProfileUpdated, true, rec.UID, nil, nil)
	return nil
}

// SendEmailVerification asks the bridge to send a verification email to the
// account's address.
func (u *User) SendEmailVerification(ctx context.Context) error {
	c, err := u.forwarding()
	if err != nil {
		return err
	}

	ctx = c.withDefaultLanguage(ctx)
	if err := c.bridge.SendEmailVerification(ctx); err != nil {
		c.emitAudit(ctx, auditEventOperationFailure, false, u.UID(), err, func() map[string]string {
			return map[string]string{
				"op": "send_email_verification",
			}
		})
		return err
	}

	c.metricInc(MetricVerificationEmailSent)
	c.emitAudit(ctx, auditEventVerificationSent, true, u.UID(), nil, nil)
	return nil
}

// Reload refreshes the handle from the backend's authoritative record.
func (u *User) Reload(ctx context.Context) error {
	c, err := u.forwarding()
	if err != nil {
		return err
	}

	rec, err := c.bridge.ReloadUser(ctx)
	if err != nil {
		c.emitAudit(ctx, auditEventOperationFailure, false, u.UID(), err, func() map[string]string {
			return map[string]string{
				"op": "reload_user",
			}
		})
		return err
	}

	u.apply(rec)
	c.metricInc(MetricUserReloaded)
	c.emitAudit(ctx, auditEventUserReloaded, true, rec.UID, nil, nil)
	return nil
}

// Delete permanently removes the account. The resulting sign-out arrives as
// a state event.
func (u *User) Delete(ctx context.Context) error {
	c, err := u.forwarding()
	if err != nil {
		return err
	}

	uid := u.UID()
	if err := c.bridge.DeleteUser(ctx); err != nil {
		c.emitAudit(ctx, auditEventOperationFailure, false, uid, err, func() map[string]string {
			return map[string]string{
				"op": "delete_user",
			}
		})
		return err
	}

	c.metricInc(MetricUserDeleted)
	c.emitAudit(ctx, auditEventUserDeleted, true, uid, nil, nil)
	return nil
}

// IDToken returns the bridge-issued ID token for the current user,
// refreshing it first when forceRefresh is set.
func (u *User) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	c, err := u.forwarding()
	if err != nil {
		return "", err
	}

	raw, err := c.bridge.IDToken(ctx, forceRefresh)
	if err != nil {
		c.metricInc(MetricTokenFetchFailure)
		c.emitAudit(ctx, auditEventOperationFailure, false, u.UID(), err, func() map[string]string {
			return map[string]string{
				"op": "id_token",
			}
		})
		return "", err
	}

	c.metricInc(MetricTokenFetched)
	c.emitAudit(ctx, auditEventTokenFetched, true, u.UID(), nil, nil)
	return raw, nil
}

// IDTokenResult fetches the ID token and decodes its payload. The decode is
// claims inspection only; signature validation stays with the bridge.
func (u *User) IDTokenResult(ctx context.Context, forceRefresh bool) (*token.Result, error) {
	raw, err := u.IDToken(ctx, forceRefresh)
	if err != nil {
		return nil, err
	}
	return token.Parse(raw)
}
