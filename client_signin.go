package authbridge

import (
	"context"
	"time"
)

// SignInWithEmailAndPassword forwards a password sign-in to the bridge. The
// result resolves or rejects exactly as the bridge does; a rejection carries
// the bridge's own error code (for example auth/wrong-password), unchanged.
func (c *Client) SignInWithEmailAndPassword(ctx context.Context, email, password string) (*User, error) {
	if c == nil || c.bridge == nil {
		return nil, ErrClientNotReady
	}

	start := time.Now()
	rec, err := c.bridge.SignInWithPassword(ctx, email, password)
	c.metricObserve(MetricSignInLatency, time.Since(start))
	if err != nil {
		c.metricInc(MetricSignInFailure)
		c.emitAudit(ctx, auditEventSignInFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"method": "password",
				"email":  email,
			}
		})
		return nil, err
	}

	c.metricInc(MetricSignInSuccess)
	c.emitAudit(ctx, auditEventSignInSuccess, true, rec.UID, nil, func() map[string]string {
		return map[string]string{
			"method": "password",
		}
	})
	return c.userForRecord(rec), nil
}

// SignInWithCustomToken forwards a backend-minted custom token sign-in.
func (c *Client) SignInWithCustomToken(ctx context.Context, token string) (*User, error) {
	if c == nil || c.bridge == nil {
		return nil, ErrClientNotReady
	}

	rec, err := c.bridge.SignInWithCustomToken(ctx, token)
	if err != nil {
		c.metricInc(MetricSignInFailure)
		c.emitAudit(ctx, auditEventSignInFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"method": "custom_token",
			}
		})
		return nil, err
	}

	c.metricInc(MetricSignInSuccess)
	c.emitAudit(ctx, auditEventSignInSuccess, true, rec.UID, nil, func() map[string]string {
		return map[string]string{
			"method": "custom_token",
		}
	})
	return c.userForRecord(rec), nil
}

// SignInWithCredential forwards a third-party provider credential sign-in.
func (c *Client) SignInWithCredential(ctx context.Context, cred Credential) (*User, error) {
	if c == nil || c.bridge == nil {
		return nil, ErrClientNotReady
	}

	rec, err := c.bridge.SignInWithCredential(ctx, cred)
	if err != nil {
		c.metricInc(MetricSignInFailure)
		c.emitAudit(ctx, auditEventSignInFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"method":   "credential",
				"provider": cred.ProviderID,
			}
		})
		return nil, err
	}

	c.metricInc(MetricSignInSuccess)
	c.emitAudit(ctx, auditEventSignInSuccess, true, rec.UID, nil, func() map[string]string {
		return map[string]string{
			"method":   "credential",
			"provider": cred.ProviderID,
		}
	})
	return c.userForRecord(rec), nil
}

// SignInAnonymously forwards an anonymous sign-in. The resulting account can
// later be upgraded through [User.LinkWithCredential].
func (c *Client) SignInAnonymously(ctx context.Context) (*User, error) {
	if c == nil || c.bridge == nil {
		return nil, ErrClientNotReady
	}

	rec, err := c.bridge.SignInAnonymously(ctx)
	if err != nil {
		c.metricInc(MetricSignInFailure)
		c.emitAudit(ctx, auditEventSignInFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"method": "anonymous",
			}
		})
		return nil, err
	}

	c.metricInc(MetricSignInSuccess)
	c.emitAudit(ctx, auditEventSignInSuccess, true, rec.UID, nil, func() map[string]string {
		return map[string]string{
			"method": "anonymous",
		}
	})
	return c.userForRecord(rec), nil
}

// SignOut forwards a sign-out to the bridge. The cached state and user
// handle are cleared by the resulting state event, not here.
func (c *Client) SignOut(ctx context.Context) error {
	if c == nil || c.bridge == nil {
		return ErrClientNotReady
	}

	if err := c.bridge.SignOut(ctx); err != nil {
		c.emitAudit(ctx, auditEventSignOutFailure, false, "", err, nil)
		return err
	}

	c.metricInc(MetricSignOut)
	c.emitAudit(ctx, auditEventSignOut, true, "", nil, nil)
	return nil
}

// FetchCurrentUser asks the bridge for its current auth state, bypassing the
// facade cache. It returns nil with no error when nobody is signed in.
func (c *Client) FetchCurrentUser(ctx context.Context) (*User, error) {
	if c == nil || c.bridge == nil {
		return nil, ErrClientNotReady
	}

	state, err := c.bridge.CurrentUser(ctx)
	if err != nil {
		return nil, err
	}
	if !state.Authenticated || state.User == nil {
		return nil, nil
	}
	return c.userForRecord(*state.User), nil
}
