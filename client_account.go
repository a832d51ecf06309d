package authbridge

import "context"

// CreateUserWithEmailAndPassword forwards an account creation to the bridge.
// On most backends the new account is signed in immediately, which arrives
// as a state event.
func (c *Client) CreateUserWithEmailAndPassword(ctx context.Context, email, password string) (*User, error) {
	if c == nil || c.bridge == nil {
		return nil, ErrClientNotReady
	}

	rec, err := c.bridge.CreateUser(ctx, email, password)
	if err != nil {
		c.metricInc(MetricAccountCreationFailure)
		c.emitAudit(ctx, auditEventAccountCreateFail, false, "", err, func() map[string]string {
			return map[string]string{
				"email": email,
			}
		})
		return nil, err
	}

	c.metricInc(MetricAccountCreated)
	c.emitAudit(ctx, auditEventAccountCreated, true, rec.UID, nil, nil)
	return c.userForRecord(rec), nil
}

// SendPasswordResetEmail forwards a reset-email request for the given
// address. No user needs to be signed in. The language attached with
// [WithLanguageCode] (or the configured default) localizes the template.
func (c *Client) SendPasswordResetEmail(ctx context.Context, email string) error {
	if c == nil || c.bridge == nil {
		return ErrClientNotReady
	}

	ctx = c.withDefaultLanguage(ctx)
	if err := c.bridge.SendPasswordResetEmail(ctx, email); err != nil {
		c.emitAudit(ctx, auditEventOperationFailure, false, "", err, func() map[string]string {
			return map[string]string{
				"op":    "send_password_reset_email",
				"email": email,
			}
		})
		return err
	}

	c.metricInc(MetricPasswordResetEmailSent)
	c.emitAudit(ctx, auditEventResetEmailSent, true, "", nil, nil)
	return nil
}

// withDefaultLanguage applies the configured language code when the caller
// attached none.
func (c *Client) withDefaultLanguage(ctx context.Context) context.Context {
	if LanguageCodeFromContext(ctx) != "" || c.config.App.LanguageCode == "" {
		return ctx
	}
	return WithLanguageCode(ctx, c.config.App.LanguageCode)
}
