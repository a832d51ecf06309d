package authbridge

import (
	"context"
	"time"
)

const (
	auditEventStateChanged      = "state_changed"
	auditEventSignInSuccess     = "sign_in_success"
	auditEventSignInFailure     = "sign_in_failure"
	auditEventSignOut           = "sign_out"
	auditEventSignOutFailure    = "sign_out_failure"
	auditEventAccountCreated    = "account_created"
	auditEventAccountCreateFail = "account_creation_failure"
	auditEventReauthSuccess     = "reauthenticate_success"
	auditEventReauthFailure     = "reauthenticate_failure"
	auditEventLinkSuccess       = "credential_link_success"
	auditEventLinkFailure       = "credential_link_failure"
	auditEventUnlink            = "provider_unlink"
	auditEventEmailUpdated      = "email_updated"
	auditEventPasswordUpdated   = "password_updated"
	auditEventProfileUpdated    = "profile_updated"
	auditEventVerificationSent  = "verification_email_sent"
	auditEventResetEmailSent    = "password_reset_email_sent"
	auditEventUserDeleted       = "user_deleted"
	auditEventUserReloaded      = "user_reloaded"
	auditEventTokenFetched      = "id_token_fetched"
	auditEventOperationFailure  = "operation_failure"
)

func (c *Client) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	uid string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if c == nil || c.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		App:       c.config.App.Name,
		UID:       uid,
		TenantID:  TenantIDFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if err != nil {
		if code := CodeOf(err); code != "" {
			event.Error = code
		} else {
			event.Error = CodeInternal
		}
	}

	c.audit.Emit(ctx, event)
}
