package authbridge

import (
	"context"
	"time"
)

// AuthState is an immutable snapshot delivered by the bridge on every
// auth-state transition. User is nil when Authenticated is false.
type AuthState struct {
	Authenticated bool
	User          *UserRecord
}

// UserRecord is the provider-supplied account snapshot carried inside an
// [AuthState] and returned by bridge operations. The facade copies it into
// the cached [User] handle; callers normally interact with the handle, not
// the record.
type UserRecord struct {
	UID           string
	Email         string
	DisplayName   string
	PhotoURL      string
	PhoneNumber   string
	EmailVerified bool
	Anonymous     bool
	ProviderID    string
	TenantID      string
	ProviderData  []UserInfo
	CreatedAt     time.Time
	LastSignInAt  time.Time
}

// UserInfo describes one linked identity provider on an account.
type UserInfo struct {
	ProviderID  string
	UID         string
	Email       string
	DisplayName string
	PhotoURL    string
	PhoneNumber string
}

// Credential is an ephemeral provider identifier plus opaque token/secret
// pair. It is constructed by callers (see the provider sub-package), passed
// through to the bridge unmodified, and never persisted by this layer.
type Credential struct {
	ProviderID string
	Token      string
	Secret     string
}

// ProfileUpdate carries the mutable display fields of an account. A nil
// pointer leaves the field untouched; a pointer to "" clears it.
type ProfileUpdate struct {
	DisplayName *string
	PhotoURL    *string
}

// StateHandler receives auth-state snapshots from a bridge. The bridge
// serializes delivery: a handler runs to completion before the next event is
// dispatched.
type StateHandler func(AuthState)

// Bridge is the external native SDK component that performs real
// authentication work. Implementations own token issuance, validation,
// persistence, and provider handshakes; the facade forwards every operation
// here and adds nothing.
//
// All methods may be called concurrently. Failures are reported as coded
// [*Error] values; the facade surfaces them unchanged. User-scoped methods
// (UpdateEmail, DeleteUser, IDToken, ...) operate on the bridge's notion of
// the current user and return [ErrNoCurrentUser]-coded errors when nobody is
// signed in — the facade performs no local precondition check.
type Bridge interface {
	// Subscribe registers the single state handler. It is called exactly once,
	// at facade construction, and the subscription lives for the process
	// lifetime; there is no unsubscribe path.
	Subscribe(handler StateHandler)

	// CurrentUser reports the bridge's current auth state. Used once at
	// construction to seed the facade cache.
	CurrentUser(ctx context.Context) (AuthState, error)

	CreateUser(ctx context.Context, email, password string) (UserRecord, error)
	SignInWithPassword(ctx context.Context, email, password string) (UserRecord, error)
	SignInWithCustomToken(ctx context.Context, token string) (UserRecord, error)
	SignInWithCredential(ctx context.Context, cred Credential) (UserRecord, error)
	SignInAnonymously(ctx context.Context) (UserRecord, error)

	Reauthenticate(ctx context.Context, cred Credential) (UserRecord, error)
	LinkWithCredential(ctx context.Context, cred Credential) (UserRecord, error)
	UnlinkProvider(ctx context.Context, providerID string) (UserRecord, error)

	UpdateEmail(ctx context.Context, email string) (UserRecord, error)
	UpdatePassword(ctx context.Context, newPassword string) error
	UpdateProfile(ctx context.Context, update ProfileUpdate) (UserRecord, error)

	SendEmailVerification(ctx context.Context) error
	SendPasswordResetEmail(ctx context.Context, email string) error

	ReloadUser(ctx context.Context) (UserRecord, error)
	DeleteUser(ctx context.Context) error

	IDToken(ctx context.Context, forceRefresh bool) (string, error)
	SignOut(ctx context.Context) error
}

func cloneRecord(rec UserRecord) UserRecord {
	out := rec
	if rec.ProviderData != nil {
		out.ProviderData = make([]UserInfo, len(rec.ProviderData))
		copy(out.ProviderData, rec.ProviderData)
	}
	return out
}
