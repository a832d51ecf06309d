package authbridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedInUser(t *testing.T, bridge *fakeBridge) (*Client, *User) {
	t.Helper()
	client := buildTestClient(t, bridge)
	bridge.emit(AuthState{Authenticated: true, User: &UserRecord{UID: "u1", Email: "a@example.com"}})
	u := client.CurrentUser()
	if u == nil {
		t.Fatal("expected current user after sign-in event")
	}
	return client, u
}

func TestNilUserOperationsReportNotReady(t *testing.T) {
	var u *User
	if err := u.UpdateEmail(context.Background(), "x@example.com"); !errors.Is(err, ErrClientNotReady) {
		t.Fatalf("expected ErrClientNotReady, got %v", err)
	}
	if _, err := u.IDToken(context.Background(), false); !errors.Is(err, ErrClientNotReady) {
		t.Fatalf("expected ErrClientNotReady, got %v", err)
	}
}

func TestUpdateEmailRefreshesHandleInPlace(t *testing.T) {
	bridge := newFakeBridge()
	client, u := signedInUser(t, bridge)

	bridge.mu.Lock()
	bridge.rec = UserRecord{UID: "u1", Email: "new@example.com"}
	bridge.mu.Unlock()

	if err := u.UpdateEmail(context.Background(), "new@example.com"); err != nil {
		t.Fatalf("UpdateEmail failed: %v", err)
	}
	if u.Email() != "new@example.com" {
		t.Fatalf("expected handle email refreshed, got %q", u.Email())
	}
	if client.CurrentUser() != u {
		t.Fatal("expected cached handle unchanged by the update")
	}
}

func TestUpdateProfileAppliesReturnedRecord(t *testing.T) {
	bridge := newFakeBridge()
	_, u := signedInUser(t, bridge)

	name := "Ada"
	bridge.mu.Lock()
	bridge.rec = UserRecord{UID: "u1", Email: "a@example.com", DisplayName: name}
	bridge.mu.Unlock()

	if err := u.UpdateProfile(context.Background(), ProfileUpdate{DisplayName: &name}); err != nil {
		t.Fatalf("UpdateProfile failed: %v", err)
	}
	if u.DisplayName() != "Ada" {
		t.Fatalf("expected display name Ada, got %q", u.DisplayName())
	}
}

func TestUserOperationErrorsPassThroughVerbatim(t *testing.T) {
	bridge := newFakeBridge()
	_, u := signedInUser(t, bridge)

	bridge.mu.Lock()
	bridge.fail = &Error{Code: CodeRequiresRecentLogin, Message: "reauthenticate first"}
	bridge.mu.Unlock()

	err := u.UpdatePassword(context.Background(), "hunter22")
	if !errors.Is(err, ErrRequiresRecentLogin) {
		t.Fatalf("expected auth/requires-recent-login, got %v", err)
	}
	if CodeOf(err) != CodeRequiresRecentLogin {
		t.Fatalf("expected code untouched, got %q", CodeOf(err))
	}
}

func TestStaleHandleForwardsAfterSignOut(t *testing.T) {
	bridge := newFakeBridge()
	_, u := signedInUser(t, bridge)

	bridge.emit(AuthState{})
	bridge.mu.Lock()
	bridge.fail = &Error{Code: CodeNoCurrentUser}
	bridge.mu.Unlock()

	// A held handle does no local checking: the bridge decides.
	if err := u.Reload(context.Background()); !errors.Is(err, ErrNoCurrentUser) {
		t.Fatalf("expected auth/no-current-user from bridge, got %v", err)
	}
}

func TestLinkAndUnlinkUpdateProviderData(t *testing.T) {
	bridge := newFakeBridge()
	_, u := signedInUser(t, bridge)

	bridge.mu.Lock()
	bridge.rec = UserRecord{
		UID:   "u1",
		Email: "a@example.com",
		ProviderData: []UserInfo{
			{ProviderID: "password", UID: "a@example.com"},
			{ProviderID: "google.com", UID: "g-123"},
		},
	}
	bridge.mu.Unlock()

	if err := u.LinkWithCredential(context.Background(), Credential{ProviderID: "google.com", Token: "t"}); err != nil {
		t.Fatalf("LinkWithCredential failed: %v", err)
	}
	if got := u.ProviderData(); len(got) != 2 {
		t.Fatalf("expected 2 linked providers, got %d", len(got))
	}

	bridge.mu.Lock()
	bridge.rec.ProviderData = bridge.rec.ProviderData[:1]
	bridge.mu.Unlock()

	if err := u.UnlinkProvider(context.Background(), "google.com"); err != nil {
		t.Fatalf("UnlinkProvider failed: %v", err)
	}
	if got := u.ProviderData(); len(got) != 1 || got[0].ProviderID != "password" {
		t.Fatalf("expected only the password provider left, got %v", got)
	}
}

func TestReauthenticateKeepsHandleCurrent(t *testing.T) {
	bridge := newFakeBridge()
	client, u := signedInUser(t, bridge)

	if err := u.Reauthenticate(context.Background(), Credential{ProviderID: "password", Token: "a@example.com", Secret: "pw"}); err != nil {
		t.Fatalf("Reauthenticate failed: %v", err)
	}
	if client.CurrentUser() != u {
		t.Fatal("expected cached handle preserved across reauthentication")
	}

	snap := client.MetricsSnapshot()
	if snap.Counters[MetricReauthSuccess] != 1 {
		t.Fatalf("expected 1 reauth success, got %d", snap.Counters[MetricReauthSuccess])
	}
}

// idTokenBridge serves a caller-provided JWT instead of the fake's opaque
// placeholder token.
type idTokenBridge struct {
	*fakeBridge
	token string
}

func (b *idTokenBridge) IDToken(ctx context.Context, forceRefresh bool) (string, error) {
	if _, err := b.fakeBridge.IDToken(ctx, forceRefresh); err != nil {
		return "", err
	}
	return b.token, nil
}

func TestIDTokenResultDecodesClaims(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":       "u1",
		"iat":       now.Unix(),
		"exp":       now.Add(time.Hour).Unix(),
		"auth_time": now.Unix(),
		"auth": map[string]any{
			"sign_in_provider": "password",
			"tenant":           "t-1",
		},
	}).SignedString([]byte("test-signing-key"))
	if err != nil {
		t.Fatalf("failed to mint test token: %v", err)
	}

	bridge := &idTokenBridge{fakeBridge: newFakeBridge(), token: raw}
	client := buildTestClient(t, bridge)
	bridge.emit(AuthState{Authenticated: true, User: &UserRecord{UID: "u1"}})
	u := client.CurrentUser()

	res, err := u.IDTokenResult(context.Background(), false)
	if err != nil {
		t.Fatalf("IDTokenResult failed: %v", err)
	}
	if res.Subject != "u1" {
		t.Fatalf("expected subject u1, got %q", res.Subject)
	}
	if res.SignInProvider != "password" || res.TenantID != "t-1" {
		t.Fatalf("expected auth block decoded, got provider=%q tenant=%q", res.SignInProvider, res.TenantID)
	}
	if !res.ExpiresAt.After(now) {
		t.Fatalf("expected future expiry, got %v", res.ExpiresAt)
	}
	if res.Expired(now) {
		t.Fatal("expected token not yet expired")
	}
	if !res.Expired(now.Add(2 * time.Hour)) {
		t.Fatal("expected token expired two hours out")
	}
}

func TestDeleteForwardsAndCounts(t *testing.T) {
	bridge := newFakeBridge()
	client, u := signedInUser(t, bridge)

	if err := u.Delete(context.Background()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	snap := client.MetricsSnapshot()
	if snap.Counters[MetricUserDeleted] != 1 {
		t.Fatalf("expected 1 user deletion, got %d", snap.Counters[MetricUserDeleted])
	}
}
