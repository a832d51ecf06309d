package authbridge

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeBridge is an in-memory Bridge with injectable failures. Every
// operation returns rec (or fail, when set) and appends its name to calls.
type fakeBridge struct {
	mu      sync.Mutex
	handler StateHandler
	state   AuthState
	rec     UserRecord
	fail    error
	calls   []string

	// signInEmits makes sign-in style operations push the resulting state
	// synchronously before returning, the way real bridges do.
	signInEmits bool
}

func newFakeBridge() *fakeBridge {
	return &fakeBridge{
		rec: UserRecord{UID: "u1", Email: "a@example.com"},
	}
}

func (f *fakeBridge) emit(state AuthState) {
	f.mu.Lock()
	f.state = state
	handler := f.handler
	f.mu.Unlock()
	if handler != nil {
		handler(state)
	}
}

func (f *fakeBridge) record(op string) (UserRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	rec, fail, emits := f.rec, f.fail, f.signInEmits
	f.mu.Unlock()
	if fail != nil {
		return UserRecord{}, fail
	}
	if emits {
		f.emit(AuthState{Authenticated: true, User: &rec})
	}
	return rec, nil
}

func (f *fakeBridge) act(op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	fail := f.fail
	f.mu.Unlock()
	return fail
}

func (f *fakeBridge) Subscribe(handler StateHandler) {
	f.mu.Lock()
	f.handler = handler
	f.mu.Unlock()
}

func (f *fakeBridge) CurrentUser(context.Context) (AuthState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state, nil
}

func (f *fakeBridge) CreateUser(_ context.Context, _, _ string) (UserRecord, error) {
	return f.record("CreateUser")
}

func (f *fakeBridge) SignInWithPassword(_ context.Context, _, _ string) (UserRecord, error) {
	return f.record("SignInWithPassword")
}

func (f *fakeBridge) SignInWithCustomToken(_ context.Context, _ string) (UserRecord, error) {
	return f.record("SignInWithCustomToken")
}

func (f *fakeBridge) SignInWithCredential(_ context.Context, _ Credential) (UserRecord, error) {
	return f.record("SignInWithCredential")
}

func (f *fakeBridge) SignInAnonymously(context.Context) (UserRecord, error) {
	return f.record("SignInAnonymously")
}

func (f *fakeBridge) Reauthenticate(_ context.Context, _ Credential) (UserRecord, error) {
	return f.record("Reauthenticate")
}

func (f *fakeBridge) LinkWithCredential(_ context.Context, _ Credential) (UserRecord, error) {
	return f.record("LinkWithCredential")
}

func (f *fakeBridge) UnlinkProvider(_ context.Context, _ string) (UserRecord, error) {
	return f.record("UnlinkProvider")
}

func (f *fakeBridge) UpdateEmail(_ context.Context, _ string) (UserRecord, error) {
	return f.record("UpdateEmail")
}

func (f *fakeBridge) UpdatePassword(_ context.Context, _ string) error {
	return f.act("UpdatePassword")
}

func (f *fakeBridge) UpdateProfile(_ context.Context, _ ProfileUpdate) (UserRecord, error) {
	return f.record("UpdateProfile")
}

func (f *fakeBridge) SendEmailVerification(context.Context) error {
	return f.act("SendEmailVerification")
}

func (f *fakeBridge) SendPasswordResetEmail(_ context.Context, _ string) error {
	return f.act("SendPasswordResetEmail")
}

func (f *fakeBridge) ReloadUser(context.Context) (UserRecord, error) {
	return f.record("ReloadUser")
}

func (f *fakeBridge) DeleteUser(context.Context) error {
	return f.act("DeleteUser")
}

func (f *fakeBridge) IDToken(_ context.Context, _ bool) (string, error) {
	if err := f.act("IDToken"); err != nil {
		return "", err
	}
	return "raw-token", nil
}

func (f *fakeBridge) SignOut(context.Context) error {
	if err := f.act("SignOut"); err != nil {
		return err
	}
	f.emit(AuthState{})
	return nil
}

func buildTestClient(t *testing.T, bridge Bridge) *Client {
	t.Helper()

	client, err := New().
		WithBridge(bridge).
		WithMetricsEnabled(true).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(client.Close)
	return client
}

func TestBuilderRequiresBridge(t *testing.T) {
	if _, err := New().Build(); err == nil {
		t.Fatal("expected Build to fail without a bridge")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithBridge(newFakeBridge())
	if _, err := b.Build(); err != nil {
		t.Fatalf("first Build failed: %v", err)
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuildSeedsFromBridgeState(t *testing.T) {
	bridge := newFakeBridge()
	bridge.state = AuthState{Authenticated: true, User: &UserRecord{UID: "u1", Email: "a@example.com"}}

	client := buildTestClient(t, bridge)

	u := client.CurrentUser()
	if u == nil || u.UID() != "u1" {
		t.Fatalf("expected seeded current user u1, got %+v", u)
	}
	if !client.Authenticated() {
		t.Fatal("expected authenticated after seed")
	}
}

func TestBridgeErrorCodePropagatesUnchanged(t *testing.T) {
	bridge := newFakeBridge()
	bridge.fail = &Error{Code: CodeWrongPassword, Message: "password mismatch"}
	client := buildTestClient(t, bridge)

	_, err := client.SignInWithEmailAndPassword(context.Background(), "a@example.com", "bad")
	if err == nil {
		t.Fatal("expected sign-in to fail")
	}
	if CodeOf(err) != "auth/wrong-password" {
		t.Fatalf("expected code auth/wrong-password, got %q", CodeOf(err))
	}
	if !errors.Is(err, ErrWrongPassword) {
		t.Fatalf("expected errors.Is match on ErrWrongPassword, got %v", err)
	}
	// The error value itself must be the bridge's, not a wrapper.
	if !errors.Is(err, bridge.fail) {
		t.Fatalf("expected the bridge error verbatim, got %v", err)
	}
}

func TestStateEventsDriveCurrentUser(t *testing.T) {
	bridge := newFakeBridge()
	client := buildTestClient(t, bridge)

	if client.CurrentUser() != nil {
		t.Fatal("expected no current user before any event")
	}

	bridge.emit(AuthState{Authenticated: true, User: &UserRecord{UID: "u1", Email: "a@example.com"}})
	u := client.CurrentUser()
	if u == nil || u.UID() != "u1" || u.Email() != "a@example.com" {
		t.Fatalf("expected current user u1, got %+v", u)
	}

	bridge.emit(AuthState{})
	if client.CurrentUser() != nil {
		t.Fatal("expected current user cleared after sign-out event")
	}
	if client.Authenticated() {
		t.Fatal("expected unauthenticated after sign-out event")
	}
}

func TestUserHandleMutatedInPlace(t *testing.T) {
	bridge := newFakeBridge()
	client := buildTestClient(t, bridge)

	bridge.emit(AuthState{Authenticated: true, User: &UserRecord{UID: "u1", Email: "a@example.com"}})
	held := client.CurrentUser()

	bridge.emit(AuthState{Authenticated: true, User: &UserRecord{UID: "u1", Email: "b@example.com", EmailVerified: true}})

	if client.CurrentUser() != held {
		t.Fatal("expected the same handle across events for the same principal")
	}
	if held.Email() != "b@example.com" || !held.EmailVerified() {
		t.Fatalf("expected held handle to reflect new state, got email=%q verified=%v", held.Email(), held.EmailVerified())
	}
}

func TestAccountSwitchReplacesHandle(t *testing.T) {
	bridge := newFakeBridge()
	client := buildTestClient(t, bridge)

	bridge.emit(AuthState{Authenticated: true, User: &UserRecord{UID: "u1"}})
	first := client.CurrentUser()

	bridge.emit(AuthState{Authenticated: true, User: &UserRecord{UID: "u2"}})
	second := client.CurrentUser()

	if first == second {
		t.Fatal("expected a fresh handle for a different principal")
	}
	if second.UID() != "u2" {
		t.Fatalf("expected new handle for u2, got %q", second.UID())
	}
}

func TestSignInReturnsCachedHandle(t *testing.T) {
	bridge := newFakeBridge()
	bridge.signInEmits = true
	client := buildTestClient(t, bridge)

	u, err := client.SignInWithEmailAndPassword(context.Background(), "a@example.com", "pw")
	if err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if u != client.CurrentUser() {
		t.Fatal("expected sign-in to resolve with the cached handle")
	}
}

func TestSignOutForwardsAndClears(t *testing.T) {
	bridge := newFakeBridge()
	bridge.signInEmits = true
	client := buildTestClient(t, bridge)

	if _, err := client.SignInAnonymously(context.Background()); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	if err := client.SignOut(context.Background()); err != nil {
		t.Fatalf("sign-out failed: %v", err)
	}
	if client.CurrentUser() != nil {
		t.Fatal("expected current user cleared after sign-out")
	}
}

func TestFetchCurrentUserBypassesCache(t *testing.T) {
	bridge := newFakeBridge()
	client := buildTestClient(t, bridge)

	u, err := client.FetchCurrentUser(context.Background())
	if err != nil || u != nil {
		t.Fatalf("expected nil user with no error, got %v / %v", u, err)
	}

	rec := UserRecord{UID: "u9"}
	bridge.mu.Lock()
	bridge.state = AuthState{Authenticated: true, User: &rec}
	bridge.mu.Unlock()

	u, err = client.FetchCurrentUser(context.Background())
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if u == nil || u.UID() != "u9" {
		t.Fatalf("expected fetched user u9, got %+v", u)
	}
}

func TestMetricsCountForwardedOperations(t *testing.T) {
	bridge := newFakeBridge()
	client := buildTestClient(t, bridge)

	if _, err := client.SignInWithEmailAndPassword(context.Background(), "a@example.com", "pw"); err != nil {
		t.Fatalf("sign-in failed: %v", err)
	}
	bridge.mu.Lock()
	bridge.fail = &Error{Code: CodeUserNotFound}
	bridge.mu.Unlock()
	if _, err := client.SignInWithEmailAndPassword(context.Background(), "x@example.com", "pw"); err == nil {
		t.Fatal("expected failure")
	}

	snap := client.MetricsSnapshot()
	if snap.Counters[MetricSignInSuccess] != 1 {
		t.Fatalf("expected 1 sign-in success, got %d", snap.Counters[MetricSignInSuccess])
	}
	if snap.Counters[MetricSignInFailure] != 1 {
		t.Fatalf("expected 1 sign-in failure, got %d", snap.Counters[MetricSignInFailure])
	}
}
