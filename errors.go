package authbridge

import "errors"

// Bridge failure codes. The set mirrors the native SDK's error namespace;
// bridge implementations return these verbatim and the facade never remaps
// them.
const (
	// CodeWrongPassword is the bridge code for a password mismatch.
	CodeWrongPassword = "auth/wrong-password"
	// CodeUserNotFound is the bridge code for an unknown identifier.
	CodeUserNotFound = "auth/user-not-found"
	// CodeUserDisabled is the bridge code for a disabled account.
	CodeUserDisabled = "auth/user-disabled"
	// CodeEmailAlreadyInUse is the bridge code for a duplicate sign-up email.
	CodeEmailAlreadyInUse = "auth/email-already-in-use"
	// CodeInvalidEmail is the bridge code for a malformed email address.
	CodeInvalidEmail = "auth/invalid-email"
	// CodeWeakPassword is the bridge code for a password rejected by policy.
	CodeWeakPassword = "auth/weak-password"
	// CodeInvalidCredential is the bridge code for a malformed or expired credential.
	CodeInvalidCredential = "auth/invalid-credential"
	// CodeInvalidCustomToken is the bridge code for a custom token the backend rejected.
	CodeInvalidCustomToken = "auth/invalid-custom-token"
	// CodeNoCurrentUser is the bridge code for a user-scoped operation with nobody signed in.
	CodeNoCurrentUser = "auth/no-current-user"
	// CodeRequiresRecentLogin is the bridge code for a sensitive operation needing reauthentication.
	CodeRequiresRecentLogin = "auth/requires-recent-login"
	// CodeProviderAlreadyLinked is the bridge code for linking a provider twice.
	CodeProviderAlreadyLinked = "auth/provider-already-linked"
	// CodeCredentialAlreadyInUse is the bridge code for linking a credential owned by another account.
	CodeCredentialAlreadyInUse = "auth/credential-already-in-use"
	// CodeNoSuchProvider is the bridge code for unlinking a provider that is not linked.
	CodeNoSuchProvider = "auth/no-such-provider"
	// CodeOperationNotAllowed is the bridge code for a sign-in method disabled on the backend.
	CodeOperationNotAllowed = "auth/operation-not-allowed"
	// CodeNetworkRequestFailed is the bridge code for a transport failure.
	CodeNetworkRequestFailed = "auth/network-request-failed"
	// CodeTooManyRequests is the bridge code for backend throttling.
	CodeTooManyRequests = "auth/too-many-requests"
	// CodeInternal is the bridge code for an unclassified backend failure.
	CodeInternal = "auth/internal-error"
)

// Error is a coded failure reported by a [Bridge]. The facade propagates
// bridge errors unchanged, so the code a native backend produced is the code
// the caller observes.
type Error struct {
	// Code is the stable bridge error code, e.g. "auth/wrong-password".
	Code string
	// Message is a human-readable detail string. Not stable; do not match on it.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Message == "" {
		return e.Code
	}
	return e.Code + ": " + e.Message
}

// Is reports code equality, so errors.Is(err, ErrWrongPassword) matches any
// bridge error carrying the same code regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil {
		return false
	}
	return e.Code == t.Code
}

// CodeOf extracts the bridge code from err, or "" when err is nil or not a
// coded bridge error.
func CodeOf(err error) string {
	var be *Error
	if errors.As(err, &be) && be != nil {
		return be.Code
	}
	return ""
}

var (
	// ErrWrongPassword is an exported sentinel matching bridge code auth/wrong-password.
	ErrWrongPassword = &Error{Code: CodeWrongPassword, Message: "wrong password"}
	// ErrUserNotFound is an exported sentinel matching bridge code auth/user-not-found.
	ErrUserNotFound = &Error{Code: CodeUserNotFound, Message: "user not found"}
	// ErrUserDisabled is an exported sentinel matching bridge code auth/user-disabled.
	ErrUserDisabled = &Error{Code: CodeUserDisabled, Message: "user disabled"}
	// ErrEmailAlreadyInUse is an exported sentinel matching bridge code auth/email-already-in-use.
	ErrEmailAlreadyInUse = &Error{Code: CodeEmailAlreadyInUse, Message: "email already in use"}
	// ErrInvalidEmail is an exported sentinel matching bridge code auth/invalid-email.
	ErrInvalidEmail = &Error{Code: CodeInvalidEmail, Message: "invalid email"}
	// ErrWeakPassword is an exported sentinel matching bridge code auth/weak-password.
	ErrWeakPassword = &Error{Code: CodeWeakPassword, Message: "weak password"}
	// ErrInvalidCredential is an exported sentinel matching bridge code auth/invalid-credential.
	ErrInvalidCredential = &Error{Code: CodeInvalidCredential, Message: "invalid credential"}
	// ErrInvalidCustomToken is an exported sentinel matching bridge code auth/invalid-custom-token.
	ErrInvalidCustomToken = &Error{Code: CodeInvalidCustomToken, Message: "invalid custom token"}
	// ErrNoCurrentUser is an exported sentinel matching bridge code auth/no-current-user.
	ErrNoCurrentUser = &Error{Code: CodeNoCurrentUser, Message: "no current user"}
	// ErrRequiresRecentLogin is an exported sentinel matching bridge code auth/requires-recent-login.
	ErrRequiresRecentLogin = &Error{Code: CodeRequiresRecentLogin, Message: "requires recent login"}
	// ErrProviderAlreadyLinked is an exported sentinel matching bridge code auth/provider-already-linked.
	ErrProviderAlreadyLinked = &Error{Code: CodeProviderAlreadyLinked, Message: "provider already linked"}
	// ErrCredentialAlreadyInUse is an exported sentinel matching bridge code auth/credential-already-in-use.
	ErrCredentialAlreadyInUse = &Error{Code: CodeCredentialAlreadyInUse, Message: "credential already in use"}
	// ErrNoSuchProvider is an exported sentinel matching bridge code auth/no-such-provider.
	ErrNoSuchProvider = &Error{Code: CodeNoSuchProvider, Message: "no such provider"}
	// ErrOperationNotAllowed is an exported sentinel matching bridge code auth/operation-not-allowed.
	ErrOperationNotAllowed = &Error{Code: CodeOperationNotAllowed, Message: "operation not allowed"}
	// ErrNetworkRequestFailed is an exported sentinel matching bridge code auth/network-request-failed.
	ErrNetworkRequestFailed = &Error{Code: CodeNetworkRequestFailed, Message: "network request failed"}
	// ErrTooManyRequests is an exported sentinel matching bridge code auth/too-many-requests.
	ErrTooManyRequests = &Error{Code: CodeTooManyRequests, Message: "too many requests"}

	// ErrClientNotReady is returned when a Client is used before Build or after a nil receiver.
	ErrClientNotReady = errors.New("client not initialized")
)
