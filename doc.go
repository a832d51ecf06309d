// Package authbridge exposes a native authentication SDK through a small,
// listener-notifying Go facade. Sign-in, sign-up, credential linking, token
// retrieval, and auth-state notification are forwarded to an injected
// [Bridge]; the facade owns only a cached snapshot of the last-known auth
// state and the single [User] handle derived from it.
//
// The package is designed for concurrent callers: Client methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// authbridge is the public surface. It exposes [Client], [Builder], [Config],
// and value types (AuthState, UserRecord, Credential, AuditEvent). Credential
// constructors live in the provider sub-package, ID-token inspection in the
// token sub-package, and a Redis-backed development bridge in localbridge.
//
// # What this package must NOT do
//
//   - Perform authentication, token validation, or persistence of its own —
//     those belong to the Bridge implementation.
//   - Retry, translate, or swallow bridge errors. A bridge failure code
//     reaches the caller unchanged.
//   - Hold more than one cached User handle. The handle is created on the
//     unauthenticated-to-authenticated transition, mutated in place while the
//     same principal stays signed in, and dropped on sign-out.
package authbridge
