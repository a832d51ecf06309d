// Package localbridge is a complete in-process [authbridge.Bridge]
// implementation backed by Redis. It exists for development environments,
// examples, and tests that need real sign-in/sign-up/link semantics without
// a native SDK: accounts live in Redis under a configurable key prefix,
// passwords are argon2id hashed, and ID tokens are HS256 JWTs minted
// locally.
//
// localbridge is a collaborator, not part of the facade: the facade layer
// still owns nothing but forwarding. Do not use it as a production identity
// backend.
package localbridge
