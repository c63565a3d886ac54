// Package goToken provides the bearer-token lifecycle for authentication services:
// issuing signed access/refresh token pairs, verifying tokens against a Redis-backed
// revocation blacklist, and coordinating concurrent refresh attempts so that a given
// refresh token is exchanged at most once.
//
// The package is designed for concurrent server workloads: Engine methods are safe to
// call from multiple goroutines after initialization through [Builder.Build].
//
// # Architecture boundaries
//
// goToken is the public surface. It exposes [Engine], [Builder], [Config], and value
// types (TokenPair, Identity, UserSnapshot, MetricsSnapshot). Distributed locking,
// rate limiting, and audit dispatch live under internal/ and are never exported. Token encoding lives in the jwt sub-package; the revocation store
// lives in the blacklist sub-package.
//
// User storage and credential checking are deliberately external: callers supply a
// [UserDirectory] and a [CredentialVerifier]. goToken never touches a relational
// store directly.
//
// # What this package must NOT do
//
//   - Expose Redis clients, internal stores, or encoding details in its public API.
//   - Cache user records — account deactivation must take effect on the next verify.
//   - Log raw token strings or signing secrets.
//
// # Performance contract
//
// Verify is the hot path: one codec parse plus at most one Redis round-trip for the
// revocation check. Refresh and Login are allowed additional round-trips. The deferred
// revocation of a rotated refresh token never sits on a request's critical path.
package goToken
