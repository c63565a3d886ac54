// Package blacklist provides the Redis-backed revocation store for token jtis.
//
// # Key layout
//
// One string key per revoked jti: blacklist:<jti> = "1", TTL equal to the
// remaining lifetime of the revoked token. Redis expiry is the garbage
// collector; an entry can never outlive the token it denies.
//
// # Availability policy
//
// This package reports store failures as wrapped [ErrRedisUnavailable] and
// takes no position on them. The Engine decides whether a failed lookup
// fails open (token accepted, revocation missed until natural expiry) or
// fails closed.
//
// # What this package must NOT do
//
//   - Parse or validate tokens (jti strings are opaque here).
//   - Use KEYS or any blocking full-keyspace command; Stats must SCAN.
//   - Import goToken or jwt (no upward imports).
package blacklist
