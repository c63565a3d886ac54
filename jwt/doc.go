// Package jwt implements the signed token codec used for both access and refresh
// tokens.
//
// # Codec contract
//
// One configured key signs every token; callers choose the expiry horizon per Sign
// call. Parse is fail-closed: a malformed, expired, or tampered token yields an
// error ([ErrMalformed], [ErrExpired], [ErrInvalidSignature]) and never a partial
// claims value.
//
// # Architecture boundaries
//
// This package owns claim encoding and signature verification only. Revocation
// checks, user lookups, and refresh coordination belong to the Engine.
//
// # What this package must NOT do
//
//   - Access Redis or any I/O.
//   - Import goToken or blacklist (no upward imports).
//   - Interpret the role claim beyond carrying it.
package jwt
