// Package middleware exposes HTTP middleware built on top of goToken.Engine
// verification.
//
// # Guards
//
//   - [Guard] — extracts the access token (cookie, then bearer header),
//     verifies it, and injects the identity into the request context.
//   - [RequireRole] — enforces a minimum role on the injected identity.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself — all decisions are delegated to
// Engine.Verify.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Reveal in responses why a token was rejected.
package middleware
