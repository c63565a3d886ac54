// Package transport moves tokens between the engine and HTTP requests.
//
// Cookies is the standard transport: it writes the token pair as http-only
// cookies with max-age matching the token lifetimes, reads tokens back with
// the cookie taking precedence over the Authorization bearer header, and
// clears both cookies on logout.
//
// # Architecture boundaries
//
// This package handles only the HTTP representation of tokens. It never
// parses, verifies, or issues tokens, and it never talks to the engine or
// to Redis. Handlers extract the raw string here and pass it to the engine.
//
// # What this package must NOT do
//
//   - Inspect or decode token contents.
//   - Make authorization decisions.
//   - Log token values.
package transport
