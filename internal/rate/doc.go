// Package rate provides Redis-backed fixed-window counters guarding the login
// and refresh entry points.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit. Key prefixes:
//   - tl:  — login per-email
//   - tli: — login per-IP
//   - tr:  — refresh per-jti
//
// # What this package must NOT do
//
//   - Decide which operations are throttled (the Engine's config does).
//   - Be imported outside the goToken module.
package rate
