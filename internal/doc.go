// Package internal groups helper packages that are intentionally private to
// goToken.
//
// # Sub-packages
//
//   - audit — async event dispatch (Dispatcher + Sink implementations)
//   - lock — Redis-backed distributed lock for cross-replica refresh dedup
//   - rate — fixed-window Redis counters for login and refresh throttling
//
// # What this package must NOT do
//
//   - Export types that appear in the public goToken API.
//   - Be imported by any package outside the goToken module.
package internal
