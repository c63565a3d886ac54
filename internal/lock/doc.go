// Package lock provides a minimal Redis SET-NX lock used to serialize the
// refresh mint/revoke sequence for one jti across replicas.
//
// # Semantics
//
// Best-effort mutual exclusion with TTL-bounded ownership: a crashed holder
// is fenced out when its TTL lapses, and release is compare-and-delete on the
// owner token. This is a single-node lock, not a consensus primitive — the
// refresh flow stays correct without it because the blacklist rejects a
// rotated jti; the lock only prevents duplicate mint work.
//
// # What this package must NOT do
//
//   - Block without a deadline (Acquire always has a wait budget).
//   - Be used for anything requiring fencing tokens or strict ordering.
package lock
