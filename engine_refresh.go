package goToken

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/MrEthical07/goToken/internal/rate"
	"github.com/MrEthical07/goToken/jwt"
)

// inflightRefresh is the shared pending result for one refresh jti. Result
// fields are written once, before done closes; waiters read them only after
// observing the close.
type inflightRefresh struct {
	done chan struct{}
	pair *TokenPair
	user *UserSnapshot
	err  error
}

// Refresh exchanges a refresh token for a new token pair, revoking the old
// token's jti afterwards. Concurrent calls presenting the same token share one
// verify→mint sequence and receive identical pairs; callers that join a
// failed attempt run a fresh one rather than inheriting a possibly transient
// failure.
//
// Order matters for partial failure: the new pair is minted before the old
// jti is revoked, so a failed mint leaves the presented token valid and the
// client free to retry. The revocation itself runs deferred and best-effort
// off the critical path.
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, *UserSnapshot, error) {
	if e == nil || e.issuer == nil {
		return nil, nil, ErrEngineNotReady
	}

	// Local decode only (signature + expiry): unparseable input fails here
	// with no in-flight entry created and no store traffic.
	claims, err := e.codec.Parse(refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, "", "", ErrRefreshInvalid, func() map[string]string {
			return map[string]string{"reason": "decode_failed"}
		})
		return nil, nil, fmt.Errorf("%w: %v", ErrRefreshInvalid, err)
	}

	key := claims.ID
	if key == "" {
		key = refreshToken
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckRefresh(ctx, key); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricRefreshRateLimited)
				e.emitAudit(ctx, auditEventRefreshRateLimited, false, claims.Subject, claims.ID, ErrRefreshRateLimited, nil)
				return nil, nil, ErrRefreshRateLimited
			}
			log.Print("goToken: refresh limiter check failed")
		}
	}

	for {
		e.mu.Lock()
		if entry, ok := e.inflight[key]; ok {
			e.mu.Unlock()

			e.metricInc(MetricRefreshJoined)
			e.emitAudit(ctx, auditEventRefreshJoined, true, claims.Subject, claims.ID, nil, nil)

			select {
			case <-entry.done:
			case <-ctx.Done():
				return nil, nil, ctx.Err()
			}

			if entry.err == nil {
				return entry.pair, entry.user, nil
			}
			// The shared attempt failed, but the token may still be valid
			// and the failure transient. Run a fresh attempt.
			continue
		}

		entry := &inflightRefresh{done: make(chan struct{})}
		e.inflight[key] = entry
		e.mu.Unlock()

		// Remove unconditionally before waking waiters so late arrivals
		// start fresh instead of joining a settled entry. Deferred because
		// a collaborator (UserDirectory is caller-supplied code) may panic
		// mid-attempt; a leaked entry would wedge every later Refresh for
		// this jti on a done channel that never closes.
		defer func() {
			if entry.pair == nil && entry.err == nil {
				// The attempt unwound without settling a result. Waiters
				// must not mistake this for success; a non-nil err sends
				// them to a fresh attempt.
				entry.err = errors.New("refresh attempt aborted")
			}
			e.mu.Lock()
			delete(e.inflight, key)
			e.mu.Unlock()
			close(entry.done)
		}()

		entry.pair, entry.user, entry.err = e.refreshAttempt(ctx, refreshToken, key, claims)

		return entry.pair, entry.user, entry.err
	}
}

func (e *Engine) refreshAttempt(ctx context.Context, refreshToken, key string, claims *jwt.Claims) (*TokenPair, *UserSnapshot, error) {
	if e.refreshLock != nil {
		owner, ok, err := e.refreshLock.Acquire(ctx, key, e.config.Refresh.LockTTL, e.config.Refresh.LockWait)
		switch {
		case err != nil:
			// Lock backend down: proceed unserialized. The blacklist still
			// rejects a jti another replica already rotated.
			log.Print("goToken: refresh lock unavailable")
		case ok:
			defer func() {
				rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				if err := e.refreshLock.Release(rctx, key, owner); err != nil {
					log.Print("goToken: refresh lock release failed")
				}
			}()
		default:
			// Wait budget exhausted while another replica held the lock.
			log.Print("goToken: refresh lock contention, proceeding unserialized")
		}
	}

	// Full verification: revocation state and fresh account state.
	identity, err := e.verifier.Verify(ctx, refreshToken)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, claims.Subject, claims.ID, err, func() map[string]string {
			return map[string]string{"reason": refreshFailureReason(err)}
		})
		if errors.Is(err, ErrTokenInvalid) {
			return nil, nil, fmt.Errorf("%w: %v", ErrRefreshInvalid, err)
		}
		return nil, nil, err
	}

	// Mint before revoking: a signing failure must leave the presented
	// refresh token usable for a retry.
	pair, err := e.issuer.IssuePair(identity.User)
	if err != nil {
		e.metricInc(MetricRefreshFailure)
		e.emitAudit(ctx, auditEventRefreshInvalid, false, identity.User.ID, claims.ID, err, func() map[string]string {
			return map[string]string{"reason": "issue_failed"}
		})
		return nil, nil, err
	}

	e.scheduleRevocation(identity.User.ID, claims)

	e.metricInc(MetricRefreshSuccess)
	e.emitAudit(ctx, auditEventRefreshSuccess, true, identity.User.ID, claims.ID, nil, nil)

	user := identity.User
	return pair, &user, nil
}

// scheduleRevocation retires the rotated-out refresh jti after the configured
// delay. The delay gives the client time to commit the new pair to its
// transport before the old token dies; it is a race mitigation, not a
// correctness guarantee. Failures are logged and counted, never surfaced —
// the entry's absence heals when the token expires.
func (e *Engine) scheduleRevocation(userID string, claims *jwt.Claims) {
	jti := claims.ID
	if jti == "" || claims.ExpiresAt == nil {
		return
	}

	expiresAt := claims.ExpiresAt.Time
	delay := e.config.Refresh.RevocationDelay

	e.revokeWG.Add(1)
	go func() {
		defer e.revokeWG.Done()

		if delay > 0 {
			time.Sleep(delay)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := e.revocations.Record(ctx, jti, time.Until(expiresAt)); err != nil {
			log.Print("goToken: deferred refresh revocation failed")
			e.metricInc(MetricRevocationFailed)
			e.emitAudit(ctx, auditEventRevocationFailed, false, userID, jti, ErrBlacklistUnavailable, nil)
			return
		}

		e.metricInc(MetricTokenRevoked)
		e.emitAudit(ctx, auditEventTokenRevoked, true, userID, jti, nil, nil)
	}()
}

func refreshFailureReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenRevoked):
		return "revoked"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrAccountDeactivated):
		return "account_deactivated"
	case errors.Is(err, ErrTokenInvalid):
		return "verify_failed"
	default:
		return "internal"
	}
}
