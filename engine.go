package goToken

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/MrEthical07/goToken/blacklist"
	internalaudit "github.com/MrEthical07/goToken/internal/audit"
	"github.com/MrEthical07/goToken/internal/lock"
	"github.com/MrEthical07/goToken/internal/rate"
	"github.com/MrEthical07/goToken/jwt"
)

// Engine is the façade over the token lifecycle: minting pairs at login,
// verifying access tokens, coordinating refresh rotation, and revoking on
// logout. Construct through [Builder.Build]; all methods are safe for
// concurrent use afterwards.
type Engine struct {
	config Config

	codec       *jwt.Manager
	issuer      *Issuer
	verifier    *Verifier
	revocations *blacklist.Store
	refreshLock *lock.Lock
	rateLimiter *rate.Limiter
	directory   UserDirectory
	credentials CredentialVerifier
	audit       *internalaudit.Dispatcher
	metrics     *Metrics

	// inflight is the only process-local mutable shared state: one entry per
	// refresh jti currently being exchanged.
	mu       sync.Mutex
	inflight map[string]*inflightRefresh

	revokeWG sync.WaitGroup
}

// Close drains deferred revocations and shuts down the audit dispatcher.
// Call on service shutdown; the Engine must not be used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.revokeWG.Wait()
	e.audit.Close()
}

// AuditDropped reports the number of audit events dropped by the dispatcher.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot returns a deep copy of all engine metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}, Histograms: map[MetricID][]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

// Login verifies credentials through the configured [CredentialVerifier],
// re-checks the account through the [UserDirectory], and mints a fresh token
// pair. The returned snapshot is the directory's current view of the account.
func (e *Engine) Login(ctx context.Context, email, password string) (*TokenPair, *UserSnapshot, error) {
	if e == nil || e.issuer == nil {
		return nil, nil, ErrEngineNotReady
	}
	if e.credentials == nil {
		return nil, nil, ErrCredentialVerifierRequired
	}

	ip := clientIPFromContext(ctx)
	if e.rateLimiter != nil {
		if err := e.rateLimiter.CheckLogin(ctx, email, ip); err != nil {
			if errors.Is(err, rate.ErrRateLimited) {
				e.metricInc(MetricLoginRateLimited)
				e.emitAudit(ctx, auditEventLoginRateLimited, false, "", "", ErrLoginRateLimited, nil)
				return nil, nil, ErrLoginRateLimited
			}
			log.Print("goToken: login limiter check failed")
		}
	}

	userID, err := e.credentials.VerifyCredentials(ctx, email, password)
	if err != nil {
		if e.rateLimiter != nil {
			if incErr := e.rateLimiter.IncrementLogin(ctx, email, ip); incErr != nil && errors.Is(incErr, rate.ErrRateLimited) {
				e.metricInc(MetricLoginRateLimited)
				e.emitAudit(ctx, auditEventLoginRateLimited, false, "", "", ErrLoginRateLimited, nil)
				return nil, nil, ErrLoginRateLimited
			}
		}
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, "", "", ErrInvalidCredentials, nil)
		return nil, nil, ErrInvalidCredentials
	}

	user, err := e.verifier.lookup(ctx, userID)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, userID, "", err, nil)
		return nil, nil, err
	}
	if !user.Active {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, "", ErrAccountDeactivated, nil)
		return nil, nil, ErrAccountDeactivated
	}

	pair, err := e.issuer.IssuePair(*user)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, user.ID, "", err, nil)
		return nil, nil, err
	}

	if e.rateLimiter != nil {
		if err := e.rateLimiter.ResetLogin(ctx, email, ip); err != nil {
			log.Print("goToken: login limiter reset failed")
		}
	}

	e.metricInc(MetricLoginSuccess)
	e.emitAudit(ctx, auditEventLoginSuccess, true, user.ID, "", nil, nil)

	return pair, user, nil
}

// Verify authorizes a single request: signature and expiry first, then the
// revocation blacklist, then a fresh directory lookup. It returns the merged
// identity so callers keep access to the token's jti and expiry for later
// revocation.
func (e *Engine) Verify(ctx context.Context, tokenStr string) (*Identity, error) {
	if e == nil || e.verifier == nil {
		return nil, ErrEngineNotReady
	}

	start := time.Now()
	identity, err := e.verifier.Verify(ctx, tokenStr)
	e.metrics.Observe(MetricVerifyLatency, time.Since(start))

	if err != nil {
		if errors.Is(err, ErrTokenRevoked) {
			e.metricInc(MetricVerifyRevoked)
		}
		e.metricInc(MetricVerifyFailure)
		e.emitAudit(ctx, auditEventVerifyFailure, false, "", "", err, nil)
		return nil, err
	}

	e.metricInc(MetricVerifySuccess)
	return identity, nil
}

// Logout revokes the presented access token's jti for its remaining lifetime.
// A blacklist outage is logged, never surfaced: the token still dies at its
// natural expiry. An unparseable token returns [ErrTokenInvalid] so transports
// can still clear cookies unconditionally.
func (e *Engine) Logout(ctx context.Context, tokenStr string) error {
	if e == nil || e.codec == nil {
		return ErrEngineNotReady
	}

	claims, err := e.codec.Parse(tokenStr)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	jti := claims.ID
	if jti != "" && claims.ExpiresAt != nil {
		ttl := time.Until(claims.ExpiresAt.Time)
		if err := e.revocations.Record(ctx, jti, ttl); err != nil {
			log.Print("goToken: logout revocation failed")
			e.metricInc(MetricRevocationFailed)
			e.emitAudit(ctx, auditEventRevocationFailed, false, claims.Subject, jti, ErrBlacklistUnavailable, nil)
		} else {
			e.metricInc(MetricTokenRevoked)
			e.emitAudit(ctx, auditEventTokenRevoked, true, claims.Subject, jti, nil, nil)
		}
	}

	e.metricInc(MetricLogout)
	e.emitAudit(ctx, auditEventLogout, true, claims.Subject, jti, nil, nil)
	return nil
}

// BlacklistStats reports the current revocation keyspace size and the backing
// store's memory usage. Admin surface; scans incrementally, never KEYS.
func (e *Engine) BlacklistStats(ctx context.Context) (BlacklistStats, error) {
	if e == nil || e.revocations == nil {
		return BlacklistStats{}, ErrEngineNotReady
	}

	stats, err := e.revocations.Stats(ctx)
	if err != nil {
		return BlacklistStats{}, fmt.Errorf("%w: %v", ErrBlacklistUnavailable, err)
	}

	return BlacklistStats{
		Count:      stats.Count,
		MemoryUsed: stats.MemoryUsed,
	}, nil
}

// Health returns a point-in-time availability check of the revocation store.
func (e *Engine) Health(ctx context.Context) (time.Duration, error) {
	if e == nil || e.revocations == nil {
		return 0, ErrEngineNotReady
	}
	return e.revocations.Ping(ctx)
}
