package goToken

import (
	"context"
	"errors"

	"github.com/MrEthical07/goToken/blacklist"
	internalaudit "github.com/MrEthical07/goToken/internal/audit"
	"github.com/MrEthical07/goToken/internal/lock"
	"github.com/MrEthical07/goToken/internal/rate"
	"github.com/MrEthical07/goToken/jwt"
	"github.com/redis/go-redis/v9"
)

// Builder assembles an [Engine] from a config, a Redis client, and the two
// external collaborators. Each builder instance builds at most once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	directory   UserDirectory
	credentials CredentialVerifier
	auditSink   AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the builder's config with a defensive copy of cfg.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the Redis client backing the blacklist, refresh lock, and
// rate limiter.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserDirectory sets the account lookup collaborator. Required.
func (b *Builder) WithUserDirectory(d UserDirectory) *Builder {
	b.directory = d
	return b
}

// WithCredentialVerifier sets the login credential collaborator. Optional;
// an Engine without one serves verify/refresh/logout but rejects Login.
func (b *Builder) WithCredentialVerifier(v CredentialVerifier) *Builder {
	b.credentials = v
	return b
}

// WithAuditSink sets the audit event consumer used when audit is enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithMetricsEnabled toggles metric collection.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the verify latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine. It fails on a
// missing Redis client or user directory, or an invalid config.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.directory == nil {
		return nil, errors.New("user directory required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	codec, err := jwt.NewManager(jwt.Config{
		SigningMethod: jwt.SigningMethod(cfg.JWT.SigningMethod),
		PrivateKey:    cloneBytes(cfg.JWT.PrivateKey),
		PublicKey:     cloneBytes(cfg.JWT.PublicKey),
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	revocations := blacklist.NewStore(b.redis, cfg.Blacklist.RedisPrefix)

	engine := &Engine{
		config:      cfg,
		codec:       codec,
		revocations: revocations,
		directory:   b.directory,
		credentials: b.credentials,
		inflight:    make(map[string]*inflightRefresh),
	}

	engine.issuer = NewIssuer(codec, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)

	verifier := NewVerifier(codec, revocations, b.directory, cfg.Blacklist.FailClosed)
	verifier.onStoreError = func(err error) {
		engine.metricInc(MetricBlacklistFailOpen)
		engine.emitAudit(context.Background(), auditEventBlacklistFailOpen, false, "", "", ErrBlacklistUnavailable, nil)
	}
	engine.verifier = verifier

	if cfg.Refresh.DistributedLock {
		engine.refreshLock = lock.New(b.redis, cfg.Refresh.LockPrefix)
	}

	if cfg.Security.EnableRefreshThrottle || cfg.Security.EnableIPThrottle || cfg.Security.MaxLoginAttempts > 0 {
		engine.rateLimiter = rate.New(b.redis, rate.Config{
			EnableIPThrottle:        cfg.Security.EnableIPThrottle,
			EnableRefreshThrottle:   cfg.Security.EnableRefreshThrottle,
			MaxLoginAttempts:        cfg.Security.MaxLoginAttempts,
			LoginCooldownDuration:   cfg.Security.LoginCooldownDuration,
			MaxRefreshAttempts:      cfg.Security.MaxRefreshAttempts,
			RefreshCooldownDuration: cfg.Security.RefreshCooldownDuration,
		})
	}

	engine.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)
	engine.metrics = NewMetrics(cfg.Metrics)

	b.built = true
	return engine, nil
}
