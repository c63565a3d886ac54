package goToken

import (
	"errors"
	"net/http"
	"time"
)

// Config defines a public type used by goToken APIs.
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	JWT       JWTConfig
	Blacklist BlacklistConfig
	Refresh   RefreshConfig
	Cookie    CookieConfig
	Security  SecurityConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig defines a public type used by goToken APIs.
//
// JWTConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type JWTConfig struct {
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SigningMethod string // "hs256" (default), "ed25519" optional
	PrivateKey    []byte
	PublicKey     []byte
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
BLACKLIST CONFIG
====================================
*/

// BlacklistConfig defines a public type used by goToken APIs.
//
// BlacklistConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type BlacklistConfig struct {
	RedisPrefix string
	// FailClosed rejects tokens when the revocation store is unreachable.
	// Default false: a store outage must not lock every holder of a valid
	// token out; a missed revocation heals at natural expiry.
	FailClosed bool
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig defines a public type used by goToken APIs.
//
// RefreshConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RefreshConfig struct {
	// RevocationDelay postpones blacklisting the rotated-out refresh jti so
	// the new pair can land on the client transport first. A mitigation
	// tunable, not a correctness guarantee.
	RevocationDelay time.Duration
	// DistributedLock serializes the mint/revoke sequence per jti across
	// replicas via a short-lived Redis lock.
	DistributedLock bool
	LockTTL         time.Duration
	LockWait        time.Duration
	LockPrefix      string
}

/*
====================================
COOKIE CONFIG
====================================
*/

// CookieConfig defines a public type used by goToken APIs.
//
// CookieConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CookieConfig struct {
	RefreshName string
	AccessName  string
	Path        string
	Domain      string
	// Secure and SameSite=Strict belong in production; development relaxes
	// both so plain-HTTP localhost flows work.
	Secure   bool
	SameSite http.SameSite
}

/*
====================================
SECURITY CONFIG
====================================
*/

// SecurityConfig defines a public type used by goToken APIs.
//
// SecurityConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type SecurityConfig struct {
	EnableIPThrottle        bool
	EnableRefreshThrottle   bool
	MaxLoginAttempts        int
	LoginCooldownDuration   time.Duration
	MaxRefreshAttempts      int
	RefreshCooldownDuration time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig defines a public type used by goToken APIs.
//
// AuditConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	IncludeIP  bool
}

// MetricsConfig defines a public type used by goToken APIs.
//
// MetricsConfig instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:     time.Hour,
			RefreshTTL:    7 * 24 * time.Hour,
			SigningMethod: "hs256",
		},
		Blacklist: BlacklistConfig{
			RedisPrefix: "blacklist",
			FailClosed:  false,
		},
		Refresh: RefreshConfig{
			RevocationDelay: 2 * time.Second,
			DistributedLock: false,
			LockTTL:         10 * time.Second,
			LockWait:        5 * time.Second,
			LockPrefix:      "refreshlock",
		},
		Cookie: CookieConfig{
			RefreshName: "refresh_token",
			AccessName:  "access_token",
			Path:        "/auth",
			Secure:      true,
			SameSite:    http.SameSiteStrictMode,
		},
		Security: SecurityConfig{
			EnableIPThrottle:        false,
			EnableRefreshThrottle:   false,
			MaxLoginAttempts:        10,
			LoginCooldownDuration:   time.Minute,
			MaxRefreshAttempts:      30,
			RefreshCooldownDuration: time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
			IncludeIP:  true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// DefaultConfig returns the hardened baseline configuration. Callers override
// fields and pass the result to [Builder.WithConfig].
func DefaultConfig() Config {
	return defaultConfig()
}

// Validate checks cross-field consistency. Builder.Build calls it; exposed so
// callers can fail fast on hand-assembled configs.
func (c *Config) Validate() error {
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.JWT.RefreshTTL <= c.JWT.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	switch c.JWT.SigningMethod {
	case "hs256":
		if len(c.JWT.PrivateKey) == 0 {
			return errors.New("hs256 requires JWT.PrivateKey")
		}
	case "ed25519":
		if len(c.JWT.PrivateKey) == 0 || len(c.JWT.PublicKey) == 0 {
			return errors.New("ed25519 requires JWT.PrivateKey and JWT.PublicKey")
		}
	default:
		return errors.New("unsupported signing method")
	}
	if c.Refresh.RevocationDelay < 0 {
		return errors.New("revocation delay must not be negative")
	}
	if c.Refresh.RevocationDelay >= c.JWT.AccessTTL {
		return errors.New("revocation delay must be shorter than the access TTL")
	}
	if c.Refresh.DistributedLock {
		if c.Refresh.LockTTL <= 0 {
			return errors.New("distributed lock requires a positive LockTTL")
		}
		if c.Refresh.LockWait < 0 {
			return errors.New("lock wait must not be negative")
		}
	}
	if c.Security.EnableRefreshThrottle && c.Security.MaxRefreshAttempts <= 0 {
		return errors.New("refresh throttle requires MaxRefreshAttempts > 0")
	}
	if c.Security.MaxLoginAttempts <= 0 {
		return errors.New("MaxLoginAttempts must be positive")
	}
	if c.Cookie.RefreshName == "" || c.Cookie.AccessName == "" {
		return errors.New("cookie names must not be empty")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.PrivateKey = cloneBytes(cfg.JWT.PrivateKey)
	out.JWT.PublicKey = cloneBytes(cfg.JWT.PublicKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
