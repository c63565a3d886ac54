package goToken

import (
	"net/http"
	"testing"
	"time"
)

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JWT.PrivateKey = []byte("secret")

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}

func TestDefaultConfigHardenedBaseline(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.JWT.AccessTTL != time.Hour || cfg.JWT.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("unexpected default TTLs: %v / %v", cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	}
	if cfg.Blacklist.RedisPrefix != "blacklist" {
		t.Fatalf("unexpected blacklist prefix %q", cfg.Blacklist.RedisPrefix)
	}
	if cfg.Blacklist.FailClosed {
		t.Fatal("expected fail-open revocation checks by default")
	}
	if !cfg.Cookie.Secure || cfg.Cookie.SameSite != http.SameSiteStrictMode {
		t.Fatal("expected secure strict cookies by default")
	}
	if cfg.Cookie.RefreshName != "refresh_token" || cfg.Cookie.AccessName != "access_token" {
		t.Fatalf("unexpected cookie names %q/%q", cfg.Cookie.RefreshName, cfg.Cookie.AccessName)
	}
	if cfg.Refresh.RevocationDelay <= 0 {
		t.Fatal("expected a positive default revocation delay")
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	base := func() Config {
		cfg := DefaultConfig()
		cfg.JWT.PrivateKey = []byte("secret")
		return cfg
	}

	cases := []struct {
		name   string
		mutate func(cfg *Config)
	}{
		{"zero access ttl", func(cfg *Config) { cfg.JWT.AccessTTL = 0 }},
		{"refresh not longer than access", func(cfg *Config) { cfg.JWT.RefreshTTL = cfg.JWT.AccessTTL }},
		{"hs256 without key", func(cfg *Config) { cfg.JWT.PrivateKey = nil }},
		{"ed25519 without public key", func(cfg *Config) { cfg.JWT.SigningMethod = "ed25519" }},
		{"unknown signing method", func(cfg *Config) { cfg.JWT.SigningMethod = "rs512" }},
		{"negative revocation delay", func(cfg *Config) { cfg.Refresh.RevocationDelay = -time.Second }},
		{"revocation delay past access ttl", func(cfg *Config) { cfg.Refresh.RevocationDelay = 2 * time.Hour }},
		{"lock without ttl", func(cfg *Config) {
			cfg.Refresh.DistributedLock = true
			cfg.Refresh.LockTTL = 0
		}},
		{"refresh throttle without budget", func(cfg *Config) {
			cfg.Security.EnableRefreshThrottle = true
			cfg.Security.MaxRefreshAttempts = 0
		}},
		{"zero login attempts", func(cfg *Config) { cfg.Security.MaxLoginAttempts = 0 }},
		{"empty cookie name", func(cfg *Config) { cfg.Cookie.RefreshName = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := base()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestWithConfigCopiesKeyMaterial(t *testing.T) {
	cfg := DefaultConfig()
	cfg.JWT.PrivateKey = []byte("secret")

	b := New().WithConfig(cfg)

	// Mutating the caller's slice must not reach the builder's copy.
	cfg.JWT.PrivateKey[0] = 'X'
	if b.config.JWT.PrivateKey[0] == 'X' {
		t.Fatal("expected builder to hold a defensive copy of the key")
	}
}

func TestBuilderRequiresCollaborators(t *testing.T) {
	cfg := testConfig()

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected error without redis client")
	}

	_, rdb := newTestRedis(t)
	if _, err := New().WithConfig(cfg).WithRedis(rdb).Build(); err == nil {
		t.Fatal("expected error without user directory")
	}
}

func TestBuilderBuildsOnce(t *testing.T) {
	dir := newMockDirectory()
	seedAlice(dir, nil)
	_, rdb := newTestRedis(t)

	b := New().WithConfig(testConfig()).WithRedis(rdb).WithUserDirectory(dir)
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}
