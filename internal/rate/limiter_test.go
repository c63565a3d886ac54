package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, cfg), mr
}

func TestLoginLimiterBlocksAfterMaxAttempts(t *testing.T) {
	l, _ := newTestLimiter(t, Config{
		MaxLoginAttempts:      3,
		LoginCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := l.IncrementLogin(ctx, "alice@example.com", ""); err != nil {
			t.Fatalf("attempt %d: unexpected error %v", i, err)
		}
		if err := l.CheckLogin(ctx, "alice@example.com", ""); err != nil {
			t.Fatalf("attempt %d: expected check to pass, got %v", i, err)
		}
	}

	if err := l.IncrementLogin(ctx, "alice@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
	if err := l.CheckLogin(ctx, "alice@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited from check, got %v", err)
	}

	// A different identifier is unaffected.
	if err := l.CheckLogin(ctx, "bob@example.com", ""); err != nil {
		t.Fatalf("expected bob to be unaffected, got %v", err)
	}
}

func TestLoginCounterExpiresWithCooldown(t *testing.T) {
	l, mr := newTestLimiter(t, Config{
		MaxLoginAttempts:      1,
		LoginCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	_ = l.IncrementLogin(ctx, "alice@example.com", "")
	if err := l.IncrementLogin(ctx, "alice@example.com", ""); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := l.CheckLogin(ctx, "alice@example.com", ""); err != nil {
		t.Fatalf("expected window to reset after cooldown, got %v", err)
	}
}

func TestResetLoginClearsCounters(t *testing.T) {
	l, _ := newTestLimiter(t, Config{
		EnableIPThrottle:      true,
		MaxLoginAttempts:      1,
		LoginCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	_ = l.IncrementLogin(ctx, "alice@example.com", "10.0.0.1")
	_ = l.IncrementLogin(ctx, "alice@example.com", "10.0.0.1")

	if err := l.ResetLogin(ctx, "alice@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("ResetLogin failed: %v", err)
	}
	if err := l.CheckLogin(ctx, "alice@example.com", "10.0.0.1"); err != nil {
		t.Fatalf("expected counters cleared, got %v", err)
	}
}

func TestIPThrottleSharesBudgetAcrossIdentifiers(t *testing.T) {
	l, _ := newTestLimiter(t, Config{
		EnableIPThrottle:      true,
		MaxLoginAttempts:      2,
		LoginCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	_ = l.IncrementLogin(ctx, "alice@example.com", "10.0.0.1")
	_ = l.IncrementLogin(ctx, "bob@example.com", "10.0.0.1")
	if err := l.IncrementLogin(ctx, "carol@example.com", "10.0.0.1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected IP budget to trip, got %v", err)
	}
}

func TestCheckRefreshDisabledByDefault(t *testing.T) {
	l, _ := newTestLimiter(t, Config{
		MaxRefreshAttempts:      1,
		RefreshCooldownDuration: time.Minute,
	})

	for i := 0; i < 5; i++ {
		if err := l.CheckRefresh(context.Background(), "jti-1"); err != nil {
			t.Fatalf("expected disabled throttle to pass, got %v", err)
		}
	}
}

func TestCheckRefreshEnforcesBudget(t *testing.T) {
	l, _ := newTestLimiter(t, Config{
		EnableRefreshThrottle:   true,
		MaxRefreshAttempts:      2,
		RefreshCooldownDuration: time.Minute,
	})
	ctx := context.Background()

	if err := l.CheckRefresh(ctx, "jti-1"); err != nil {
		t.Fatalf("first refresh: %v", err)
	}
	if err := l.CheckRefresh(ctx, "jti-1"); err != nil {
		t.Fatalf("second refresh: %v", err)
	}
	if err := l.CheckRefresh(ctx, "jti-1"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	// Independent jti keeps its own window.
	if err := l.CheckRefresh(ctx, "jti-2"); err != nil {
		t.Fatalf("expected independent jti budget, got %v", err)
	}
}

func TestLimiterWrapsBackendFailure(t *testing.T) {
	l, mr := newTestLimiter(t, Config{
		EnableRefreshThrottle:   true,
		MaxLoginAttempts:        1,
		LoginCooldownDuration:   time.Minute,
		MaxRefreshAttempts:      1,
		RefreshCooldownDuration: time.Minute,
	})
	mr.Close()
	ctx := context.Background()

	if err := l.CheckLogin(ctx, "alice@example.com", ""); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from CheckLogin, got %v", err)
	}
	if err := l.CheckRefresh(ctx, "jti-1"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable from CheckRefresh, got %v", err)
	}
}
