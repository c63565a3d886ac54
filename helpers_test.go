package goToken

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// mockDirectory is an in-memory UserDirectory with lookup counting and an
// optional gate for serializing concurrent flows in tests.
type mockDirectory struct {
	mu    sync.RWMutex
	users map[string]UserSnapshot

	lookups atomic.Int64

	// gate, when non-nil, blocks every GetUserByID until released once.
	gate     chan struct{}
	gateOnce sync.Once

	// failNext errors the next lookup.
	failNext atomic.Bool
	failErr  error

	// panicNext panics the next lookup, like a buggy caller-supplied
	// implementation would.
	panicNext atomic.Bool
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		users: make(map[string]UserSnapshot),
	}
}

func (d *mockDirectory) put(u UserSnapshot) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[u.ID] = u
}

func (d *mockDirectory) remove(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.users, id)
}

func (d *mockDirectory) deactivate(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u := d.users[id]
	u.Active = false
	d.users[id] = u
}

func (d *mockDirectory) release() {
	d.gateOnce.Do(func() { close(d.gate) })
}

func (d *mockDirectory) GetUserByID(ctx context.Context, id string) (*UserSnapshot, error) {
	d.lookups.Add(1)

	if d.gate != nil {
		select {
		case <-d.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if d.panicNext.CompareAndSwap(true, false) {
		panic("mock directory lookup panic")
	}

	if d.failNext.CompareAndSwap(true, false) {
		return nil, d.failErr
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	u, ok := d.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	return &u, nil
}

// mockCredentials verifies plaintext passwords against the seeded directory.
type mockCredentials struct {
	mu        sync.RWMutex
	passwords map[string]string // email -> password
	ids       map[string]string // email -> user id
}

func newMockCredentials() *mockCredentials {
	return &mockCredentials{
		passwords: make(map[string]string),
		ids:       make(map[string]string),
	}
}

func (c *mockCredentials) put(email, password, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.passwords[email] = password
	c.ids[email] = userID
}

func (c *mockCredentials) VerifyCredentials(_ context.Context, email, password string) (string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stored, ok := c.passwords[email]
	if !ok || stored != password {
		return "", ErrInvalidCredentials
	}
	return c.ids[email], nil
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.PrivateKey = []byte("test-secret")
	cfg.Metrics.Enabled = true
	cfg.Refresh.RevocationDelay = 0
	return cfg
}

func seedAlice(dir *mockDirectory, creds *mockCredentials) {
	dir.put(UserSnapshot{
		ID:     "user-1",
		Email:  "alice@example.com",
		Name:   "Alice",
		Role:   RoleAdmin,
		Active: true,
	})
	if creds != nil {
		creds.put("alice@example.com", "correct-password-123", "user-1")
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	return mr, redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func newTestEngine(t *testing.T, cfg Config, dir *mockDirectory, creds *mockCredentials) (*Engine, *miniredis.Miniredis) {
	t.Helper()

	mr, rdb := newTestRedis(t)

	builder := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithUserDirectory(dir)
	if creds != nil {
		builder = builder.WithCredentialVerifier(creds)
	}

	engine, err := builder.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	return engine, mr
}

// waitRevocations blocks until all scheduled background revocations settle.
func waitRevocations(e *Engine) {
	e.revokeWG.Wait()
}

func loginAlice(t *testing.T, engine *Engine) *TokenPair {
	t.Helper()

	pair, user, err := engine.Login(context.Background(), "alice@example.com", "correct-password-123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if user == nil || user.ID != "user-1" {
		t.Fatalf("unexpected login user: %+v", user)
	}
	return pair
}

func counterValue(t *testing.T, engine *Engine, id MetricID) uint64 {
	t.Helper()
	return engine.MetricsSnapshot().Counters[id]
}
