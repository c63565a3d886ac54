package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotHeld is returned by Release when the lock expired or was taken by
	// another owner before release.
	ErrNotHeld = errors.New("lock not held")
	// ErrRedisUnavailable wraps backend failures during acquire/release.
	ErrRedisUnavailable = errors.New("lock redis unavailable")
)

const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
  return redis.call("DEL", KEYS[1])
end
return 0
`

var releaseLua = redis.NewScript(releaseScript)

// Lock is a short-lived Redis mutual-exclusion primitive. One key guards one
// refresh jti across replicas; the value is a random owner token so a stale
// holder can never release a successor's lock.
type Lock struct {
	redis  redis.UniversalClient
	prefix string
}

// New creates a Lock with the given key prefix (default "lock").
func New(redisClient redis.UniversalClient, prefix string) *Lock {
	if prefix == "" {
		prefix = "lock"
	}
	return &Lock{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (l *Lock) key(name string) string {
	return l.prefix + ":" + name
}

// TryAcquire attempts a single SET NX PX. It returns the owner token and true
// on success, or "" and false when the lock is held elsewhere.
func (l *Lock) TryAcquire(ctx context.Context, name string, ttl time.Duration) (string, bool, error) {
	owner := uuid.NewString()

	ok, err := l.redis.SetNX(ctx, l.key(name), owner, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if !ok {
		return "", false, nil
	}

	return owner, true, nil
}

// Acquire polls TryAcquire with a short backoff until the lock is obtained,
// the wait budget runs out, or ctx is done. It returns ("", false, nil) on a
// clean wait timeout so callers can apply their own contention policy.
func (l *Lock) Acquire(ctx context.Context, name string, ttl, wait time.Duration) (string, bool, error) {
	deadline := time.Now().Add(wait)
	const pollInterval = 25 * time.Millisecond

	for {
		owner, ok, err := l.TryAcquire(ctx, name, ttl)
		if err != nil {
			return "", false, err
		}
		if ok {
			return owner, true, nil
		}
		if time.Now().After(deadline) {
			return "", false, nil
		}

		select {
		case <-ctx.Done():
			return "", false, ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// Release deletes the lock only if it is still owned by the given token.
func (l *Lock) Release(ctx context.Context, name, owner string) error {
	deleted, err := releaseLua.Run(ctx, l.redis, []string{l.key(name)}, owner).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if deleted == 0 {
		return ErrNotHeld
	}
	return nil
}
