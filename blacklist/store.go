package blacklist

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable wraps any backing-store failure. Callers decide the
// fail-open/fail-closed policy; this package only reports.
var ErrRedisUnavailable = errors.New("blacklist redis unavailable")

const defaultPrefix = "blacklist"

// Stats is a point-in-time view of the revocation keyspace.
type Stats struct {
	Count      int64
	MemoryUsed int64
}

// Store records revoked token identifiers with per-key expiry. An entry never
// outlives the token it revokes: callers pass the token's remaining lifetime
// as the TTL and a non-positive TTL is a no-op.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a revocation store on the given Redis client. An empty
// prefix defaults to "blacklist".
func NewStore(redisClient redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Store{
		redis:  redisClient,
		prefix: prefix,
	}
}

func (s *Store) key(jti string) string {
	return s.prefix + ":" + jti
}

// Record marks jti as revoked for ttl. A ttl <= 0 means the token is already
// expired and unverifiable on its own, so nothing is written.
func (s *Store) Record(ctx context.Context, jti string, ttl time.Duration) error {
	if jti == "" || ttl <= 0 {
		return nil
	}

	if err := s.redis.Set(ctx, s.key(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// IsRevoked reports whether jti has a live revocation entry. On store failure
// it returns false together with a wrapped [ErrRedisUnavailable]; the caller
// applies its availability policy.
func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}

	_, err := s.redis.Get(ctx, s.key(jti)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return true, nil
}

// Stats counts revocation keys with an incremental cursor scan and reads
// used_memory from INFO. This is an admin-only O(n) operation and must not be
// used in request hot paths. A missing or unparseable memory field reports
// zero rather than failing the count.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	pattern := s.prefix + ":*"
	var (
		cursor uint64
		total  int64
	)

	for {
		keys, next, err := s.redis.Scan(ctx, cursor, pattern, 1000).Result()
		if err != nil {
			return Stats{}, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		total += int64(len(keys))
		cursor = next
		if cursor == 0 {
			break
		}
	}

	stats := Stats{Count: total}
	if info, err := s.redis.Info(ctx, "memory").Result(); err == nil {
		stats.MemoryUsed = parseUsedMemory(info)
	}

	return stats, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}

func parseUsedMemory(info string) int64 {
	for _, line := range strings.Split(info, "\n") {
		line = strings.TrimSpace(line)
		value, ok := strings.CutPrefix(line, "used_memory:")
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return 0
		}
		return n
	}
	return 0
}
