package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrRateLimited is returned once an identifier exhausted its attempt budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable wraps transport failures talking to Redis.
	ErrRedisUnavailable = errors.New("redis unavailable")
)

const loginKeyPrefix = "blog:login:fail:"

// recordFailureLua increments the counter and arms its TTL in one step. A
// counter left without a TTL is re-armed on the next failure.
var recordFailureLua = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// LoginLimiter counts failed logins per identifier in Redis. Counters expire
// after the cooldown, so a locked identifier unlocks on its own.
type LoginLimiter struct {
	redis       redis.UniversalClient
	maxAttempts int
	cooldown    time.Duration
}

// NewLoginLimiter creates a limiter backed by the given Redis client.
func NewLoginLimiter(client redis.UniversalClient, maxAttempts int, cooldown time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if cooldown <= 0 {
		cooldown = 15 * time.Minute
	}
	return &LoginLimiter{redis: client, maxAttempts: maxAttempts, cooldown: cooldown}
}

// Check returns ErrRateLimited when the identifier has no attempts left.
func (l *LoginLimiter) Check(ctx context.Context, identifier string) error {
	count, err := l.redis.Get(ctx, loginKey(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.maxAttempts) {
		return ErrRateLimited
	}
	return nil
}

// RecordFailure increments the identifier's failure counter, starting the
// cooldown window on the first failure.
func (l *LoginLimiter) RecordFailure(ctx context.Context, identifier string) error {
	count, err := recordFailureLua.Run(ctx, l.redis, []string{loginKey(identifier)}, l.cooldown.Milliseconds()).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if count > int64(l.maxAttempts) {
		return ErrRateLimited
	}
	return nil
}

// Reset clears the identifier's failure counter.
func (l *LoginLimiter) Reset(ctx context.Context, identifier string) error {
	if err := l.redis.Del(ctx, loginKey(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Attempts returns the current failure count for the identifier.
func (l *LoginLimiter) Attempts(ctx context.Context, identifier string) (int, error) {
	count, err := l.redis.Get(ctx, loginKey(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return int(count), nil
}

func loginKey(identifier string) string {
	return loginKeyPrefix + strings.ToLower(strings.TrimSpace(identifier))
}
