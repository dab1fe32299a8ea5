package health

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisChecker verifies the summary cache is reachable and writable.
type RedisChecker struct {
	client  redis.UniversalClient
	timeout time.Duration
}

func NewRedisChecker(client redis.UniversalClient, timeout time.Duration) *RedisChecker {
	if timeout == 0 {
		timeout = 3 * time.Second
	}
	return &RedisChecker{client: client, timeout: timeout}
}

func (c *RedisChecker) Name() string { return "redis" }

// Check pings redis and round-trips a short-lived key. The summary cache
// needs writes, not just connectivity, but cache writes are best-effort,
// so a reachable-yet-unwritable redis degrades rather than fails.
func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.client.Ping(ctx).Err(); err != nil {
		return NewUnhealthyResult("redis", err).WithDuration(time.Since(start))
	}

	key := "treviro:healthcheck"
	stamp := time.Now().UnixNano()
	if err := c.client.Set(ctx, key, stamp, 10*time.Second).Err(); err != nil {
		return NewDegradedResult("redis", "reachable but not writable").
			WithDuration(time.Since(start))
	}
	got, err := c.client.Get(ctx, key).Int64()
	if err != nil || got != stamp {
		return NewDegradedResult("redis", "write round-trip failed").
			WithDuration(time.Since(start))
	}
	c.client.Del(ctx, key)

	return NewHealthyResult("redis", "connected").WithDuration(time.Since(start))
}
