package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestMemoryLimiterWindow(t *testing.T) {
	limiter := NewMemoryLimiter()
	current := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }

	ctx := context.Background()
	key := QuotaKey("wellness", 7)

	for i := 0; i < 2; i++ {
		res, err := limiter.Allow(ctx, key, 2, time.Hour)
		if err != nil || !res.Allowed {
			t.Fatalf("call %d should pass: %+v %v", i, res, err)
		}
	}
	res, _ := limiter.Allow(ctx, key, 2, time.Hour)
	if res.Allowed {
		t.Fatalf("third call must be rejected")
	}
	if res.RetryAfter != time.Hour {
		t.Fatalf("expected retry after 1h, got %s", res.RetryAfter)
	}

	current = current.Add(time.Hour)
	res, _ = limiter.Allow(ctx, key, 2, time.Hour)
	if !res.Allowed || res.Remaining != 1 {
		t.Fatalf("window should reset, got %+v", res)
	}
}

func TestLimiterUnlimitedWhenLimitZero(t *testing.T) {
	res, err := NewMemoryLimiter().Allow(context.Background(), "k", 0, time.Minute)
	if err != nil || !res.Allowed || res.Remaining != -1 {
		t.Fatalf("expected unlimited result, got %+v %v", res, err)
	}
}

func TestRedisLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	limiter := NewRedisLimiter(client, "test")
	ctx := context.Background()

	first, err := limiter.Allow(ctx, "textgen:mood:1", 1, time.Minute)
	if err != nil || !first.Allowed || first.Remaining != 0 {
		t.Fatalf("first call should pass, got %+v %v", first, err)
	}
	second, err := limiter.Allow(ctx, "textgen:mood:1", 1, time.Minute)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if second.Allowed {
		t.Fatalf("second call should be limited")
	}
	if second.RetryAfter <= 0 || second.RetryAfter > time.Minute {
		t.Fatalf("unexpected retry after %s", second.RetryAfter)
	}

	mr.FastForward(time.Minute + time.Second)
	third, err := limiter.Allow(ctx, "textgen:mood:1", 1, time.Minute)
	if err != nil || !third.Allowed {
		t.Fatalf("expected key to expire, got %+v %v", third, err)
	}
}

func TestLimitersKeepFixedWindowUnderSustainedTraffic(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	redisLimiter := NewRedisLimiter(client, "test")
	memoryLimiter := NewMemoryLimiter()
	current := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	memoryLimiter.now = func() time.Time { return current }

	ctx := context.Background()
	const window = 10 * time.Second
	steps := []struct {
		advance time.Duration
		allowed bool
	}{
		{0, true},
		{0, true},
		{6 * time.Second, false},
		{6 * time.Second, true},
	}
	for i, step := range steps {
		mr.FastForward(step.advance)
		current = current.Add(step.advance)

		fromRedis, err := redisLimiter.Allow(ctx, "auth:login:10.0.0.1", 2, window)
		if err != nil {
			t.Fatalf("step %d redis: %v", i, err)
		}
		fromMemory, _ := memoryLimiter.Allow(ctx, "auth:login:10.0.0.1", 2, window)
		if fromRedis.Allowed != step.allowed || fromMemory.Allowed != step.allowed {
			t.Fatalf("step %d: expected allowed=%v, redis=%+v memory=%+v", i, step.allowed, fromRedis, fromMemory)
		}
		if !step.allowed && fromRedis.RetryAfter != 4*time.Second {
			t.Fatalf("step %d: retry after should count down from the first hit, got %s", i, fromRedis.RetryAfter)
		}
	}
}

func TestRedisLimiterRestoresMissingTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	if err := mr.Set("test:k", "5"); err != nil {
		t.Fatalf("seed key: %v", err)
	}
	res, err := NewRedisLimiter(client, "test").Allow(context.Background(), "k", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if res.Allowed {
		t.Fatalf("count above limit must be rejected")
	}
	if ttl := mr.TTL("test:k"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected ttl to be restored, got %s", ttl)
	}
}

func TestMemoryLimiterSweepsExpiredKeys(t *testing.T) {
	limiter := NewMemoryLimiter()
	current := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return current }
	ctx := context.Background()

	for i := 0; i < sweepThreshold; i++ {
		if _, err := limiter.Allow(ctx, fmt.Sprintf("ip:%d", i), 5, time.Minute); err != nil {
			t.Fatalf("allow: %v", err)
		}
	}
	if len(limiter.store) != sweepThreshold {
		t.Fatalf("expected %d entries, got %d", sweepThreshold, len(limiter.store))
	}

	current = current.Add(2 * time.Minute)
	if _, err := limiter.Allow(ctx, "ip:fresh", 5, time.Minute); err != nil {
		t.Fatalf("allow: %v", err)
	}
	if len(limiter.store) != 1 {
		t.Fatalf("expired entries should be swept, %d left", len(limiter.store))
	}
	if _, ok := limiter.store["ip:fresh"]; !ok {
		t.Fatalf("live entry must survive the sweep")
	}
}
