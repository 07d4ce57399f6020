/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-03 10:05:44
 * @FilePath: \employee-portal\backend\internal\infra\ratelimit\limiter.go
 * @LastEditTime: 2026-03-03 10:05:49
 */
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// AllowResult 一次计数的结果。Remaining 为 -1 表示不限量。
type AllowResult struct {
	Allowed    bool
	RetryAfter time.Duration
	Remaining  int
}

// Limiter 固定窗口计数限流。
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (AllowResult, error)
}

// QuotaKey 生成“功能 + 用户”维度的配额 key，例如 textgen:mood:42。
func QuotaKey(feature string, userID uint) string {
	return fmt.Sprintf("textgen:%s:%d", feature, userID)
}

func unlimited() AllowResult {
	return AllowResult{Allowed: true, Remaining: -1}
}

// allowScript 仅在 key 首次创建（或丢失 TTL）时设置过期时间，窗口不随后续请求滑动。
var allowScript = redis.NewScript(`
local count = redis.call('INCR', KEYS[1])
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`)

// RedisLimiter 基于 INCR + PEXPIRE 的固定窗口计数，多实例共享额度。
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

// NewRedisLimiter 构造 Redis 限流器，prefix 为空时使用 ratelimit。
func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, prefix: prefix}
}

// Allow 计数 +1，超出 limit 时返回到窗口结束的剩余时间。
func (r *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (AllowResult, error) {
	if limit <= 0 || r == nil || r.client == nil {
		return unlimited(), nil
	}
	if window <= 0 {
		window = time.Minute
	}

	namespaced := r.prefix + ":" + key
	values, err := allowScript.Run(ctx, r.client, []string{namespaced}, window.Milliseconds()).Int64Slice()
	if err != nil {
		return AllowResult{}, fmt.Errorf("ratelimit incr: %w", err)
	}
	if len(values) != 2 {
		return AllowResult{}, fmt.Errorf("ratelimit script: unexpected reply %v", values)
	}

	count := int(values[0])
	if count > limit {
		return AllowResult{Allowed: false, RetryAfter: time.Duration(values[1]) * time.Millisecond}, nil
	}
	return AllowResult{Allowed: true, Remaining: limit - count}, nil
}

// sweepThreshold 条目数超过该值时顺带清理已过期的窗口。
const sweepThreshold = 1024

// MemoryLimiter 进程内实现，Redis 未配置时使用，也用于单元测试。
type MemoryLimiter struct {
	mu        sync.Mutex
	now       func() time.Time
	store     map[string]entry
	nextSweep int
}

type entry struct {
	count   int
	expires time.Time
}

// NewMemoryLimiter 构建内存限流器。
func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{now: time.Now, store: make(map[string]entry), nextSweep: sweepThreshold}
}

// Allow 与 RedisLimiter 语义一致：窗口从首次计数开始，到期后重新计数。
func (m *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (AllowResult, error) {
	if limit <= 0 || m == nil {
		return unlimited(), nil
	}
	if window <= 0 {
		window = time.Minute
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if len(m.store) >= m.nextSweep {
		m.sweepLocked(now)
	}
	ent, ok := m.store[key]
	if !ok || !now.Before(ent.expires) {
		ent = entry{expires: now.Add(window)}
	}
	ent.count++
	m.store[key] = ent

	if ent.count > limit {
		return AllowResult{Allowed: false, RetryAfter: ent.expires.Sub(now)}, nil
	}
	return AllowResult{Allowed: true, Remaining: limit - ent.count}, nil
}

// sweepLocked 删除所有已过期条目，并把下次清理阈值设为存活条目数的两倍。
func (m *MemoryLimiter) sweepLocked(now time.Time) {
	for key, ent := range m.store {
		if !now.Before(ent.expires) {
			delete(m.store, key)
		}
	}
	m.nextSweep = max(sweepThreshold, 2*len(m.store))
}
