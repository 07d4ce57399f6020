/*
 * @Author: NEFU AB-IN
 * @Date: 2026-03-02 16:52:08
 * @FilePath: \employee-portal\backend\internal\infra\token\refresh_store.go
 * @LastEditTime: 2026-03-05 09:41:50
 */
package token

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRefreshPrefix = "portal:refresh"

var errTokenIDRequired = errors.New("token id required")

// RedisRefreshTokenStore 以 <prefix>:<userID>:<jti> 为键保存刷新令牌指纹，TTL 与令牌 exp 一致。
//
// 刷新时先 Exists 再 Delete 旧 jti、Save 新 jti；登出时 Delete；修改密码时 RevokeAll。
type RedisRefreshTokenStore struct {
	client *redis.Client
	prefix string
}

// NewRedisRefreshTokenStore 构造 Redis 刷新令牌存储。
func NewRedisRefreshTokenStore(client *redis.Client, prefix string) *RedisRefreshTokenStore {
	if prefix == "" {
		prefix = defaultRefreshPrefix
	}
	return &RedisRefreshTokenStore{client: client, prefix: prefix}
}

func (s *RedisRefreshTokenStore) key(userID uint, tokenID string) string {
	return fmt.Sprintf("%s:%d:%s", s.prefix, userID, tokenID)
}

func (s *RedisRefreshTokenStore) ready() error {
	if s == nil || s.client == nil {
		return errors.New("redis client not configured")
	}
	return nil
}

// Save 写入刷新令牌；已过期的令牌仍写入 1s，保证键马上失效。
func (s *RedisRefreshTokenStore) Save(ctx context.Context, userID uint, tokenID string, expiresAt time.Time) error {
	if err := s.ready(); err != nil {
		return err
	}
	if tokenID == "" {
		return errTokenIDRequired
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	return s.client.Set(ctx, s.key(userID, tokenID), "1", ttl).Err()
}

// Delete 移除单个刷新令牌。
func (s *RedisRefreshTokenStore) Delete(ctx context.Context, userID uint, tokenID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if tokenID == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(userID, tokenID)).Err()
}

// Exists 检查刷新令牌是否仍有效。
func (s *RedisRefreshTokenStore) Exists(ctx context.Context, userID uint, tokenID string) (bool, error) {
	if err := s.ready(); err != nil {
		return false, err
	}
	if tokenID == "" {
		return false, nil
	}
	count, err := s.client.Exists(ctx, s.key(userID, tokenID)).Result()
	if err != nil {
		return false, err
	}
	return count == 1, nil
}

// RevokeAll 删除该用户名下全部刷新令牌，用 SCAN 分批遍历避免阻塞 Redis。
func (s *RedisRefreshTokenStore) RevokeAll(ctx context.Context, userID uint) error {
	if err := s.ready(); err != nil {
		return err
	}
	pattern := fmt.Sprintf("%s:%d:*", s.prefix, userID)
	var cursor uint64
	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("scan refresh tokens: %w", err)
		}
		if len(keys) > 0 {
			if err := s.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete refresh tokens: %w", err)
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// MemoryRefreshTokenStore 无 Redis 时的进程内实现，服务重启后令牌全部失效。
type MemoryRefreshTokenStore struct {
	mu     sync.Mutex
	now    func() time.Time
	tokens map[uint]map[string]time.Time
}

// NewMemoryRefreshTokenStore 创建进程内刷新令牌存储。
func NewMemoryRefreshTokenStore() *MemoryRefreshTokenStore {
	return &MemoryRefreshTokenStore{now: time.Now, tokens: make(map[uint]map[string]time.Time)}
}

// Save 存储刷新令牌。
func (s *MemoryRefreshTokenStore) Save(_ context.Context, userID uint, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errTokenIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	bucket, ok := s.tokens[userID]
	if !ok {
		bucket = make(map[string]time.Time)
		s.tokens[userID] = bucket
	}
	bucket[tokenID] = expiresAt
	return nil
}

// Delete 移除刷新令牌，用户名下为空时一并删除外层 map。
func (s *MemoryRefreshTokenStore) Delete(_ context.Context, userID uint, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleteLocked(userID, tokenID)
	return nil
}

func (s *MemoryRefreshTokenStore) deleteLocked(userID uint, tokenID string) {
	if bucket, ok := s.tokens[userID]; ok {
		delete(bucket, tokenID)
		if len(bucket) == 0 {
			delete(s.tokens, userID)
		}
	}
}

// Exists 检测令牌是否存在且未过期，过期条目顺带清理。
func (s *MemoryRefreshTokenStore) Exists(_ context.Context, userID uint, tokenID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiresAt, ok := s.tokens[userID][tokenID]
	if !ok {
		return false, nil
	}
	if s.now().After(expiresAt) {
		s.deleteLocked(userID, tokenID)
		return false, nil
	}
	return true, nil
}

// RevokeAll 删除该用户的全部刷新令牌。
func (s *MemoryRefreshTokenStore) RevokeAll(_ context.Context, userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, userID)
	return nil
}
