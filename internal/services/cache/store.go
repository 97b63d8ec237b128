package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "llmonitor:query:"

// Store is the byte-level backend behind QueryCache.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// RedisStore shares cached query results across API replicas.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete cache key %s: %w", key, err)
	}
	return nil
}

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryStore is a bounded in-process LRU. Entries carry their own deadline
// because soft and hard lifetimes share one LRU; maxTTL only bounds how long
// an entry can linger once expired.
type MemoryStore struct {
	lru *expirable.LRU[string, memoryEntry]
	now func() time.Time
}

func NewMemoryStore(capacity int, maxTTL time.Duration) *MemoryStore {
	return &MemoryStore{
		lru: expirable.NewLRU[string, memoryEntry](capacity, nil, maxTTL),
		now: time.Now,
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	entry, ok := s.lru.Get(key)
	if !ok {
		return nil, false, nil
	}
	if !s.now().Before(entry.expiresAt) {
		s.lru.Remove(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	s.lru.Add(key, memoryEntry{value: value, expiresAt: s.now().Add(ttl)})
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.lru.Remove(key)
	return nil
}

func (s *MemoryStore) Len() int {
	return s.lru.Len()
}
