package models

import "time"

// CacheBackendType represents the type of cache backend to use
type CacheBackendType string

const (
	CacheBackendRedis  CacheBackendType = "redis"
	CacheBackendMemory CacheBackendType = "memory"
)

const (
	DefaultSoftTTL       = 10 * time.Second
	DefaultHardTTL       = 60 * time.Second
	DefaultCacheCapacity = 1024
)

// CacheConfig holds configuration for the query cache
type CacheConfig struct {
	Backend  CacheBackendType `json:"backend,omitzero" yaml:"backend"`     // "redis" or "memory"
	RedisURL string           `json:"redis_url,omitzero" yaml:"redis_url"` // Required if backend is "redis"
	Capacity int              `json:"capacity,omitzero" yaml:"capacity"`   // LRU size when backend is "memory"

	// Lifetimes for frequently changing and slow-moving queries
	SoftTTL time.Duration `json:"soft_ttl,omitzero" yaml:"soft_ttl"`
	HardTTL time.Duration `json:"hard_ttl,omitzero" yaml:"hard_ttl"`
}

func (c *CacheConfig) SoftTTLOrDefault() time.Duration {
	if c == nil || c.SoftTTL <= 0 {
		return DefaultSoftTTL
	}
	return c.SoftTTL
}

func (c *CacheConfig) HardTTLOrDefault() time.Duration {
	if c == nil || c.HardTTL <= 0 {
		return DefaultHardTTL
	}
	return c.HardTTL
}
