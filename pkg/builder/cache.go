package builder

import (
	"time"

	"github.com/Egham-7/llmonitor-api/internal/models"
)

func (b *Builder) WithRedisCache(redisURL string) *Builder {
	b.cache().Backend = models.CacheBackendRedis
	b.cache().RedisURL = redisURL
	return b
}

func (b *Builder) WithMemoryCache(capacity int) *Builder {
	b.cache().Backend = models.CacheBackendMemory
	b.cache().RedisURL = ""
	if capacity > 0 {
		b.cache().Capacity = capacity
	}
	return b
}

// WithCacheTTLs sets the lifetimes of the soft and hard cache policies.
// Zero keeps the current value.
func (b *Builder) WithCacheTTLs(soft, hard time.Duration) *Builder {
	if soft > 0 {
		b.cache().SoftTTL = soft
	}
	if hard > 0 {
		b.cache().HardTTL = hard
	}
	return b
}

func (b *Builder) cache() *models.CacheConfig {
	if b.cfg.Cache == nil {
		b.cfg.Cache = &models.CacheConfig{
			Backend:  models.CacheBackendMemory,
			Capacity: models.DefaultCacheCapacity,
		}
	}
	return b.cfg.Cache
}
