// Package cache deduplicates and briefly caches dashboard read queries.
//
// Two lifetimes exist: Soft for data that changes with every new run
// (run lists, app lists) and Hard for slow-moving aggregates (daily usage,
// per-user usage, profile). Concurrent misses for one key share a single
// load.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Egham-7/llmonitor-api/internal/models"
	"github.com/Egham-7/llmonitor-api/internal/observability"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DefaultLoadTimeout bounds a shared load, matching the longest request
// deadline a client may ask for.
const DefaultLoadTimeout = 2 * time.Minute

type Policy int

const (
	Soft Policy = iota
	Hard
)

func (p Policy) String() string {
	if p == Hard {
		return "hard"
	}
	return "soft"
}

type QueryCache struct {
	store   Store
	group   singleflight.Group
	softTTL time.Duration
	hardTTL time.Duration
	metrics *observability.Metrics

	loadTimeout time.Duration

	// generations counts invalidations per key so a load that started
	// before an Invalidate does not store its stale result.
	mu          sync.Mutex
	generations map[string]uint64
}

func New(store Store, softTTL, hardTTL time.Duration, metrics *observability.Metrics) *QueryCache {
	if softTTL <= 0 {
		softTTL = models.DefaultSoftTTL
	}
	if hardTTL <= 0 {
		hardTTL = models.DefaultHardTTL
	}
	return &QueryCache{
		store:   store,
		softTTL: softTTL,
		hardTTL: hardTTL,
		metrics: metrics,

		loadTimeout: DefaultLoadTimeout,
		generations: make(map[string]uint64),
	}
}

// NewFromConfig picks the backend named in cfg. A redis backend requires
// redisClient; a nil cfg yields a memory cache with default lifetimes.
func NewFromConfig(cfg *models.CacheConfig, redisClient *redis.Client, metrics *observability.Metrics) (*QueryCache, error) {
	softTTL := cfg.SoftTTLOrDefault()
	hardTTL := cfg.HardTTLOrDefault()

	backend := models.CacheBackendMemory
	capacity := models.DefaultCacheCapacity
	if cfg != nil {
		if cfg.Backend != "" {
			backend = cfg.Backend
		}
		if cfg.Capacity > 0 {
			capacity = cfg.Capacity
		}
	}

	switch backend {
	case models.CacheBackendRedis:
		if redisClient == nil {
			return nil, fmt.Errorf("redis cache backend requires a redis client")
		}
		fiberlog.Info("Query cache: using redis backend")
		return New(NewRedisStore(redisClient), softTTL, hardTTL, metrics), nil
	case models.CacheBackendMemory:
		fiberlog.Infof("Query cache: using in-memory backend (capacity=%d)", capacity)
		return New(NewMemoryStore(capacity, max(softTTL, hardTTL)), softTTL, hardTTL, metrics), nil
	default:
		return nil, fmt.Errorf("unsupported cache backend: %s", backend)
	}
}

func (c *QueryCache) ttl(policy Policy) time.Duration {
	if policy == Hard {
		return c.hardTTL
	}
	return c.softTTL
}

// Invalidate drops a cached entry so the next read reloads it.
func (c *QueryCache) Invalidate(ctx context.Context, key string) {
	if c == nil {
		return
	}

	c.mu.Lock()
	c.generations[key]++
	c.mu.Unlock()
	c.group.Forget(key)

	if err := c.store.Delete(ctx, key); err != nil {
		fiberlog.Warnf("Query cache: failed to invalidate %s: %v", key, err)
	}
}

// Cached returns the cached value for key or loads, stores and returns it.
// Load errors are never cached. A nil cache always loads.
func Cached[T any](ctx context.Context, c *QueryCache, key string, policy Policy, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	if data, ok, err := c.store.Get(ctx, key); err != nil {
		fiberlog.Warnf("Query cache: read failed for %s, loading directly: %v", key, err)
	} else if ok {
		var value T
		if err := json.Unmarshal(data, &value); err == nil {
			c.metrics.CacheHit(policy.String())
			return value, nil
		}
		fiberlog.Warnf("Query cache: discarding undecodable entry %s", key)
	}

	c.metrics.CacheMiss(policy.String())

	// The shared load outlives any single caller; each caller only stops
	// waiting when its own context ends.
	ch := c.group.DoChan(key, func() (any, error) {
		gen := c.generation(key)
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.loadTimeout)
		defer cancel()

		value, err := load(loadCtx)
		if err != nil {
			return value, err
		}

		data, err := json.Marshal(value)
		if err != nil {
			fiberlog.Warnf("Query cache: failed to encode %s: %v", key, err)
			return value, nil
		}
		if c.generation(key) != gen {
			return value, nil
		}
		if err := c.store.Set(loadCtx, key, data, c.ttl(policy)); err != nil {
			fiberlog.Warnf("Query cache: write failed for %s: %v", key, err)
		}
		return value, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (c *QueryCache) generation(key string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[key]
}

// keyEscaper keeps the separator out of key parts so distinct part lists
// never join to the same key.
var keyEscaper = strings.NewReplacer("%", "%25", ":", "%3A")

// Key joins parts into a cache key, e.g. Key("runs", appID, "llm").
func Key(parts ...any) string {
	strs := make([]string, len(parts))
	for i, part := range parts {
		switch p := part.(type) {
		case nil:
			strs[i] = "-"
		case *int64:
			if p == nil {
				strs[i] = "-"
			} else {
				strs[i] = fmt.Sprint(*p)
			}
		default:
			strs[i] = keyEscaper.Replace(fmt.Sprint(p))
		}
	}
	return strings.Join(strs, ":")
}
