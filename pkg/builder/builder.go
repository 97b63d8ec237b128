// Package builder assembles llmonitor configuration in code.
package builder

import (
	"github.com/Egham-7/llmonitor-api/internal/config"
	"github.com/Egham-7/llmonitor-api/internal/models"

	"github.com/gofiber/fiber/v2"
)

type Builder struct {
	cfg             *config.Config
	middlewares     []fiber.Handler
	rateLimitConfig *models.RateLimitConfig
	timeoutConfig   *models.TimeoutConfig
}

// New returns a builder for a development server on port 8080 with an
// in-memory query cache. A database and an auth provider must still be set.
func New() *Builder {
	return &Builder{
		cfg: &config.Config{
			Server: models.ServerConfig{
				Port:           "8080",
				AllowedOrigins: "*",
				Environment:    "development",
				LogLevel:       "info",
				RequestTimeout: defaultRequestTimeout,
			},
			Cache: &models.CacheConfig{
				Backend:  models.CacheBackendMemory,
				Capacity: models.DefaultCacheCapacity,
				SoftTTL:  models.DefaultSoftTTL,
				HardTTL:  models.DefaultHardTTL,
			},
		},
		middlewares: []fiber.Handler{},
	}
}

func (b *Builder) Build() *config.Config {
	return b.cfg
}

func (b *Builder) GetMiddlewares() []fiber.Handler {
	return b.middlewares
}

func (b *Builder) GetRateLimitConfig() *models.RateLimitConfig {
	return b.rateLimitConfig
}

func (b *Builder) GetTimeoutConfig() *models.TimeoutConfig {
	return b.timeoutConfig
}
