// Package pkg re-exports the configuration types needed to embed the
// llmonitor API in another program.
package pkg

import "github.com/Egham-7/llmonitor-api/internal/models"

type (
	ServerConfig    = models.ServerConfig
	DatabaseConfig  = models.DatabaseConfig
	DatabaseType    = models.DatabaseType
	CacheConfig     = models.CacheConfig
	AuthConfig      = models.AuthConfig
	StripeConfig    = models.StripeConfig
	FeedbackConfig  = models.FeedbackConfig
	RateLimitConfig = models.RateLimitConfig
	TimeoutConfig   = models.TimeoutConfig
)

const (
	PostgreSQL = models.PostgreSQL
	MySQL      = models.MySQL
	SQLite     = models.SQLite
	ClickHouse = models.ClickHouse
)
