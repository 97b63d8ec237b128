package database

import (
	"fmt"

	"github.com/Egham-7/llmonitor-api/internal/models"

	"gorm.io/driver/clickhouse"
)

// newClickHouse opens the analytics store variant. Tables are created by
// RunClickHouseMigrations rather than AutoMigrate.
func newClickHouse(config models.DatabaseConfig) (*DB, error) {
	dialector := clickhouse.New(clickhouse.Config{
		DSN:                clickhouseDSN(config),
		DefaultCompression: "LZ4",
		DefaultIndexType:   "minmax",
		DefaultGranularity: 3,
	})

	gormCfg := gormConfig()
	// The driver's prepared statement support is incomplete.
	gormCfg.PrepareStmt = false

	return open(dialector, config, "clickhouse", gormCfg)
}

func clickhouseDSN(config models.DatabaseConfig) string {
	if config.DSN != "" {
		return config.DSN
	}
	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%d/%s",
		config.Username,
		config.Password,
		config.Host,
		config.Port,
		config.Database,
	)
}
