package database

import (
	"fmt"

	"github.com/Egham-7/llmonitor-api/internal/models"

	"gorm.io/driver/postgres"
)

func newPostgreSQL(config models.DatabaseConfig) (*DB, error) {
	dialector := postgres.New(postgres.Config{
		DSN:                  postgresDSN(config),
		PreferSimpleProtocol: false,
	})
	return open(dialector, config, "postgres", gormConfig())
}

func postgresDSN(config models.DatabaseConfig) string {
	if config.DSN != "" {
		return config.DSN
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		config.Host,
		config.Port,
		config.Username,
		config.Password,
		config.Database,
		getSSLMode(config.SSLMode),
	)
}

func getSSLMode(mode string) string {
	if mode == "" {
		return "disable"
	}
	return mode
}
