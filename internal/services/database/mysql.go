package database

import (
	"fmt"

	"github.com/Egham-7/llmonitor-api/internal/models"

	"gorm.io/driver/mysql"
)

func newMySQL(config models.DatabaseConfig) (*DB, error) {
	dialector := mysql.New(mysql.Config{
		DSN:               mysqlDSN(config),
		DefaultStringSize: 255,
	})
	return open(dialector, config, "mysql", gormConfig())
}

func mysqlDSN(config models.DatabaseConfig) string {
	if config.DSN != "" {
		return config.DSN
	}
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		config.Username,
		config.Password,
		config.Host,
		config.Port,
		config.Database,
	)
}
