package database

import (
	"fmt"
	"strings"

	"github.com/Egham-7/llmonitor-api/internal/models"

	"gorm.io/driver/sqlite"
)

func newSQLite(config models.DatabaseConfig) (*DB, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("file_path is required for SQLite")
	}
	return open(sqlite.Open(sqliteDSN(config.FilePath)), config, "sqlite3", gormConfig())
}

// sqliteDSN waits on a locked file database instead of failing at once.
func sqliteDSN(path string) string {
	if strings.Contains(path, ":memory:") || strings.Contains(path, "?") {
		return path
	}
	return path + "?_busy_timeout=5000&_journal_mode=WAL"
}
