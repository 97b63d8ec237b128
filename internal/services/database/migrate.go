package database

import (
	"fmt"

	"github.com/Egham-7/llmonitor-api/internal/models"
)

// Models lists every table the dashboard reads or writes.
func Models() []any {
	return []any{
		&models.Profile{},
		&models.App{},
		&models.Agent{},
		&models.AppUser{},
		&models.Run{},
		&models.Feedback{},
	}
}

// Migrate creates or updates the schema for the connected driver.
func (db *DB) Migrate() error {
	if db.driverName == "clickhouse" {
		return RunClickHouseMigrations(db.DB)
	}

	if err := db.AutoMigrate(Models()...); err != nil {
		return fmt.Errorf("failed to auto-migrate schema: %w", err)
	}
	return nil
}
