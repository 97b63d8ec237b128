package database

import (
	"fmt"

	"gorm.io/gorm"
)

// RunClickHouseMigrations creates tables directly; AutoMigrate is unreliable
// with the ClickHouse driver.
func RunClickHouseMigrations(db *gorm.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS profile (
			id String,
			email String,
			name String,
			plan String DEFAULT 'free',
			stripe_customer String,
			created_at DateTime DEFAULT now(),
			updated_at DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(updated_at)
		ORDER BY id`,

		`CREATE TABLE IF NOT EXISTS app (
			id String,
			name String,
			owner String,
			created_at DateTime DEFAULT now()
		) ENGINE = MergeTree()
		ORDER BY (owner, created_at)`,

		`CREATE TABLE IF NOT EXISTS agents (
			id UInt32,
			app String,
			name String,
			created_at DateTime DEFAULT now()
		) ENGINE = MergeTree()
		ORDER BY (app, id)`,

		`CREATE TABLE IF NOT EXISTS app_user (
			id Int64,
			app String,
			external_id String,
			last_seen Nullable(DateTime),
			props String,
			created_at DateTime DEFAULT now()
		) ENGINE = MergeTree()
		ORDER BY (app, id)`,

		`CREATE TABLE IF NOT EXISTS run (
			id String,
			created_at DateTime64(3),
			ended_at Nullable(DateTime64(3)),
			app String,
			type LowCardinality(String),
			status LowCardinality(String),
			name String,
			user_id Nullable(Int64),
			parent_run_id Nullable(String),
			prompt_tokens Nullable(Int64),
			completion_tokens Nullable(Int64),
			tags String,
			input Nullable(String),
			output Nullable(String),
			error Nullable(String)
		) ENGINE = MergeTree()
		PARTITION BY toYYYYMM(created_at)
		ORDER BY (app, type, created_at)`,

		`CREATE TABLE IF NOT EXISTS feedback (
			id UInt32,
			user_id String,
			message String,
			current_page String,
			created_at DateTime DEFAULT now()
		) ENGINE = MergeTree()
		ORDER BY (user_id, created_at)`,
	}

	for _, query := range queries {
		if err := db.Exec(query).Error; err != nil {
			return fmt.Errorf("failed to execute migration: %w", err)
		}
	}

	return nil
}
