package models

import "time"

type DatabaseType string

const (
	PostgreSQL DatabaseType = "postgresql"
	MySQL      DatabaseType = "mysql"
	SQLite     DatabaseType = "sqlite"
	ClickHouse DatabaseType = "clickhouse"
)

// DatabaseConfig selects the store holding apps, runs and profiles. DSN,
// when set, wins over the individual connection fields; SQLite only reads
// FilePath.
type DatabaseConfig struct {
	Type     DatabaseType `yaml:"type" json:"type"`
	DSN      string       `yaml:"dsn,omitempty" json:"dsn,omitzero"`
	Host     string       `yaml:"host,omitempty" json:"host,omitzero"`
	Port     int          `yaml:"port,omitempty" json:"port,omitzero"`
	Username string       `yaml:"username,omitempty" json:"username,omitzero"`
	Password string       `yaml:"password,omitempty" json:"-"`
	Database string       `yaml:"database,omitempty" json:"database,omitzero"`
	SSLMode  string       `yaml:"ssl_mode,omitempty" json:"ssl_mode,omitzero"`
	FilePath string       `yaml:"file_path,omitempty" json:"file_path,omitzero"`

	// Pool settings; zero leaves the driver default.
	MaxOpenConns    int           `yaml:"max_open_conns,omitempty" json:"max_open_conns,omitzero"`
	MaxIdleConns    int           `yaml:"max_idle_conns,omitempty" json:"max_idle_conns,omitzero"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime,omitempty" json:"conn_max_lifetime,omitzero"`
}
