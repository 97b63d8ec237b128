package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Egham-7/llmonitor-api/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const connectTimeout = 10 * time.Second

// DB wraps a gorm connection with the driver it was opened with.
type DB struct {
	*gorm.DB
	config     models.DatabaseConfig
	driverName string
}

func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (db *DB) Ping(ctx context.Context) error {
	if db.DB == nil {
		return fmt.Errorf("database not connected")
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (db *DB) DriverName() string {
	return db.driverName
}

func (db *DB) setConnectionPool() {
	if db.DB == nil {
		return
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return
	}

	if db.config.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(db.config.MaxOpenConns)
	}
	if db.config.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(db.config.MaxIdleConns)
	}
	if db.config.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(db.config.ConnMaxLifetime)
	}
}

// open connects through dialector, applies the pool settings and checks
// the connection is usable.
func open(dialector gorm.Dialector, config models.DatabaseConfig, driverName string, gormCfg *gorm.Config) (*DB, error) {
	gormDB, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driverName, err)
	}

	db := &DB{
		DB:         gormDB,
		config:     config,
		driverName: driverName,
	}
	db.setConnectionPool()

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := db.Ping(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driverName, err)
	}

	return db, nil
}

// gormConfig stores timestamps in UTC so day buckets and range filters
// agree across drivers.
func gormConfig() *gorm.Config {
	return &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}
}

// New opens a connection for the configured driver.
func New(config models.DatabaseConfig) (*DB, error) {
	switch config.Type {
	case models.PostgreSQL:
		return newPostgreSQL(config)
	case models.MySQL:
		return newMySQL(config)
	case models.SQLite:
		return newSQLite(config)
	case models.ClickHouse:
		return newClickHouse(config)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", config.Type)
	}
}

// NewInMemory opens a private in-memory SQLite database with the schema
// applied. A single connection keeps every query on the same database.
func NewInMemory() (*DB, error) {
	db, err := newSQLite(models.DatabaseConfig{
		Type:         models.SQLite,
		FilePath:     "file::memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
