package builder

import "github.com/Egham-7/llmonitor-api/internal/models"

func (b *Builder) WithDatabase(cfg models.DatabaseConfig) *Builder {
	b.cfg.Database = &cfg
	return b
}

// WithSQLite stores data in the SQLite file at path. Use "file::memory:"
// with a single connection for throwaway databases.
func (b *Builder) WithSQLite(path string) *Builder {
	cfg := models.DatabaseConfig{
		Type:     models.SQLite,
		FilePath: path,
	}
	if path == "file::memory:" || path == ":memory:" {
		cfg.MaxOpenConns = 1
		cfg.MaxIdleConns = 1
	}
	return b.WithDatabase(cfg)
}
