// Package sqlite opens the embedded development database
package sqlite

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/recipewise/server/internal/infrastructure/config"
	gormrepo "github.com/recipewise/server/internal/infrastructure/persistence/gorm"
)

// Open connects to the SQLite file at cfg.Path, or an in-memory database
// when no path is set, and migrates the schema.
func Open(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	path := cfg.Path
	if path == "" {
		path = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormrepo.NewLogger(logger, cfg.LogLevel, cfg.SlowQueryThreshold),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite serialises writers; a single connection avoids "database is locked".
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(gormrepo.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	logger.Info("SQLite database ready", zap.String("path", path))
	return db, nil
}
