// Package postgres provides the PostgreSQL connection with pooled primary
// and optional read replicas
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/recipewise/server/internal/infrastructure/config"
	gormrepo "github.com/recipewise/server/internal/infrastructure/persistence/gorm"
)

// ConnectionManager owns the PostgreSQL connection pool
type ConnectionManager struct {
	cfg          config.DatabaseConfig
	logger       *zap.Logger
	db           *gorm.DB
	writeDB      *sql.DB
	queryMonitor *QueryMonitor
}

// NewConnectionManager connects to the primary, registers read replicas and
// installs query monitoring. reg may be nil.
func NewConnectionManager(ctx context.Context, cfg config.DatabaseConfig, reg prometheus.Registerer, log *zap.Logger) (*ConnectionManager, error) {
	cfg = withPoolDefaults(cfg)
	cm := &ConnectionManager{
		cfg:          cfg,
		logger:       log.Named("postgres"),
		queryMonitor: NewQueryMonitor(reg, cfg.SlowQueryThreshold, log),
	}

	if err := cm.initializePrimaryConnection(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize primary connection: %w", err)
	}

	if err := cm.initializeReadReplicas(); err != nil {
		cm.logger.Warn("Failed to initialize read replicas", zap.Error(err))
	}

	if err := cm.queryMonitor.Install(cm.db); err != nil {
		cm.logger.Warn("Failed to install query monitoring", zap.Error(err))
	}

	if reg != nil {
		if err := reg.Register(collectors.NewDBStatsCollector(cm.writeDB, cfg.Database)); err != nil {
			cm.logger.Warn("Failed to register pool metrics", zap.Error(err))
		}
	}

	cm.logger.Info("Database connection manager initialized",
		zap.Int("max_open_conns", cfg.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.MaxIdleConns),
		zap.Duration("conn_max_lifetime", cfg.ConnMaxLifetime),
		zap.Int("read_replicas", len(cfg.ReadReplicas)),
	)

	return cm, nil
}

func withPoolDefaults(cfg config.DatabaseConfig) config.DatabaseConfig {
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 25
	}
	if cfg.MaxIdleConns <= 0 {
		cfg.MaxIdleConns = 5
	}
	if cfg.ConnMaxLifetime <= 0 {
		cfg.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.ConnMaxIdleTime <= 0 {
		cfg.ConnMaxIdleTime = 5 * time.Minute
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 100 * time.Millisecond
	}
	return cfg
}

func (cm *ConnectionManager) initializePrimaryConnection(ctx context.Context) error {
	db, err := gorm.Open(postgres.Open(cm.cfg.DSN(cm.cfg.Host)), &gorm.Config{
		Logger:                 gormrepo.NewLogger(cm.logger, cm.cfg.LogLevel, cm.cfg.SlowQueryThreshold),
		SkipDefaultTransaction: true,
		PrepareStmt:            true,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cm.cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cm.cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cm.cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cm.cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	cm.db = db
	cm.writeDB = sqlDB
	return nil
}

func (cm *ConnectionManager) initializeReadReplicas() error {
	if len(cm.cfg.ReadReplicas) == 0 {
		return nil
	}

	replicas := make([]gorm.Dialector, len(cm.cfg.ReadReplicas))
	for i, host := range cm.cfg.ReadReplicas {
		replicas[i] = postgres.Open(cm.cfg.DSN(host))
	}

	resolver := dbresolver.Register(dbresolver.Config{
		Replicas: replicas,
		Policy:   dbresolver.RandomPolicy{},
	}).
		SetMaxOpenConns(cm.cfg.MaxOpenConns).
		SetMaxIdleConns(cm.cfg.MaxIdleConns).
		SetConnMaxLifetime(cm.cfg.ConnMaxLifetime)

	if err := cm.db.Use(resolver); err != nil {
		return fmt.Errorf("failed to register read replicas: %w", err)
	}

	cm.logger.Info("Read replicas configured", zap.Int("replica_count", len(replicas)))
	return nil
}

// DB returns the GORM handle. Reads are routed to replicas when configured.
func (cm *ConnectionManager) DB() *gorm.DB {
	return cm.db
}

// SQLDB returns the primary connection pool
func (cm *ConnectionManager) SQLDB() *sql.DB {
	return cm.writeDB
}

// QueryStats returns statement statistics since start
func (cm *ConnectionManager) QueryStats() QueryStats {
	return cm.queryMonitor.Stats()
}

// HealthCheck pings the primary
func (cm *ConnectionManager) HealthCheck(ctx context.Context) error {
	if err := cm.writeDB.PingContext(ctx); err != nil {
		return fmt.Errorf("primary database ping failed: %w", err)
	}
	return nil
}

// Close closes the primary pool
func (cm *ConnectionManager) Close() error {
	if cm.writeDB == nil {
		return nil
	}
	if err := cm.writeDB.Close(); err != nil {
		cm.logger.Error("Failed to close primary database", zap.Error(err))
		return err
	}
	return nil
}
