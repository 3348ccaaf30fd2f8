//go:build integration

// Package testutils provides common testing utilities and infrastructure setup
package testutils

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/recipewise/server/internal/infrastructure/persistence/migrations"
)

// TestDatabase is a disposable PostgreSQL instance with the schema applied
type TestDatabase struct {
	Container testcontainers.Container
	DB        *sql.DB
	GormDB    *gorm.DB
	DSN       string
}

// DatabaseConfig holds test database configuration
type DatabaseConfig struct {
	Image    string
	Database string
	Username string
	Password string
}

// DefaultDatabaseConfig returns the default test database configuration
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Image:    "postgres:15-alpine",
		Database: "recipewise_test",
		Username: "test_user",
		Password: "test_password",
	}
}

// SetupTestDatabase starts PostgreSQL in a container and migrates it.
// The container is terminated when the test finishes.
func SetupTestDatabase(t *testing.T) *TestDatabase {
	return SetupTestDatabaseWithConfig(t, DefaultDatabaseConfig())
}

// SetupTestDatabaseWithConfig creates a test database with custom configuration
func SetupTestDatabaseWithConfig(t *testing.T, cfg DatabaseConfig) *TestDatabase {
	t.Helper()
	ctx := context.Background()

	url := func(host string, port nat.Port) string {
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
			cfg.Username, cfg.Password, host, port.Port(), cfg.Database)
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        cfg.Image,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_DB":       cfg.Database,
				"POSTGRES_USER":     cfg.Username,
				"POSTGRES_PASSWORD": cfg.Password,
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(60*time.Second),
				wait.ForSQL("5432/tcp", "pgx", url),
			),
			Tmpfs: map[string]string{
				"/var/lib/postgresql/data": "rw",
			},
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start postgres container")

	tdb := &TestDatabase{Container: container}
	t.Cleanup(func() { tdb.cleanup(t) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)
	tdb.DSN = url(host, port)

	require.NoError(t, migrations.Run(tdb.DSN, zaptest.NewLogger(t)), "failed to migrate test database")

	tdb.DB, err = sql.Open("pgx", tdb.DSN)
	require.NoError(t, err)
	require.NoError(t, tdb.DB.PingContext(ctx))

	tdb.GormDB, err = gorm.Open(postgres.New(postgres.Config{Conn: tdb.DB}), &gorm.Config{
		Logger:                 gormlogger.Discard,
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return tdb
}

// Truncate empties every application table
func (td *TestDatabase) Truncate(t *testing.T) {
	t.Helper()
	_, err := td.DB.Exec("TRUNCATE TABLE meal_plans, recipes, profiles CASCADE")
	require.NoError(t, err)
}

// CountRows counts rows in table
func (td *TestDatabase) CountRows(t *testing.T, table string) int {
	t.Helper()
	var n int
	require.NoError(t, td.DB.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&n))
	return n
}

func (td *TestDatabase) cleanup(t *testing.T) {
	if td.DB != nil {
		_ = td.DB.Close()
	}
	if td.Container != nil {
		if err := td.Container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate postgres container: %v", err)
		}
	}
}
