//go:build integration

// Package testutil starts disposable PostgreSQL instances for integration tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/helixir/procurement-service/internal/config"
)

// PostgresImage is the image used for integration databases.
const PostgresImage = "postgres:16-alpine"

// StartPostgres runs a throwaway PostgreSQL container and returns a database
// configuration pointing at it. The container is terminated when the test ends.
func StartPostgres(t *testing.T) *config.DatabaseConfig {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	ctr, err := tcpostgres.Run(ctx, PostgresImage,
		tcpostgres.WithDatabase("procurement"),
		tcpostgres.WithUsername("procurement"),
		tcpostgres.WithPassword("procurement"),
		tcpostgres.BasicWaitStrategies(),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("skipping integration test: cannot start postgres container: %v", err)
	}

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres connection string: %v", err)
	}
	parsed, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		t.Fatalf("parse postgres connection string: %v", err)
	}

	return &config.DatabaseConfig{
		Host:              parsed.ConnConfig.Host,
		Port:              int(parsed.ConnConfig.Port),
		User:              "procurement",
		Password:          "procurement",
		Name:              "procurement",
		Schema:            "public",
		SSLMode:           "disable",
		MaxConns:          5,
		MinConns:          1,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: 30 * time.Second,
		ConnectTimeout:    10 * time.Second,
		AcquireTimeout:    5 * time.Second,
		MigrationPath:     MigrationsPath(t),
	}
}

// MigrationsPath returns the absolute path of the repository migrations directory.
func MigrationsPath(t *testing.T) string {
	t.Helper()

	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot resolve migrations path")
	}
	path := filepath.Join(filepath.Dir(file), "..", "..", "migrations")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("migrations directory not found at %s: %v", path, err)
	}
	return path
}
