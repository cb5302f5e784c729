package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// MigrationsTable records the applied schema version inside the configured schema.
const MigrationsTable = "schema_migrations"

// Migrator applies the SQL files under a migrations directory to the
// procurement schema.
type Migrator struct {
	m      *migrate.Migrate
	conn   *sql.DB
	schema string
	logger zerolog.Logger
}

// Status describes the schema version recorded in the migrations table.
type Status struct {
	Version uint `json:"version"`
	Dirty   bool `json:"dirty"`
	// Applied is false when no migration has ever run.
	Applied bool `json:"applied"`
}

// NewMigrator borrows db's pool through database/sql and creates the
// configured schema if it does not exist yet. Close releases the borrowed
// connections.
func NewMigrator(db *DB, dir string, logger zerolog.Logger) (*Migrator, error) {
	if db == nil {
		return nil, errors.New("migrator: no database handle")
	}
	pool := db.Pool()
	if pool == nil {
		return nil, fmt.Errorf("migrator: %w", ErrNotConnected)
	}
	if dir == "" {
		return nil, errors.New("migrator: migrations directory not set")
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("migrator: migrations directory: %w", err)
	}

	mg := &Migrator{
		conn:   stdlib.OpenDBFromPool(pool),
		schema: db.config.Schema,
		logger: logger.With().Str("schema", db.config.Schema).Logger(),
	}
	if err := mg.open(dir); err != nil {
		_ = mg.conn.Close()
		return nil, err
	}

	mg.logger.Debug().Str("dir", dir).Msg("migrator opened")
	return mg, nil
}

func (mg *Migrator) open(dir string) error {
	if mg.schema != "" {
		stmt := "CREATE SCHEMA IF NOT EXISTS " + pgx.Identifier{mg.schema}.Sanitize()
		if _, err := mg.conn.Exec(stmt); err != nil {
			return fmt.Errorf("migrator: create schema %q: %w", mg.schema, err)
		}
	}

	driver, err := postgres.WithInstance(mg.conn, &postgres.Config{
		MigrationsTable: MigrationsTable,
		SchemaName:      mg.schema,
	})
	if err != nil {
		return fmt.Errorf("migrator: postgres driver: %w", err)
	}

	mg.m, err = migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrator: load %s: %w", dir, err)
	}
	return nil
}

// settled treats "nothing to do" outcomes as success. Steps past the last
// file reports a missing file rather than ErrNoChange.
func settled(err error) bool {
	return errors.Is(err, migrate.ErrNoChange) || errors.Is(err, os.ErrNotExist)
}

// Up applies every pending migration.
func (mg *Migrator) Up() error {
	if err := mg.m.Up(); err != nil {
		if settled(err) {
			mg.logger.Info().Msg("schema already current")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}

	st, err := mg.Status()
	if err != nil {
		return err
	}
	mg.logger.Info().Uint("version", st.Version).Msg("schema upgraded")
	return nil
}

// Down reverts every applied migration, dropping the procurement tables.
func (mg *Migrator) Down() error {
	mg.logger.Warn().Msg("reverting all migrations")
	if err := mg.m.Down(); err != nil && !settled(err) {
		return fmt.Errorf("migrate down: %w", err)
	}
	return nil
}

// Steps applies n migrations forward, or reverts -n when n is negative.
func (mg *Migrator) Steps(n int) error {
	if err := mg.m.Steps(n); err != nil {
		if settled(err) {
			mg.logger.Info().Int("steps", n).Msg("no migration left in that direction")
			return nil
		}
		return fmt.Errorf("migrate %d steps: %w", n, err)
	}
	mg.logger.Info().Int("steps", n).Msg("schema stepped")
	return nil
}

// Status reports the recorded version. A schema that never ran a migration
// yields a zero Status.
func (mg *Migrator) Status() (Status, error) {
	v, dirty, err := mg.m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return Status{}, nil
	case err != nil:
		return Status{}, fmt.Errorf("read schema version: %w", err)
	}
	return Status{Version: v, Dirty: dirty, Applied: true}, nil
}

// Version exposes the raw golang-migrate version, including ErrNilVersion.
func (mg *Migrator) Version() (uint, bool, error) {
	return mg.m.Version()
}

// Force records version as applied and clean without running any file.
func (mg *Migrator) Force(version int) error {
	mg.logger.Warn().Int("version", version).Msg("forcing schema version")
	return mg.m.Force(version)
}

// DropAll removes every object in the schema, migrations table included.
func (mg *Migrator) DropAll() error {
	mg.logger.Warn().Msg("dropping schema contents")
	return mg.m.Drop()
}

// Close releases the migration source and the borrowed connections.
func (mg *Migrator) Close() error {
	srcErr, dbErr := mg.m.Close()
	return errors.Join(srcErr, dbErr, mg.conn.Close())
}
