package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog"
)

// Migrator applies the SQL migrations under migrations/ to the catalog
// database. It drives golang-migrate through a database/sql bridge over
// the service's pgx pool, so the server and the migrate CLI share one
// connection configuration.
type Migrator struct {
	migrate *migrate.Migrate
	bridge  *sql.DB // stdlib wrapper over the pgx pool, closed with the migrator
	logger  zerolog.Logger
}

// NewMigrator creates a migrator reading migration files from dir.
func NewMigrator(db *DB, dir string, logger zerolog.Logger) (*Migrator, error) {
	if db == nil || db.pool == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if dir == "" {
		return nil, fmt.Errorf("migrations directory is required")
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("migrations directory not readable: %w", err)
	}

	bridge := stdlib.OpenDBFromPool(db.pool)

	driver, err := postgres.WithInstance(bridge, &postgres.Config{
		MigrationsTable: "schema_migrations",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(fmt.Sprintf("file://%s", dir), "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return &Migrator{
		migrate: m,
		bridge:  bridge,
		logger:  logger.With().Str("component", "migrator").Logger(),
	}, nil
}

// Up applies all pending migrations. Being already up to date is not an
// error.
func (m *Migrator) Up() error {
	m.logger.Info().Msg("applying pending migrations")

	if err := m.migrate.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info().Msg("schema already up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	m.logger.Info().Msg("migrations applied")
	return nil
}

// Down rolls back every migration, dropping the catalog schema.
func (m *Migrator) Down() error {
	m.logger.Warn().Msg("rolling back all migrations")

	if err := m.migrate.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info().Msg("nothing to roll back")
			return nil
		}
		return fmt.Errorf("failed to roll back migrations: %w", err)
	}

	m.logger.Info().Msg("migrations rolled back")
	return nil
}

// Steps applies n migrations forward, or -n backward.
func (m *Migrator) Steps(n int) error {
	m.logger.Info().Int("steps", n).Msg("applying migration steps")

	if err := m.migrate.Steps(n); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			m.logger.Info().Msg("schema already up to date")
			return nil
		}
		// golang-migrate reports stepping past the newest migration as a
		// missing source file.
		if errors.Is(err, os.ErrNotExist) {
			m.logger.Info().Msg("no further migrations available")
			return nil
		}
		return fmt.Errorf("failed to apply migration steps: %w", err)
	}

	m.logger.Info().Int("steps", n).Msg("migration steps applied")
	return nil
}

// Version returns the current schema version and whether it is dirty.
func (m *Migrator) Version() (uint, bool, error) {
	return m.migrate.Version()
}

// Force overwrites the recorded schema version without running any
// migrations. Use it to recover after a migration failed partway and
// left the version dirty.
func (m *Migrator) Force(version int) error {
	m.logger.Warn().Int("version", version).Msg("forcing schema version")
	return m.migrate.Force(version)
}

// Close releases the migrate source and returns the bridged connections
// to the pool.
func (m *Migrator) Close() error {
	sourceErr, dbErr := m.migrate.Close()

	if m.bridge != nil {
		if err := m.bridge.Close(); err != nil && dbErr == nil {
			dbErr = err
		}
	}

	if sourceErr != nil && dbErr != nil {
		return fmt.Errorf("failed to close migrator: source error: %v, database error: %w", sourceErr, dbErr)
	}
	if sourceErr != nil {
		return fmt.Errorf("failed to close migration source: %w", sourceErr)
	}
	if dbErr != nil {
		return fmt.Errorf("failed to close migration database handle: %w", dbErr)
	}
	return nil
}
