// Package postgres owns the report-store connection pool and its schema
// migrations.  Migrations are embedded in the binary and applied with
// golang-migrate, either at startup (database.auto_migrate) or through the
// CLI migrate command.
package postgres

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// ─────────────────────────────────────────────────────────────────────────────
// Migrator
// ─────────────────────────────────────────────────────────────────────────────

// Migrator applies the embedded schema migrations to one database.
type Migrator struct {
	m      *migrate.Migrate
	logger logging.Logger
}

// NewMigrator binds the embedded migrations to db.
func NewMigrator(db *sql.DB, log logging.Logger) (*Migrator, error) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded migrations: %w", err)
	}
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return &Migrator{m: m, logger: log}, nil
}

// Up applies all pending migrations.  No pending migrations is not an error.
func (g *Migrator) Up() error {
	if err := g.m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		version, _, _ := g.m.Version()
		return fmt.Errorf("failed to run migrations (current version: %d): %w", version, err)
	}
	g.logStatus("Database migrations applied")
	return nil
}

// Down rolls the schema back by steps migrations.
func (g *Migrator) Down(steps int) error {
	if steps <= 0 {
		return fmt.Errorf("steps must be greater than 0, got %d", steps)
	}
	if err := g.m.Steps(-steps); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("no migrations to roll back")
		}
		return fmt.Errorf("failed to rollback %d step(s): %w", steps, err)
	}
	g.logStatus("Database migrations rolled back")
	return nil
}

// Status returns the applied version and whether the last migration failed
// half-way.  A fresh database reports version 0.
func (g *Migrator) Status() (version uint, dirty bool, err error) {
	version, dirty, err = g.m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("failed to get migration version: %w", err)
	}
	return version, dirty, nil
}

// Force marks version as applied without running it.  Used to recover a
// dirty schema.
func (g *Migrator) Force(version int) error {
	if err := g.m.Force(version); err != nil {
		return fmt.Errorf("failed to force version %d: %w", version, err)
	}
	return nil
}

// Close releases the migration source and the database handle it was
// built on.
func (g *Migrator) Close() error {
	srcErr, dbErr := g.m.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

func (g *Migrator) logStatus(msg string) {
	version, dirty, err := g.Status()
	if err != nil {
		g.logger.Warn("Failed to get migration version", logging.Err(err))
		return
	}
	g.logger.Info(msg, logging.Int64("version", int64(version)), logging.Bool("dirty", dirty))
}

// ─────────────────────────────────────────────────────────────────────────────
// Connection helpers
// ─────────────────────────────────────────────────────────────────────────────

// RunMigrations applies all pending migrations on the connection.  The
// migrator is not closed so the pool stays usable.
func (c *Connection) RunMigrations() error {
	g, err := NewMigrator(c.db, c.logger)
	if err != nil {
		return err
	}
	return g.Up()
}

//Personal.AI order the ending
