package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/hairizuanbinnoorazman/ui-autotest/logger"
)

//go:embed migrations/mysql/*.sql migrations/sqlite3/*.sql
var migrationFiles embed.FS

// migrateLogger adapts logger.Logger to migrate.Logger.
type migrateLogger struct {
	logger logger.Logger
}

func (l migrateLogger) Printf(format string, v ...interface{}) {
	l.logger.Debug(context.Background(), strings.TrimSpace(fmt.Sprintf(format, v...)), nil)
}

func (l migrateLogger) Verbose() bool {
	return false
}

func newMigrate(db *sql.DB, driver string, log logger.Logger) (*migrate.Migrate, error) {
	var (
		instance migratedb.Driver
		dir      string
		err      error
	)
	switch strings.ToLower(driver) {
	case DriverMySQL:
		dir = "migrations/mysql"
		instance, err = migratemysql.WithInstance(db, &migratemysql.Config{})
	case DriverSQLite, "sqlite3", "":
		driver = "sqlite3"
		dir = "migrations/sqlite3"
		instance, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedDriver, driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}

	src, err := iofs.New(migrationFiles, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, instance)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	if log != nil {
		m.Log = migrateLogger{logger: log}
	}
	return m, nil
}

// RunMigrations applies every pending migration for driver.
func RunMigrations(db *sql.DB, driver string, log logger.Logger) error {
	m, err := newMigrate(db, driver, log)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// RollbackMigration reverts the most recent migration.
func RollbackMigration(db *sql.DB, driver string, log logger.Logger) error {
	m, err := newMigrate(db, driver, log)
	if err != nil {
		return err
	}
	if err := m.Steps(-1); err != nil {
		return fmt.Errorf("failed to rollback migration: %w", err)
	}
	return nil
}

// Version returns the applied schema version and whether it is dirty.
func Version(db *sql.DB, driver string) (uint, bool, error) {
	m, err := newMigrate(db, driver, nil)
	if err != nil {
		return 0, false, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}
