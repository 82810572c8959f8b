// Package repository selects and opens a persistence adapter.
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"bookmarkd/internal/config"
	"bookmarkd/internal/domain/repositories"
	"bookmarkd/internal/repository/postgres"
	pgmigrations "bookmarkd/internal/repository/postgres/migrations"
	"bookmarkd/internal/repository/sqlite"
	sqlitemigrations "bookmarkd/internal/repository/sqlite/migrations"
)

// Supported values of DB_DRIVER
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Open creates the Store described by cfg, with migrations applied
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*repositories.Store, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	switch cfg.Driver {
	case DriverSQLite, "":
		logger.Info("opening database", "driver", DriverSQLite, "path", cfg.Path)
		return sqlite.Open(cfg.Path, logger)
	default:
		logger.Info("opening database", "driver", DriverPostgres)
		return postgres.Open(ctx, cfg.URL, logger)
	}
}

// SchemaStatus is the applied migration state of a database
type SchemaStatus struct {
	Version uint
	Dirty   bool
}

// Status reports the schema version without applying migrations
func Status(ctx context.Context, cfg config.DatabaseConfig) (SchemaStatus, error) {
	if err := validate(cfg); err != nil {
		return SchemaStatus{}, err
	}

	if cfg.Driver == DriverPostgres {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.URL)
		if err != nil {
			return SchemaStatus{}, err
		}
		defer pool.Close()

		version, dirty, err := pgmigrations.Version(pool)
		return SchemaStatus{Version: version, Dirty: dirty}, err
	}

	db, err := sqlite.OpenConnection(cfg.Path)
	if err != nil {
		return SchemaStatus{}, err
	}
	defer db.Close()

	status, err := sqlitemigrations.CheckVersion(db)
	return SchemaStatus{Version: status.Version, Dirty: status.Dirty}, err
}

// DropSchema rolls back every migration, removing all tables and data
func DropSchema(ctx context.Context, cfg config.DatabaseConfig) error {
	if err := validate(cfg); err != nil {
		return err
	}

	if cfg.Driver == DriverPostgres {
		pool, err := postgres.CreateConnectionPool(ctx, cfg.URL)
		if err != nil {
			return err
		}
		defer pool.Close()
		return pgmigrations.MigrateDown(pool)
	}

	db, err := sqlite.OpenConnection(cfg.Path)
	if err != nil {
		return err
	}
	defer db.Close()
	return sqlitemigrations.MigrateDown(db)
}

func validate(cfg config.DatabaseConfig) error {
	switch cfg.Driver {
	case DriverSQLite, "":
		if cfg.Path == "" {
			return fmt.Errorf("DB_PATH required for sqlite database")
		}
	case DriverPostgres:
		if cfg.URL == "" {
			return fmt.Errorf("DATABASE_URL required for postgres database")
		}
	default:
		return fmt.Errorf("unknown database driver: %s", cfg.Driver)
	}
	return nil
}
