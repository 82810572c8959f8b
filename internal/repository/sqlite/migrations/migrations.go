package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed files/*.sql
var migrationFiles embed.FS

// Status describes the schema version of a database
type Status struct {
	Version uint
	Latest  uint
	Dirty   bool
}

// UpToDate reports whether the schema is at the latest version
func (s Status) UpToDate() bool {
	return !s.Dirty && s.Version == s.Latest
}

// CheckVersion reports the schema version of db against the embedded migrations.
func CheckVersion(db *sql.DB) (Status, error) {
	m, err := newMigrate(db)
	if err != nil {
		return Status{}, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	// m is not closed: closing it would close db, which the caller owns

	latest, err := latestVersion()
	if err != nil {
		return Status{}, fmt.Errorf("failed to determine latest version: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		if errors.Is(err, migrate.ErrNilVersion) {
			return Status{Latest: latest}, nil
		}
		return Status{}, fmt.Errorf("failed to get database version: %w", err)
	}

	return Status{Version: version, Latest: latest, Dirty: dirty}, nil
}

// MigrateUp runs all pending migrations to bring database to latest version.
// Tables created before sibling ordering existed get their position column first.
func MigrateUp(db *sql.DB) error {
	if err := addLegacyPositions(db); err != nil {
		return fmt.Errorf("adopt legacy tables: %w", err)
	}

	m, err := newMigrate(db)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

// MigrateDown rolls back every applied migration, dropping the schema.
func MigrateDown(db *sql.DB) error {
	m, err := newMigrate(db)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Down(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return fmt.Errorf("rollback failed: %w", err)
	}

	return nil
}

// positionBackfill numbers each sibling group 0..n-1 in id order
var positionBackfill = map[string]string{
	"folders": `UPDATE folders SET position = (
		SELECT COUNT(*) FROM folders AS f WHERE f.parent_id IS folders.parent_id AND f.id < folders.id)`,
	"bookmarks": `UPDATE bookmarks SET position = (
		SELECT COUNT(*) FROM bookmarks AS b WHERE b.folder_id = bookmarks.folder_id AND b.id < bookmarks.id)`,
}

// addLegacyPositions adds and backfills the position column of existing
// folders/bookmarks tables that lack it. Missing tables are left to the migrations.
func addLegacyPositions(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"folders", "bookmarks"} {
		var exists, hasPosition int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&exists); err != nil {
			return fmt.Errorf("inspect %s: %w", table, err)
		}
		if exists == 0 {
			continue
		}
		if err := tx.QueryRow(`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = 'position'`, table).Scan(&hasPosition); err != nil {
			return fmt.Errorf("inspect %s columns: %w", table, err)
		}
		if hasPosition > 0 {
			continue
		}

		if _, err := tx.Exec(`ALTER TABLE ` + table + ` ADD COLUMN position INTEGER NOT NULL DEFAULT 0`); err != nil {
			return fmt.Errorf("add %s.position: %w", table, err)
		}
		if _, err := tx.Exec(positionBackfill[table]); err != nil {
			return fmt.Errorf("backfill %s.position: %w", table, err)
		}
	}

	return tx.Commit()
}

// newMigrate creates a new migrate instance for the given database.
func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	sourceDriver, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	dbDriver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		sourceDriver.Close()
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}

// latestVersion returns the highest version number among the embedded migrations.
func latestVersion() (uint, error) {
	src, err := iofs.New(migrationFiles, "files")
	if err != nil {
		return 0, err
	}
	defer src.Close()
	return lastVersion(src)
}

func lastVersion(src source.Driver) (uint, error) {
	version, err := src.First()
	if err != nil {
		return 0, err
	}

	for {
		next, err := src.Next(version)
		if err != nil {
			// Any error from Next() means there are no further migrations
			return version, nil
		}
		version = next
	}
}
