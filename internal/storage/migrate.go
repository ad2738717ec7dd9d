package storage

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// NewMigrator returns a migrate instance for driver's schema at databaseURL.
func NewMigrator(driver, databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations applies every pending migration. An up-to-date schema is not an error.
func RunMigrations(driver, databaseURL string) error {
	m, err := NewMigrator(driver, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// SchemaVersion reports the applied migration version and whether the last
// migration left the schema dirty.
func SchemaVersion(driver, databaseURL string) (uint, bool, error) {
	m, err := NewMigrator(driver, databaseURL)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func sqliteMigrationURL(path string) string {
	return "sqlite://" + path
}

// MigrationURL returns the migrate database URL for the database opts select.
func MigrationURL(opts Options) (string, error) {
	switch opts.Driver {
	case DriverSQLite, "":
		path := opts.Path
		if path == "" {
			p, err := DefaultSQLitePath()
			if err != nil {
				return "", err
			}
			path = p
		}
		return sqliteMigrationURL(path), nil
	case DriverPostgres:
		return opts.URL, nil
	default:
		return "", fmt.Errorf("unknown database driver %q", opts.Driver)
	}
}
