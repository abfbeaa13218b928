package database

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratedb "github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/at-ishikawa/geoquiz/schemas"
)

// Migrate applies the embedded migrations for the driver of db.
func Migrate(db *sqlx.DB) error {
	driver := db.DriverName()

	source, err := iofs.New(schemas.Migrations, "migrations/"+driver)
	if err != nil {
		return fmt.Errorf("load migrations for %s: %w", driver, err)
	}

	var instance migratedb.Driver
	switch driver {
	case DriverMySQL:
		instance, err = migratemysql.WithInstance(db.DB, &migratemysql.Config{})
	case DriverPostgres:
		instance, err = migratepostgres.WithInstance(db.DB, &migratepostgres.Config{})
	case DriverSQLite:
		instance, err = migratesqlite.WithInstance(db.DB, &migratesqlite.Config{})
	default:
		return fmt.Errorf("unsupported database driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("create %s migration driver: %w", driver, err)
	}

	m, err := migrate.NewWithInstance("iofs", source, driver, instance)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			slog.Default().Debug("database schema is up to date", "driver", driver)
			return nil
		}
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("read migration version: %w", err)
	}
	slog.Default().Info("applied database migrations", "driver", driver, "version", version)
	return nil
}
