// Package migrations embeds the schema for each supported driver and applies
// it with golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sqlite/*.sql postgres/*.sql
var files embed.FS

// RunMigrations applies all pending up migrations for driver ("sqlite3" or "postgres").
// The caller keeps ownership of db.
func RunMigrations(db *sql.DB, driver string) error {
	log.Println("Running migrations...")

	var (
		dir      string
		instance database.Driver
		err      error
	)
	switch driver {
	case "sqlite3":
		dir = "sqlite"
		instance, err = sqlite3.WithInstance(db, &sqlite3.Config{})
	case "postgres":
		dir = "postgres"
		instance, err = postgres.WithInstance(db, &postgres.Config{})
	default:
		return fmt.Errorf("unsupported migration driver %q", driver)
	}
	if err != nil {
		return fmt.Errorf("failed to prepare migration driver: %w", err)
	}

	src, err := iofs.New(files, dir)
	if err != nil {
		return fmt.Errorf("failed to open embedded migrations: %w", err)
	}

	// m.Close is not called: it would close db along with the driver
	m, err := migrate.NewWithInstance("iofs", src, driver, instance)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("Schema is up to date")
			return nil
		}
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	version, _, _ := m.Version()
	log.Printf("All migrations completed successfully (version %d)", version)
	return nil
}
