package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// MigrationsTable keeps this service's schema history apart from other services
// sharing the database.
const MigrationsTable = "outreach_schema_migrations"

// Migrate applies every pending migration found in dir.
func Migrate(databaseURL, dir string) error {
	migrationDBURL := databaseURL
	if strings.Contains(databaseURL, "?") {
		migrationDBURL += "&x-migrations-table=" + MigrationsTable
	} else {
		migrationDBURL += "?x-migrations-table=" + MigrationsTable
	}

	m, err := migrate.New("file://"+dir, migrationDBURL)
	if err != nil {
		return fmt.Errorf("could not create migration instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not apply migration: %w", err)
	}
	return nil
}
