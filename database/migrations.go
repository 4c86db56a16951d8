// Package database embeds the movies schema and applies it with golang-migrate.
package database

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5" // Registers the pgx5:// driver
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationsFromSource returns a migration source driver from the embedded migrations.
func migrationsFromSource() (source.Driver, error) {
	return iofs.New(migrationsFS, "migrations")
}

// toMigrateURL rewrites a postgres connection URL to the scheme understood by
// the golang-migrate pgx/v5 driver.
func toMigrateURL(connString string) (string, error) {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(connString, prefix) {
			return "pgx5://" + strings.TrimPrefix(connString, prefix), nil
		}
	}
	if strings.HasPrefix(connString, "pgx5://") {
		return connString, nil
	}
	return "", fmt.Errorf("unsupported connection string scheme, expected postgres:// URL")
}

// MigrateUp brings the schema up to date. It is a no-op when the schema is
// already current.
func MigrateUp(connString string) error {
	migrateURL, err := toMigrateURL(connString)
	if err != nil {
		return err
	}

	d, err := migrationsFromSource()
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, migrateURL)
	if err != nil {
		return fmt.Errorf("failed to initialize migrations: %w", err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			slog.Warn("Failed to close migration instance", "source_error", srcErr, "database_error", dbErr)
		}
	}()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema is in a dirty state at version %d", version)
	}

	slog.Info("Database schema is up to date", "version", version)
	return nil
}
