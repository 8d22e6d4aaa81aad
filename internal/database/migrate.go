package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Migrate applies every pending migration for driver.
func Migrate(ctx context.Context, db *sql.DB, driver string, log *slog.Logger) error {
	const op = "database.Migrate"

	dialect, dir := goose.DialectMySQL, "migrations/mysql"
	if driver == DriverSQLite {
		dialect, dir = goose.DialectSQLite3, "migrations/sqlite"
	}

	fsys, err := fs.Sub(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	provider, err := goose.NewProvider(dialect, db, fsys)
	if err != nil {
		return fmt.Errorf("%s: goose provider: %w", op, err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("%s: goose up: %w", op, err)
	}
	if log != nil {
		for _, r := range results {
			log.Info("migration applied",
				slog.String("op", op),
				slog.String("source", r.Source.Path),
				slog.Duration("took", r.Duration),
			)
		}
	}
	return nil
}
