// Package migrations embeds the goose migrations of the server database.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed postgres/*.sql
var Migrations embed.FS

// Up applies every pending migration to a PostgreSQL database.
func Up(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(Migrations, "postgres")
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}
