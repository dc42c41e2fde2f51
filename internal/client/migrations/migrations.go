// Package migrations embeds the goose migrations of the two client
// databases: the durable store (stories, favorites, offline drafts) and the
// flat key-value guest store.
package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	"github.com/pressly/goose/v3"
)

//go:embed store/*.sql kv/*.sql
var Migrations embed.FS

const (
	StoreDir = "store"
	KVDir    = "kv"
)

// Up applies every pending migration from dir to an SQLite database.
// A goose Provider is used instead of the package-level goose state so that
// the two client databases can be migrated independently.
func Up(ctx context.Context, db *sql.DB, dir string) error {
	fsys, err := fs.Sub(Migrations, dir)
	if err != nil {
		return fmt.Errorf("migrations %s: %w", dir, err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("goose provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up %s: %w", dir, err)
	}
	return nil
}
