// Package repomanager provides a concrete RepositoryManager for PostgreSQL,
// wiring together repository constructors and database migrations (via goose).
package repomanager

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/storykeeper/internal/dbx"
	"github.com/dmitrijs2005/storykeeper/internal/server/migrations"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/stories"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/users"
)

// PostgresRepositoryManager vends PostgreSQL-backed repository implementations
// and exposes a schema migration hook.
type PostgresRepositoryManager struct{}

// Users returns a users.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewPostgresRepository(db)
}

// Stories returns a stories.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Stories(db dbx.DBTX) stories.Repository {
	return stories.NewPostgresRepository(db)
}

// Subscriptions returns a subscriptions.Repository bound to the provided DBTX.
func (m *PostgresRepositoryManager) Subscriptions(db dbx.DBTX) subscriptions.Repository {
	return subscriptions.NewPostgresRepository(db)
}

// migrateUp is a seam for testing migrations.Up.
var migrateUp = migrations.Up

// RunMigrations applies the embedded goose migrations.
func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	return migrateUp(ctx, db)
}

// NewPostgresRepositoryManager constructs a PostgreSQL-backed RepositoryManager.
func NewPostgresRepositoryManager() RepositoryManager {
	return &PostgresRepositoryManager{}
}
