package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/storykeeper/internal/dbx"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/stories"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/subscriptions"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Stories(db dbx.DBTX) stories.Repository
	Subscriptions(db dbx.DBTX) subscriptions.Repository
}
