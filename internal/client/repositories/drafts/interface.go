// Package drafts persists stories captured while the API was unreachable.
package drafts

import (
	"context"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
)

type Repository interface {
	// Put stores a draft, assigning a TempID when it has none, and returns
	// the stored copy.
	Put(ctx context.Context, d *models.OfflineDraft) (*models.OfflineDraft, error)
	// List returns drafts oldest first, which is the order they are synced in.
	List(ctx context.Context) ([]models.OfflineDraft, error)
	Delete(ctx context.Context, tempID string) error
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
