package stories

import (
	"context"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
)

// Repository describes the cached story table.
type Repository interface {
	// Put upserts a story by id, so repeated fetches keep one copy.
	Put(ctx context.Context, story *models.Story) error
	// Get returns (nil, nil) when the story is not cached.
	Get(ctx context.Context, id string) (*models.Story, error)
	// List returns every cached story, newest first by CreatedAt.
	List(ctx context.Context) ([]models.Story, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
