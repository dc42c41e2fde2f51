// Package favorites stores local bookmarks. Each row is a snapshot of the
// story taken when it was favorited, so the list renders offline.
package favorites

import (
	"context"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
)

type Repository interface {
	Put(ctx context.Context, fav *models.Favorite) error
	// Get returns (nil, nil) when the story is not a favorite.
	Get(ctx context.Context, id string) (*models.Favorite, error)
	// List returns favorites ordered by AddedAt, newest first.
	List(ctx context.Context) ([]models.Favorite, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	Clear(ctx context.Context) error
}
