package stories

import (
	"context"

	"github.com/dmitrijs2005/storykeeper/internal/server/models"
)

// ListFilter selects one page of stories, newest first.
type ListFilter struct {
	Limit        int
	Offset       int
	WithLocation bool
}

type Repository interface {
	Create(ctx context.Context, story *models.Story) error
	GetByID(ctx context.Context, id string) (*models.Story, error)
	List(ctx context.Context, f ListFilter) ([]*models.Story, error)
}
