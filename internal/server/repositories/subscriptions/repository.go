package subscriptions

import (
	"context"

	"github.com/dmitrijs2005/storykeeper/internal/server/models"
)

type Repository interface {
	Upsert(ctx context.Context, sub *models.PushSubscription) error
	Delete(ctx context.Context, userID, endpoint string) error
}
