package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/repomanager"
)

// PushService keeps the web-push endpoints users registered.
type PushService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPushService(db *sql.DB, m repomanager.RepositoryManager) *PushService {
	return &PushService{db: db, repomanager: m}
}

func (s *PushService) Subscribe(ctx context.Context, userID, endpoint, p256dh, authKey string) error {
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme != "https" || u.Host == "" {
		return fmt.Errorf("%w: endpoint must be an https url", common.ErrValidation)
	}
	if p256dh == "" || authKey == "" {
		return fmt.Errorf("%w: keys.p256dh and keys.auth are required", common.ErrValidation)
	}

	return s.repomanager.Subscriptions(s.db).Upsert(ctx, &models.PushSubscription{
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     authKey,
	})
}

// Unsubscribe removes the user's endpoint. Unknown endpoints yield
// common.ErrorNotFound.
func (s *PushService) Unsubscribe(ctx context.Context, userID, endpoint string) error {
	if endpoint == "" {
		return fmt.Errorf("%w: endpoint is required", common.ErrValidation)
	}
	return s.repomanager.Subscriptions(s.db).Delete(ctx, userID, endpoint)
}
