package subscriptions

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/dbx"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert stores sub keyed by endpoint; re-subscribing refreshes the keys and
// the owner.
func (r *PostgresRepository) Upsert(ctx context.Context, sub *models.PushSubscription) error {
	query :=
		`INSERT INTO push_subscriptions (endpoint, user_id, p256dh, auth)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (endpoint) DO UPDATE
		 SET user_id = EXCLUDED.user_id, p256dh = EXCLUDED.p256dh, auth = EXCLUDED.auth`

	if _, err := r.db.ExecContext(ctx, query, sub.Endpoint, sub.UserID, sub.P256dh, sub.Auth); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Delete removes the user's subscription for endpoint; common.ErrorNotFound
// if there was none.
func (r *PostgresRepository) Delete(ctx context.Context, userID, endpoint string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM push_subscriptions WHERE user_id = $1 AND endpoint = $2`, userID, endpoint)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
