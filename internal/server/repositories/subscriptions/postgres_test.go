package subscriptions

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestUpsert(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`(?s)INSERT\s+INTO\s+push_subscriptions.*ON\s+CONFLICT\s+\(endpoint\)\s+DO\s+UPDATE`).
		WithArgs("https://push/1", "u-1", "key", "secret").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), &models.PushSubscription{UserID: "u-1", Endpoint: "https://push/1", P256dh: "key", Auth: "secret"})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	mock.ExpectExec(`INSERT`).WillReturnError(errors.New("db down"))

	require.Error(t, repo.Upsert(context.Background(), &models.PushSubscription{}))
}

func TestDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`DELETE\s+FROM\s+push_subscriptions\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+endpoint\s*=\s*\$2`).
		WithArgs("u-1", "https://push/1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE`).
		WithArgs("u-1", "https://push/2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Delete(context.Background(), "u-1", "https://push/1"))
	require.ErrorIs(t, repo.Delete(context.Background(), "u-1", "https://push/2"), common.ErrorNotFound)
}
