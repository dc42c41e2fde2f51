package stories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
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

var cols = []string{"id", "user_id", "name", "description", "photo_key", "lat", "lon", "created_at"}

func fptr(v float64) *float64 { return &v }

func TestCreate_NullableCoordinates(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT\s+INTO\s+stories`).
		WithArgs("st-1", "u-1", "hello", "k/1", sql.NullFloat64{Float64: -6.2, Valid: true}, sql.NullFloat64{}, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Create(context.Background(), &models.Story{
		ID: "st-1", UserID: "u-1", Description: "hello", PhotoKey: "k/1", Lat: fptr(-6.2), CreatedAt: now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec(`INSERT\s+INTO\s+stories`).WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &models.Story{ID: "st-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error: db down")
}

func TestGetByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*s\.user_id\s+WHERE\s+s\.id\s*=\s*\$1`).
		WithArgs("st-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("st-1", "u-1", "Ann", "hello", "k/1", nil, nil, now))

	got, err := repo.GetByID(context.Background(), "st-1")
	require.NoError(t, err)
	assert.Equal(t, &models.Story{ID: "st-1", UserID: "u-1", Name: "Ann", Description: "hello", PhotoKey: "k/1", CreatedAt: now}, got)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`WHERE\s+s\.id`).WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "nope")
	require.ErrorIs(t, err, common.ErrorNotFound)
}

func TestList_PageAndLocationFilter(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`ORDER\s+BY\s+s\.created_at\s+DESC,\s*s\.id\s+LIMIT\s+\$1\s+OFFSET\s+\$2`).
		WithArgs(10, 20, true).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("st-2", "u-1", "Ann", "b", "k/2", 1.5, 2.5, now).
			AddRow("st-1", "u-1", "Ann", "a", "k/1", 3.5, 4.5, now.Add(-time.Hour)))

	got, err := repo.List(context.Background(), ListFilter{Limit: 10, Offset: 20, WithLocation: true})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "st-2", got[0].ID)
	assert.Equal(t, fptr(1.5), got[0].Lat)
	assert.Equal(t, fptr(4.5), got[1].Lon)
}

func TestList_ScanError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`FROM\s+stories`).
		WillReturnRows(sqlmock.NewRows(cols).AddRow("st-1", "u-1", "Ann", "a", "k", "north", nil, time.Now()))

	_, err := repo.List(context.Background(), ListFilter{Limit: 1})
	require.Error(t, err)
}
