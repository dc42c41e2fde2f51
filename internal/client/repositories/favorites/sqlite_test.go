package favorites

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE favorites (
  id          TEXT PRIMARY KEY,
  name        TEXT NOT NULL DEFAULT '',
  description TEXT NOT NULL DEFAULT '',
  photo_url   TEXT NOT NULL DEFAULT '',
  lat         REAL,
  lon         REAL,
  created_at  INTEGER NOT NULL,
  user_id     TEXT NOT NULL DEFAULT '',
  origin      TEXT NOT NULL DEFAULT 'server',
  added_at    INTEGER NOT NULL
);`)
	require.NoError(t, err)
	return db
}

func fav(id string, added time.Time) *models.Favorite {
	return &models.Favorite{
		Story: models.Story{
			ID:        id,
			Name:      "Ayu",
			PhotoURL:  "https://example.test/p.jpg",
			CreatedAt: time.Unix(50, 0).UTC(),
			Origin:    models.OriginServer,
		},
		AddedAt: added,
	}
}

func TestPutGet_RoundTripWithoutLocation(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	f := fav("s1", time.Unix(0, 1700000000123456789).UTC())
	require.NoError(t, r.Put(ctx, f))

	got, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, *f, *got)
	assert.Nil(t, got.Lat)
	assert.False(t, got.HasLocation())
}

func TestGet_NotFavorite_ReturnsNilNil(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))

	got, err := r.Get(context.Background(), "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestPut_TwiceKeepsOneRow(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, fav("s1", time.Unix(1, 0).UTC())))
	require.NoError(t, r.Put(ctx, fav("s1", time.Unix(2, 0).UTC())))

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestList_OrderedByAddedAtDesc(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, fav("first", time.Unix(10, 0).UTC())))
	require.NoError(t, r.Put(ctx, fav("third", time.Unix(30, 0).UTC())))
	require.NoError(t, r.Put(ctx, fav("second", time.Unix(20, 0).UTC())))

	list, err := r.List(ctx)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, f := range list {
		ids = append(ids, f.ID)
	}
	assert.Equal(t, []string{"third", "second", "first"}, ids)
}

func TestDelete_IsIdempotent(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, fav("s1", time.Unix(1, 0).UTC())))
	require.NoError(t, r.Delete(ctx, "s1"))
	require.NoError(t, r.Delete(ctx, "s1"))

	got, err := r.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestClear(t *testing.T) {
	r := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, r.Put(ctx, fav("a", time.Unix(1, 0).UTC())))
	require.NoError(t, r.Put(ctx, fav("b", time.Unix(2, 0).UTC())))
	require.NoError(t, r.Clear(ctx))

	list, err := r.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestErrorsWrapped_WhenDBClosed(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()
	require.NoError(t, db.Close())

	require.ErrorContains(t, r.Put(ctx, fav("x", time.Now())), "failed to upsert favorite")
	require.ErrorContains(t, r.Delete(ctx, "x"), "failed to delete favorite")
	require.ErrorContains(t, r.Clear(ctx), "failed to clear favorites")

	_, err := r.List(ctx)
	require.ErrorContains(t, err, "failed to select favorites")
}
