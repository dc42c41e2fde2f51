// Package store is the durable client store: cached stories, favorites and
// offline drafts in a local SQLite file.
//
// The database is opened lazily. Every operation first makes sure the file is
// open and migrated; when that fails the operation returns an error wrapping
// common.ErrStorageUnavailable and the next call tries again.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/storykeeper/internal/client/migrations"
	"github.com/dmitrijs2005/storykeeper/internal/client/models"
	"github.com/dmitrijs2005/storykeeper/internal/client/repositories/drafts"
	"github.com/dmitrijs2005/storykeeper/internal/client/repositories/favorites"
	"github.com/dmitrijs2005/storykeeper/internal/client/repositories/stories"
	"github.com/dmitrijs2005/storykeeper/internal/common"
	"github.com/dmitrijs2005/storykeeper/internal/dbx"
	"github.com/dmitrijs2005/storykeeper/internal/logging"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Stats holds row counts per table.
type Stats struct {
	Stories   int
	Favorites int
	Drafts    int
}

type Store struct {
	dsn    string
	logger logging.Logger

	mu        sync.Mutex
	db        *sql.DB
	stories   stories.Repository
	favorites favorites.Repository
	drafts    drafts.Repository
}

// New returns a Store that opens dsn on first use.
func New(dsn string, logger logging.Logger) *Store {
	return &Store{dsn: dsn, logger: logger}
}

// Open creates a Store and initializes it right away.
func Open(ctx context.Context, dsn string, logger logging.Logger) (*Store, error) {
	s := New(dsn, logger)
	if err := s.Initialize(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Initialize opens the database and applies migrations. It is idempotent.
func (s *Store) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.dsn)
	if err != nil {
		return s.unavailable(ctx, err)
	}
	// SQLite allows a single writer; one connection also keeps ":memory:"
	// databases alive across calls.
	db.SetMaxOpenConns(1)

	if err := migrations.Up(ctx, db, migrations.StoreDir); err != nil {
		_ = db.Close()
		return s.unavailable(ctx, err)
	}

	s.db = db
	s.stories = stories.NewSQLiteRepository(db)
	s.favorites = favorites.NewSQLiteRepository(db)
	s.drafts = drafts.NewSQLiteRepository(db)
	return nil
}

func (s *Store) unavailable(ctx context.Context, err error) error {
	s.logger.Warn(ctx, "durable store unavailable", "dsn", s.dsn, "error", err)
	return fmt.Errorf("%w: %v", common.ErrStorageUnavailable, err)
}

// Close releases the database handle. The store may be reopened afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *Store) ensure(ctx context.Context) error {
	return s.Initialize(ctx)
}

func (s *Store) PutStory(ctx context.Context, story *models.Story) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	return s.stories.Put(ctx, story)
}

// GetStory returns (nil, nil) when the story is not cached.
func (s *Store) GetStory(ctx context.Context, id string) (*models.Story, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.stories.Get(ctx, id)
}

func (s *Store) ListStories(ctx context.Context) ([]models.Story, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.stories.List(ctx)
}

func (s *Store) DeleteStory(ctx context.Context, id string) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	return s.stories.Delete(ctx, id)
}

func (s *Store) PutFavorite(ctx context.Context, fav *models.Favorite) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	return s.favorites.Put(ctx, fav)
}

// GetFavorite returns (nil, nil) when the story is not a favorite.
func (s *Store) GetFavorite(ctx context.Context, id string) (*models.Favorite, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.favorites.Get(ctx, id)
}

func (s *Store) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.favorites.List(ctx)
}

func (s *Store) DeleteFavorite(ctx context.Context, id string) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	return s.favorites.Delete(ctx, id)
}

// PutOfflineDraft stores a draft and returns it with its TempID set.
func (s *Store) PutOfflineDraft(ctx context.Context, d *models.OfflineDraft) (*models.OfflineDraft, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.drafts.Put(ctx, d)
}

func (s *Store) ListOfflineDrafts(ctx context.Context) ([]models.OfflineDraft, error) {
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	return s.drafts.List(ctx)
}

func (s *Store) DeleteOfflineDraft(ctx context.Context, tempID string) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}
	return s.drafts.Delete(ctx, tempID)
}

func (s *Store) Stats(ctx context.Context) (Stats, error) {
	if err := s.ensure(ctx); err != nil {
		return Stats{}, err
	}

	var st Stats
	var err error
	if st.Stories, err = s.stories.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.Favorites, err = s.favorites.Count(ctx); err != nil {
		return Stats{}, err
	}
	if st.Drafts, err = s.drafts.Count(ctx); err != nil {
		return Stats{}, err
	}
	return st, nil
}

// Clear wipes all three tables in one transaction.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.ensure(ctx); err != nil {
		return err
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := stories.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		if err := favorites.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return drafts.NewSQLiteRepository(tx).Clear(ctx)
	})
}
