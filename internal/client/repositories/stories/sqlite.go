package stories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
	"github.com/dmitrijs2005/storykeeper/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db  dbx.DBTX
	now func() time.Time
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

const columns = `id, name, description, photo_url, lat, lon, created_at, user_id, origin`

// Put upserts a story by id. saved_at records when the copy was cached.
func (r *SQLiteRepository) Put(ctx context.Context, s *models.Story) error {
	query := `INSERT INTO stories (` + columns + `, saved_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				description = excluded.description,
				photo_url = excluded.photo_url,
				lat = excluded.lat,
				lon = excluded.lon,
				created_at = excluded.created_at,
				user_id = excluded.user_id,
				origin = excluded.origin,
				saved_at = excluded.saved_at
	`
	origin := s.Origin
	if origin == "" {
		origin = models.OriginServer
	}

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.Name, s.Description, s.PhotoURL, nullFloat(s.Lat), nullFloat(s.Lon),
		s.CreatedAt.UnixNano(), s.UserID, string(origin), r.now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert story: %w", err)
	}
	return nil
}

// Get returns a cached story or (nil, nil) when absent.
func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Story, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM stories WHERE id = ?`, id)

	s, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get story %s: %w", id, err)
	}
	return s, nil
}

// List returns all cached stories, newest first.
func (r *SQLiteRepository) List(ctx context.Context) ([]models.Story, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM stories ORDER BY created_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select stories: %w", err)
	}
	defer rows.Close()

	result := []models.Story{}
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan story: %w", err)
		}
		result = append(result, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Delete removes a story. Deleting a missing id is not an error.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete story: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	n, err := dbx.Count(ctx, r.db, `SELECT COUNT(*) FROM stories`)
	if err != nil {
		return 0, fmt.Errorf("failed to count stories: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM stories`); err != nil {
		return fmt.Errorf("failed to clear stories: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Story, error) {
	var (
		s         models.Story
		lat, lon  sql.NullFloat64
		createdAt int64
		origin    string
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &s.PhotoURL, &lat, &lon, &createdAt, &s.UserID, &origin); err != nil {
		return nil, err
	}
	s.Lat = floatPtr(lat)
	s.Lon = floatPtr(lon)
	s.CreatedAt = time.Unix(0, createdAt).UTC()
	s.Origin = models.Origin(origin)
	return &s, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
