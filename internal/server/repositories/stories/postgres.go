package stories

import (
	"context"
	"database/sql"
	"errors"
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

func (r *PostgresRepository) Create(ctx context.Context, s *models.Story) error {
	query :=
		`INSERT INTO stories (id, user_id, description, photo_key, lat, lon, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.Description, s.PhotoKey, nullFloat(s.Lat), nullFloat(s.Lon), s.CreatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

const selectStory = `SELECT s.id, s.user_id, u.name, s.description, s.photo_key, s.lat, s.lon, s.created_at
	 FROM stories s JOIN users u ON u.id = s.user_id`

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Story, error) {
	row := r.db.QueryRowContext(ctx, selectStory+` WHERE s.id = $1`, id)

	s, err := scanStory(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return s, nil
}

func (r *PostgresRepository) List(ctx context.Context, f ListFilter) ([]*models.Story, error) {
	query := selectStory + `
	 WHERE NOT $3 OR (s.lat IS NOT NULL AND s.lon IS NOT NULL)
	 ORDER BY s.created_at DESC, s.id
	 LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, f.Limit, f.Offset, f.WithLocation)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var out []*models.Story
	for rows.Next() {
		s, err := scanStory(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStory(sc scanner) (*models.Story, error) {
	var (
		s        models.Story
		lat, lon sql.NullFloat64
	)
	if err := sc.Scan(&s.ID, &s.UserID, &s.Name, &s.Description, &s.PhotoKey, &lat, &lon, &s.CreatedAt); err != nil {
		return nil, err
	}
	if lat.Valid {
		s.Lat = &lat.Float64
	}
	if lon.Valid {
		s.Lon = &lon.Float64
	}
	return &s, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
