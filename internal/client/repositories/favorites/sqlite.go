package favorites

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
	"github.com/dmitrijs2005/storykeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const columns = `id, name, description, photo_url, lat, lon, created_at, user_id, origin, added_at`

func (r *SQLiteRepository) Put(ctx context.Context, f *models.Favorite) error {
	query := `INSERT INTO favorites (` + columns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name,
				description = excluded.description,
				photo_url = excluded.photo_url,
				lat = excluded.lat,
				lon = excluded.lon,
				created_at = excluded.created_at,
				user_id = excluded.user_id,
				origin = excluded.origin,
				added_at = excluded.added_at
	`
	origin := f.Origin
	if origin == "" {
		origin = models.OriginServer
	}

	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.Name, f.Description, f.PhotoURL, nullFloat(f.Lat), nullFloat(f.Lon),
		f.CreatedAt.UnixNano(), f.UserID, string(origin), f.AddedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to upsert favorite: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id string) (*models.Favorite, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM favorites WHERE id = ?`, id)

	f, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get favorite %s: %w", id, err)
	}
	return f, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.Favorite, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+columns+` FROM favorites ORDER BY added_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select favorites: %w", err)
	}
	defer rows.Close()

	result := []models.Favorite{}
	for rows.Next() {
		f, err := scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan favorite: %w", err)
		}
		result = append(result, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete favorite: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	n, err := dbx.Count(ctx, r.db, `SELECT COUNT(*) FROM favorites`)
	if err != nil {
		return 0, fmt.Errorf("failed to count favorites: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM favorites`); err != nil {
		return fmt.Errorf("failed to clear favorites: %w", err)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (*models.Favorite, error) {
	var (
		f                  models.Favorite
		lat, lon           sql.NullFloat64
		createdAt, addedAt int64
		origin             string
	)
	if err := row.Scan(&f.ID, &f.Name, &f.Description, &f.PhotoURL, &lat, &lon, &createdAt, &f.UserID, &origin, &addedAt); err != nil {
		return nil, err
	}
	if lat.Valid {
		f.Lat = models.Float(lat.Float64)
	}
	if lon.Valid {
		f.Lon = models.Float(lon.Float64)
	}
	f.CreatedAt = time.Unix(0, createdAt).UTC()
	f.AddedAt = time.Unix(0, addedAt).UTC()
	f.Origin = models.Origin(origin)
	return &f, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
