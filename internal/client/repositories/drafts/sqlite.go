package drafts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/storykeeper/internal/client/models"
	"github.com/dmitrijs2005/storykeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Put(ctx context.Context, d *models.OfflineDraft) (*models.OfflineDraft, error) {
	stored := *d
	if stored.TempID == "" {
		stored.TempID = uuid.NewString()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO offline_stories
				(temp_id, description, photo, photo_name, lat, lon, created_at, user_id, user_name, synced)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(temp_id) DO UPDATE SET description = excluded.description,
				photo = excluded.photo,
				photo_name = excluded.photo_name,
				lat = excluded.lat,
				lon = excluded.lon,
				created_at = excluded.created_at,
				user_id = excluded.user_id,
				user_name = excluded.user_name,
				synced = excluded.synced
	`
	_, err := r.db.ExecContext(ctx, query,
		stored.TempID, stored.Description, stored.Photo, stored.PhotoName,
		nullFloat(stored.Lat), nullFloat(stored.Lon), stored.CreatedAt.UnixNano(),
		stored.UserID, stored.UserName, stored.Synced)
	if err != nil {
		return nil, fmt.Errorf("failed to insert draft: %w", err)
	}
	return &stored, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]models.OfflineDraft, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT temp_id, description, photo, photo_name, lat, lon, created_at, user_id, user_name, synced
		FROM offline_stories ORDER BY created_at ASC, temp_id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to select drafts: %w", err)
	}
	defer rows.Close()

	result := []models.OfflineDraft{}
	for rows.Next() {
		var (
			d         models.OfflineDraft
			lat, lon  sql.NullFloat64
			createdAt int64
		)
		if err := rows.Scan(&d.TempID, &d.Description, &d.Photo, &d.PhotoName, &lat, &lon,
			&createdAt, &d.UserID, &d.UserName, &d.Synced); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		if lat.Valid {
			d.Lat = models.Float(lat.Float64)
		}
		if lon.Valid {
			d.Lon = models.Float(lon.Float64)
		}
		d.CreatedAt = time.Unix(0, createdAt).UTC()
		result = append(result, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, tempID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM offline_stories WHERE temp_id = ?`, tempID); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	n, err := dbx.Count(ctx, r.db, `SELECT COUNT(*) FROM offline_stories`)
	if err != nil {
		return 0, fmt.Errorf("failed to count drafts: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM offline_stories`); err != nil {
		return fmt.Errorf("failed to clear drafts: %w", err)
	}
	return nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
