package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clipworks/internal/domain/clip"
	"clipworks/internal/ports"
)

type clipRepository struct {
	db *pgxpool.Pool
}

func NewClipRepository(db *pgxpool.Pool) ports.ClipRepository {
	return &clipRepository{db: db}
}

func (r *clipRepository) Save(ctx context.Context, c *clip.Clip) error {
	query := `
		INSERT INTO clips (id, video_id, title, start_time_seconds, end_time_seconds, duration_seconds,
			status, transcript, reason, origin_file_id, cache_uri, cache_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			status = EXCLUDED.status,
			origin_file_id = EXCLUDED.origin_file_id,
			cache_uri = EXCLUDED.cache_uri,
			cache_expires_at = EXCLUDED.cache_expires_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		c.ID, c.VideoID, c.Title, c.StartTimeSeconds, c.EndTimeSeconds, c.DurationSeconds,
		c.Status, nullIfEmpty(c.Transcript), nullIfEmpty(c.Reason), nullIfEmpty(c.OriginFileID),
		nullIfEmpty(c.Cache.StorageURI), nullIfZeroTime(c.Cache.ExpiresAt), c.CreatedAt, c.UpdatedAt)
	return err
}

const clipColumns = `id, video_id, title, start_time_seconds, end_time_seconds, duration_seconds,
	status, COALESCE(transcript, ''), COALESCE(reason, ''), COALESCE(origin_file_id, ''),
	COALESCE(cache_uri, ''), cache_expires_at, created_at, updated_at`

func (r *clipRepository) FindByID(ctx context.Context, id string) (*clip.Clip, error) {
	row := r.db.QueryRow(ctx, `SELECT `+clipColumns+` FROM clips WHERE id = $1`, id)
	c, err := scanClip(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (r *clipRepository) FindByVideoID(ctx context.Context, videoID string) ([]clip.Clip, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+clipColumns+` FROM clips WHERE video_id = $1 ORDER BY start_time_seconds ASC`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []clip.Clip
	for rows.Next() {
		c, err := scanClip(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

func (r *clipRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM clips WHERE id = $1`, id)
	return err
}

func scanClip(row pgx.Row) (*clip.Clip, error) {
	c := &clip.Clip{}
	var cacheExpires *time.Time
	err := row.Scan(&c.ID, &c.VideoID, &c.Title, &c.StartTimeSeconds, &c.EndTimeSeconds, &c.DurationSeconds,
		&c.Status, &c.Transcript, &c.Reason, &c.OriginFileID,
		&c.Cache.StorageURI, &cacheExpires, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if cacheExpires != nil {
		c.Cache.ExpiresAt = *cacheExpires
	}
	return c, nil
}
