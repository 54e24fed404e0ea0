package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clipworks/internal/domain/video"
	"clipworks/internal/ports"
)

type videoRepository struct {
	db *pgxpool.Pool
}

func NewVideoRepository(db *pgxpool.Pool) ports.VideoRepository {
	return &videoRepository{db: db}
}

func (r *videoRepository) Save(ctx context.Context, v *video.Video) error {
	query := `
		INSERT INTO videos (id, origin_url, origin_file_id, title, duration_seconds, size_bytes,
			status, error_message, cache_uri, cache_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			duration_seconds = EXCLUDED.duration_seconds,
			size_bytes = EXCLUDED.size_bytes,
			status = EXCLUDED.status,
			error_message = EXCLUDED.error_message,
			cache_uri = EXCLUDED.cache_uri,
			cache_expires_at = EXCLUDED.cache_expires_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		v.ID, v.OriginURL, v.OriginFileID, v.Title, v.DurationSeconds, v.SizeBytes,
		v.Status, v.ErrorMessage, nullIfEmpty(v.Cache.StorageURI), nullIfZeroTime(v.Cache.ExpiresAt),
		v.CreatedAt, v.UpdatedAt)
	return err
}

const videoColumns = `id, origin_url, origin_file_id, COALESCE(title, ''), duration_seconds, size_bytes,
	status, COALESCE(error_message, ''), COALESCE(cache_uri, ''), cache_expires_at, created_at, updated_at`

func (r *videoRepository) FindByID(ctx context.Context, id string) (*video.Video, error) {
	row := r.db.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)
	return scanVideo(row)
}

func (r *videoRepository) FindByOriginFileID(ctx context.Context, fileID string) (*video.Video, error) {
	row := r.db.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE origin_file_id = $1`, fileID)
	return scanVideo(row)
}

func (r *videoRepository) List(ctx context.Context, page, limit int, status video.Status) ([]video.Video, int, error) {
	offset := (page - 1) * limit

	var total int
	var rows pgx.Rows
	var err error
	if status == "" {
		if err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM videos`).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err = r.db.Query(ctx,
			`SELECT `+videoColumns+` FROM videos ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	} else {
		if err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM videos WHERE status = $1`, status).Scan(&total); err != nil {
			return nil, 0, err
		}
		rows, err = r.db.Query(ctx,
			`SELECT `+videoColumns+` FROM videos WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
			status, limit, offset)
	}
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []video.Video
	for rows.Next() {
		v, err := scanVideoRow(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *v)
	}
	return out, total, rows.Err()
}

func (r *videoRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	return err
}

func scanVideo(row pgx.Row) (*video.Video, error) {
	v, err := scanVideoRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

func scanVideoRow(row pgx.Row) (*video.Video, error) {
	v := &video.Video{}
	var cacheExpires *time.Time
	err := row.Scan(&v.ID, &v.OriginURL, &v.OriginFileID, &v.Title, &v.DurationSeconds, &v.SizeBytes,
		&v.Status, &v.ErrorMessage, &v.Cache.StorageURI, &cacheExpires, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if cacheExpires != nil {
		v.Cache.ExpiresAt = *cacheExpires
	}
	return v, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIfZeroTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
