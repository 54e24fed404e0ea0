package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clipworks/internal/domain/video"
	"clipworks/internal/ports"
)

type jobRepository struct {
	db *pgxpool.Pool
}

func NewProcessingJobRepository(db *pgxpool.Pool) ports.ProcessingJobRepository {
	return &jobRepository{db: db}
}

func (r *jobRepository) Save(ctx context.Context, j *video.ProcessingJob) error {
	query := `
		INSERT INTO processing_jobs (id, video_id, instructions, single_clip, status,
			raw_ai_response, error_message, started_at, completed_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			raw_ai_response = EXCLUDED.raw_ai_response,
			error_message = EXCLUDED.error_message,
			started_at = EXCLUDED.started_at,
			completed_at = EXCLUDED.completed_at,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.db.Exec(ctx, query,
		j.ID, j.VideoID, j.Instructions, j.SingleClip, j.Status,
		nullIfEmpty(j.RawAIResponse), nullIfEmpty(j.ErrorMessage), j.StartedAt, j.CompletedAt,
		j.CreatedAt, j.UpdatedAt)
	return err
}

const jobColumns = `id, video_id, instructions, single_clip, status,
	COALESCE(raw_ai_response, ''), COALESCE(error_message, ''), started_at, completed_at, created_at, updated_at`

func (r *jobRepository) FindByID(ctx context.Context, id string) (*video.ProcessingJob, error) {
	row := r.db.QueryRow(ctx, `SELECT `+jobColumns+` FROM processing_jobs WHERE id = $1`, id)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

func (r *jobRepository) FindByVideoID(ctx context.Context, videoID string) ([]video.ProcessingJob, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+jobColumns+` FROM processing_jobs WHERE video_id = $1 ORDER BY created_at ASC`, videoID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []video.ProcessingJob
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func (r *jobRepository) FindOldestPending(ctx context.Context) (*video.ProcessingJob, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM processing_jobs WHERE status = $1 ORDER BY created_at ASC LIMIT 1`,
		video.JobPending)
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

func (r *jobRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM processing_jobs WHERE id = $1`, id)
	return err
}

func scanJob(row pgx.Row) (*video.ProcessingJob, error) {
	j := &video.ProcessingJob{}
	err := row.Scan(&j.ID, &j.VideoID, &j.Instructions, &j.SingleClip, &j.Status,
		&j.RawAIResponse, &j.ErrorMessage, &j.StartedAt, &j.CompletedAt, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return j, nil
}
