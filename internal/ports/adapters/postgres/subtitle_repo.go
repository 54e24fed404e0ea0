package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clipworks/internal/domain/clip"
	"clipworks/internal/ports"
)

type subtitleRepository struct {
	db *pgxpool.Pool
}

func NewClipSubtitleRepository(db *pgxpool.Pool) ports.ClipSubtitleRepository {
	return &subtitleRepository{db: db}
}

func (r *subtitleRepository) Save(ctx context.Context, s *clip.Subtitle) error {
	segments, err := json.Marshal(s.Segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}
	query := `
		INSERT INTO clip_subtitles (id, clip_id, segments, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (clip_id) DO UPDATE SET
			id = EXCLUDED.id,
			segments = EXCLUDED.segments,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`
	_, err = r.db.Exec(ctx, query, s.ID, s.ClipID, segments, s.Status, s.CreatedAt, s.UpdatedAt)
	return err
}

func (r *subtitleRepository) FindByClipID(ctx context.Context, clipID string) (*clip.Subtitle, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, clip_id, segments, status, created_at, updated_at FROM clip_subtitles WHERE clip_id = $1`, clipID)

	s := &clip.Subtitle{}
	var segments []byte
	err := row.Scan(&s.ID, &s.ClipID, &segments, &s.Status, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(segments, &s.Segments); err != nil {
		return nil, fmt.Errorf("unmarshal segments: %w", err)
	}
	return s, nil
}

func (r *subtitleRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM clip_subtitles WHERE id = $1`, id)
	return err
}
