package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"clipworks/internal/domain/transcript"
	"clipworks/internal/ports"
)

type transcriptionRepository struct {
	db *pgxpool.Pool
}

func NewTranscriptionRepository(db *pgxpool.Pool) ports.TranscriptionRepository {
	return &transcriptionRepository{db: db}
}

// Save replaces any previous transcription of the same video; a video owns
// at most one.
func (r *transcriptionRepository) Save(ctx context.Context, t *transcript.Transcription) error {
	segments, err := json.Marshal(t.Segments)
	if err != nil {
		return fmt.Errorf("marshal segments: %w", err)
	}
	query := `
		INSERT INTO transcriptions (id, video_id, full_text, segments, language_code, duration_seconds, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (video_id) DO UPDATE SET
			id = EXCLUDED.id,
			full_text = EXCLUDED.full_text,
			segments = EXCLUDED.segments,
			language_code = EXCLUDED.language_code,
			duration_seconds = EXCLUDED.duration_seconds,
			created_at = EXCLUDED.created_at
	`
	_, err = r.db.Exec(ctx, query,
		t.ID, t.VideoID, t.FullText, segments, t.LanguageCode, t.DurationSeconds, t.CreatedAt)
	return err
}

func (r *transcriptionRepository) FindByVideoID(ctx context.Context, videoID string) (*transcript.Transcription, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, video_id, full_text, segments, language_code, duration_seconds, created_at
		 FROM transcriptions WHERE video_id = $1`, videoID)

	t := &transcript.Transcription{}
	var segments []byte
	err := row.Scan(&t.ID, &t.VideoID, &t.FullText, &segments, &t.LanguageCode, &t.DurationSeconds, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(segments, &t.Segments); err != nil {
		return nil, fmt.Errorf("unmarshal segments: %w", err)
	}
	return t, nil
}

func (r *transcriptionRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM transcriptions WHERE id = $1`, id)
	return err
}

type refinedRepository struct {
	db *pgxpool.Pool
}

func NewRefinedTranscriptionRepository(db *pgxpool.Pool) ports.RefinedTranscriptionRepository {
	return &refinedRepository{db: db}
}

func (r *refinedRepository) Save(ctx context.Context, t *transcript.RefinedTranscription) error {
	sentences, err := json.Marshal(t.Sentences)
	if err != nil {
		return fmt.Errorf("marshal sentences: %w", err)
	}
	query := `
		INSERT INTO refined_transcriptions (id, video_id, transcription_id, full_text, sentences, dictionary_version, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (video_id) DO UPDATE SET
			id = EXCLUDED.id,
			transcription_id = EXCLUDED.transcription_id,
			full_text = EXCLUDED.full_text,
			sentences = EXCLUDED.sentences,
			dictionary_version = EXCLUDED.dictionary_version,
			created_at = EXCLUDED.created_at
	`
	_, err = r.db.Exec(ctx, query,
		t.ID, t.VideoID, t.TranscriptionID, t.FullText, sentences, t.DictionaryVersion, t.CreatedAt)
	return err
}

func (r *refinedRepository) FindByVideoID(ctx context.Context, videoID string) (*transcript.RefinedTranscription, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, video_id, transcription_id, full_text, sentences, dictionary_version, created_at
		 FROM refined_transcriptions WHERE video_id = $1`, videoID)

	t := &transcript.RefinedTranscription{}
	var sentences []byte
	err := row.Scan(&t.ID, &t.VideoID, &t.TranscriptionID, &t.FullText, &sentences, &t.DictionaryVersion, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(sentences, &t.Sentences); err != nil {
		return nil, fmt.Errorf("unmarshal sentences: %w", err)
	}
	return t, nil
}

func (r *refinedRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM refined_transcriptions WHERE id = $1`, id)
	return err
}
