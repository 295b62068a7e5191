package repository

import (
	"context"
	"errors"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/jackc/pgx/v5"
)

type transcriptRepository struct {
	pool Pool
}

// NewTranscriptRepository creates a new instance of TranscriptRepository
func NewTranscriptRepository(pool Pool) TranscriptRepository {
	return &transcriptRepository{pool: pool}
}

func (r *transcriptRepository) GetByVideoID(ctx context.Context, videoID string) (*model.Transcript, error) {
	sql := "SELECT id, video_id, content, language, created_at FROM transcripts WHERE video_id = $1"
	row := r.pool.QueryRow(ctx, sql, videoID)

	var t model.Transcript
	err := row.Scan(&t.ID, &t.VideoID, &t.Content, &t.Language, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "transcript not found")
		}
		return nil, handlePostgreSQLError(err, "failed to get transcript")
	}

	return &t, nil
}

func (r *transcriptRepository) Insert(ctx context.Context, transcript *model.Transcript) (*model.Transcript, error) {
	sql := `WITH inserted AS (
			INSERT INTO transcripts (video_id, content, language) VALUES ($1, $2, $3)
			ON CONFLICT (video_id) DO NOTHING
			RETURNING id, video_id, content, language, created_at
		)
		SELECT id, video_id, content, language, created_at FROM inserted
		UNION ALL
		SELECT id, video_id, content, language, created_at FROM transcripts
		WHERE video_id = $1 AND NOT EXISTS (SELECT 1 FROM inserted)`
	row := r.pool.QueryRow(ctx, sql, transcript.VideoID, transcript.Content, transcript.Language)

	var t model.Transcript
	err := row.Scan(&t.ID, &t.VideoID, &t.Content, &t.Language, &t.CreatedAt)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to store transcript")
	}
	return &t, nil
}
