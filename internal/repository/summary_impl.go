package repository

import (
	"context"
	"errors"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/jackc/pgx/v5"
)

type summaryRepository struct {
	pool Pool
}

// NewSummaryRepository creates a new instance of SummaryRepository
func NewSummaryRepository(pool Pool) SummaryRepository {
	return &summaryRepository{pool: pool}
}

func (r *summaryRepository) GetByVideoID(ctx context.Context, videoID string) (*model.Summary, error) {
	sql := `SELECT id, video_id, summary, key_topics, highlights, model, created_at, updated_at
		FROM summaries WHERE video_id = $1`
	row := r.pool.QueryRow(ctx, sql, videoID)

	var s model.Summary
	err := row.Scan(&s.ID, &s.VideoID, &s.Summary, &s.KeyTopics, &s.Highlights, &s.Model, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "summary not found")
		}
		return nil, handlePostgreSQLError(err, "failed to get summary")
	}

	return &s, nil
}

func (r *summaryRepository) Upsert(ctx context.Context, summary *model.Summary) error {
	sql := `INSERT INTO summaries (video_id, summary, key_topics, highlights, model) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (video_id) DO UPDATE SET
			summary = EXCLUDED.summary,
			key_topics = EXCLUDED.key_topics,
			highlights = EXCLUDED.highlights,
			model = EXCLUDED.model,
			updated_at = NOW()`
	_, err := r.pool.Exec(ctx, sql,
		summary.VideoID, summary.Summary, nonNil(summary.KeyTopics), nonNil(summary.Highlights), summary.Model,
	)
	if err != nil {
		return handlePostgreSQLError(err, "failed to store summary")
	}
	return nil
}

// nonNil keeps NOT NULL text[] columns from receiving SQL NULL
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
