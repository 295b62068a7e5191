package repository

import (
	"context"
	"errors"
	"time"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/jackc/pgx/v5"
)

// videoRepository implements VideoRepository using PostgreSQL
type videoRepository struct {
	pool Pool
}

// NewVideoRepository creates a new instance of VideoRepository
func NewVideoRepository(pool Pool) VideoRepository {
	return &videoRepository{
		pool: pool,
	}
}

// GetByID retrieves a video by its ID
func (r *videoRepository) GetByID(ctx context.Context, id string) (*model.Video, error) {
	sql := `SELECT id, channel_id, title, description, published_at, thumbnail_url, duration,
		duration_minutes, has_transcript, transcript_fetched_at, created_at, updated_at
		FROM videos WHERE id = $1`
	row := r.pool.QueryRow(ctx, sql, id)

	var v model.Video
	err := row.Scan(
		&v.ID, &v.ChannelID, &v.Title, &v.Description, &v.PublishedAt, &v.ThumbnailURL, &v.Duration,
		&v.DurationMinutes, &v.HasTranscript, &v.TranscriptFetchedAt, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "video not found")
		}
		return nil, handlePostgreSQLError(err, "failed to get video")
	}

	return &v, nil
}

// Upsert writes video metadata. New rows start without a transcript; existing rows keep their flags.
func (r *videoRepository) Upsert(ctx context.Context, video *model.Video) error {
	sql := `INSERT INTO videos (id, channel_id, title, description, published_at, thumbnail_url, duration, duration_minutes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			channel_id = EXCLUDED.channel_id,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			published_at = EXCLUDED.published_at,
			thumbnail_url = EXCLUDED.thumbnail_url,
			duration = EXCLUDED.duration,
			duration_minutes = EXCLUDED.duration_minutes,
			updated_at = NOW()`
	_, err := r.pool.Exec(ctx, sql,
		video.ID, video.ChannelID, video.Title, video.Description, video.PublishedAt,
		video.ThumbnailURL, video.Duration, video.DurationMinutes,
	)
	if err != nil {
		return handlePostgreSQLError(err, "failed to upsert video")
	}
	return nil
}

// MarkTranscriptFetched sets has_transcript. transcript_fetched_at keeps its first value.
func (r *videoRepository) MarkTranscriptFetched(ctx context.Context, id string, at time.Time) error {
	sql := `UPDATE videos SET has_transcript = TRUE,
		transcript_fetched_at = COALESCE(transcript_fetched_at, $2),
		updated_at = NOW()
		WHERE id = $1`
	tag, err := r.pool.Exec(ctx, sql, id, at)
	if err != nil {
		return handlePostgreSQLError(err, "failed to mark transcript fetched")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "video not found")
	}
	return nil
}

// ListFullyProcessedIDs returns ids that have a transcript flag and a summary row
func (r *videoRepository) ListFullyProcessedIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return []string{}, nil
	}

	sql := `SELECT v.id FROM videos v
		WHERE v.id = ANY($1) AND v.has_transcript
		AND EXISTS (SELECT 1 FROM summaries s WHERE s.video_id = v.id)`
	rows, err := r.pool.Query(ctx, sql, ids)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to check processed videos")
	}
	defer rows.Close()

	processed := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to scan video id")
		}
		processed = append(processed, id)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to iterate video rows")
	}

	return processed, nil
}

// ListSummarized returns summarized videos of the given channels ordered by published_at descending
func (r *videoRepository) ListSummarized(ctx context.Context, channelIDs []string) ([]model.SummarizedVideo, error) {
	if len(channelIDs) == 0 {
		return []model.SummarizedVideo{}, nil
	}

	sql := `SELECT v.id, v.channel_id, v.title, v.published_at, v.duration, s.summary, s.key_topics, s.highlights
		FROM videos v
		JOIN summaries s ON s.video_id = v.id
		WHERE v.channel_id = ANY($1)
		ORDER BY v.published_at DESC`
	rows, err := r.pool.Query(ctx, sql, channelIDs)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to fetch summaries")
	}
	defer rows.Close()

	videos := []model.SummarizedVideo{}
	for rows.Next() {
		var v model.SummarizedVideo
		err := rows.Scan(&v.VideoID, &v.ChannelID, &v.Title, &v.PublishedAt, &v.Duration,
			&v.Summary, &v.KeyTopics, &v.Highlights)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to scan summarized video row")
		}
		videos = append(videos, v)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to iterate summarized video rows")
	}

	return videos, nil
}
