package repository

import (
	"context"
	"errors"
	"strconv"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/jackc/pgx/v5"
)

// UnknownChannelTitle is shown for episodes whose channel row is missing
const UnknownChannelTitle = "Unknown channel"

const episodeSelect = `SELECT v.id, v.title, v.channel_id, c.title, v.published_at, v.thumbnail_url,
	v.duration_minutes, s.summary, s.highlights, s.key_topics, f.watched, f.favorite
	FROM videos v
	LEFT JOIN channels c ON c.id = v.channel_id
	LEFT JOIN summaries s ON s.video_id = v.id
	LEFT JOIN episode_flags f ON f.video_id = v.id`

type episodeRepository struct {
	pool Pool
}

// NewEpisodeRepository creates a new instance of EpisodeRepository
func NewEpisodeRepository(pool Pool) EpisodeRepository {
	return &episodeRepository{pool: pool}
}

// List returns episodes ordered by published_at descending
func (r *episodeRepository) List(ctx context.Context, filter EpisodeFilter) ([]model.Episode, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultEpisodeLimit
	}

	sql := episodeSelect
	args := []any{}
	if filter.ChannelID != "" {
		args = append(args, filter.ChannelID)
		sql += " WHERE v.channel_id = $1"
	}
	args = append(args, limit)
	sql += " ORDER BY v.published_at DESC LIMIT $" + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to load episodes")
	}
	defer rows.Close()

	episodes := []model.Episode{}
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to scan episode row")
		}
		episodes = append(episodes, *episode)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to iterate episode rows")
	}

	return episodes, nil
}

// GetByID returns one episode
func (r *episodeRepository) GetByID(ctx context.Context, id string) (*model.Episode, error) {
	row := r.pool.QueryRow(ctx, episodeSelect+" WHERE v.id = $1", id)

	episode, err := scanEpisode(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "episode not found")
		}
		return nil, handlePostgreSQLError(err, "failed to load episode")
	}
	return episode, nil
}

func scanEpisode(row pgx.Row) (*model.Episode, error) {
	var (
		e            model.Episode
		channelTitle *string
		watched      *bool
		favorite     *bool
	)
	err := row.Scan(
		&e.ID, &e.Title, &e.ChannelID, &channelTitle, &e.PublishedAt, &e.ThumbnailURL,
		&e.DurationMinutes, &e.Summary, &e.Highlights, &e.KeyTopics, &watched, &favorite,
	)
	if err != nil {
		return nil, err
	}

	e.ChannelTitle = UnknownChannelTitle
	if channelTitle != nil {
		e.ChannelTitle = *channelTitle
	}
	if e.Highlights == nil {
		e.Highlights = []string{}
	}
	if e.KeyTopics == nil {
		e.KeyTopics = []string{}
	}
	e.Watched = watched != nil && *watched
	e.Favorite = favorite != nil && *favorite
	e.YoutubeURL = model.WatchURL(e.ID)

	return &e, nil
}
