package repository

import (
	"context"
	"errors"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/jackc/pgx/v5"
)

const channelColumns = "id, title, description, thumbnail_url, subscriber_count, channel_summary, created_at, updated_at"

// channelRepository implements ChannelRepository using PostgreSQL
type channelRepository struct {
	pool Pool
}

// NewChannelRepository creates a new instance of ChannelRepository
func NewChannelRepository(pool Pool) ChannelRepository {
	return &channelRepository{
		pool: pool,
	}
}

// GetByID retrieves a channel by its ID
func (r *channelRepository) GetByID(ctx context.Context, id string) (*model.Channel, error) {
	sql := "SELECT " + channelColumns + " FROM channels WHERE id = $1"
	row := r.pool.QueryRow(ctx, sql, id)

	channel, err := scanChannel(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.Wrap(err, apperrors.CodeNotFound, "channel not found")
		}
		return nil, handlePostgreSQLError(err, "failed to get channel")
	}

	return channel, nil
}

// Upsert inserts a channel or refreshes its metadata. An existing channel_summary survives a nil summary.
func (r *channelRepository) Upsert(ctx context.Context, channel *model.Channel) error {
	sql := `INSERT INTO channels (id, title, description, thumbnail_url, subscriber_count, channel_summary)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			thumbnail_url = EXCLUDED.thumbnail_url,
			subscriber_count = EXCLUDED.subscriber_count,
			channel_summary = COALESCE(EXCLUDED.channel_summary, channels.channel_summary),
			updated_at = NOW()`
	_, err := r.pool.Exec(ctx, sql,
		channel.ID, channel.Title, channel.Description, channel.ThumbnailURL,
		channel.SubscriberCount, channel.ChannelSummary,
	)
	if err != nil {
		return handlePostgreSQLError(err, "failed to upsert channel")
	}
	return nil
}

// List retrieves channels ordered by title with pagination
func (r *channelRepository) List(ctx context.Context, limit, offset int) ([]*model.Channel, error) {
	sql := "SELECT " + channelColumns + " FROM channels ORDER BY title LIMIT $1 OFFSET $2"
	rows, err := r.pool.Query(ctx, sql, limit, offset)
	if err != nil {
		return nil, handlePostgreSQLError(err, "failed to list channels")
	}
	defer rows.Close()

	channels := []*model.Channel{}
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to scan channel row")
		}
		channels = append(channels, channel)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "failed to iterate channel rows")
	}

	return channels, nil
}

// UpdateSummary stores the generated channel overview
func (r *channelRepository) UpdateSummary(ctx context.Context, id, summary string) error {
	sql := "UPDATE channels SET channel_summary = $2, updated_at = NOW() WHERE id = $1"
	tag, err := r.pool.Exec(ctx, sql, id, summary)
	if err != nil {
		return handlePostgreSQLError(err, "failed to update channel summary")
	}
	if tag.RowsAffected() == 0 {
		return apperrors.New(apperrors.CodeNotFound, "channel not found")
	}
	return nil
}

func scanChannel(row pgx.Row) (*model.Channel, error) {
	var c model.Channel
	err := row.Scan(
		&c.ID, &c.Title, &c.Description, &c.ThumbnailURL,
		&c.SubscriberCount, &c.ChannelSummary, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
