package repository

import (
	"context"
	"errors"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/jackc/pgx/v5"
)

type flagRepository struct {
	pool Pool
}

// NewFlagRepository creates a new instance of FlagRepository
func NewFlagRepository(pool Pool) FlagRepository {
	return &flagRepository{pool: pool}
}

func (r *flagRepository) Get(ctx context.Context, videoID string) (*model.EpisodeFlag, error) {
	sql := "SELECT video_id, watched, favorite FROM episode_flags WHERE video_id = $1"
	row := r.pool.QueryRow(ctx, sql, videoID)

	var f model.EpisodeFlag
	err := row.Scan(&f.VideoID, &f.Watched, &f.Favorite)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &model.EpisodeFlag{VideoID: videoID}, nil
		}
		return nil, handlePostgreSQLError(err, "failed to load episode flags")
	}
	return &f, nil
}

func (r *flagRepository) Upsert(ctx context.Context, videoID string, update FlagUpdate) error {
	if update.Empty() {
		return apperrors.New(apperrors.CodeInvalidArg, "nothing to update")
	}

	sql := `INSERT INTO episode_flags (video_id, watched, favorite)
		VALUES ($1, COALESCE($2::boolean, FALSE), COALESCE($3::boolean, FALSE))
		ON CONFLICT (video_id) DO UPDATE SET
			watched = COALESCE($2::boolean, episode_flags.watched),
			favorite = COALESCE($3::boolean, episode_flags.favorite),
			updated_at = NOW()`
	_, err := r.pool.Exec(ctx, sql, videoID, update.Watched, update.Favorite)
	if err != nil {
		return handlePostgreSQLError(err, "failed to update episode flags")
	}
	return nil
}
