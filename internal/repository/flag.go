package repository

import (
	"context"

	"github.com/Taichi-iskw/pod-digest/internal/model"
)

// FlagUpdate carries the flags to change. Nil fields are left as they are.
type FlagUpdate struct {
	Watched  *bool
	Favorite *bool
}

// Empty reports whether the update changes nothing
func (u FlagUpdate) Empty() bool {
	return u.Watched == nil && u.Favorite == nil
}

// FlagRepository defines operations for per-episode viewer flags
type FlagRepository interface {
	// Get returns the flags of a video, all false when none are stored
	Get(ctx context.Context, videoID string) (*model.EpisodeFlag, error)

	// Upsert applies a partial update keyed by video ID
	Upsert(ctx context.Context, videoID string, update FlagUpdate) error
}
