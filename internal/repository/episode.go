package repository

import (
	"context"

	"github.com/Taichi-iskw/pod-digest/internal/model"
)

// DefaultEpisodeLimit bounds episode listings when no limit is given
const DefaultEpisodeLimit = 50

// EpisodeFilter narrows an episode listing
type EpisodeFilter struct {
	ChannelID string
	Limit     int
}

// EpisodeRepository reads the browse view joining videos, channels, summaries and flags
type EpisodeRepository interface {
	// List returns episodes newest first
	List(ctx context.Context, filter EpisodeFilter) ([]model.Episode, error)

	// GetByID returns one episode, NOT_FOUND when the video does not exist
	GetByID(ctx context.Context, id string) (*model.Episode, error)
}
