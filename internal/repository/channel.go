package repository

import (
	"context"

	"github.com/Taichi-iskw/pod-digest/internal/model"
)

// ChannelRepository defines operations for Channel persistence
type ChannelRepository interface {
	// GetByID retrieves a channel by its ID, NOT_FOUND when absent
	GetByID(ctx context.Context, id string) (*model.Channel, error)

	// Upsert inserts a channel or refreshes its metadata
	Upsert(ctx context.Context, channel *model.Channel) error

	// List retrieves channels ordered by title
	List(ctx context.Context, limit, offset int) ([]*model.Channel, error)

	// UpdateSummary stores the generated channel overview
	UpdateSummary(ctx context.Context, id, summary string) error
}
