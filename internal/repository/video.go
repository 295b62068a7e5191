package repository

import (
	"context"
	"time"

	"github.com/Taichi-iskw/pod-digest/internal/model"
)

// VideoRepository defines operations for Video persistence
type VideoRepository interface {
	// GetByID retrieves a video by its ID, NOT_FOUND when absent
	GetByID(ctx context.Context, id string) (*model.Video, error)

	// Upsert writes video metadata without touching the transcript flags of an existing row
	Upsert(ctx context.Context, video *model.Video) error

	// MarkTranscriptFetched sets has_transcript and records the first fetch time
	MarkTranscriptFetched(ctx context.Context, id string, at time.Time) error

	// ListFullyProcessedIDs returns the subset of ids having a transcript flag and a summary row
	ListFullyProcessedIDs(ctx context.Context, ids []string) ([]string, error)

	// ListSummarized returns summarized videos of the given channels, newest first
	ListSummarized(ctx context.Context, channelIDs []string) ([]model.SummarizedVideo, error)
}
