package repository

import (
	"context"

	"github.com/Taichi-iskw/pod-digest/internal/model"
)

// SummaryRepository defines operations for Summary persistence
type SummaryRepository interface {
	// GetByVideoID retrieves the summary of a video, NOT_FOUND when absent
	GetByVideoID(ctx context.Context, videoID string) (*model.Summary, error)

	// Upsert stores a summary keyed by video ID, replacing any previous one
	Upsert(ctx context.Context, summary *model.Summary) error
}
