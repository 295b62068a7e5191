package repository

import (
	"context"

	"github.com/Taichi-iskw/pod-digest/internal/model"
)

// TranscriptRepository defines operations for Transcript persistence
type TranscriptRepository interface {
	// GetByVideoID retrieves the transcript of a video, NOT_FOUND when absent
	GetByVideoID(ctx context.Context, videoID string) (*model.Transcript, error)

	// Insert stores a transcript unless the video already has one, and returns the stored row.
	// A stored transcript is never overwritten.
	Insert(ctx context.Context, transcript *model.Transcript) (*model.Transcript, error)
}
