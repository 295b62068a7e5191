package pipeline

import (
	"context"
	"fmt"

	"github.com/Taichi-iskw/pod-digest/internal/model"
	"go.uber.org/zap"
)

const unknownDuration = "Unknown"

// publish reads every summarized video of the enabled channels and replaces the published document
func (o *Orchestrator) publish(ctx context.Context, logger *zap.Logger) error {
	if o.deps.Publisher == nil {
		logger.Info("publishing disabled")
		return nil
	}

	ids := o.deps.Catalog.EnabledIDs()
	if len(ids) == 0 {
		logger.Warn("no enabled channels to publish")
		return nil
	}

	videos, err := o.deps.Videos.ListSummarized(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to fetch summaries: %w", err)
	}
	if len(videos) == 0 {
		logger.Warn("no summaries found to publish")
		return nil
	}

	groups := o.groupByChannel(ctx, videos)
	logger.Info("publishing episodes",
		zap.Int("episodes", len(videos)),
		zap.Int("channels", len(groups)))

	return o.deps.Publisher.ReplaceAll(ctx, groups)
}

// groupByChannel groups newest-first videos under their channel display name.
// Groups appear in the order their first video does.
func (o *Orchestrator) groupByChannel(ctx context.Context, videos []model.SummarizedVideo) []model.EpisodeGroup {
	var groups []model.EpisodeGroup
	index := make(map[string]int)
	names := make(map[string]string)

	for _, v := range videos {
		name, ok := names[v.ChannelID]
		if !ok {
			name = o.displayName(ctx, v.ChannelID)
			names[v.ChannelID] = name
		}

		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, model.EpisodeGroup{Channel: name})
		}

		duration := unknownDuration
		if v.Duration != nil && *v.Duration != "" {
			duration = *v.Duration
		}
		groups[i].Episodes = append(groups[i].Episodes, model.EpisodeRecord{
			VideoID:     v.VideoID,
			Title:       v.Title,
			PublishedAt: v.PublishedAt,
			Duration:    duration,
			Summary:     v.Summary,
			KeyTopics:   nonNil(v.KeyTopics),
			Highlights:  nonNil(v.Highlights),
			VideoURL:    model.WatchURL(v.VideoID),
		})
	}
	return groups
}

// displayName prefers the catalog name, then the persisted title, then the raw identifier
func (o *Orchestrator) displayName(ctx context.Context, channelID string) string {
	if name := o.deps.Catalog.Name(channelID); name != "" {
		return name
	}
	if ch, err := o.deps.Channels.GetByID(ctx, channelID); err == nil && ch != nil && ch.Title != "" {
		return ch.Title
	}
	return channelID
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
