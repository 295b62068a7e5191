package pipeline

import (
	"context"
	"fmt"

	"github.com/Taichi-iskw/pod-digest/internal/model"
	"go.uber.org/zap"
)

// DefaultChannelSummaryEpisodes is how many recent episode summaries feed a channel overview
const DefaultChannelSummaryEpisodes = 5

// ChannelSummarizer writes a short overview of a channel from its episode summaries
type ChannelSummarizer interface {
	SummarizeChannel(ctx context.Context, channelName string, episodeSummaries []string) (string, error)
}

// SummarizeChannels stores an overview for every enabled channel that has summarized episodes.
// Channels without summaries are skipped; a failure is recorded against the channel only.
func (o *Orchestrator) SummarizeChannels(ctx context.Context, cs ChannelSummarizer, episodes int) *model.ProcessingResult {
	result := &model.ProcessingResult{Errors: []model.ResultError{}}
	if episodes <= 0 {
		episodes = DefaultChannelSummaryEpisodes
	}

	for _, ch := range o.deps.Catalog.Enabled() {
		logger := o.logger.With(zap.String("channel_id", ch.ID), zap.String("channel", ch.Name))

		summarized, err := o.summarizeChannel(ctx, cs, ch, episodes)
		if err != nil {
			logger.Error("channel summary failed", zap.Error(err))
			result.AddError(model.ResultError{Scope: model.ScopeChannel, ChannelID: ch.ID, Message: err.Error(), Err: err})
			continue
		}
		if !summarized {
			logger.Warn("no summarized episodes, skipping channel summary")
			continue
		}
		logger.Info("stored channel summary")
		result.ChannelsProcessed++
		result.SummariesGenerated++
	}
	return result
}

func (o *Orchestrator) summarizeChannel(ctx context.Context, cs ChannelSummarizer, ch model.ChannelConfig, episodes int) (bool, error) {
	videos, err := o.deps.Videos.ListSummarized(ctx, []string{ch.ID})
	if err != nil {
		return false, fmt.Errorf("failed to fetch summaries: %w", err)
	}
	if len(videos) == 0 {
		return false, nil
	}
	if len(videos) > episodes {
		videos = videos[:episodes]
	}

	texts := make([]string, 0, len(videos))
	for _, v := range videos {
		texts = append(texts, v.Summary)
	}

	name := o.displayName(ctx, ch.ID)
	overview, err := cs.SummarizeChannel(ctx, name, texts)
	if err != nil {
		return false, fmt.Errorf("failed to summarize channel: %w", err)
	}
	if err := o.deps.Channels.UpdateSummary(ctx, ch.ID, overview); err != nil {
		return false, fmt.Errorf("failed to store channel summary: %w", err)
	}
	return true, nil
}
