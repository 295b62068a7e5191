// Package pipeline runs the incremental ingest: list recent uploads per channel,
// skip what is already summarized, fetch transcripts, summarize, persist and publish.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/Taichi-iskw/pod-digest/internal/catalog"
	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/Taichi-iskw/pod-digest/internal/repository"
	"github.com/Taichi-iskw/pod-digest/internal/service/youtube"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ItemSource lists channel uploads and channel metadata
type ItemSource interface {
	ListRecentItems(ctx context.Context, channelID string, maxResults int) ([]model.SourceVideo, error)
	GetChannelMetadata(ctx context.Context, channelID string) (*model.ChannelMetadata, error)
}

// TranscriptFetcher retrieves the transcript text of one item
type TranscriptFetcher interface {
	GetItemTranscript(ctx context.Context, videoID string) (string, error)
}

// Summarizer produces a structured summary from a transcript
type Summarizer interface {
	Summarize(ctx context.Context, title, transcript, channelName string) (*model.GeneratedSummary, error)
}

// Publisher replaces the published document with the grouped episodes
type Publisher interface {
	ReplaceAll(ctx context.Context, groups []model.EpisodeGroup) error
}

// Deps are the collaborators of an Orchestrator. Publisher may be nil to skip publishing.
type Deps struct {
	Catalog     *catalog.Catalog
	Channels    repository.ChannelRepository
	Videos      repository.VideoRepository
	Transcripts repository.TranscriptRepository
	Summaries   repository.SummaryRepository
	Source      ItemSource
	Fetcher     TranscriptFetcher
	Summarizer  Summarizer
	Publisher   Publisher
}

// Options are the run parameters, fixed for the lifetime of an Orchestrator
type Options struct {
	MaxResults         int
	DaysToLookBack     int
	TranscriptTimeout  time.Duration
	SummaryTimeout     time.Duration
	Model              string
	TranscriptLanguage string

	// Now returns the current time (default time.Now)
	Now func() time.Time
}

// Orchestrator sequences channel and item processing and aggregates the outcome
type Orchestrator struct {
	deps   Deps
	opts   Options
	logger *zap.Logger
}

// New creates an Orchestrator
func New(deps Deps, opts Options, logger *zap.Logger) *Orchestrator {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.TranscriptLanguage == "" {
		opts.TranscriptLanguage = "en"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{deps: deps, opts: opts, logger: logger}
}

// Run processes every enabled channel in catalog order, then publishes.
// Channel and item failures are recorded in the result and never abort the run.
func (o *Orchestrator) Run(ctx context.Context) *model.ProcessingResult {
	result := &model.ProcessingResult{Errors: []model.ResultError{}}
	logger := o.logger.With(zap.String("run_id", uuid.NewString()))

	enabled := o.deps.Catalog.Enabled()
	logger.Info("starting run",
		zap.Int("channels", o.deps.Catalog.Len()),
		zap.Int("enabled", len(enabled)))

	for _, ch := range o.deps.Catalog.All() {
		if !ch.Enabled {
			logger.Info("skipping disabled channel", zap.String("channel", ch.Name))
			continue
		}
		if err := ctx.Err(); err != nil {
			result.AddError(model.ResultError{Scope: model.ScopeRun, Message: "run cancelled: " + err.Error(), Err: err})
			return result
		}

		chLogger := logger.With(zap.String("channel_id", ch.ID), zap.String("channel", ch.Name))
		chLogger.Info("processing channel")

		videos, summaries, err := o.processChannel(ctx, ch, result, chLogger)
		if err != nil {
			chLogger.Error("channel failed", zap.Error(err))
			result.AddError(model.ResultError{
				Scope:     model.ScopeChannel,
				ChannelID: ch.ID,
				Message:   err.Error(),
				Err:       err,
			})
			continue
		}
		result.VideosProcessed += videos
		result.SummariesGenerated += summaries
		result.ChannelsProcessed++
	}

	if err := o.publish(ctx, logger); err != nil {
		logger.Error("publish failed", zap.Error(err))
		result.AddError(model.ResultError{Scope: model.ScopeRun, Message: err.Error(), Err: err})
	}

	logger.Info("run finished",
		zap.Int("channels_processed", result.ChannelsProcessed),
		zap.Int("videos_processed", result.VideosProcessed),
		zap.Int("summaries_generated", result.SummariesGenerated),
		zap.Int("errors", len(result.Errors)))
	return result
}

// SyncChannels ensures every enabled channel has a persisted record without processing items
func (o *Orchestrator) SyncChannels(ctx context.Context) *model.ProcessingResult {
	result := &model.ProcessingResult{Errors: []model.ResultError{}}
	for _, ch := range o.deps.Catalog.Enabled() {
		logger := o.logger.With(zap.String("channel_id", ch.ID), zap.String("channel", ch.Name))
		if err := o.ensureChannel(ctx, ch, logger); err != nil {
			logger.Error("channel sync failed", zap.Error(err))
			result.AddError(model.ResultError{Scope: model.ScopeChannel, ChannelID: ch.ID, Message: err.Error(), Err: err})
			continue
		}
		result.ChannelsProcessed++
	}
	return result
}

// processChannel returns the number of items processed and summaries generated.
// Item failures are recorded in result; a returned error is channel-scoped.
func (o *Orchestrator) processChannel(ctx context.Context, ch model.ChannelConfig, result *model.ProcessingResult, logger *zap.Logger) (int, int, error) {
	if err := o.ensureChannel(ctx, ch, logger); err != nil {
		return 0, 0, err
	}

	items, err := o.deps.Source.ListRecentItems(ctx, ch.ID, o.opts.MaxResults)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list videos for channel %s: %w", ch.Name, err)
	}
	logger.Info("found videos", zap.Int("count", len(items)))

	recent := o.filterRecent(items)
	logger.Info("videos within look-back window",
		zap.Int("count", len(recent)),
		zap.Int("days", o.opts.DaysToLookBack))

	fresh := o.filterUnprocessed(ctx, recent, logger)
	if len(fresh) == 0 {
		logger.Info("no new videos to process")
		return 0, 0, nil
	}
	logger.Info("processing new videos", zap.Int("count", len(fresh)))

	var processed, summarized int
	for _, item := range fresh {
		if ctx.Err() != nil {
			return processed, summarized, ctx.Err()
		}
		itemLogger := logger.With(zap.String("video_id", item.ID), zap.String("title", item.Title))
		if err := o.processItem(ctx, ch, item, itemLogger); err != nil {
			itemLogger.Error("video failed", zap.Error(err))
			result.AddError(model.ResultError{
				Scope:     model.ScopeItem,
				ChannelID: ch.ID,
				VideoID:   item.ID,
				Message:   err.Error(),
				Err:       err,
			})
			continue
		}
		processed++
		summarized++
		itemLogger.Info("processed video", zap.String("status", "success"))
	}
	return processed, summarized, nil
}

// ensureChannel creates the channel record from source metadata when it is not persisted yet.
// A failed lookup is treated as absent.
func (o *Orchestrator) ensureChannel(ctx context.Context, ch model.ChannelConfig, logger *zap.Logger) error {
	existing, err := o.deps.Channels.GetByID(ctx, ch.ID)
	switch {
	case err == nil && existing != nil:
		return nil
	case err != nil && !apperrors.HasCode(err, apperrors.CodeNotFound):
		logger.Warn("could not verify channel in database, will attempt upsert", zap.Error(err))
	}

	meta, err := o.deps.Source.GetChannelMetadata(ctx, ch.ID)
	if err != nil {
		return fmt.Errorf("failed to fetch metadata for channel %s: %w", ch.Name, err)
	}

	record := &model.Channel{ID: ch.ID, Title: ch.Name}
	if meta != nil {
		if meta.Title != "" {
			record.Title = meta.Title
		}
		record.Description = optional(meta.Description)
		record.ThumbnailURL = optional(meta.ThumbnailURL)
		record.SubscriberCount = optional(meta.SubscriberCount)
	}
	if record.Title == "" {
		record.Title = ch.ID
	}

	if err := o.deps.Channels.Upsert(ctx, record); err != nil {
		return fmt.Errorf("failed to upsert channel %s: %w", ch.Name, err)
	}
	logger.Info("ensured channel exists", zap.String("title", record.Title))
	return nil
}

// filterRecent keeps items published strictly after now minus the look-back window, in source order
func (o *Orchestrator) filterRecent(items []model.SourceVideo) []model.SourceVideo {
	cutoff := o.opts.Now().AddDate(0, 0, -o.opts.DaysToLookBack)
	recent := make([]model.SourceVideo, 0, len(items))
	for _, item := range items {
		if item.PublishedAt.After(cutoff) {
			recent = append(recent, item)
		}
	}
	return recent
}

// filterUnprocessed drops fully processed items. A failed check treats every item as new.
func (o *Orchestrator) filterUnprocessed(ctx context.Context, items []model.SourceVideo, logger *zap.Logger) []model.SourceVideo {
	if len(items) == 0 {
		return items
	}
	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}

	done, err := o.deps.Videos.ListFullyProcessedIDs(ctx, ids)
	if err != nil {
		logger.Error("failed to check existing videos", zap.Error(err))
		done = nil
	}
	skip := make(map[string]bool, len(done))
	for _, id := range done {
		skip[id] = true
	}

	fresh := make([]model.SourceVideo, 0, len(items))
	for _, item := range items {
		if !skip[item.ID] {
			fresh = append(fresh, item)
		}
	}
	return fresh
}

// processItem upserts the video, resolves its transcript, then generates and stores the summary
func (o *Orchestrator) processItem(ctx context.Context, ch model.ChannelConfig, item model.SourceVideo, logger *zap.Logger) error {
	video := &model.Video{
		ID:           item.ID,
		ChannelID:    ch.ID,
		Title:        item.Title,
		Description:  optional(item.Description),
		PublishedAt:  item.PublishedAt,
		ThumbnailURL: optional(item.ThumbnailURL),
		Duration:     optional(item.Duration),
	}
	if item.Duration != "" {
		minutes := youtube.DurationMinutes(item.Duration)
		video.DurationMinutes = &minutes
	}
	if err := o.deps.Videos.Upsert(ctx, video); err != nil {
		return fmt.Errorf("failed to upsert video: %w", err)
	}

	transcript, err := o.resolveTranscript(ctx, item, logger)
	if err != nil {
		return err
	}

	logger.Info("generating summary")
	generated, err := WithTimeout(ctx, o.opts.SummaryTimeout, "summary generation for "+item.Title,
		func(ctx context.Context) (*model.GeneratedSummary, error) {
			return o.deps.Summarizer.Summarize(ctx, item.Title, transcript, ch.Name)
		})
	if err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	summary := &model.Summary{
		VideoID:    item.ID,
		Summary:    generated.Summary,
		KeyTopics:  generated.KeyTopics,
		Highlights: generated.Highlights,
		Model:      o.opts.Model,
	}
	if err := o.deps.Summaries.Upsert(ctx, summary); err != nil {
		return fmt.Errorf("failed to store summary: %w", err)
	}
	return nil
}

// resolveTranscript reuses a stored transcript or fetches, stores and flags a new one
func (o *Orchestrator) resolveTranscript(ctx context.Context, item model.SourceVideo, logger *zap.Logger) (string, error) {
	stored, err := o.deps.Transcripts.GetByVideoID(ctx, item.ID)
	switch {
	case err == nil && stored != nil && stored.Content != "":
		logger.Info("using existing transcript")
		o.markTranscript(ctx, item.ID, logger)
		return stored.Content, nil
	case err != nil && !apperrors.HasCode(err, apperrors.CodeNotFound):
		logger.Warn("transcript lookup failed, fetching", zap.Error(err))
	}

	logger.Info("fetching transcript")
	text, err := WithTimeout(ctx, o.opts.TranscriptTimeout, "transcript fetch for "+item.Title,
		func(ctx context.Context) (string, error) {
			return o.deps.Fetcher.GetItemTranscript(ctx, item.ID)
		})
	if err != nil {
		logger.Warn("skipping summary due to transcript error", zap.Error(err))
		return "", fmt.Errorf("no transcript available: %w", err)
	}

	saved, err := o.deps.Transcripts.Insert(ctx, &model.Transcript{
		VideoID:  item.ID,
		Content:  text,
		Language: o.opts.TranscriptLanguage,
	})
	if err != nil {
		return "", fmt.Errorf("failed to store transcript: %w", err)
	}
	// An earlier transcript wins over the one just fetched
	if saved != nil && saved.Content != "" && saved.Content != text {
		logger.Info("keeping previously stored transcript")
		text = saved.Content
	}
	o.markTranscript(ctx, item.ID, logger)
	return text, nil
}

func (o *Orchestrator) markTranscript(ctx context.Context, videoID string, logger *zap.Logger) {
	if err := o.deps.Videos.MarkTranscriptFetched(ctx, videoID, o.opts.Now()); err != nil {
		logger.Warn("failed to mark transcript as fetched", zap.Error(err))
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
