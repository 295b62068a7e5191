package cmd

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Taichi-iskw/pod-digest/internal/catalog"
	"github.com/Taichi-iskw/pod-digest/internal/config"
	"github.com/Taichi-iskw/pod-digest/internal/pipeline"
	"github.com/Taichi-iskw/pod-digest/internal/repository"
	"github.com/Taichi-iskw/pod-digest/internal/service/common"
	"github.com/Taichi-iskw/pod-digest/internal/service/publisher"
	"github.com/Taichi-iskw/pod-digest/internal/service/summarizer"
	youtubeSvc "github.com/Taichi-iskw/pod-digest/internal/service/youtube"
)

// app holds the shared collaborators of the commands that touch the database
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	pool    *pgxpool.Pool
	repos   *repository.Repositories
	catalog *catalog.Catalog
}

// newApp connects to the database and loads the channel catalog
func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	cat, err := catalog.Load(cfg.Channels, cfg.ChannelsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load channel catalog: %w", err)
	}

	dbPool, err := config.NewDatabasePool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		pool:    dbPool,
		repos:   repository.New(dbPool),
		catalog: cat,
	}, nil
}

// Close releases the database pool and flushes the logger
func (a *app) Close() {
	config.CloseDatabasePool(a.pool)
	_ = a.logger.Sync()
}

func (a *app) source(ctx context.Context) (*youtubeSvc.Source, error) {
	source, err := youtubeSvc.NewSource(ctx, a.cfg.YouTube.APIKey, a.cfg.YouTube.RequestsPerSecond)
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube client: %w", err)
	}
	return source, nil
}

func (a *app) summarizer() summarizer.Summarizer {
	return summarizer.NewSummarizer(summarizer.Options{
		APIKey:          a.cfg.OpenAI.APIKey,
		Model:           a.cfg.OpenAI.Model,
		MaxOutputTokens: a.cfg.OpenAI.MaxOutputTokens,
		BaseURL:         a.cfg.OpenAI.BaseURL,
		Logger:          a.logger.Named("summarizer"),
	})
}

func (a *app) transcriptFetcher() youtubeSvc.TranscriptFetcher {
	opts := youtubeSvc.TranscriptOptions{
		Language:          a.cfg.Processing.TranscriptLanguage,
		RequestsPerSecond: a.cfg.YouTube.RequestsPerSecond,
		Logger:            a.logger.Named("transcript"),
	}
	if common.LookPath("yt-dlp") {
		opts.CmdRunner = common.NewCmdRunner()
	} else {
		a.logger.Debug("yt-dlp not found, subtitle fallback disabled")
	}
	return youtubeSvc.NewTranscriptFetcher(opts)
}

// orchestrator wires every pipeline collaborator. skipPublish leaves the publisher out.
func (a *app) orchestrator(ctx context.Context, skipPublish bool) (*pipeline.Orchestrator, error) {
	source, err := a.source(ctx)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Catalog:     a.catalog,
		Channels:    a.repos.Channels,
		Videos:      a.repos.Videos,
		Transcripts: a.repos.Transcripts,
		Summaries:   a.repos.Summaries,
		Source:      source,
		Fetcher:     a.transcriptFetcher(),
		Summarizer:  a.summarizer(),
	}

	if !skipPublish {
		docsPublisher, err := publisher.NewDocsPublisher(ctx,
			a.cfg.GoogleDocs.DocumentID,
			a.cfg.GoogleDocs.ClientEmail,
			a.cfg.GoogleDocs.PrivateKey,
			a.logger.Named("publisher"))
		if err != nil {
			return nil, fmt.Errorf("failed to create Google Docs client: %w", err)
		}
		deps.Publisher = docsPublisher
	}

	return pipeline.New(deps, pipelineOptions(a.cfg), a.logger.Named("pipeline")), nil
}

// pipelineOptions derives the immutable run parameters from the configuration
func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		MaxResults:         cfg.YouTube.MaxResultsPerChannel,
		DaysToLookBack:     cfg.Processing.DaysToLookBack,
		TranscriptTimeout:  cfg.Processing.TranscriptTimeout,
		SummaryTimeout:     cfg.Processing.SummaryTimeout,
		Model:              cfg.OpenAI.Model,
		TranscriptLanguage: cfg.Processing.TranscriptLanguage,
	}
}
