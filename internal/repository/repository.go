// Package repository is the PostgreSQL persistence gateway for channels, videos,
// transcripts, summaries and viewer flags.
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Pool interface for abstracting pgx connection pool
type Pool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Repositories bundles every repository backed by one pool
type Repositories struct {
	Channels    ChannelRepository
	Videos      VideoRepository
	Transcripts TranscriptRepository
	Summaries   SummaryRepository
	Episodes    EpisodeRepository
	Flags       FlagRepository
}

// New creates all repositories over the given pool
func New(pool Pool) *Repositories {
	return &Repositories{
		Channels:    NewChannelRepository(pool),
		Videos:      NewVideoRepository(pool),
		Transcripts: NewTranscriptRepository(pool),
		Summaries:   NewSummaryRepository(pool),
		Episodes:    NewEpisodeRepository(pool),
		Flags:       NewFlagRepository(pool),
	}
}
