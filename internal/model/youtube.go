package model

import "time"

// ChannelConfig is a tracked channel as declared in the source catalog
type ChannelConfig struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Enabled bool   `json:"enabled" yaml:"enabled"`
}

// Channel represents a persisted YouTube channel record
type Channel struct {
	ID              string    `json:"id" db:"id"`
	Title           string    `json:"title" db:"title"`
	Description     *string   `json:"description,omitempty" db:"description"`
	ThumbnailURL    *string   `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	SubscriberCount *string   `json:"subscriber_count,omitempty" db:"subscriber_count"`
	ChannelSummary  *string   `json:"channel_summary,omitempty" db:"channel_summary"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// ChannelMetadata is the channel information reported by the item source
type ChannelMetadata struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ThumbnailURL    string `json:"thumbnail_url"`
	SubscriberCount string `json:"subscriber_count,omitempty"`
}

// SourceVideo is a recent upload as returned by the item source
type SourceVideo struct {
	ID           string    `json:"id"`
	ChannelID    string    `json:"channel_id"`
	ChannelTitle string    `json:"channel_title"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	PublishedAt  time.Time `json:"published_at"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Duration     string    `json:"duration"` // ISO 8601 token, e.g. PT1H2M3S
}

// Video represents a persisted episode record
type Video struct {
	ID                  string     `json:"id" db:"id"`
	ChannelID           string     `json:"channel_id" db:"channel_id"`
	Title               string     `json:"title" db:"title"`
	Description         *string    `json:"description,omitempty" db:"description"`
	PublishedAt         time.Time  `json:"published_at" db:"published_at"`
	ThumbnailURL        *string    `json:"thumbnail_url,omitempty" db:"thumbnail_url"`
	Duration            *string    `json:"duration,omitempty" db:"duration"`
	DurationMinutes     *int       `json:"duration_minutes,omitempty" db:"duration_minutes"`
	HasTranscript       bool       `json:"has_transcript" db:"has_transcript"`
	TranscriptFetchedAt *time.Time `json:"transcript_fetched_at,omitempty" db:"transcript_fetched_at"`
	CreatedAt           time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at" db:"updated_at"`
}

// Transcript holds the full text of a video, keyed by video ID
type Transcript struct {
	ID        int       `json:"id" db:"id"`
	VideoID   string    `json:"video_id" db:"video_id"`
	Content   string    `json:"content" db:"content"`
	Language  string    `json:"language" db:"language"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Summary is the generated digest of a transcript, keyed by video ID
type Summary struct {
	ID         int       `json:"id" db:"id"`
	VideoID    string    `json:"video_id" db:"video_id"`
	Summary    string    `json:"summary" db:"summary"`
	KeyTopics  []string  `json:"key_topics" db:"key_topics"`
	Highlights []string  `json:"highlights" db:"highlights"`
	Model      string    `json:"model" db:"model"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

// EpisodeFlag stores per-episode viewer state
type EpisodeFlag struct {
	VideoID  string `json:"videoId" db:"video_id"`
	Watched  bool   `json:"watched" db:"watched"`
	Favorite bool   `json:"favorite" db:"favorite"`
}

// WatchURL returns the canonical YouTube URL for a video ID
func WatchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

// GeneratedSummary is the structured output of the summarization model
type GeneratedSummary struct {
	Summary    string   `json:"summary"`
	KeyTopics  []string `json:"keyTopics"`
	Highlights []string `json:"highlights"`
	Duration   string   `json:"duration"`
}
