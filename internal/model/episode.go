package model

import "time"

// SummarizedVideo is a video joined with its summary, as read for publishing
type SummarizedVideo struct {
	VideoID     string
	ChannelID   string
	Title       string
	PublishedAt time.Time
	Duration    *string
	Summary     string
	KeyTopics   []string
	Highlights  []string
}

// EpisodeRecord is one published entry
type EpisodeRecord struct {
	VideoID     string    `json:"video_id"`
	Title       string    `json:"title"`
	PublishedAt time.Time `json:"published_at"`
	Duration    string    `json:"duration"`
	Summary     string    `json:"summary"`
	KeyTopics   []string  `json:"key_topics"`
	Highlights  []string  `json:"highlights"`
	VideoURL    string    `json:"video_url"`
}

// EpisodeGroup is the ordered set of episodes published under one channel heading
type EpisodeGroup struct {
	Channel  string          `json:"channel"`
	Episodes []EpisodeRecord `json:"episodes"`
}

// Episode is the browse view of a video with its summary and flags
type Episode struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	ChannelID       string    `json:"channelId"`
	ChannelTitle    string    `json:"channelTitle"`
	PublishedAt     time.Time `json:"publishedAt"`
	ThumbnailURL    *string   `json:"thumbnailUrl"`
	DurationMinutes *int      `json:"durationMinutes"`
	Summary         *string   `json:"summary"`
	Highlights      []string  `json:"highlights"`
	KeyTopics       []string  `json:"keyTopics"`
	YoutubeURL      string    `json:"youtubeUrl"`
	Watched         bool      `json:"watched"`
	Favorite        bool      `json:"favorite"`
}
