// Package memory is an in-memory persistence gateway keyed by identifier.
// It backs the pipeline tests and dry runs.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/Taichi-iskw/pod-digest/internal/repository"
)

// Operation names accepted by FailOn
const (
	OpChannelGet          = "channels.get"
	OpChannelUpsert       = "channels.upsert"
	OpVideoUpsert         = "videos.upsert"
	OpVideoMarkTranscript = "videos.mark_transcript"
	OpVideoListProcessed  = "videos.list_processed"
	OpVideoListSummarized = "videos.list_summarized"
	OpTranscriptGet       = "transcripts.get"
	OpTranscriptInsert    = "transcripts.insert"
	OpSummaryUpsert       = "summaries.upsert"
)

// Store holds every record kind in maps guarded by one mutex
type Store struct {
	mu          sync.Mutex
	channels    map[string]model.Channel
	videos      map[string]model.Video
	transcripts map[string]model.Transcript
	summaries   map[string]model.Summary
	failures    map[string]error
	calls       map[string]int
	now         func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		channels:    make(map[string]model.Channel),
		videos:      make(map[string]model.Video),
		transcripts: make(map[string]model.Transcript),
		summaries:   make(map[string]model.Summary),
		failures:    make(map[string]error),
		calls:       make(map[string]int),
		now:         time.Now,
	}
}

// FailOn makes every later call of op return err. A nil err clears the failure.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

// Calls returns how many times op was invoked
func (s *Store) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

// enter records a call and returns the injected failure, if any. Caller holds mu.
func (s *Store) enter(op string) error {
	s.calls[op]++
	return s.failures[op]
}

// Channels returns the channel repository view
func (s *Store) Channels() repository.ChannelRepository { return channelStore{s} }

// Videos returns the video repository view
func (s *Store) Videos() repository.VideoRepository { return videoStore{s} }

// Transcripts returns the transcript repository view
func (s *Store) Transcripts() repository.TranscriptRepository { return transcriptStore{s} }

// Summaries returns the summary repository view
func (s *Store) Summaries() repository.SummaryRepository { return summaryStore{s} }

// Channel returns a stored channel
func (s *Store) Channel(id string) (model.Channel, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.channels[id]
	return c, ok
}

// Video returns a stored video
func (s *Store) Video(id string) (model.Video, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.videos[id]
	return v, ok
}

// Transcript returns a stored transcript
func (s *Store) Transcript(videoID string) (model.Transcript, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.transcripts[videoID]
	return t, ok
}

// Summary returns a stored summary
func (s *Store) Summary(videoID string) (model.Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sum, ok := s.summaries[videoID]
	return sum, ok
}

type channelStore struct{ s *Store }

func (c channelStore) GetByID(_ context.Context, id string) (*model.Channel, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if err := c.s.enter(OpChannelGet); err != nil {
		return nil, err
	}
	ch, ok := c.s.channels[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "channel not found")
	}
	return &ch, nil
}

func (c channelStore) Upsert(_ context.Context, channel *model.Channel) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	if err := c.s.enter(OpChannelUpsert); err != nil {
		return err
	}
	now := c.s.now()
	next := *channel
	if prev, ok := c.s.channels[channel.ID]; ok {
		next.CreatedAt = prev.CreatedAt
		if next.ChannelSummary == nil {
			next.ChannelSummary = prev.ChannelSummary
		}
	} else {
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	c.s.channels[channel.ID] = next
	return nil
}

func (c channelStore) List(_ context.Context, limit, offset int) ([]*model.Channel, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	all := make([]*model.Channel, 0, len(c.s.channels))
	for _, ch := range c.s.channels {
		ch := ch
		all = append(all, &ch)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Title < all[j].Title })
	if offset >= len(all) {
		return []*model.Channel{}, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (c channelStore) UpdateSummary(_ context.Context, id, summary string) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()
	ch, ok := c.s.channels[id]
	if !ok {
		return apperrors.New(apperrors.CodeNotFound, "channel not found")
	}
	ch.ChannelSummary = &summary
	ch.UpdatedAt = c.s.now()
	c.s.channels[id] = ch
	return nil
}

type videoStore struct{ s *Store }

func (v videoStore) GetByID(_ context.Context, id string) (*model.Video, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	video, ok := v.s.videos[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "video not found")
	}
	return &video, nil
}

func (v videoStore) Upsert(_ context.Context, video *model.Video) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.enter(OpVideoUpsert); err != nil {
		return err
	}
	if _, ok := v.s.channels[video.ChannelID]; !ok {
		return apperrors.New(apperrors.CodeDependency, "referenced channel does not exist")
	}
	now := v.s.now()
	next := *video
	if prev, ok := v.s.videos[video.ID]; ok {
		next.HasTranscript = prev.HasTranscript
		next.TranscriptFetchedAt = prev.TranscriptFetchedAt
		next.CreatedAt = prev.CreatedAt
	} else {
		next.HasTranscript = false
		next.TranscriptFetchedAt = nil
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	v.s.videos[video.ID] = next
	return nil
}

func (v videoStore) MarkTranscriptFetched(_ context.Context, id string, at time.Time) error {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.enter(OpVideoMarkTranscript); err != nil {
		return err
	}
	video, ok := v.s.videos[id]
	if !ok {
		return apperrors.New(apperrors.CodeNotFound, "video not found")
	}
	video.HasTranscript = true
	if video.TranscriptFetchedAt == nil {
		t := at
		video.TranscriptFetchedAt = &t
	}
	v.s.videos[id] = video
	return nil
}

func (v videoStore) ListFullyProcessedIDs(_ context.Context, ids []string) ([]string, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.enter(OpVideoListProcessed); err != nil {
		return nil, err
	}
	processed := []string{}
	for _, id := range ids {
		video, ok := v.s.videos[id]
		if !ok || !video.HasTranscript {
			continue
		}
		if _, ok := v.s.summaries[id]; ok {
			processed = append(processed, id)
		}
	}
	return processed, nil
}

func (v videoStore) ListSummarized(_ context.Context, channelIDs []string) ([]model.SummarizedVideo, error) {
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	if err := v.s.enter(OpVideoListSummarized); err != nil {
		return nil, err
	}
	wanted := make(map[string]bool, len(channelIDs))
	for _, id := range channelIDs {
		wanted[id] = true
	}

	out := []model.SummarizedVideo{}
	for _, video := range v.s.videos {
		if !wanted[video.ChannelID] {
			continue
		}
		sum, ok := v.s.summaries[video.ID]
		if !ok {
			continue
		}
		out = append(out, model.SummarizedVideo{
			VideoID:     video.ID,
			ChannelID:   video.ChannelID,
			Title:       video.Title,
			PublishedAt: video.PublishedAt,
			Duration:    video.Duration,
			Summary:     sum.Summary,
			KeyTopics:   sum.KeyTopics,
			Highlights:  sum.Highlights,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].PublishedAt.Equal(out[j].PublishedAt) {
			return out[i].VideoID < out[j].VideoID
		}
		return out[i].PublishedAt.After(out[j].PublishedAt)
	})
	return out, nil
}

type transcriptStore struct{ s *Store }

func (t transcriptStore) GetByVideoID(_ context.Context, videoID string) (*model.Transcript, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.enter(OpTranscriptGet); err != nil {
		return nil, err
	}
	tr, ok := t.s.transcripts[videoID]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "transcript not found")
	}
	return &tr, nil
}

func (t transcriptStore) Insert(_ context.Context, transcript *model.Transcript) (*model.Transcript, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if err := t.s.enter(OpTranscriptInsert); err != nil {
		return nil, err
	}
	if _, ok := t.s.videos[transcript.VideoID]; !ok {
		return nil, apperrors.New(apperrors.CodeDependency, "referenced video does not exist")
	}
	if prev, ok := t.s.transcripts[transcript.VideoID]; ok {
		return &prev, nil
	}
	next := *transcript
	next.ID = len(t.s.transcripts) + 1
	next.CreatedAt = t.s.now()
	t.s.transcripts[transcript.VideoID] = next
	return &next, nil
}

type summaryStore struct{ s *Store }

func (m summaryStore) GetByVideoID(_ context.Context, videoID string) (*model.Summary, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	sum, ok := m.s.summaries[videoID]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "summary not found")
	}
	return &sum, nil
}

func (m summaryStore) Upsert(_ context.Context, summary *model.Summary) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	if err := m.s.enter(OpSummaryUpsert); err != nil {
		return err
	}
	if _, ok := m.s.videos[summary.VideoID]; !ok {
		return apperrors.New(apperrors.CodeDependency, "referenced video does not exist")
	}
	now := m.s.now()
	next := *summary
	if prev, ok := m.s.summaries[summary.VideoID]; ok {
		next.ID = prev.ID
		next.CreatedAt = prev.CreatedAt
	} else {
		next.ID = len(m.s.summaries) + 1
		next.CreatedAt = now
	}
	next.UpdatedAt = now
	m.s.summaries[summary.VideoID] = next
	return nil
}

// Seed helpers let tests arrange prior state without going through the pipeline.

// PutChannel stores a channel as is
func (s *Store) PutChannel(c model.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels[c.ID] = c
}

// PutVideo stores a video as is
func (s *Store) PutVideo(v model.Video) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.videos[v.ID] = v
}

// PutTranscript stores a transcript as is
func (s *Store) PutTranscript(t model.Transcript) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcripts[t.VideoID] = t
}

// PutSummary stores a summary as is
func (s *Store) PutSummary(sum model.Summary) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summaries[sum.VideoID] = sum
}
