package youtube

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"golang.org/x/time/rate"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// maxIDsPerRequest is the Data API limit for id lists and page sizes
const maxIDsPerRequest = 50

// Source lists channel uploads and channel metadata through the YouTube Data API
type Source struct {
	svc     *youtube.Service
	limiter *rate.Limiter
}

// NewSource creates a Source authenticated with an API key. requestsPerSecond throttles every API call.
func NewSource(ctx context.Context, apiKey string, requestsPerSecond float64, opts ...option.ClientOption) (*Source, error) {
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	svc, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, "failed to create YouTube client")
	}
	return NewSourceWithService(svc, requestsPerSecond), nil
}

// NewSourceWithService wraps an existing client (for testing)
func NewSourceWithService(svc *youtube.Service, requestsPerSecond float64) *Source {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &Source{svc: svc, limiter: rate.NewLimiter(limit, 1)}
}

// ListRecentItems returns up to maxResults recent uploads of a channel, excluding Shorts.
// A channel without an uploads playlist yields an empty list.
func (s *Source) ListRecentItems(ctx context.Context, channelID string, maxResults int) ([]model.SourceVideo, error) {
	if maxResults <= 0 || maxResults > maxIDsPerRequest {
		maxResults = maxIDsPerRequest
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	channels, err := s.svc.Channels.List([]string{"contentDetails"}).Id(channelID).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError(err, "failed to look up uploads playlist for channel "+channelID)
	}
	if len(channels.Items) == 0 || channels.Items[0].ContentDetails == nil ||
		channels.Items[0].ContentDetails.RelatedPlaylists == nil ||
		channels.Items[0].ContentDetails.RelatedPlaylists.Uploads == "" {
		return []model.SourceVideo{}, nil
	}
	uploads := channels.Items[0].ContentDetails.RelatedPlaylists.Uploads

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	playlist, err := s.svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(uploads).
		MaxResults(int64(maxResults)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, wrapAPIError(err, "failed to list uploads for channel "+channelID)
	}

	ids := make([]string, 0, len(playlist.Items))
	for _, item := range playlist.Items {
		if item.ContentDetails != nil && item.ContentDetails.VideoId != "" {
			ids = append(ids, item.ContentDetails.VideoId)
		}
	}
	if len(ids) == 0 {
		return []model.SourceVideo{}, nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	videos, err := s.svc.Videos.List([]string{"snippet", "contentDetails"}).Id(ids...).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError(err, "failed to fetch video details for channel "+channelID)
	}

	items := make([]model.SourceVideo, 0, len(videos.Items))
	for _, v := range videos.Items {
		item := toSourceVideo(v)
		if secs, _ := DurationSeconds(item.Duration); secs <= ShortsMaxSeconds {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// GetChannelMetadata returns channel snippet and statistics, or nil when the channel does not exist
func (s *Source) GetChannelMetadata(ctx context.Context, channelID string) (*model.ChannelMetadata, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := s.svc.Channels.List([]string{"snippet", "statistics"}).Id(channelID).Context(ctx).Do()
	if err != nil {
		return nil, wrapAPIError(err, "failed to fetch channel details for "+channelID)
	}
	if len(resp.Items) == 0 {
		return nil, nil
	}

	ch := resp.Items[0]
	meta := &model.ChannelMetadata{ID: ch.Id}
	if meta.ID == "" {
		meta.ID = channelID
	}
	if ch.Snippet != nil {
		meta.Title = ch.Snippet.Title
		meta.Description = ch.Snippet.Description
		meta.ThumbnailURL = bestThumbnail(ch.Snippet.Thumbnails)
	}
	if ch.Statistics != nil && !ch.Statistics.HiddenSubscriberCount && ch.Statistics.SubscriberCount > 0 {
		meta.SubscriberCount = strconv.FormatUint(ch.Statistics.SubscriberCount, 10)
	}
	return meta, nil
}

func toSourceVideo(v *youtube.Video) model.SourceVideo {
	item := model.SourceVideo{ID: v.Id}
	if v.Snippet != nil {
		item.ChannelID = v.Snippet.ChannelId
		item.ChannelTitle = v.Snippet.ChannelTitle
		item.Title = v.Snippet.Title
		item.Description = v.Snippet.Description
		if t, err := time.Parse(time.RFC3339, v.Snippet.PublishedAt); err == nil {
			item.PublishedAt = t.UTC()
		}
		if v.Snippet.Thumbnails != nil && v.Snippet.Thumbnails.Medium != nil {
			item.ThumbnailURL = v.Snippet.Thumbnails.Medium.Url
		}
	}
	if v.ContentDetails != nil {
		item.Duration = v.ContentDetails.Duration
	}
	return item
}

// bestThumbnail prefers high, then medium, then default
func bestThumbnail(t *youtube.ThumbnailDetails) string {
	if t == nil {
		return ""
	}
	for _, th := range []*youtube.Thumbnail{t.High, t.Medium, t.Default} {
		if th != nil && th.Url != "" {
			return th.Url
		}
	}
	return ""
}

func wrapAPIError(err error, message string) *apperrors.AppError {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return apperrors.Wrap(err, apperrors.CodeNotFound, message)
	}
	return apperrors.Wrap(err, apperrors.CodeExternal, message)
}
