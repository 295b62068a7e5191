package publisher

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

func sampleEpisode(id, title string) model.EpisodeRecord {
	return model.EpisodeRecord{
		VideoID:     id,
		Title:       title,
		PublishedAt: time.Date(2024, 1, 2, 15, 0, 0, 0, time.UTC),
		Duration:    "PT1H5M",
		Summary:     "S",
		KeyTopics:   []string{"a", "b"},
		Highlights:  []string{"h1"},
		VideoURL:    model.WatchURL(id),
	}
}

func TestBuildRequests_SingleEpisode(t *testing.T) {
	reqs := buildRequests([]model.EpisodeGroup{
		{Channel: "C", Episodes: []model.EpisodeRecord{sampleEpisode("v1", "T")}},
	})

	require.Len(t, reqs, 9)

	assert.Equal(t, "C\n\n", reqs[0].InsertText.Text)
	assert.EqualValues(t, 1, reqs[0].InsertText.Location.Index)
	assert.Equal(t, "HEADING_1", reqs[1].UpdateParagraphStyle.ParagraphStyle.NamedStyleType)
	assert.Equal(t, &docs.Range{StartIndex: 1, EndIndex: 3}, reqs[1].UpdateParagraphStyle.Range)

	wantText := "T\n" +
		"Jan 2, 2024 • 1h 5m\n\n" +
		"Summary: S\n\n" +
		"Key Topics: a, b\n\n" +
		"Highlights:\n" +
		"h1\n" +
		"\n" +
		"Watch on YouTube\n\n"
	assert.Equal(t, wantText, reqs[2].InsertText.Text)
	assert.EqualValues(t, 4, reqs[2].InsertText.Location.Index)

	assert.Equal(t, &docs.Range{StartIndex: 4, EndIndex: 6}, reqs[3].UpdateParagraphStyle.Range)
	assert.Equal(t, "HEADING_2", reqs[3].UpdateParagraphStyle.ParagraphStyle.NamedStyleType)

	assert.Equal(t, &docs.Range{StartIndex: 27, EndIndex: 35}, reqs[4].UpdateTextStyle.Range)
	assert.Equal(t, &docs.Range{StartIndex: 39, EndIndex: 50}, reqs[5].UpdateTextStyle.Range)
	assert.Equal(t, &docs.Range{StartIndex: 57, EndIndex: 68}, reqs[6].UpdateTextStyle.Range)
	for _, r := range reqs[4:7] {
		assert.True(t, r.UpdateTextStyle.TextStyle.Bold)
		assert.Equal(t, "bold", r.UpdateTextStyle.Fields)
	}

	assert.Equal(t, &docs.Range{StartIndex: 69, EndIndex: 72}, reqs[7].CreateParagraphBullets.Range)
	assert.Equal(t, bulletPreset, reqs[7].CreateParagraphBullets.BulletPreset)

	assert.Equal(t, &docs.Range{StartIndex: 73, EndIndex: 89}, reqs[8].UpdateTextStyle.Range)
	assert.Equal(t, "https://www.youtube.com/watch?v=v1", reqs[8].UpdateTextStyle.TextStyle.Link.Url)
}

func TestBuildRequests_Separators(t *testing.T) {
	reqs := buildRequests([]model.EpisodeGroup{
		{Channel: "A", Episodes: []model.EpisodeRecord{sampleEpisode("v1", "T"), sampleEpisode("v2", "U")}},
		{Channel: "B", Episodes: []model.EpisodeRecord{sampleEpisode("v3", "W")}},
	})

	var inserts []*docs.InsertTextRequest
	for _, r := range reqs {
		if r.InsertText != nil {
			inserts = append(inserts, r.InsertText)
		}
	}
	// heading, episode, gap, episode, separator, heading, episode
	require.Len(t, inserts, 7)
	assert.Equal(t, "\n", inserts[2].Text)
	assert.EqualValues(t, 91, inserts[2].Location.Index)
	assert.EqualValues(t, 92, inserts[3].Location.Index)
	assert.Equal(t, channelSeparator, inserts[4].Text)
	assert.EqualValues(t, 179, inserts[4].Location.Index)
	assert.Equal(t, "B\n\n", inserts[5].Text)
	assert.EqualValues(t, 185, inserts[5].Location.Index)
	assert.NotEqual(t, channelSeparator, inserts[6].Text)
}

func TestBuildRequests_UTF16Indices(t *testing.T) {
	// "🎙" is two UTF-16 code units
	reqs := buildRequests([]model.EpisodeGroup{
		{Channel: "🎙 Pod", Episodes: []model.EpisodeRecord{sampleEpisode("v1", "T")}},
	})

	assert.Equal(t, &docs.Range{StartIndex: 1, EndIndex: 8}, reqs[1].UpdateParagraphStyle.Range)
	assert.EqualValues(t, 9, reqs[2].InsertText.Location.Index)
}

func TestU16Len(t *testing.T) {
	assert.EqualValues(t, 0, u16len(""))
	assert.EqualValues(t, 3, u16len("abc"))
	assert.EqualValues(t, 1, u16len("•"))
	assert.EqualValues(t, 2, u16len("😀"))
}

type fakeDocs struct {
	endIndex int64
	batches  []docs.BatchUpdateDocumentRequest
	failGet  bool
}

func newTestPublisher(t *testing.T, fake *fakeDocs, logger *zap.Logger) *DocsPublisher {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v1/documents/doc-1":
			if fake.failGet {
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"error":{"code":403,"message":"forbidden"}}`))
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"documentId": "doc-1",
				"body": map[string]any{"content": []map[string]any{
					{"endIndex": 1},
					{"startIndex": 1, "endIndex": fake.endIndex},
				}},
			})
		case r.Method == http.MethodPost && r.URL.Path == "/v1/documents/doc-1:batchUpdate":
			var req docs.BatchUpdateDocumentRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			fake.batches = append(fake.batches, req)
			_, _ = w.Write([]byte(`{"documentId":"doc-1"}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	svc, err := docs.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)
	return NewDocsPublisherWithService(svc, "doc-1", logger)
}

func TestDocsPublisher_ReplaceAll(t *testing.T) {
	groups := []model.EpisodeGroup{{Channel: "C", Episodes: []model.EpisodeRecord{sampleEpisode("v1", "T")}}}

	t.Run("clears existing content in the same batch", func(t *testing.T) {
		fake := &fakeDocs{endIndex: 120}
		p := newTestPublisher(t, fake, nil)

		require.NoError(t, p.ReplaceAll(context.Background(), groups))
		require.Len(t, fake.batches, 1)

		reqs := fake.batches[0].Requests
		require.NotNil(t, reqs[0].DeleteContentRange)
		assert.EqualValues(t, 1, reqs[0].DeleteContentRange.Range.StartIndex)
		assert.EqualValues(t, 119, reqs[0].DeleteContentRange.Range.EndIndex)
		assert.Equal(t, "C\n\n", reqs[1].InsertText.Text)
	})

	t.Run("empty document skips delete", func(t *testing.T) {
		fake := &fakeDocs{endIndex: 2}
		p := newTestPublisher(t, fake, nil)

		require.NoError(t, p.ReplaceAll(context.Background(), groups))
		require.Len(t, fake.batches, 1)
		assert.Nil(t, fake.batches[0].Requests[0].DeleteContentRange)
	})

	t.Run("read failure", func(t *testing.T) {
		fake := &fakeDocs{failGet: true}
		p := newTestPublisher(t, fake, nil)

		err := p.ReplaceAll(context.Background(), groups)
		assert.True(t, apperrors.HasCode(err, apperrors.CodePublishFailed))
		assert.Empty(t, fake.batches)
	})
}

func TestDocsPublisher_ReplaceAll_Empty(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	fake := &fakeDocs{endIndex: 50}
	p := newTestPublisher(t, fake, zap.New(core))

	require.NoError(t, p.ReplaceAll(context.Background(), nil))
	assert.Empty(t, fake.batches)
	assert.Equal(t, 1, logs.FilterMessage("no content to publish").Len())
}
