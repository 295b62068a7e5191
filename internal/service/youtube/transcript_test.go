package youtube

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/service/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var noRetry = common.RetryConfig{MaxRetries: 0, InitialWait: time.Millisecond, MaxWait: time.Millisecond, Multiplier: 1}

// watchPage renders a minimal watch page embedding the given caption tracks
func watchPage(tracksJSON string) string {
	return `<html><script>var ytInitialPlayerResponse = {"videoDetails":{"title":"a {braced} \"title\""},` +
		`"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":` + tracksJSON + `}}};</script></html>`
}

func newCaptionServer(t *testing.T, page func(baseURL string) string, captions map[string]string) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/watch":
			fmt.Fprint(w, page(srv.URL))
		case "/timedtext":
			body, ok := captions[r.URL.Query().Get("lang")]
			if !ok {
				http.NotFound(w, r)
				return
			}
			fmt.Fprint(w, body)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestTranscriptFetcher_PageScrape(t *testing.T) {
	tests := []struct {
		name     string
		tracks   string
		captions map[string]string
		want     string
	}{
		{
			name:   "manual english track",
			tracks: `[{"baseUrl":"%s/timedtext?lang=en","languageCode":"en"}]`,
			captions: map[string]string{
				"en": `<?xml version="1.0" encoding="utf-8" ?><transcript>` +
					`<text start="0" dur="1.5">Hello  there</text>` +
					`<text start="1.5" dur="2">it&amp;#39;s a &lt;b&gt;test&lt;/b&gt;</text>` +
					`<text start="3.5" dur="1"> </text></transcript>`,
			},
			want: "Hello there it's a test",
		},
		{
			name: "manual preferred over auto-generated",
			tracks: `[{"baseUrl":"%[1]s/timedtext?lang=asr","languageCode":"en","kind":"asr"},` +
				`{"baseUrl":"%[1]s/timedtext?lang=en","languageCode":"en"}]`,
			captions: map[string]string{
				"asr": `<transcript><text>auto</text></transcript>`,
				"en":  `<transcript><text>manual</text></transcript>`,
			},
			want: "manual",
		},
		{
			name:   "srv3 paragraphs",
			tracks: `[{"baseUrl":"%s/timedtext?lang=en","languageCode":"en"}]`,
			captions: map[string]string{
				"en": `<timedtext format="3"><body><p t="0"><s>first</s><s> words</s></p><p t="10">second</p></body></timedtext>`,
			},
			want: "first words second",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newCaptionServer(t, func(base string) string {
				return watchPage(fmt.Sprintf(tt.tracks, base))
			}, tt.captions)

			f := NewTranscriptFetcher(TranscriptOptions{
				WatchBaseURL: srv.URL + "/watch?v=",
				HTTPClient:   srv.Client(),
				Retry:        noRetry,
			})

			got, err := f.GetItemTranscript(context.Background(), "vid1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranscriptFetcher_NoCaptions(t *testing.T) {
	srv := newCaptionServer(t, func(string) string {
		return `<html><script>var ytInitialPlayerResponse = {"videoDetails":{}};</script></html>`
	}, nil)

	f := NewTranscriptFetcher(TranscriptOptions{
		WatchBaseURL: srv.URL + "/watch?v=",
		HTTPClient:   srv.Client(),
		Retry:        noRetry,
	})

	_, err := f.GetItemTranscript(context.Background(), "vid1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotAvailable))
}

func TestTranscriptFetcher_YtDlpFallback(t *testing.T) {
	srv := newCaptionServer(t, func(string) string { return "<html>no player</html>" }, nil)

	runner := &mockCmdRunner{}
	runner.On("Run", mock.Anything, "yt-dlp", mock.MatchedBy(func(args []string) bool {
		return containsAll(args, "--skip-download", "--write-auto-subs", "json3") &&
			args[len(args)-1] == "https://www.youtube.com/watch?v=vid1"
	})).Run(func(a mock.Arguments) {
		args := a.Get(2).([]string)
		tmpl := argAfter(args, "-o")
		path := strings.ReplaceAll(strings.ReplaceAll(tmpl, "%(id)s", "vid1"), "%(ext)s", "en.json3")
		body := `{"events":[{"segs":[{"utf8":"from "},{"utf8":"yt-dlp"}]},{"segs":[{"utf8":"\n"}]},{"segs":[{"utf8":"subtitles"}]}]}`
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}).Return([]byte{}, nil)

	f := NewTranscriptFetcher(TranscriptOptions{
		WatchBaseURL: srv.URL + "/watch?v=",
		HTTPClient:   srv.Client(),
		CmdRunner:    runner,
		Retry:        noRetry,
	})

	got, err := f.GetItemTranscript(context.Background(), "vid1")
	require.NoError(t, err)
	assert.Equal(t, "from yt-dlp subtitles", got)
	runner.AssertExpectations(t)
}

func TestTranscriptFetcher_AllStrategiesFail(t *testing.T) {
	srv := newCaptionServer(t, func(string) string { return "<html></html>" }, nil)

	runner := &mockCmdRunner{}
	runner.On("Run", mock.Anything, "yt-dlp", mock.Anything).Return(nil, errors.New("exit status 1"))

	f := NewTranscriptFetcher(TranscriptOptions{
		WatchBaseURL: srv.URL + "/watch?v=",
		HTTPClient:   srv.Client(),
		CmdRunner:    runner,
		Retry:        noRetry,
	})

	_, err := f.GetItemTranscript(context.Background(), "vid1")
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotAvailable))
	assert.Contains(t, err.Error(), "vid1")
}

func TestTranscriptFetcher_NoSubtitleFile(t *testing.T) {
	srv := newCaptionServer(t, func(string) string { return "<html></html>" }, nil)

	runner := &mockCmdRunner{}
	runner.On("Run", mock.Anything, "yt-dlp", mock.Anything).Return([]byte{}, nil)

	f := NewTranscriptFetcher(TranscriptOptions{
		WatchBaseURL: srv.URL + "/watch?v=",
		HTTPClient:   srv.Client(),
		CmdRunner:    runner,
		Retry:        noRetry,
	})

	_, err := f.GetItemTranscript(context.Background(), "vid1")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotAvailable))
}

func TestPickBestTrack(t *testing.T) {
	tests := []struct {
		name   string
		tracks []captionTrack
		want   string
	}{
		{
			name:   "auto-generated in preferred language",
			tracks: []captionTrack{{BaseURL: "de", LanguageCode: "de"}, {BaseURL: "ja-asr", LanguageCode: "ja", Kind: "asr"}},
			want:   "ja-asr",
		},
		{
			name:   "english variant fallback",
			tracks: []captionTrack{{BaseURL: "de", LanguageCode: "de"}, {BaseURL: "en-GB", LanguageCode: "en-GB"}},
			want:   "en-GB",
		},
		{
			name:   "first track fallback",
			tracks: []captionTrack{{BaseURL: "de", LanguageCode: "de"}, {BaseURL: "fr", LanguageCode: "fr"}},
			want:   "de",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pickBestTrack(tt.tracks, []string{"ja"}).BaseURL)
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple object", input: `{"a":1};var x`, want: `{"a":1}`},
		{name: "nested with braces in strings", input: `{"a":{"b":"}{"},"c":"\"}"};`, want: `{"a":{"b":"}{"},"c":"\"}"}`},
		{name: "escaped backslash before quote", input: `{"a":"\\"}rest`, want: `{"a":"\\"}`},
		{name: "not an object", input: `[1,2]`, want: ""},
		{name: "unterminated", input: `{"a":1`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(extractJSON([]byte(tt.input))))
		})
	}
}

func TestParseJSON3_Invalid(t *testing.T) {
	_, err := parseJSON3([]byte("not json"))
	assert.Error(t, err)
}

func containsAll(args []string, want ...string) bool {
	joined := strings.Join(args, " ")
	for _, w := range want {
		if !strings.Contains(joined, w) {
			return false
		}
	}
	return true
}

func argAfter(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
	}
	return ""
}
