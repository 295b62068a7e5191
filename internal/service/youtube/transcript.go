package youtube

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/service/common"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	defaultWatchBaseURL = "https://www.youtube.com/watch?v="
	defaultYtDlpBinary  = "yt-dlp"
	playerResponseMark  = "ytInitialPlayerResponse = "

	maxWatchPageBytes = 6 * 1024 * 1024
	maxCaptionBytes   = 2 * 1024 * 1024
)

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// TranscriptFetcher retrieves the plain-text transcript of a video
type TranscriptFetcher interface {
	GetItemTranscript(ctx context.Context, videoID string) (string, error)
}

// TranscriptOptions configures a transcript fetcher
type TranscriptOptions struct {
	// Language is the preferred caption language (default "en")
	Language string
	// HTTPClient is used for watch page and caption requests
	HTTPClient *http.Client
	// WatchBaseURL is prefixed to the video id to build the watch page URL
	WatchBaseURL string
	// CmdRunner runs yt-dlp for the subtitle fallback. Nil disables the fallback.
	CmdRunner common.CmdRunner
	// YtDlpBinary overrides the yt-dlp executable name
	YtDlpBinary string
	// RequestsPerSecond throttles watch page requests. Zero means unlimited.
	RequestsPerSecond float64
	Retry             common.RetryConfig
	Logger            *zap.Logger
}

// transcriptFetcher scrapes caption tracks from the watch page and falls back to yt-dlp subtitles
type transcriptFetcher struct {
	langs      []string
	httpClient *http.Client
	watchBase  string
	cmdRunner  common.CmdRunner
	ytDlp      string
	limiter    *rate.Limiter
	retry      common.RetryConfig
	logger     *zap.Logger
}

// NewTranscriptFetcher creates a TranscriptFetcher
func NewTranscriptFetcher(opts TranscriptOptions) TranscriptFetcher {
	lang := opts.Language
	if lang == "" {
		lang = "en"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	watchBase := opts.WatchBaseURL
	if watchBase == "" {
		watchBase = defaultWatchBaseURL
	}
	ytDlp := opts.YtDlpBinary
	if ytDlp == "" {
		ytDlp = defaultYtDlpBinary
	}
	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	rc := opts.Retry
	if rc.MaxRetries == 0 && rc.InitialWait == 0 {
		rc = common.DefaultRetryConfig
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &transcriptFetcher{
		langs:      []string{lang},
		httpClient: client,
		watchBase:  watchBase,
		cmdRunner:  opts.CmdRunner,
		ytDlp:      ytDlp,
		limiter:    rate.NewLimiter(limit, 1),
		retry:      rc,
		logger:     logger,
	}
}

// GetItemTranscript returns the transcript text of a video.
// A video without usable captions yields a NOT_AVAILABLE error.
func (f *transcriptFetcher) GetItemTranscript(ctx context.Context, videoID string) (string, error) {
	text, scrapeErr := f.fetchViaPageScrape(ctx, videoID)
	if scrapeErr == nil && text != "" {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if scrapeErr == nil {
		scrapeErr = errors.New("caption track is empty")
	}

	if f.cmdRunner == nil {
		return "", apperrors.Wrap(scrapeErr, apperrors.CodeNotAvailable, "no transcript available for "+videoID)
	}

	f.logger.Debug("page scrape failed, trying yt-dlp subtitles",
		zap.String("video_id", videoID), zap.Error(scrapeErr))

	text, dlpErr := f.fetchViaYtDlp(ctx, videoID)
	if dlpErr == nil && text != "" {
		return text, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if dlpErr == nil {
		dlpErr = errors.New("subtitle file is empty")
	}
	return "", apperrors.Wrap(errors.Join(scrapeErr, dlpErr), apperrors.CodeNotAvailable,
		"no transcript available for "+videoID)
}

// captionTrack is one entry of playerCaptionsTracklistRenderer.captionTracks
type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"` // "asr" = auto-generated
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type timedText struct {
	Lines      []timedLine      `xml:"text"`
	Paragraphs []timedParagraph `xml:"body>p"`
}

type timedLine struct {
	Text string `xml:",chardata"`
}

// timedParagraph is a srv3 paragraph whose words sit in nested <s> elements
type timedParagraph struct {
	Inner string `xml:",innerxml"`
}

// fetchViaPageScrape extracts the caption track list from the watch page and downloads the best track
func (f *transcriptFetcher) fetchViaPageScrape(ctx context.Context, videoID string) (string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	body, err := f.get(ctx, f.watchBase+videoID, maxWatchPageBytes)
	if err != nil {
		return "", fmt.Errorf("watch page: %w", err)
	}

	idx := strings.Index(string(body), playerResponseMark)
	if idx < 0 {
		return "", errors.New("ytInitialPlayerResponse not found in watch page")
	}
	jsonData := extractJSON(body[idx+len(playerResponseMark):])
	if jsonData == nil {
		return "", errors.New("failed to extract ytInitialPlayerResponse JSON")
	}

	var player playerResponse
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return "", fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	if player.Captions == nil {
		return "", errors.New("no captions in ytInitialPlayerResponse")
	}
	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return "", errors.New("no caption tracks in watch page")
	}

	track := pickBestTrack(tracks, f.langs)
	return f.fetchTimedText(ctx, track.BaseURL)
}

func (f *transcriptFetcher) fetchTimedText(ctx context.Context, url string) (string, error) {
	body, err := f.get(ctx, url, maxCaptionBytes)
	if err != nil {
		return "", fmt.Errorf("fetch timedtext: %w", err)
	}

	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", fmt.Errorf("parse timedtext XML: %w", err)
	}

	parts := make([]string, 0, len(tt.Lines)+len(tt.Paragraphs))
	for _, line := range tt.Lines {
		parts = append(parts, line.Text)
	}
	for _, p := range tt.Paragraphs {
		parts = append(parts, p.Inner)
	}
	return joinCaptionText(parts), nil
}

func (f *transcriptFetcher) get(ctx context.Context, url string, limit int64) ([]byte, error) {
	resp, err := common.RetryHTTP(ctx, f.retry, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")
		return f.httpClient.Do(req)
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, limit))
}

// pickBestTrack prefers a manual track in a preferred language, then an auto-generated one,
// then any English track, then the first track
func pickBestTrack(tracks []captionTrack, langs []string) captionTrack {
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t
			}
		}
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t
			}
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t
		}
	}
	return tracks[0]
}

// extractJSON returns the complete JSON object starting at b[0] == '{' by tracking brace depth
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

// json3Subtitles is the yt-dlp json3 subtitle format
type json3Subtitles struct {
	Events []struct {
		Segs []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

// fetchViaYtDlp downloads subtitles only (no media) through yt-dlp and reads the json3 output
func (f *transcriptFetcher) fetchViaYtDlp(ctx context.Context, videoID string) (string, error) {
	dir, err := os.MkdirTemp("", "poddigest-subs-")
	if err != nil {
		return "", fmt.Errorf("create subtitle dir: %w", err)
	}
	defer os.RemoveAll(dir)

	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-langs", f.langs[0] + ".*," + f.langs[0],
		"--sub-format", "json3",
		"--no-warnings",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
		defaultWatchBaseURL + videoID,
	}
	if _, err := f.cmdRunner.Run(ctx, f.ytDlp, args...); err != nil {
		return "", fmt.Errorf("yt-dlp subtitles: %w", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.json3"))
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", errors.New("yt-dlp produced no subtitle file")
	}

	data, err := os.ReadFile(files[0])
	if err != nil {
		return "", fmt.Errorf("read subtitle file: %w", err)
	}
	return parseJSON3(data)
}

func parseJSON3(data []byte) (string, error) {
	var subs json3Subtitles
	if err := json.Unmarshal(data, &subs); err != nil {
		return "", fmt.Errorf("parse json3 subtitles: %w", err)
	}

	var parts []string
	for _, ev := range subs.Events {
		var sb strings.Builder
		for _, seg := range ev.Segs {
			sb.WriteString(seg.UTF8)
		}
		parts = append(parts, sb.String())
	}
	return joinCaptionText(parts), nil
}

// joinCaptionText strips markup, unescapes entities and joins non-empty lines with single spaces
func joinCaptionText(parts []string) string {
	var sb strings.Builder
	for _, p := range parts {
		text := html.UnescapeString(htmlTagRe.ReplaceAllString(p, ""))
		text = strings.Join(strings.Fields(text), " ")
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String()
}
