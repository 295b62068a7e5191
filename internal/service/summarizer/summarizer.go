package summarizer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/Taichi-iskw/pod-digest/internal/service/common"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"
)

// channelSummaryTokenCap bounds the channel overview regardless of the configured output cap
const channelSummaryTokenCap = 200

const (
	episodeSystemPrompt = "You are an expert at analyzing and summarizing podcast content. " +
		"Return crisp, engaging summaries that stay true to the transcript."
	channelSystemPrompt = "You are an expert at analyzing podcast content and identifying themes."
)

// Summarizer turns transcripts into structured episode summaries
type Summarizer interface {
	Summarize(ctx context.Context, title, transcript, channelName string) (*model.GeneratedSummary, error)
	SummarizeChannel(ctx context.Context, channelName string, episodeSummaries []string) (string, error)
}

// Options configures the OpenAI summarizer
type Options struct {
	APIKey          string
	Model           string
	MaxOutputTokens int
	// BaseURL overrides the API endpoint, e.g. for a compatible gateway
	BaseURL string
	Retry   common.RetryConfig
	Logger  *zap.Logger
}

// openAISummarizer implements Summarizer with chat completions and a strict JSON schema
type openAISummarizer struct {
	client    *openai.Client
	model     string
	maxTokens int
	retry     common.RetryConfig
	logger    *zap.Logger
}

// NewSummarizer creates an OpenAI-backed Summarizer
func NewSummarizer(opts Options) Summarizer {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	return NewSummarizerWithClient(openai.NewClientWithConfig(cfg), opts)
}

// NewSummarizerWithClient wraps an existing client (for testing)
func NewSummarizerWithClient(client *openai.Client, opts Options) Summarizer {
	rc := opts.Retry
	if rc.MaxRetries == 0 && rc.InitialWait == 0 {
		rc = common.DefaultRetryConfig
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &openAISummarizer{
		client:    client,
		model:     opts.Model,
		maxTokens: opts.MaxOutputTokens,
		retry:     rc,
		logger:    logger,
	}
}

// summarySchema is the strict response schema for episode summaries
var summarySchema = jsonschema.Definition{
	Type: jsonschema.Object,
	Properties: map[string]jsonschema.Definition{
		"summary": {
			Type:        jsonschema.String,
			Description: "2-3 sentence overview of the episode",
		},
		"keyTopics": {
			Type:        jsonschema.Array,
			Description: "3-5 key topics discussed in the episode",
			Items:       &jsonschema.Definition{Type: jsonschema.String},
		},
		"highlights": {
			Type:        jsonschema.Array,
			Description: "3-5 notable highlights, insights, or takeaways",
			Items:       &jsonschema.Definition{Type: jsonschema.String},
		},
		"duration": {
			Type:        jsonschema.String,
			Description: `Optional human-friendly duration (e.g., "42m" or "1h 05m")`,
		},
	},
	Required:             []string{"summary", "keyTopics", "highlights", "duration"},
	AdditionalProperties: false,
}

// Summarize generates a structured summary of one episode transcript.
// Empty or unparseable model output yields a GENERATION_FAILED error.
func (s *openAISummarizer) Summarize(ctx context.Context, title, transcript, channelName string) (*model.GeneratedSummary, error) {
	userPrompt := strings.Join([]string{
		fmt.Sprintf(`Podcast title: "%s" from channel "%s".`, title, channelName),
		"Full transcript:",
		transcript,
		"",
		"Provide:",
		"1) A concise 2-3 sentence summary of the main topic.",
		"2) 3-5 key topics discussed.",
		"3) 3-5 notable highlights or insights.",
	}, "\n")

	req := openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: episodeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "podcast_summary",
				Schema: &summarySchema,
				Strict: true,
			},
		},
		MaxCompletionTokens: s.maxTokens,
	}

	content, err := s.complete(ctx, req)
	if err != nil {
		return nil, err
	}

	var out model.GeneratedSummary
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "summary response is not valid JSON")
	}
	if out.KeyTopics == nil {
		out.KeyTopics = []string{}
	}
	if out.Highlights == nil {
		out.Highlights = []string{}
	}
	return &out, nil
}

// SummarizeChannel writes a short overview of a channel from recent episode summaries
func (s *openAISummarizer) SummarizeChannel(ctx context.Context, channelName string, episodeSummaries []string) (string, error) {
	if len(episodeSummaries) == 0 {
		return "", apperrors.New(apperrors.CodeInvalidArg, "no episode summaries to summarize for "+channelName)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are analyzing recent podcast episodes from the channel \"%s\".\n\n", channelName)
	sb.WriteString("Here are summaries of recent episodes:\n\n")
	for i, summary := range episodeSummaries {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "Episode %d: %s", i+1, summary)
	}
	sb.WriteString("\n\nProvide a brief 2-3 sentence overview of what this podcast channel is about based on these recent episodes.")

	maxTokens := s.maxTokens
	if maxTokens <= 0 || maxTokens > channelSummaryTokenCap {
		maxTokens = channelSummaryTokenCap
	}

	content, err := s.complete(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: channelSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
		MaxCompletionTokens: maxTokens,
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(content), nil
}

// complete runs a chat completion with retries on rate limits and server errors, returning the last choice's content
func (s *openAISummarizer) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	resp, err := common.RetryDo(ctx, s.retryConfig(), func() (openai.ChatCompletionResponse, error) {
		resp, err := s.client.CreateChatCompletion(ctx, req)
		if err != nil {
			return resp, classify(err)
		}
		return resp, nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperrors.Wrap(err, apperrors.CodeGenerationFailed, "failed to generate podcast summary")
	}

	if len(resp.Choices) == 0 {
		return "", apperrors.New(apperrors.CodeGenerationFailed, "no response text from model")
	}
	content := resp.Choices[len(resp.Choices)-1].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", apperrors.New(apperrors.CodeGenerationFailed, "no response text from model")
	}
	return content, nil
}

func (s *openAISummarizer) retryConfig() common.RetryConfig {
	rc := s.retry
	rc.OnRetry = func(attempt int, wait time.Duration, err error) {
		s.logger.Warn("retrying model call",
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err))
	}
	return rc
}

// classify maps retryable API status codes onto common.HTTPStatusError so RetryDo can recognize them
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && common.IsRetryable(&common.HTTPStatusError{StatusCode: apiErr.HTTPStatusCode}) {
		return fmt.Errorf("%w: %w", &common.HTTPStatusError{StatusCode: apiErr.HTTPStatusCode}, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && common.IsRetryable(&common.HTTPStatusError{StatusCode: reqErr.HTTPStatusCode}) {
		return fmt.Errorf("%w: %w", &common.HTTPStatusError{StatusCode: reqErr.HTTPStatusCode}, err)
	}
	return err
}
