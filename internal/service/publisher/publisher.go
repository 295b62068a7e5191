package publisher

import (
	"context"
	"strings"
	"unicode/utf16"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/Taichi-iskw/pod-digest/internal/service/youtube"
	"go.uber.org/zap"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

const (
	publishDateLayout = "Jan 2, 2006"
	linkText          = "Watch on YouTube"
	bulletPreset      = "BULLET_DISC_CIRCLE_SQUARE"
	channelSeparator  = "\n---\n\n"
)

// Publisher replaces the content of an external sink with grouped episode records
type Publisher interface {
	ReplaceAll(ctx context.Context, groups []model.EpisodeGroup) error
}

// DocsPublisher renders episode groups into a Google Doc
type DocsPublisher struct {
	svc        *docs.Service
	documentID string
	logger     *zap.Logger
}

// NewDocsPublisher creates a DocsPublisher authenticated as a service account
func NewDocsPublisher(ctx context.Context, documentID, clientEmail, privateKey string, logger *zap.Logger, opts ...option.ClientOption) (*DocsPublisher, error) {
	conf := &jwt.Config{
		Email:      clientEmail,
		PrivateKey: []byte(privateKey),
		Scopes:     []string{docs.DocumentsScope},
		TokenURL:   google.JWTTokenURL,
	}
	opts = append([]option.ClientOption{option.WithTokenSource(conf.TokenSource(ctx))}, opts...)

	svc, err := docs.NewService(ctx, opts...)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeExternal, "failed to create Google Docs client")
	}
	return NewDocsPublisherWithService(svc, documentID, logger), nil
}

// NewDocsPublisherWithService wraps an existing client (for testing)
func NewDocsPublisherWithService(svc *docs.Service, documentID string, logger *zap.Logger) *DocsPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocsPublisher{svc: svc, documentID: documentID, logger: logger}
}

// ReplaceAll clears the document and writes every group in one batch update.
// An empty group list leaves the document untouched.
func (p *DocsPublisher) ReplaceAll(ctx context.Context, groups []model.EpisodeGroup) error {
	if len(groups) == 0 {
		p.logger.Warn("no content to publish", zap.String("document_id", p.documentID))
		return nil
	}

	doc, err := p.svc.Documents.Get(p.documentID).Context(ctx).Do()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodePublishFailed, "failed to read document "+p.documentID)
	}

	var requests []*docs.Request
	if end := documentEndIndex(doc); end > 2 {
		requests = append(requests, &docs.Request{
			DeleteContentRange: &docs.DeleteContentRangeRequest{
				Range: &docs.Range{StartIndex: 1, EndIndex: end - 1},
			},
		})
	}
	requests = append(requests, buildRequests(groups)...)

	_, err = p.svc.Documents.BatchUpdate(p.documentID, &docs.BatchUpdateDocumentRequest{Requests: requests}).
		Context(ctx).
		Do()
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodePublishFailed, "failed to update document "+p.documentID)
	}

	p.logger.Info("published document",
		zap.String("document_id", p.documentID),
		zap.Int("channels", len(groups)),
		zap.Int("requests", len(requests)))
	return nil
}

func documentEndIndex(doc *docs.Document) int64 {
	if doc.Body == nil || len(doc.Body.Content) == 0 {
		return 0
	}
	return doc.Body.Content[len(doc.Body.Content)-1].EndIndex
}

// buildRequests lays out every group starting at index 1. Indices count UTF-16 code units.
func buildRequests(groups []model.EpisodeGroup) []*docs.Request {
	var requests []*docs.Request
	cur := int64(1)

	for gi, group := range groups {
		requests = append(requests,
			insertText(cur, group.Channel+"\n\n"),
			paragraphStyle(cur, cur+u16len(group.Channel)+1, "HEADING_1"),
		)
		cur += u16len(group.Channel) + 2

		for ei, ep := range group.Episodes {
			var episodeRequests []*docs.Request
			cur, episodeRequests = episodeLayout(cur, ep)
			requests = append(requests, episodeRequests...)

			if ei < len(group.Episodes)-1 {
				requests = append(requests, insertText(cur, "\n"))
				cur++
			}
		}

		if gi < len(groups)-1 {
			requests = append(requests, insertText(cur, channelSeparator))
			cur += u16len(channelSeparator)
		}
	}
	return requests
}

// episodeLayout returns the requests that insert and style one episode at start, and the index after it
func episodeLayout(start int64, ep model.EpisodeRecord) (int64, []*docs.Request) {
	var sb strings.Builder
	pos := start
	write := func(s string) int64 {
		at := pos
		sb.WriteString(s)
		pos += u16len(s)
		return at
	}

	write(ep.Title + "\n")
	write(ep.PublishedAt.UTC().Format(publishDateLayout) + " • " + youtube.FormatDuration(ep.Duration) + "\n\n")
	summaryAt := write("Summary: " + ep.Summary + "\n\n")
	topicsAt := write("Key Topics: " + strings.Join(ep.KeyTopics, ", ") + "\n\n")
	highlightsAt := write("Highlights:\n")

	bullets := make([]*docs.Request, 0, len(ep.Highlights))
	for _, h := range ep.Highlights {
		line := h + "\n"
		at := write(line)
		bullets = append(bullets, &docs.Request{
			CreateParagraphBullets: &docs.CreateParagraphBulletsRequest{
				Range:        &docs.Range{StartIndex: at, EndIndex: at + u16len(line)},
				BulletPreset: bulletPreset,
			},
		})
	}
	write("\n")
	linkAt := write(linkText + "\n\n")

	requests := []*docs.Request{
		insertText(start, sb.String()),
		paragraphStyle(start, start+u16len(ep.Title)+1, "HEADING_2"),
		bold(summaryAt, summaryAt+u16len("Summary:")),
		bold(topicsAt, topicsAt+u16len("Key Topics:")),
		bold(highlightsAt, highlightsAt+u16len("Highlights:")),
	}
	requests = append(requests, bullets...)
	requests = append(requests, &docs.Request{
		UpdateTextStyle: &docs.UpdateTextStyleRequest{
			Range:     &docs.Range{StartIndex: linkAt, EndIndex: linkAt + u16len(linkText)},
			TextStyle: &docs.TextStyle{Link: &docs.Link{Url: ep.VideoURL}},
			Fields:    "link",
		},
	})
	return pos, requests
}

func insertText(index int64, text string) *docs.Request {
	return &docs.Request{
		InsertText: &docs.InsertTextRequest{
			Location: &docs.Location{Index: index},
			Text:     text,
		},
	}
}

func paragraphStyle(start, end int64, namedStyle string) *docs.Request {
	return &docs.Request{
		UpdateParagraphStyle: &docs.UpdateParagraphStyleRequest{
			Range:          &docs.Range{StartIndex: start, EndIndex: end},
			ParagraphStyle: &docs.ParagraphStyle{NamedStyleType: namedStyle},
			Fields:         "namedStyleType",
		},
	}
}

func bold(start, end int64) *docs.Request {
	return &docs.Request{
		UpdateTextStyle: &docs.UpdateTextStyleRequest{
			Range:     &docs.Range{StartIndex: start, EndIndex: end},
			TextStyle: &docs.TextStyle{Bold: true},
			Fields:    "bold",
		},
	}
}

// u16len is the length of s in UTF-16 code units, the unit of Docs indices
func u16len(s string) int64 {
	return int64(len(utf16.Encode([]rune(s))))
}
