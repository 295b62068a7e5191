package episode

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Taichi-iskw/pod-digest/internal/model"
	youtubeSvc "github.com/Taichi-iskw/pod-digest/internal/service/youtube"
)

const dateLayout = "Jan 2, 2006"

// Formatter defines interface for output formatting
type Formatter interface {
	Format(episode *model.Episode) (string, error)
	FormatList(episodes []model.Episode) (string, error)
}

// TextFormatter formats output as plain text
type TextFormatter struct{}

// Format renders one episode with its full summary
func (f *TextFormatter) Format(ep *model.Episode) (string, error) {
	var output strings.Builder

	output.WriteString(ep.Title + "\n")
	output.WriteString(fmt.Sprintf("Channel: %s\n", ep.ChannelTitle))
	output.WriteString(fmt.Sprintf("Published: %s • %s\n",
		ep.PublishedAt.UTC().Format(dateLayout), youtubeSvc.FormatMinutes(ep.DurationMinutes)))
	if status := flagStatus(ep); status != "" {
		output.WriteString(fmt.Sprintf("Status: %s\n", status))
	}
	output.WriteString(fmt.Sprintf("URL: %s\n", ep.YoutubeURL))
	output.WriteString("\n")

	if ep.Summary == nil {
		output.WriteString("No summary yet.\n")
		return output.String(), nil
	}

	output.WriteString("Summary:\n")
	output.WriteString(*ep.Summary + "\n")
	if len(ep.KeyTopics) > 0 {
		output.WriteString(fmt.Sprintf("\nKey Topics: %s\n", strings.Join(ep.KeyTopics, ", ")))
	}
	if len(ep.Highlights) > 0 {
		output.WriteString("\nHighlights:\n")
		for _, h := range ep.Highlights {
			output.WriteString(fmt.Sprintf("  - %s\n", h))
		}
	}

	return output.String(), nil
}

// FormatList renders one line per episode
func (f *TextFormatter) FormatList(episodes []model.Episode) (string, error) {
	var output strings.Builder

	output.WriteString(fmt.Sprintf("Found %d episode(s):\n\n", len(episodes)))
	for _, ep := range episodes {
		marker := " "
		if ep.Watched {
			marker = "x"
		}
		star := ""
		if ep.Favorite {
			star = " ★"
		}
		output.WriteString(fmt.Sprintf("[%s] %s  %s%s\n", marker,
			ep.PublishedAt.UTC().Format(dateLayout), ep.Title, star))
		output.WriteString(fmt.Sprintf("    %s • %s • %s\n",
			ep.ChannelTitle, youtubeSvc.FormatMinutes(ep.DurationMinutes), ep.ID))
	}

	return output.String(), nil
}

func flagStatus(ep *model.Episode) string {
	var parts []string
	if ep.Watched {
		parts = append(parts, "watched")
	}
	if ep.Favorite {
		parts = append(parts, "favorite")
	}
	return strings.Join(parts, ", ")
}

// JSONFormatter formats output as JSON
type JSONFormatter struct{}

// Format renders one episode as indented JSON
func (f *JSONFormatter) Format(ep *model.Episode) (string, error) {
	return marshal(ep)
}

// FormatList renders episodes as an indented JSON array
func (f *JSONFormatter) FormatList(episodes []model.Episode) (string, error) {
	return marshal(episodes)
}

func marshal(v any) (string, error) {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(jsonBytes) + "\n", nil
}

// GetFormatter returns the appropriate formatter based on format string
func GetFormatter(format string) (Formatter, error) {
	switch strings.ToLower(format) {
	case "text", "txt", "":
		return &TextFormatter{}, nil
	case "json":
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", format)
	}
}
