package episode

import (
	"bytes"
	"context"
	"testing"
	"time"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/Taichi-iskw/pod-digest/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock episode repository
type mockEpisodeRepository struct {
	ListFunc    func(ctx context.Context, filter repository.EpisodeFilter) ([]model.Episode, error)
	GetByIDFunc func(ctx context.Context, id string) (*model.Episode, error)
}

func (m *mockEpisodeRepository) List(ctx context.Context, filter repository.EpisodeFilter) ([]model.Episode, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, filter)
	}
	return nil, nil
}

func (m *mockEpisodeRepository) GetByID(ctx context.Context, id string) (*model.Episode, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	return nil, apperrors.New(apperrors.CodeNotFound, "video not found")
}

func sampleEpisode() model.Episode {
	summary := "A talk about Go."
	minutes := 65
	return model.Episode{
		ID:              "vid1",
		Title:           "Episode One",
		ChannelID:       "C1",
		ChannelTitle:    "Go Time",
		PublishedAt:     time.Date(2025, 6, 14, 9, 0, 0, 0, time.UTC),
		DurationMinutes: &minutes,
		Summary:         &summary,
		KeyTopics:       []string{"generics", "errors"},
		Highlights:      []string{"h1"},
		YoutubeURL:      model.WatchURL("vid1"),
		Favorite:        true,
	}
}

func TestListCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		setupMock      func(*mockEpisodeRepository, *repository.EpisodeFilter)
		wantFilter     repository.EpisodeFilter
		expectedOutput string
		wantErr        bool
	}{
		{
			name: "lists episodes as text",
			args: []string{},
			setupMock: func(m *mockEpisodeRepository, got *repository.EpisodeFilter) {
				m.ListFunc = func(_ context.Context, filter repository.EpisodeFilter) ([]model.Episode, error) {
					*got = filter
					return []model.Episode{sampleEpisode()}, nil
				}
			},
			wantFilter:     repository.EpisodeFilter{Limit: repository.DefaultEpisodeLimit},
			expectedOutput: "Episode One ★",
		},
		{
			name: "filters by channel as json",
			args: []string{"--channel", "C1", "--limit", "5", "--format", "json"},
			setupMock: func(m *mockEpisodeRepository, got *repository.EpisodeFilter) {
				m.ListFunc = func(_ context.Context, filter repository.EpisodeFilter) ([]model.Episode, error) {
					*got = filter
					return []model.Episode{sampleEpisode()}, nil
				}
			},
			wantFilter:     repository.EpisodeFilter{ChannelID: "C1", Limit: 5},
			expectedOutput: `"channelTitle": "Go Time"`,
		},
		{
			name: "no episodes",
			args: []string{},
			setupMock: func(m *mockEpisodeRepository, got *repository.EpisodeFilter) {
				m.ListFunc = func(_ context.Context, filter repository.EpisodeFilter) ([]model.Episode, error) {
					*got = filter
					return []model.Episode{}, nil
				}
			},
			wantFilter:     repository.EpisodeFilter{Limit: repository.DefaultEpisodeLimit},
			expectedOutput: "No episodes found.",
		},
		{
			name:      "invalid limit",
			args:      []string{"--limit", "0"},
			setupMock: func(*mockEpisodeRepository, *repository.EpisodeFilter) {},
			wantErr:   true,
		},
		{
			name:      "unsupported format",
			args:      []string{"--format", "srt"},
			setupMock: func(*mockEpisodeRepository, *repository.EpisodeFilter) {},
			wantErr:   true,
		},
		{
			name: "repository error",
			args: []string{},
			setupMock: func(m *mockEpisodeRepository, _ *repository.EpisodeFilter) {
				m.ListFunc = func(context.Context, repository.EpisodeFilter) ([]model.Episode, error) {
					return nil, apperrors.New(apperrors.CodeInternal, "db down")
				}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockEpisodeRepository{}
			var gotFilter repository.EpisodeFilter
			tt.setupMock(mockRepo, &gotFilter)

			cmd := NewListCommand(mockRepo, nil)

			// Capture output
			var buf bytes.Buffer
			cmd.SetOut(&buf)
			cmd.SetErr(&buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantFilter, gotFilter)
			assert.Contains(t, buf.String(), tt.expectedOutput)
		})
	}
}

func TestGetCommand(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		setupMock      func(*mockEpisodeRepository)
		expectedOutput []string
		wantErr        bool
	}{
		{
			name: "shows summary",
			args: []string{"vid1"},
			setupMock: func(m *mockEpisodeRepository) {
				m.GetByIDFunc = func(_ context.Context, id string) (*model.Episode, error) {
					ep := sampleEpisode()
					ep.ID = id
					return &ep, nil
				}
			},
			expectedOutput: []string{
				"Episode One",
				"Published: Jun 14, 2025 • 1h 5m",
				"Status: favorite",
				"Key Topics: generics, errors",
				"  - h1",
			},
		},
		{
			name:      "not found",
			args:      []string{"missing"},
			setupMock: func(*mockEpisodeRepository) {},
			wantErr:   true,
		},
		{
			name:      "missing video ID",
			args:      []string{},
			setupMock: func(*mockEpisodeRepository) {},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockEpisodeRepository{}
			tt.setupMock(mockRepo)

			cmd := NewGetCommand(mockRepo, nil)

			var buf bytes.Buffer
			cmd.SetOut(&buf)
			cmd.SetErr(&buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()

			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.expectedOutput {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestEpisodeCommand_Subcommands(t *testing.T) {
	cmd := NewEpisodeCommand(&mockEpisodeRepository{}, nil)

	names := make([]string, 0, len(cmd.Commands()))
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"list", "get"}, names)
}

func TestResolve_NoRepository(t *testing.T) {
	_, _, err := resolve(context.Background(), nil, nil)
	assert.Error(t, err)
}
