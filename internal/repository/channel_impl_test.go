package repository

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var channelRowColumns = []string{"id", "title", "description", "thumbnail_url", "subscriber_count", "channel_summary", "created_at", "updated_at"}

func TestChannelRepository_GetByID(t *testing.T) {
	now := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		id       string
		setup    func(mock pgxmock.PgxPoolIface)
		want     *model.Channel
		wantCode string
	}{
		{
			name: "channel found",
			id:   "UC123",
			setup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows(channelRowColumns).
					AddRow("UC123", "Deep Talks", strPtr("Long form"), strPtr("https://img/1.jpg"), strPtr("1200"), (*string)(nil), now, now)
				mock.ExpectQuery("SELECT (.+) FROM channels WHERE id = \\$1").
					WithArgs("UC123").
					WillReturnRows(rows)
			},
			want: &model.Channel{
				ID:              "UC123",
				Title:           "Deep Talks",
				Description:     strPtr("Long form"),
				ThumbnailURL:    strPtr("https://img/1.jpg"),
				SubscriberCount: strPtr("1200"),
				CreatedAt:       now,
				UpdatedAt:       now,
			},
		},
		{
			name: "channel not found",
			id:   "missing",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT (.+) FROM channels WHERE id = \\$1").
					WithArgs("missing").
					WillReturnError(pgx.ErrNoRows)
			},
			wantCode: apperrors.CodeNotFound,
		},
		{
			name: "database error",
			id:   "UC123",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT (.+) FROM channels WHERE id = \\$1").
					WithArgs("UC123").
					WillReturnError(assert.AnError)
			},
			wantCode: apperrors.CodeInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)
			repo := NewChannelRepository(mock)

			got, err := repo.GetByID(context.Background(), tt.id)
			if tt.wantCode != "" {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, tt.wantCode))
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
		})
	}
}

func TestChannelRepository_Upsert(t *testing.T) {
	channel := &model.Channel{
		ID:          "UC123",
		Title:       "Deep Talks",
		Description: strPtr("Long form"),
	}

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr bool
	}{
		{
			name: "successful upsert",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("INSERT INTO channels (.+) ON CONFLICT \\(id\\) DO UPDATE").
					WithArgs("UC123", "Deep Talks", strPtr("Long form"), (*string)(nil), (*string)(nil), (*string)(nil)).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "database error",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("INSERT INTO channels").
					WithArgs("UC123", "Deep Talks", strPtr("Long form"), (*string)(nil), (*string)(nil), (*string)(nil)).
					WillReturnError(assert.AnError)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)
			repo := NewChannelRepository(mock)

			err = repo.Upsert(context.Background(), channel)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			assert.NoError(t, mock.ExpectationsWereMet(), "pgxmock expectations were not met")
		})
	}
}

func TestChannelRepository_List(t *testing.T) {
	now := time.Now().UTC()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows(channelRowColumns).
		AddRow("UC1", "Alpha", (*string)(nil), (*string)(nil), (*string)(nil), (*string)(nil), now, now).
		AddRow("UC2", "Beta", (*string)(nil), (*string)(nil), (*string)(nil), strPtr("A show"), now, now)
	mock.ExpectQuery("SELECT (.+) FROM channels ORDER BY title LIMIT \\$1 OFFSET \\$2").
		WithArgs(10, 0).
		WillReturnRows(rows)

	repo := NewChannelRepository(mock)
	channels, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Len(t, channels, 2)
	assert.Equal(t, "Alpha", channels[0].Title)
	assert.Equal(t, "A show", *channels[1].ChannelSummary)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChannelRepository_UpdateSummary(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(mock pgxmock.PgxPoolIface)
		wantCode string
	}{
		{
			name: "updated",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("UPDATE channels SET channel_summary").
					WithArgs("UC1", "overview").
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
		},
		{
			name: "channel missing",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("UPDATE channels SET channel_summary").
					WithArgs("UC1", "overview").
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			wantCode: apperrors.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)
			err = NewChannelRepository(mock).UpdateSummary(context.Background(), "UC1", "overview")
			if tt.wantCode != "" {
				assert.True(t, apperrors.HasCode(err, tt.wantCode))
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
