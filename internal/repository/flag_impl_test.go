package repository

import (
	"context"
	"testing"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagRepository_Get(t *testing.T) {
	tests := []struct {
		name  string
		setup func(mock pgxmock.PgxPoolIface)
		want  *model.EpisodeFlag
	}{
		{
			name: "stored flags",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT video_id, watched, favorite FROM episode_flags WHERE video_id = \\$1").
					WithArgs("v1").
					WillReturnRows(pgxmock.NewRows([]string{"video_id", "watched", "favorite"}).AddRow("v1", true, false))
			},
			want: &model.EpisodeFlag{VideoID: "v1", Watched: true},
		},
		{
			name: "no row defaults to false",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery("SELECT video_id, watched, favorite FROM episode_flags").
					WithArgs("v1").
					WillReturnError(pgx.ErrNoRows)
			},
			want: &model.EpisodeFlag{VideoID: "v1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)
			got, err := NewFlagRepository(mock).Get(context.Background(), "v1")
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFlagRepository_Upsert(t *testing.T) {
	tests := []struct {
		name     string
		update   FlagUpdate
		setup    func(mock pgxmock.PgxPoolIface)
		wantCode string
	}{
		{
			name:   "watched only",
			update: FlagUpdate{Watched: boolPtr(true)},
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec("INSERT INTO episode_flags (.+) ON CONFLICT \\(video_id\\) DO UPDATE").
					WithArgs("v1", boolPtr(true), (*bool)(nil)).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name:     "nothing to update",
			update:   FlagUpdate{},
			setup:    func(mock pgxmock.PgxPoolIface) {},
			wantCode: apperrors.CodeInvalidArg,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.setup(mock)
			err = NewFlagRepository(mock).Upsert(context.Background(), "v1", tt.update)
			if tt.wantCode != "" {
				assert.True(t, apperrors.HasCode(err, tt.wantCode))
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
