package catalog

import (
	"os"
	"path/filepath"
	"testing"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		channels []model.ChannelConfig
		wantErr  bool
	}{
		{
			name: "valid channels",
			channels: []model.ChannelConfig{
				{ID: "UC1", Name: "One", Enabled: true},
				{ID: " UC2 ", Name: "Two"},
			},
		},
		{
			name:     "empty id",
			channels: []model.ChannelConfig{{ID: "  ", Name: "Blank"}},
			wantErr:  true,
		},
		{
			name: "duplicate id",
			channels: []model.ChannelConfig{
				{ID: "UC1", Name: "One"},
				{ID: "UC1", Name: "Again"},
			},
			wantErr: true,
		},
		{
			name: "empty catalog",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.channels)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidArg))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.channels), c.Len())
		})
	}
}

func TestCatalog_EnabledPreservesOrder(t *testing.T) {
	c, err := New([]model.ChannelConfig{
		{ID: "UC3", Name: "Three", Enabled: true},
		{ID: "UC1", Name: "One", Enabled: false},
		{ID: "UC2", Name: "Two", Enabled: true},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"UC3", "UC2"}, c.EnabledIDs())
	enabled := c.Enabled()
	require.Len(t, enabled, 2)
	assert.Equal(t, "Three", enabled[0].Name)
	assert.Len(t, c.All(), 3)
}

func TestCatalog_Find(t *testing.T) {
	c, err := New([]model.ChannelConfig{{ID: "UC1", Name: "One", Enabled: true}, {ID: "UC2"}})
	require.NoError(t, err)

	ch, ok := c.Find("UC1")
	assert.True(t, ok)
	assert.Equal(t, "One", ch.Name)

	_, ok = c.Find("missing")
	assert.False(t, ok)

	assert.Equal(t, "One", c.Name("UC1"))
	assert.Equal(t, "", c.Name("UC2"))
	assert.Equal(t, "", c.Name("missing"))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "channels.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"channels":[{"id":"UCa","name":"A","enabled":true},{"id":"UCb","name":"B","enabled":false}]}`), 0644))

	t.Run("from file", func(t *testing.T) {
		c, err := Load(nil, path)
		require.NoError(t, err)
		assert.Equal(t, []string{"UCa"}, c.EnabledIDs())
	})

	t.Run("inline wins over file", func(t *testing.T) {
		c, err := Load([]model.ChannelConfig{{ID: "UCx", Enabled: true}}, path)
		require.NoError(t, err)
		assert.Equal(t, []string{"UCx"}, c.EnabledIDs())
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(nil, filepath.Join(dir, "nope.json"))
		assert.Error(t, err)
	})

	t.Run("malformed file", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"channels":`), 0644))
		_, err := Load(nil, bad)
		assert.Error(t, err)
	})
}
