// Package catalog holds the static list of tracked channels.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	apperrors "github.com/Taichi-iskw/pod-digest/internal/errors"
	"github.com/Taichi-iskw/pod-digest/internal/model"
)

// Catalog is an immutable, ordered set of tracked channels
type Catalog struct {
	channels []model.ChannelConfig
	byID     map[string]int
}

// channelsFile is the on-disk layout of a channels file
type channelsFile struct {
	Channels []model.ChannelConfig `json:"channels"`
}

// New builds a catalog preserving declaration order. Duplicate or empty IDs are rejected.
func New(channels []model.ChannelConfig) (*Catalog, error) {
	c := &Catalog{
		channels: make([]model.ChannelConfig, 0, len(channels)),
		byID:     make(map[string]int, len(channels)),
	}
	for i, ch := range channels {
		id := strings.TrimSpace(ch.ID)
		if id == "" {
			return nil, apperrors.New(apperrors.CodeInvalidArg, fmt.Sprintf("channel at position %d has no id", i))
		}
		if _, dup := c.byID[id]; dup {
			return nil, apperrors.New(apperrors.CodeInvalidArg, "duplicate channel id: "+id)
		}
		ch.ID = id
		c.byID[id] = len(c.channels)
		c.channels = append(c.channels, ch)
	}
	return c, nil
}

// Load builds a catalog from inline channels, or from the JSON file at path when inline is empty
func Load(inline []model.ChannelConfig, path string) (*Catalog, error) {
	if len(inline) > 0 || path == "" {
		return New(inline)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidArg, "failed to read channels file "+path)
	}

	var file channelsFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInvalidArg, "failed to parse channels file "+path)
	}
	return New(file.Channels)
}

// All returns every channel in declaration order
func (c *Catalog) All() []model.ChannelConfig {
	out := make([]model.ChannelConfig, len(c.channels))
	copy(out, c.channels)
	return out
}

// Enabled returns the enabled channels in declaration order
func (c *Catalog) Enabled() []model.ChannelConfig {
	var out []model.ChannelConfig
	for _, ch := range c.channels {
		if ch.Enabled {
			out = append(out, ch)
		}
	}
	return out
}

// EnabledIDs returns the identifiers of the enabled channels in declaration order
func (c *Catalog) EnabledIDs() []string {
	var ids []string
	for _, ch := range c.channels {
		if ch.Enabled {
			ids = append(ids, ch.ID)
		}
	}
	return ids
}

// Find looks up a channel by identifier
func (c *Catalog) Find(id string) (model.ChannelConfig, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.ChannelConfig{}, false
	}
	return c.channels[i], true
}

// Name returns the configured display name, or "" when the channel is unknown or unnamed
func (c *Catalog) Name(id string) string {
	ch, ok := c.Find(id)
	if !ok {
		return ""
	}
	return ch.Name
}

// Len returns the number of declared channels
func (c *Catalog) Len() int {
	return len(c.channels)
}
