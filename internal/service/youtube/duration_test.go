package youtube

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		token string
		want  float64
	}{
		{"PT1H2M30S", 62.5},
		{"PT10M", 10},
		{"PT45S", 0.75},
		{"PT2H", 120},
		{"P1DT1H", 1500},
		{"P0D", 0},
		{"", 0},
		{"PT", 0},
		{"garbage", 0},
		{"1H2M", 0},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.InDelta(t, tt.want, ParseDuration(tt.token), 1e-9)
		})
	}
}

func TestDurationMinutes(t *testing.T) {
	assert.Equal(t, 63, DurationMinutes("PT1H2M30S"))
	assert.Equal(t, 10, DurationMinutes("PT10M"))
	assert.Equal(t, 0, DurationMinutes("unknown"))
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"PT1H5M12S", "1h 5m"},
		{"PT42M", "42m"},
		{"PT2H", "2h"},
		{"PT30S", "0m"},
		{"P1DT30M", "24h 30m"},
		{"Unknown", "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDuration(tt.token))
		})
	}
}

func TestFormatMinutes(t *testing.T) {
	m := func(n int) *int { return &n }

	assert.Equal(t, "Length unknown", FormatMinutes(nil))
	assert.Equal(t, "45m", FormatMinutes(m(45)))
	assert.Equal(t, "1h 5m", FormatMinutes(m(65)))
	assert.Equal(t, "2h 0m", FormatMinutes(m(120)))
}
