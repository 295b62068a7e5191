package youtube

import (
	"fmt"
	"regexp"
	"strconv"
)

// ShortsMaxSeconds is the duration at or below which an upload is treated as a Short
const ShortsMaxSeconds = 180

var isoDurationRE = regexp.MustCompile(`^P(?:(\d+)D)?(?:T(?:(\d+)H)?(?:(\d+)M)?(?:(\d+(?:\.\d+)?)S)?)?$`)

// DurationSeconds parses an ISO 8601 duration such as "PT1H2M30S" or "P1DT2H".
// ok is false when the token is not a duration.
func DurationSeconds(token string) (seconds float64, ok bool) {
	m := isoDurationRE.FindStringSubmatch(token)
	if m == nil || token == "P" || token == "PT" {
		return 0, false
	}

	days := atoiOrZero(m[1])
	hours := atoiOrZero(m[2])
	minutes := atoiOrZero(m[3])
	var secs float64
	if m[4] != "" {
		secs, _ = strconv.ParseFloat(m[4], 64)
	}

	return float64(days*86400+hours*3600+minutes*60) + secs, true
}

// ParseDuration converts an ISO 8601 duration into minutes. Unparseable tokens yield 0.
func ParseDuration(token string) float64 {
	secs, ok := DurationSeconds(token)
	if !ok {
		return 0
	}
	return secs / 60
}

// DurationMinutes returns the rounded minute count of a duration token
func DurationMinutes(token string) int {
	secs, _ := DurationSeconds(token)
	return int(secs/60 + 0.5)
}

// FormatDuration renders a duration token as "1h 5m", "42m" or "0m".
// Seconds are dropped. Unparseable tokens are returned unchanged.
func FormatDuration(token string) string {
	secs, ok := DurationSeconds(token)
	if !ok {
		return token
	}
	total := int(secs) / 60
	hours, minutes := total/60, total%60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	default:
		return fmt.Sprintf("%dm", minutes)
	}
}

// FormatMinutes renders a stored minute count for browsing
func FormatMinutes(minutes *int) string {
	if minutes == nil {
		return "Length unknown"
	}
	hours, mins := *minutes/60, *minutes%60
	if hours == 0 {
		return fmt.Sprintf("%dm", mins)
	}
	return fmt.Sprintf("%dh %dm", hours, mins)
}

func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
