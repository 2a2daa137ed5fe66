package helpers

import (
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// ParseDuration parses a duration string, returns default duration on error.
func ParseDuration(durationStr string, defaultDuration time.Duration) time.Duration {
	duration, err := time.ParseDuration(durationStr)
	if err != nil {
		log.Warn().Err(err).Str("durationStr", durationStr).Dur("defaultDuration", defaultDuration).Msg("Failed to parse duration string, using default")
		return defaultDuration
	}
	return duration
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must be in YYYY-MM-DD format", s)
	}
	return t, nil
}

// EndOfDay returns the last instant of the calendar day of t, in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// MonthLabel formats a month bucket as "Jan 2025"
func MonthLabel(t time.Time) string {
	return t.Format("Jan 2006")
}

// LastMonths returns the first day of each of the last n months, oldest first,
// ending with the month containing now.
func LastMonths(now time.Time, n int) []time.Time {
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	months := make([]time.Time, n)
	for i := 0; i < n; i++ {
		months[n-1-i] = start.AddDate(0, -i, 0)
	}
	return months
}

// LastYears returns the last n calendar years, oldest first, ending with now's year.
func LastYears(now time.Time, n int) []int {
	years := make([]int, n)
	for i := 0; i < n; i++ {
		years[i] = now.Year() - (n - 1 - i)
	}
	return years
}
