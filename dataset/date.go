package dataset

import (
	"strings"
	"time"

	fcErrors "github.com/ezoic/fuelcast/pkg/errors"
)

// DayFirstFormat describes the accepted date shapes in error messages.
const DayFirstFormat = "day-first date (DD-MM-YYYY, DD/MM/YYYY, DD.MM.YYYY, YYYY-MM-DD or YYYY/MM/DD)"

// unixEpochOrdinal is the ordinal of 1970-01-01 when 0001-01-01 is day 1.
const unixEpochOrdinal = 719163

const secondsPerDay = 24 * 60 * 60

// Single-digit day and month are accepted by these layouts as well.
var dayFirstLayouts = []string{
	"2-1-2006",
	"2/1/2006",
	"2.1.2006",
	"2-1-06",
	"2/1/06",
	"2-Jan-2006",
	"2 Jan 2006",
	"2006-01-02",
	"2006/1/2",
}

var timeSuffixes = []string{"", " 15:04:05", " 15:04", "T15:04:05"}

// ParseDate parses a day-first date string into a UTC calendar date.
// Any time of day is dropped. Year-first dates are also accepted, read as
// year, month, day.
func ParseDate(s string) (time.Time, error) {
	v := strings.TrimSpace(s)
	if v != "" {
		for _, layout := range dayFirstLayouts {
			for _, suffix := range timeSuffixes {
				if t, err := time.Parse(layout+suffix, v); err == nil {
					return Day(t), nil
				}
			}
		}
	}
	return time.Time{}, fcErrors.NewParseError(ColDate, s, DayFirstFormat)
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Ordinal returns the proleptic Gregorian ordinal of t's calendar date,
// where 0001-01-01 is day 1.
func Ordinal(t time.Time) int {
	return int(Day(t).Unix()/secondsPerDay) + unixEpochOrdinal
}

// FromOrdinal is the inverse of Ordinal.
func FromOrdinal(ordinal int) time.Time {
	return time.Unix(int64(ordinal-unixEpochOrdinal)*secondsPerDay, 0).UTC()
}
