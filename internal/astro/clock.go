// Package astro holds the day/night and observing-condition rules used to
// decorate forecast pages. Everything here is pure.
package astro

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeFormat is returned when a clock time or a forecast timestamp
// cannot be parsed.
var ErrInvalidTimeFormat = errors.New("invalid time format")

const minutesPerDay = 24 * 60

// ClockTime is a time of day expressed as minutes since midnight (0-1439).
type ClockTime int

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

// String formats the clock time as 24-hour "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// ParseClockTime parses a 12-hour clock string such as "7:56 AM" or
// "07:56 PM".
func ParseClockTime(s string) (ClockTime, error) {
	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, fmt.Errorf("%w: %q (want \"H:MM AM|PM\")", ErrInvalidTimeFormat, s)
	}

	hourStr, minStr, ok := strings.Cut(fields[0], ":")
	if !ok || len(minStr) != 2 || len(hourStr) == 0 || len(hourStr) > 2 || !allDigits(hourStr) || !allDigits(minStr) {
		return 0, fmt.Errorf("%w: %q (want \"H:MM AM|PM\")", ErrInvalidTimeFormat, s)
	}
	hour, err := strconv.Atoi(hourStr)
	if err != nil || hour < 1 || hour > 12 {
		return 0, fmt.Errorf("%w: %q: hour must be 1-12", ErrInvalidTimeFormat, s)
	}
	minute, err := strconv.Atoi(minStr)
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("%w: %q: minute must be 00-59", ErrInvalidTimeFormat, s)
	}

	switch strings.ToUpper(fields[1]) {
	case "AM":
		if hour == 12 {
			hour = 0
		}
	case "PM":
		if hour != 12 {
			hour += 12
		}
	default:
		return 0, fmt.Errorf("%w: %q: missing AM/PM marker", ErrInvalidTimeFormat, s)
	}

	return ClockTime(hour*60 + minute), nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Forecast timestamps come as local wall-clock "2006-01-02 15:04"; RFC 3339
// is accepted as well.
var timestampLayouts = []string{
	"2006-01-02 15:04",
	time.RFC3339,
	"2006-01-02T15:04",
}

// ParseTimestamp parses a forecast timestamp. The wall clock of the string is
// kept as-is; no zone conversion is applied.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: timestamp %q", ErrInvalidTimeFormat, s)
}

// ClockOf returns the time of day of t in t's own location.
func ClockOf(t time.Time) ClockTime {
	return ClockTime(t.Hour()*60 + t.Minute())
}
