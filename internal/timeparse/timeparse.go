// Package timeparse resolves natural-language date expressions against a
// reference "now" in a fixed timezone. All results carry the reference
// location; naive values never leave this package.
package timeparse

import (
	"fmt"
	"strings"
	"time"
)

var defaultLocation = time.UTC

// ResolveLocation returns the location for a timezone name with UTC fallback.
// The second return is false when the name did not resolve.
func ResolveLocation(timezone string) (*time.Location, bool) {
	if timezone == "" {
		return defaultLocation, true
	}

	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return defaultLocation, false
	}
	return loc, true
}

// Resolve maps a free-text date expression to a concrete instant relative to
// now. Relative keywords win over anything else, checked in priority order via
// case-insensitive substring match. When no keyword matches, the text is run
// through the fuzzy parser; if that fails too, the result is now itself.
func Resolve(text string, now time.Time) time.Time {
	lower := strings.ToLower(text)

	switch {
	case strings.Contains(lower, "tomorrow"):
		return now.AddDate(0, 0, 1)
	case strings.Contains(lower, "day after"):
		return now.AddDate(0, 0, 2)
	case strings.Contains(lower, "next week"):
		return NextWeekOffset(now)
	case strings.Contains(lower, "yesterday"):
		return now.AddDate(0, 0, -1)
	case strings.Contains(lower, "today"):
		return now
	}

	if t, err := ParseFuzzy(text, now); err == nil {
		return t
	}
	return now
}

// NextWeekOffset interprets "next week" as exactly seven days from now.
func NextWeekOffset(now time.Time) time.Time {
	return now.AddDate(0, 0, 7)
}

// NextWeekMonday interprets "next week" as the upcoming Monday at the same
// clock time. When now is already a Monday the result is a full week ahead.
func NextWeekMonday(now time.Time) time.Time {
	days := (int(time.Monday) - int(now.Weekday()) + 7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days)
}

// stampLayouts are tried in order when parsing an explicit timestamp that may
// lack an offset. Offset-less values are interpreted in now's location.
var stampLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// ParseStamp parses an ISO-ish timestamp, preserving an explicit offset when
// present and otherwise assuming the reference location. The result is always
// converted into loc.
func ParseStamp(value string, loc *time.Location) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("time value is required")
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	for _, layout := range stampLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse time: %s", value)
}

// dateLayouts are date-only shapes a user might embed in a message, with and
// without a year. Yearless matches borrow now's year.
var dateLayouts = []struct {
	layout  string
	hasYear bool
}{
	{"2006-01-02", true},
	{"02 Jan 2006", true},
	{"2 Jan 2006", true},
	{"Jan 2 2006", true},
	{"January 2 2006", true},
	{"2 January", false},
	{"2 Jan", false},
	{"Jan 2", false},
	{"January 2", false},
}

// ParseFuzzy scans free text for an embedded date. Full timestamps are tried
// first, then every window of up to three whitespace-delimited tokens is
// matched against the known date layouts. Matched dates keep now's clock time.
func ParseFuzzy(text string, now time.Time) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, fmt.Errorf("empty text")
	}
	loc := now.Location()

	if t, err := ParseStamp(text, loc); err == nil {
		return t, nil
	}

	fields := strings.Fields(strings.Trim(text, ".!?"))
	for width := 3; width >= 1; width-- {
		for i := 0; i+width <= len(fields); i++ {
			window := strings.Trim(strings.Join(fields[i:i+width], " "), ".,!?")
			if t, ok := parseDateWindow(window, now, loc); ok {
				return t, nil
			}
		}
	}

	return time.Time{}, fmt.Errorf("no date found in: %s", text)
}

func parseDateWindow(window string, now time.Time, loc *time.Location) (time.Time, bool) {
	for _, dl := range dateLayouts {
		d, err := time.ParseInLocation(dl.layout, window, loc)
		if err != nil {
			continue
		}
		year := d.Year()
		if !dl.hasYear {
			year = now.Year()
		}
		return time.Date(year, d.Month(), d.Day(),
			now.Hour(), now.Minute(), 0, 0, loc), true
	}
	return time.Time{}, false
}
