// Package dateutils holds calendar helpers. Receipts are stored as UTC
// instants but bucketed, listed and reported by the configured local day.
package dateutils

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	_ "time/tzdata" // containers often ship without zoneinfo
)

// Date layouts used throughout the bot.
const (
	DateLayoutISO      = "2006-01-02"
	DateLayoutMinute   = "2006-01-02 15:04"
	DateLayoutFull     = "2006-01-02 15:04:05"
	DateLayoutSlash    = "2006/01/02"
	DateLayoutUS       = "01/02/2006"
	DateLayoutMonth    = "Jan 2, 2006"
	DateLayoutLong     = "January 2, 2006"
	TimestampLayoutUTC = "2006-01-02T15:04:05.000Z"
)

// InputFormats are tried in order when parsing a user-typed date.
var InputFormats = []string{
	DateLayoutFull,
	DateLayoutMinute,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	DateLayoutISO,
	DateLayoutSlash,
	DateLayoutUS,
	DateLayoutMonth,
	DateLayoutLong,
}

var spaces = regexp.MustCompile(`\s+`)

// LoadLocation resolves an IANA zone name; empty means UTC.
func LoadLocation(name string) (*time.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("unknown time zone %q: %w", name, err)
	}
	return loc, nil
}

// ParseUserDate parses free text typed by a user, interpreting it in loc.
// RFC3339 input keeps its own offset.
func ParseUserDate(input string, loc *time.Location) (time.Time, error) {
	s := spaces.ReplaceAllString(strings.TrimSpace(input), " ")
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	for _, layout := range InputFormats {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", s)
}

// ParseStoredTimestamp reads a timestamp from a data file. Older files may
// hold zone-less values; those are taken as UTC.
func ParseStoredTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05.000", "2006-01-02T15:04:05", DateLayoutFull, DateLayoutISO} {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", s)
}

// FormatUTC renders t as a millisecond UTC timestamp, e.g. 2024-02-14T18:00:00.000Z.
func FormatUTC(t time.Time) string {
	return t.UTC().Format(TimestampLayoutUTC)
}

// DayKey is the YYYY-MM-DD of t's calendar day in loc.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayoutISO)
}

// FormatLocal renders t in loc as "2006-01-02 15:04".
func FormatLocal(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DateLayoutMinute)
}

// StartOfDay is local midnight of t's day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), l.Day(), 0, 0, 0, 0, loc)
}

// EndOfDay is the last nanosecond of t's day in loc.
func EndOfDay(t time.Time, loc *time.Location) time.Time {
	return StartOfDay(t, loc).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	return DayKey(a, loc) == DayKey(b, loc)
}

// StartOfMonth returns local midnight on the first of t's month in loc.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	l := t.In(loc)
	return time.Date(l.Year(), l.Month(), 1, 0, 0, 0, 0, loc)
}

// EndOfMonth returns the last nanosecond of t's month in loc.
func EndOfMonth(t time.Time, loc *time.Location) time.Time {
	return StartOfMonth(t, loc).AddDate(0, 1, 0).Add(-time.Nanosecond)
}

// StartOfYear returns local midnight on January 1st of t's year in loc.
func StartOfYear(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.In(loc).Year(), time.January, 1, 0, 0, 0, 0, loc)
}

// EndOfYear returns the last nanosecond of t's year in loc.
func EndOfYear(t time.Time, loc *time.Location) time.Time {
	return StartOfYear(t, loc).AddDate(1, 0, 0).Add(-time.Nanosecond)
}

// Days lists local midnights for every calendar day from start to end,
// inclusive. Stepping uses AddDate so DST transitions never skip a day.
func Days(start, end time.Time, loc *time.Location) []time.Time {
	first := StartOfDay(start, loc)
	last := StartOfDay(end, loc)
	var days []time.Time
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

// CompareDates compares the calendar days of two dates in loc:
// -1 if a is earlier, 0 if the same day, 1 if later.
func CompareDates(a, b time.Time, loc *time.Location) int {
	ka, kb := DayKey(a, loc), DayKey(b, loc)
	switch {
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	default:
		return 0
	}
}

// DateRange is an inclusive window of local days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String renders the range as "start to end" using ISO dates.
func (dr DateRange) String() string {
	if dr.Start.IsZero() || dr.End.IsZero() {
		return "no dates"
	}
	if dr.Start.Format(DateLayoutISO) == dr.End.Format(DateLayoutISO) {
		return dr.Start.Format(DateLayoutISO)
	}
	return fmt.Sprintf("%s to %s", dr.Start.Format(DateLayoutISO), dr.End.Format(DateLayoutISO))
}
