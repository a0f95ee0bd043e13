// Package ist interprets naive seminar timestamps as India Standard Time.
//
// Seminar dates are stored without an offset. Whatever offset a caller
// attaches is discarded and the wall clock is read as +05:30, so rendering
// never depends on the host time zone.
package ist

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Offset is the literal suffix appended to normalized values
const Offset = "+05:30"

// Location is IST as a fixed zone, independent of the tz database and TZ
var Location = time.FixedZone("IST", 5*60*60+30*60)

const (
	naiveLayout   = "2006-01-02T15:04:05"
	displayLayout = "02 Jan 2006, 03:04 PM"
)

var (
	offsetSuffix = regexp.MustCompile(`(?:[Zz]|[+-]\d{2}:?\d{2})$`)
	fraction     = regexp.MustCompile(`\.\d+$`)
)

// Normalize turns a stored or submitted seminar timestamp into
// "YYYY-MM-DDTHH:MM:SS+05:30". Input without a "T" is a bare date at
// midnight IST.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("empty timestamp")
	}

	if !strings.Contains(s, "T") {
		date := strings.Fields(s)[0]
		if _, err := time.Parse("2006-01-02", date); err != nil {
			return "", fmt.Errorf("invalid date %q: %w", raw, err)
		}
		return date + "T00:00:00" + Offset, nil
	}

	s = offsetSuffix.ReplaceAllString(s, "")
	s = fraction.ReplaceAllString(s, "")

	datePart, timePart, _ := strings.Cut(s, "T")
	switch strings.Count(timePart, ":") {
	case 1:
		timePart += ":00"
	case 2:
	default:
		return "", fmt.Errorf("invalid time in %q", raw)
	}

	naive := datePart + "T" + timePart
	if _, err := time.Parse(naiveLayout, naive); err != nil {
		return "", fmt.Errorf("invalid timestamp %q: %w", raw, err)
	}
	return naive + Offset, nil
}

// Parse returns the instant the stored value denotes, in the IST location
func Parse(raw string) (time.Time, error) {
	normalized, err := Normalize(raw)
	if err != nil {
		return time.Time{}, err
	}
	return time.ParseInLocation(naiveLayout, strings.TrimSuffix(normalized, Offset), Location)
}

// FormatDisplay renders a stored value as "02 Jan 2006, 03:04 PM IST",
// returning the input unchanged when it cannot be parsed.
func FormatDisplay(raw string) string {
	t, err := Parse(raw)
	if err != nil {
		return raw
	}
	return t.Format(displayLayout) + " IST"
}

// WallClock renders t as the naive IST wall clock used for storage
func WallClock(t time.Time) string {
	return t.In(Location).Format(naiveLayout)
}

// FromStored converts a value scanned from a "timestamp without time zone"
// column. pgx hands those back in UTC with the stored wall clock, so the
// fields are reread in IST rather than converted.
func FromStored(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, Location)
}

// ToStored is the inverse of FromStored
func ToStored(t time.Time) time.Time {
	t = t.In(Location)
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)
}
