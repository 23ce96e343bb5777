// Package dates canonicalizes the heterogeneous date representations the
// upstream platform and API callers use into a single YYYY-MM-DD form,
// interpreted in UTC. All functions are pure.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"adsight/internal/domain"
)

// CanonicalFormat is the canonical date layout.
const CanonicalFormat = "2006-01-02"

var canonicalPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// parseFormats are tried in order for non-canonical input.
var parseFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
}

// IsValidFormat reports whether s is a canonical date: strict YYYY-MM-DD
// shape and a real calendar day. "2024-02-30" fails.
func IsValidFormat(s string) bool {
	if !canonicalPattern.MatchString(s) {
		return false
	}
	_, err := time.Parse(CanonicalFormat, s)
	return err == nil
}

// Normalize canonicalizes any supported date representation. Canonical
// input passes through unchanged; timestamps are converted to UTC first so
// zone offsets cannot shift the calendar day at midnight. Malformed input
// returns domain.ErrInvalidDate.
func Normalize(input string) (string, error) {
	s := strings.TrimSpace(input)
	if IsValidFormat(s) {
		return s, nil
	}
	if canonicalPattern.MatchString(s) {
		// right shape, impossible calendar day
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidDate, input)
	}
	for _, layout := range parseFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return FromTime(t), nil
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidDate, input)
}

// FromTime canonicalizes a time.Time in UTC.
func FromTime(t time.Time) string {
	return t.UTC().Format(CanonicalFormat)
}

// ToTime converts a canonical date to a time.Time anchored at noon UTC.
// The noon reference keeps day arithmetic away from midnight boundaries.
func ToTime(s string) (time.Time, error) {
	t, err := time.Parse(CanonicalFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, s)
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC), nil
}

// Today is the current calendar day in the reference timezone.
func Today() string {
	return FromTime(time.Now())
}

// AddDays shifts a canonical date by n calendar days.
func AddDays(s string, n int) (string, error) {
	t, err := ToTime(s)
	if err != nil {
		return "", err
	}
	return FromTime(t.AddDate(0, 0, n)), nil
}

// ValidateRange reports whether start and end are both canonical and
// start <= end. Canonical dates order lexicographically.
func ValidateRange(start, end string) bool {
	return IsValidFormat(start) && IsValidFormat(end) && start <= end
}

// NewTimeRange normalizes both bounds and returns a validated TimeRange.
func NewTimeRange(since, until string) (domain.TimeRange, error) {
	s, err := Normalize(since)
	if err != nil {
		return domain.TimeRange{}, err
	}
	u, err := Normalize(until)
	if err != nil {
		return domain.TimeRange{}, err
	}
	if s > u {
		return domain.TimeRange{}, fmt.Errorf("%w: range %s..%s is out of order", domain.ErrInvalidDate, s, u)
	}
	return domain.TimeRange{Since: s, Until: u}, nil
}

// Length is the inclusive day count of a range.
func Length(rng domain.TimeRange) int {
	since, err := ToTime(rng.Since)
	if err != nil {
		return 0
	}
	until, err := ToTime(rng.Until)
	if err != nil {
		return 0
	}
	return int(until.Sub(since).Hours()/24) + 1
}

// Days lists every calendar day of a range in ascending order.
func Days(rng domain.TimeRange) []string {
	n := Length(rng)
	if n <= 0 {
		return nil
	}
	days := make([]string, 0, n)
	t, _ := ToTime(rng.Since)
	for i := 0; i < n; i++ {
		days = append(days, FromTime(t.AddDate(0, 0, i)))
	}
	return days
}
