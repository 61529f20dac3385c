package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidDayKey = errors.New("invalid day key (must be YYYY-MM-DD)")
)

const dayKeyLayout = "2006-01-02"

// DayKey identifies one local calendar day as a zero-padded YYYY-MM-DD string.
// The zero padding is load-bearing: it is what makes plain string comparison
// agree with chronological order.
type DayKey string

// DayKeyFor normalizes a point in time to the calendar day it falls on in the
// given location. Two timestamps on the same local day always produce the same
// key, regardless of clock time.
func DayKeyFor(t time.Time, loc *time.Location) DayKey {
	if loc == nil {
		loc = time.UTC
	}
	return DayKey(t.In(loc).Format(dayKeyLayout))
}

// ParseDayKey validates a stored day key string. Round-tripping through the
// layout rejects non-canonical spellings like "2025-1-2".
func ParseDayKey(s string) (DayKey, error) {
	t, err := time.Parse(dayKeyLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDayKey, s)
	}
	if t.Format(dayKeyLayout) != s {
		return "", fmt.Errorf("%w: %q", ErrInvalidDayKey, s)
	}
	return DayKey(s), nil
}

// Time returns midnight UTC of the day. UTC has no DST transitions, so day
// arithmetic on these instants is exact.
func (d DayKey) Time() time.Time {
	t, err := time.Parse(dayKeyLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d DayKey) IsZero() bool {
	return d == ""
}

func (d DayKey) Before(other DayKey) bool {
	return string(d) < string(other)
}

func (d DayKey) SameOrBefore(other DayKey) bool {
	return string(d) <= string(other)
}

func (d DayKey) AddDays(n int) DayKey {
	return DayKey(d.Time().AddDate(0, 0, n).Format(dayKeyLayout))
}

// DaysBetween returns the number of whole days from a to b (negative when b
// precedes a).
func DaysBetween(a, b DayKey) int {
	return int(b.Time().Sub(a.Time()).Hours() / 24)
}
