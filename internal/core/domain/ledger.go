package domain

import (
	"fmt"
	"sort"
	"strings"
)

// CheckInLedger is the de-duplicated set of days the user affirmatively
// checked in. It is the single source of truth the streak evaluator and the
// calendar projector both read; entries are never removed except by full data
// deletion.
type CheckInLedger struct {
	days map[DayKey]struct{}
}

func NewCheckInLedger() *CheckInLedger {
	return &CheckInLedger{
		days: make(map[DayKey]struct{}),
	}
}

// Record inserts a day into the ledger. It is idempotent and reports whether
// the day was newly added.
func (l *CheckInLedger) Record(day DayKey) bool {
	if _, ok := l.days[day]; ok {
		return false
	}
	l.days[day] = struct{}{}
	return true
}

func (l *CheckInLedger) Contains(day DayKey) bool {
	_, ok := l.days[day]
	return ok
}

func (l *CheckInLedger) Len() int {
	return len(l.days)
}

// Days returns every recorded day in ascending order.
func (l *CheckInLedger) Days() []DayKey {
	out := make([]DayKey, 0, len(l.days))
	for d := range l.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// MostRecent returns the latest recorded day, if any.
func (l *CheckInLedger) MostRecent() (DayKey, bool) {
	var latest DayKey
	for d := range l.days {
		if latest.IsZero() || latest.Before(d) {
			latest = d
		}
	}
	return latest, !latest.IsZero()
}

// Encode serializes the ledger as a comma-joined, sorted day key string.
func (l *CheckInLedger) Encode() string {
	days := l.Days()
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = string(d)
	}
	return strings.Join(parts, ",")
}

// DecodeCheckInLedger parses the comma-joined wire format. Any invalid token
// fails the whole decode so callers can fall back to a backup copy instead of
// silently keeping a partial ledger.
func DecodeCheckInLedger(s string) (*CheckInLedger, error) {
	ledger := NewCheckInLedger()
	if strings.TrimSpace(s) == "" {
		return ledger, nil
	}

	for _, token := range strings.Split(s, ",") {
		day, err := ParseDayKey(strings.TrimSpace(token))
		if err != nil {
			return nil, fmt.Errorf("decode ledger: %w", err)
		}
		ledger.Record(day)
	}
	return ledger, nil
}
