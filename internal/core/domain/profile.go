package domain

import (
	"errors"
	"log"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrProfileNotFound      = errors.New("profile not found")
	ErrInvalidFrequencyTier = errors.New("invalid frequency tier")
	ErrNegativeSpending     = errors.New("weekly spending cannot be negative")
)

// FrequencyTier is the self-reported usage frequency captured during
// onboarding. Each tier maps to a fixed estimated-hours-per-day figure used by
// the time-saved metric.
type FrequencyTier string

const (
	TierOccasional FrequencyTier = "occasional"
	TierWeekly     FrequencyTier = "weekly"
	TierDaily      FrequencyTier = "daily"
	TierHeavy      FrequencyTier = "heavy"
)

var tierHoursPerDay = map[FrequencyTier]float64{
	TierOccasional: 1,
	TierWeekly:     2,
	TierDaily:      3,
	TierHeavy:      5,
}

func (t FrequencyTier) Valid() bool {
	_, ok := tierHoursPerDay[t]
	return ok
}

// HoursPerDay returns the estimated hours of use the tier stands for. Unknown
// tiers fall back to the daily estimate rather than failing a metrics read.
func (t FrequencyTier) HoursPerDay() float64 {
	if h, ok := tierHoursPerDay[t]; ok {
		return h
	}
	return tierHoursPerDay[TierDaily]
}

// Profile holds the metrics inputs set at onboarding: when the user quit, what
// they were spending, and how often they were using.
type Profile struct {
	QuitDate       time.Time       `json:"quit_date"`
	WeeklySpending decimal.Decimal `json:"weekly_spending"`
	FrequencyTier  FrequencyTier   `json:"frequency_tier"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func NewProfile(quitDate time.Time, weeklySpending decimal.Decimal, tier FrequencyTier) (*Profile, error) {
	if !tier.Valid() {
		return nil, ErrInvalidFrequencyTier
	}
	if weeklySpending.IsNegative() {
		return nil, ErrNegativeSpending
	}

	now := time.Now().UTC()
	p := &Profile{
		QuitDate:       quitDate.UTC(),
		WeeklySpending: weeklySpending,
		FrequencyTier:  tier,
		UpdatedAt:      now,
	}
	p.ClampQuitDate(now)
	return p, nil
}

// ClampQuitDate pulls a future-dated quit date (clock skew, corrupt state)
// back to now. The quit date must never be later than the present.
func (p *Profile) ClampQuitDate(now time.Time) {
	if p.QuitDate.After(now) {
		log.Printf("[PROFILE] Future quit date %s clamped to now", p.QuitDate.Format(time.RFC3339))
		p.QuitDate = now.UTC()
	}
}

// DaysSinceQuit counts the quit day itself and every day since, in the given
// location: day one is the quit day. Zero only when the stored quit date is
// still in the future at evaluation time.
func (p *Profile) DaysSinceQuit(now time.Time, loc *time.Location) int {
	quitDay := DayKeyFor(p.QuitDate, loc)
	today := DayKeyFor(now, loc)

	if today.Before(quitDay) {
		return 0
	}

	days := DaysBetween(quitDay, today) + 1
	if days < 1 {
		days = 1
	}
	return days
}
