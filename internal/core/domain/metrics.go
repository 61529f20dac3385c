package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Fixed conversion constants behind the derived metrics. These are product
// policy figures, not user-configurable.
const (
	averagePricePerGram = 10.0
	gramsPerJoint       = 0.33
	// jointDisplayLimit is where the avoided-amount display flips from a
	// joint count to a gram count.
	jointDisplayLimit = 50
)

// fallbackWeeklySpending is used when the user never reported spending.
var fallbackWeeklySpending = decimal.NewFromInt(70)

var daysPerWeek = decimal.NewFromInt(7)

// Metrics are pure functions of the profile and elapsed days. Nothing here is
// persisted, so editing the profile retroactively updates every figure.
type Metrics struct {
	DaysSinceQuit int           `json:"days_since_quit"`
	TimeSaved     TimeSaved     `json:"time_saved"`
	MoneySaved    MoneySaved    `json:"money_saved"`
	AmountAvoided AmountAvoided `json:"amount_avoided"`
}

type TimeSaved struct {
	Hours    float64 `json:"hours"`
	Display  string  `json:"display"`
	Metaphor string  `json:"metaphor"`
}

type MoneySaved struct {
	Amount   decimal.Decimal `json:"amount"`
	Display  string          `json:"display"`
	Metaphor string          `json:"metaphor"`
}

type AmountAvoided struct {
	Joints  float64 `json:"joints"`
	Grams   float64 `json:"grams"`
	Unit    string  `json:"unit"`
	Display string  `json:"display"`
}

// CalculateMetrics derives the savings figures for the profile as of now.
// For fixed profile inputs every figure is non-decreasing in days since quit.
func CalculateMetrics(p *Profile, now time.Time, loc *time.Location) Metrics {
	days := p.DaysSinceQuit(now, loc)

	return Metrics{
		DaysSinceQuit: days,
		TimeSaved:     timeSaved(p.FrequencyTier, days),
		MoneySaved:    moneySaved(p.WeeklySpending, days),
		AmountAvoided: amountAvoided(p.WeeklySpending, days),
	}
}

func timeSaved(tier FrequencyTier, days int) TimeSaved {
	hours := tier.HoursPerDay() * float64(days)

	var display string
	whole := int(hours)
	if whole < 24 {
		display = fmt.Sprintf("%dh", whole)
	} else {
		display = fmt.Sprintf("%dd %dh", whole/24, whole%24)
	}

	return TimeSaved{
		Hours:    hours,
		Display:  display,
		Metaphor: timeMetaphor(hours),
	}
}

func timeMetaphor(hours float64) string {
	switch {
	case hours < 2:
		return "a good walk"
	case hours < 8:
		return "a full night's sleep"
	case hours < 16:
		return "a binge-watch session"
	case hours <= 24:
		return "a full day awake"
	case hours < 72:
		return "a long weekend"
	case hours < 168:
		return "a week of evenings back"
	default:
		return "weeks of life reclaimed"
	}
}

func moneySaved(weeklySpending decimal.Decimal, days int) MoneySaved {
	weekly := weeklySpending
	if weekly.IsZero() {
		weekly = fallbackWeeklySpending
	}

	amount := weekly.Div(daysPerWeek).Mul(decimal.NewFromInt(int64(days))).Round(2)

	return MoneySaved{
		Amount:   amount,
		Display:  "$" + amount.StringFixed(2),
		Metaphor: moneyMetaphor(amount),
	}
}

func moneyMetaphor(amount decimal.Decimal) string {
	dollars := amount.InexactFloat64()
	switch {
	case dollars < 15:
		return "a fancy coffee"
	case dollars < 50:
		return "a nice meal out"
	case dollars < 100:
		return "a full tank of gas"
	case dollars < 200:
		return "a date night"
	case dollars < 400:
		return "a new pair of shoes"
	case dollars < 1000:
		return "a weekend trip"
	case dollars < 2000:
		return "a new phone"
	default:
		return "real savings"
	}
}

func amountAvoided(weeklySpending decimal.Decimal, days int) AmountAvoided {
	weekly := weeklySpending
	if weekly.IsZero() {
		weekly = fallbackWeeklySpending
	}

	gramsPerDay := weekly.InexactFloat64() / averagePricePerGram / 7
	grams := gramsPerDay * float64(days)
	joints := grams / gramsPerJoint

	avoided := AmountAvoided{
		Joints: joints,
		Grams:  grams,
	}

	if joints > jointDisplayLimit {
		avoided.Unit = "grams"
		avoided.Display = fmt.Sprintf("%.0fg avoided", grams)
	} else {
		avoided.Unit = "joints"
		avoided.Display = fmt.Sprintf("%.0f joints avoided", joints)
	}

	return avoided
}
