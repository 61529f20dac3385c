package domain

// GraceDays is the maximum gap, in whole calendar days, between the most
// recent check-in and today before the streak breaks. A gap of 2 tolerates
// exactly one fully missed day (the "48 hours" the app copy promises), so the
// value must not be generalized.
const GraceDays = 2

type StreakStatus string

const (
	// StreakUnset means no check-in has ever been recorded.
	StreakUnset StreakStatus = "unset"
	// StreakActive means the last check-in is within the grace period.
	StreakActive StreakStatus = "active"
	// StreakBroken means the grace period elapsed and the count reset to zero.
	StreakBroken StreakStatus = "broken"
)

// StreakState is derived from the ledger on every evaluation and never
// persisted.
type StreakState struct {
	Status StreakStatus `json:"status"`
	Count  int          `json:"count"`
	// LastQualifyingDay is the most recent check-in day while the streak is
	// active.
	LastQualifyingDay *DayKey `json:"last_qualifying_day,omitempty"`
}

// EvaluateStreak computes the current streak from the ledger as of today.
//
// The count is the number of distinct recorded days in the unbroken run ending
// at the most recent check-in, walking backward while consecutive recorded
// days are at most GraceDays apart. The run itself must also be within grace
// of today, otherwise the streak is broken and the count is zero.
func EvaluateStreak(ledger *CheckInLedger, today DayKey) StreakState {
	if ledger == nil || ledger.Len() == 0 {
		return StreakState{Status: StreakUnset}
	}

	last, _ := ledger.MostRecent()
	if DaysBetween(last, today) > GraceDays {
		return StreakState{Status: StreakBroken}
	}

	days := ledger.Days()
	count := 1
	for i := len(days) - 1; i > 0; i-- {
		if DaysBetween(days[i-1], days[i]) > GraceDays {
			break
		}
		count++
	}

	return StreakState{
		Status:            StreakActive,
		Count:             count,
		LastQualifyingDay: &last,
	}
}
