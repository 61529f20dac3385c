package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidMonth    = errors.New("invalid month (must be YYYY-MM)")
	ErrMonthOutOfRange = errors.New("month is outside the navigable range")
)

// GridCells is the fixed size of a projected month: 6 weeks of 7 days, padded
// with empty cells so the grid always renders as complete weeks.
const GridCells = 42

// BackNavigationMonths bounds how far back the calendar can be paged when the
// quit date is older than a year.
const BackNavigationMonths = 12

type DayCellState string

const (
	CellEmpty        DayCellState = "empty"
	CellCheckedPast  DayCellState = "checked_past"
	CellCheckedToday DayCellState = "checked_today"
	CellMissedPast   DayCellState = "missed_past"
	CellPendingToday DayCellState = "pending_today"
	CellFuture       DayCellState = "future"
)

const monthLayout = "2006-01"

// Month is a calendar month in no particular timezone; which days it contains
// is unambiguous once day keys are in play.
type Month struct {
	Year  int
	Month time.Month
}

func ParseMonth(s string) (Month, error) {
	t, err := time.Parse(monthLayout, s)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, s)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func MonthOf(d DayKey) Month {
	t := d.Time()
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format(monthLayout)
}

func (m Month) AddMonths(n int) Month {
	t := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	return Month{Year: t.Year(), Month: t.Month()}
}

func (m Month) Before(other Month) bool {
	if m.Year != other.Year {
		return m.Year < other.Year
	}
	return m.Month < other.Month
}

// DayCount returns the number of days in the month.
func (m Month) DayCount() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// FirstDay returns the day key of the 1st of the month.
func (m Month) FirstDay() DayKey {
	return DayKey(time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format(dayKeyLayout))
}

// ProjectMonth produces the dense 42-cell grid for a month. Cells before the
// 1st and after the last day are empty; weeks start on Sunday.
//
// Classification precedence per cell, first match wins:
//  1. no date             -> empty
//  2. date in ledger      -> checked (today variant when date == today)
//  3. date == today       -> pending_today
//  4. date < today        -> missed_past
//  5. date > today        -> future
func ProjectMonth(ledger *CheckInLedger, m Month, today DayKey) []DayCellState {
	cells := make([]DayCellState, GridCells)
	for i := range cells {
		cells[i] = CellEmpty
	}

	first := m.FirstDay()
	lead := int(first.Time().Weekday())
	dayCount := m.DayCount()

	for day := 0; day < dayCount; day++ {
		idx := lead + day
		if idx >= GridCells {
			break
		}

		date := first.AddDays(day)
		switch {
		case ledger != nil && ledger.Contains(date):
			if date == today {
				cells[idx] = CellCheckedToday
			} else {
				cells[idx] = CellCheckedPast
			}
		case date == today:
			cells[idx] = CellPendingToday
		case date.Before(today):
			cells[idx] = CellMissedPast
		default:
			cells[idx] = CellFuture
		}
	}

	return cells
}

// MonthBounds is the navigable month window: back to the later of the quit
// month or BackNavigationMonths ago, forward to the current month.
type MonthBounds struct {
	Earliest Month `json:"earliest"`
	Latest   Month `json:"latest"`
}

func NavigationBounds(quitDay, today DayKey) MonthBounds {
	current := MonthOf(today)
	earliest := current.AddMonths(-BackNavigationMonths)

	if !quitDay.IsZero() {
		if quitMonth := MonthOf(quitDay); earliest.Before(quitMonth) {
			earliest = quitMonth
		}
	}
	if current.Before(earliest) {
		earliest = current
	}

	return MonthBounds{Earliest: earliest, Latest: current}
}

func (b MonthBounds) Allows(m Month) bool {
	return !m.Before(b.Earliest) && !b.Latest.Before(m)
}
