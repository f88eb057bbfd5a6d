package payroll

import (
	"fmt"
	"time"
)

// PayPeriod is a semi-monthly payroll cycle: the 1st through the 15th, or the
// 16th through the end of the month. Bounds are inclusive on both ends.
type PayPeriod struct {
	Start time.Time
	End   time.Time
}

// Label renders the free-text period label stored on payroll runs.
func (p PayPeriod) Label() string {
	return fmt.Sprintf("%s - %s", p.Start.Format("Jan 2, 2006"), p.End.Format("Jan 2, 2006"))
}

// Contains reports whether a calendar date ("2006-01-02") falls inside the
// period, inclusive.
func (p PayPeriod) Contains(date string) bool {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return false
	}
	return !d.Before(dateOnly(p.Start)) && !d.After(dateOnly(p.End))
}

// PeriodFor returns the pay period covering the given date.
func PeriodFor(t time.Time) PayPeriod {
	year, month, day := t.Date()
	if day <= 15 {
		return PayPeriod{
			Start: time.Date(year, month, 1, 0, 0, 0, 0, t.Location()),
			End:   time.Date(year, month, 15, 0, 0, 0, 0, t.Location()),
		}
	}
	firstOfNext := time.Date(year, month, 1, 0, 0, 0, 0, t.Location()).AddDate(0, 1, 0)
	return PayPeriod{
		Start: time.Date(year, month, 16, 0, 0, 0, 0, t.Location()),
		End:   firstOfNext.AddDate(0, 0, -1),
	}
}

// Previous walks one period backward.
func Previous(p PayPeriod) PayPeriod {
	return PeriodFor(p.Start.AddDate(0, 0, -1))
}

// CurrentPeriod returns the period covering now.
func CurrentPeriod(now time.Time) PayPeriod {
	return PeriodFor(now)
}

// PeriodsBack walks n periods backward from the current one: 0 is current,
// 1 previous, 2 the one before.
func PeriodsBack(now time.Time, n int) PayPeriod {
	p := CurrentPeriod(now)
	for i := 0; i < n; i++ {
		p = Previous(p)
	}
	return p
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
