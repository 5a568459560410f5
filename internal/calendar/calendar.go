package calendar

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// Clock abstracts the system clock so time-dependent rules are testable
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns a Clock backed by time.Now
func SystemClock() Clock { return systemClock{} }

// FixedClock returns a Clock frozen at the given instant (test helper)
func FixedClock(t time.Time) Clock { return fixedClock{t} }

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// Calendar performs all day-boundary and weekend math in one fixed
// operating timezone. Instants stay absolute; only calendar decisions
// are localized.
type Calendar struct {
	loc *time.Location
}

// New loads the operating timezone by IANA name
func New(timezone string) (*Calendar, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load operating timezone %q: %w", timezone, err)
	}
	return &Calendar{loc: loc}, nil
}

// Location returns the operating timezone
func (c *Calendar) Location() *time.Location { return c.loc }

// SlotInstant builds the absolute instant for an hour slot on a local
// calendar date ("2006-01-02")
func (c *Calendar) SlotInstant(localDate string, hour int) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, localDate, c.loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", localDate, err)
	}
	if hour < 0 || hour > 23 {
		return time.Time{}, fmt.Errorf("invalid hour %d", hour)
	}
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, c.loc), nil
}

// LocalDate returns the calendar date of an instant in the operating
// timezone. ISO dates compare lexicographically, which the range checks
// rely on.
func (c *Calendar) LocalDate(t time.Time) string {
	return t.In(c.loc).Format(dateLayout)
}

// SlotHour reports the local hour of an instant and whether the instant
// sits exactly on an hour boundary
func (c *Calendar) SlotHour(t time.Time) (int, bool) {
	lt := t.In(c.loc)
	aligned := lt.Minute() == 0 && lt.Second() == 0 && lt.Nanosecond() == 0
	return lt.Hour(), aligned
}

// IsWeekend reports whether an instant falls on Saturday or Sunday in the
// operating timezone
func (c *Calendar) IsWeekend(t time.Time) bool {
	wd := t.In(c.loc).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsWeekendDate reports whether a local calendar date is a weekend
func (c *Calendar) IsWeekendDate(localDate string) (bool, error) {
	d, err := time.ParseInLocation(dateLayout, localDate, c.loc)
	if err != nil {
		return false, fmt.Errorf("invalid date %q: %w", localDate, err)
	}
	return d.Weekday() == time.Saturday || d.Weekday() == time.Sunday, nil
}

// HoursUntil returns the fractional hours from now until the instant.
// Negative when the instant is in the past.
func (c *Calendar) HoursUntil(now, t time.Time) float64 {
	return t.Sub(now).Hours()
}

// AddDays shifts a local calendar date by n days
func (c *Calendar) AddDays(localDate string, n int) (string, error) {
	d, err := time.ParseInLocation(dateLayout, localDate, c.loc)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", localDate, err)
	}
	return d.AddDate(0, 0, n).Format(dateLayout), nil
}

// DaysInclusive counts the days in a date range, both endpoints included
func (c *Calendar) DaysInclusive(startDate, endDate string) (int, error) {
	start, err := time.ParseInLocation(dateLayout, startDate, c.loc)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", startDate, err)
	}
	end, err := time.ParseInLocation(dateLayout, endDate, c.loc)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q: %w", endDate, err)
	}
	if end.Before(start) {
		return 0, fmt.Errorf("end date %s before start date %s", endDate, startDate)
	}
	return int(end.Sub(start).Hours()/24) + 1, nil
}

// NextMonthStart returns midnight on the first day of the month following
// the instant, in the operating timezone. Packs expire there.
func (c *Calendar) NextMonthStart(t time.Time) time.Time {
	lt := t.In(c.loc)
	return time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, c.loc).AddDate(0, 1, 0)
}

// DayBounds returns the [start, end) instants of a local calendar date
func (c *Calendar) DayBounds(localDate string) (time.Time, time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, localDate, c.loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid date %q: %w", localDate, err)
	}
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, c.loc)
	return start, start.AddDate(0, 0, 1), nil
}
