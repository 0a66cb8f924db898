package core

import (
	"errors"
	"fmt"
	"time"
)

// ISOLayout is the wire format for date keys: YYYY-MM-DD.
const ISOLayout = "2006-01-02"

var ErrInvalidDate = errors.New("invalid date string")

// Date is a calendar day at UTC midnight. Dates constructed through NewDate,
// ParseISO or Today compare with ==.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current day.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseISO parses a strict YYYY-MM-DD string. Malformed input is an error,
// never silently coerced to a fallback date.
func ParseISO(s string) (Date, error) {
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// ISO formats the date as YYYY-MM-DD. ParseISO(d.ISO()) == d for any valid d.
func (d Date) ISO() string {
	return d.Time.Format(ISOLayout)
}

func (d Date) String() string {
	return d.ISO()
}

// AddDays returns the date shifted by n calendar days.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// WeekdayIndex returns the day's position in the ISO week, Monday = 0.
func (d Date) WeekdayIndex() int {
	return (int(d.Time.Weekday()) + 6) % 7
}

// Year returns the calendar year.
func (d Date) Year() int {
	return d.Time.Year()
}

// Month returns the calendar month, 1-12.
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// WeekStart returns the Monday of the week containing d. The result is
// always d minus its weekday index, so it never exceeds d and is idempotent
// on Mondays.
func WeekStart(d Date) Date {
	return d.AddDays(-d.WeekdayIndex())
}

// WeekEnd returns the Sunday of the week containing d.
func WeekEnd(d Date) Date {
	return WeekStart(d).AddDays(6)
}

// WeekDates returns the seven dates of the week beginning at monday, in
// calendar order. The input must be a Monday; that is the caller's contract
// and is not checked here.
func WeekDates(monday Date) [7]Date {
	var week [7]Date
	for i := range week {
		week[i] = monday.AddDays(i)
	}
	return week
}

// MonthCalendar returns the month as chronologically ordered week rows of
// exactly seven slots each. Rows run Monday through Sunday; slots that fall
// outside the month are the zero Date (check with IsZero). Every day of the
// month appears exactly once.
func MonthCalendar(year, month int) [][]Date {
	first := NewDate(year, month, 1)
	last := first.AddDate(0, 1, -1)
	lastDay := Date{Time: last}

	var weeks [][]Date
	row := make([]Date, 0, 7)
	for i := 0; i < first.WeekdayIndex(); i++ {
		row = append(row, Date{})
	}
	for d := first; !d.After(lastDay.Time); d = d.AddDays(1) {
		row = append(row, d)
		if len(row) == 7 {
			weeks = append(weeks, row)
			row = make([]Date, 0, 7)
		}
	}
	if len(row) > 0 {
		for len(row) < 7 {
			row = append(row, Date{})
		}
		weeks = append(weeks, row)
	}
	return weeks
}

// LastNDays returns end and the n-1 days before it, most recent first.
func LastNDays(n int, end Date) []Date {
	out := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, end.AddDays(-i))
	}
	return out
}

// LastNWeeks returns the Mondays of the n weeks ending with the week that
// contains end, most recent first.
func LastNWeeks(n int, end Date) []Date {
	start := WeekStart(end)
	out := make([]Date, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, start.AddDays(-7*i))
	}
	return out
}
