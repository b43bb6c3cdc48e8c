// Package calendar provides trading-day-aware date arithmetic for the US
// market: last completed trading day, month arithmetic with day clamping,
// and single-day stepping on the canonical YYYYMMDD string form.
package calendar

import (
	"errors"
	"fmt"
	"time"

	"markettracker/internal/domain"
)

// maxWalk bounds every backward walk over the calendar. A well-formed
// holiday set never needs more than a handful of steps (longest US market
// closure in scope is a long weekend plus a holiday); hitting the bound
// means the holiday data is malformed.
const maxWalk = 10

// ErrWalkExceeded is returned when a calendar walk fails to find a trading
// day within maxWalk steps.
var ErrWalkExceeded = errors.New("calendar: no trading day found within walk bound")

// IsTradingDay reports whether t is a trading day: a weekday that is not an
// observed market holiday.
func IsTradingDay(t time.Time) bool {
	if t.Weekday() == time.Saturday || t.Weekday() == time.Sunday {
		return false
	}
	return !IsHoliday(t)
}

// LastCompletedTradingDay returns the most recent trading day strictly
// before today, in canonical form. It starts at yesterday so that an
// in-progress session is never counted as complete, then walks backward
// over weekends and holidays. Weekend and holiday checks are applied
// together per step, so a holiday observed on a weekend cannot cause a
// double skip.
func LastCompletedTradingDay(today time.Time) (string, error) {
	day := today.AddDate(0, 0, -1)
	for i := 0; i < maxWalk; i++ {
		if IsTradingDay(day) {
			return day.Format(domain.DateFormat), nil
		}
		day = day.AddDate(0, 0, -1)
	}
	return "", ErrWalkExceeded
}

// MonthsBack returns the date n calendar months before today, in canonical
// form. The day of month is clamped to the last valid day of the target
// month, so Jan 31 minus one month is Dec 31 going forward but Mar 31 minus
// one month is Feb 28 (or Feb 29 in a leap year). Month underflow borrows
// years until the month is back in range.
func MonthsBack(n int, today time.Time) string {
	year, month, day := today.Date()

	m := int(month) - n
	for m <= 0 {
		m += 12
		year--
	}

	if last := daysInMonth(year, time.Month(m)); day > last {
		day = last
	}
	return time.Date(year, time.Month(m), day, 0, 0, 0, 0, time.UTC).Format(domain.DateFormat)
}

// AddDay steps a canonical date string forward one calendar day.
func AddDay(date string) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, 1).Format(domain.DateFormat), nil
}

// SubtractDay steps a canonical date string backward one calendar day.
func SubtractDay(date string) (string, error) {
	t, err := Parse(date)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 0, -1).Format(domain.DateFormat), nil
}

// Parse converts a canonical YYYYMMDD string to a time.Time at midnight UTC.
func Parse(date string) (time.Time, error) {
	t, err := time.Parse(domain.DateFormat, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q: %w", date, err)
	}
	return t, nil
}

// daysInMonth returns the number of days in the given month. Day zero of
// the following month normalizes to the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
