package calendar

import (
	"fmt"
	"time"
)

// PriorBusinessDay returns the nth business day (Monday through Friday)
// before the reference date. With n == 0 it returns the reference date
// itself, or the nearest preceding weekday when the reference falls on a
// weekend.
func PriorBusinessDay(reference time.Time, n int) time.Time {
	day := reference

	if n == 0 {
		for day.Weekday() == time.Saturday || day.Weekday() == time.Sunday {
			day = day.AddDate(0, 0, -1)
		}
		return day
	}

	counted := 0
	for counted < n {
		day = day.AddDate(0, 0, -1)
		if day.Weekday() != time.Saturday && day.Weekday() != time.Sunday {
			counted++
		}
	}
	return day
}

// FilterTime builds the receive-time cutoff for a run: the given wall-clock
// time on the given day, localized to the named IANA timezone.
func FilterTime(day time.Time, hour, minute int, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to load timezone %s: %w", timezone, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, loc), nil
}
