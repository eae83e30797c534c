// Package recurrence computes concrete occurrences from a mentor's recurring
// weekly availability. Given a weekday, a local "HH:MM" start time, and the
// mentor's timezone, it resolves the next calendar instant a booking should
// target.
package recurrence

import (
	"errors"
	"time"

	"github.com/example/mentorhub/internal/availability"
)

// ErrUnknownTimezone indicates the template timezone could not be loaded.
var ErrUnknownTimezone = errors.New("recurrence: unknown timezone")

// ErrInvalidClock indicates the slot start time is not a valid "HH:MM" value.
var ErrInvalidClock = errors.New("recurrence: invalid slot time")

// NextOccurrence returns the first instant strictly after from that falls on
// the given weekday at the given local time in the mentor's timezone.
//
// The reference instant may be in any zone; the result is expressed in the
// mentor's location. A slot later today resolves to today, a slot whose time
// already passed resolves to the same weekday next week.
func NextOccurrence(from time.Time, day time.Weekday, clock string, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, ErrUnknownTimezone
	}

	minutes, err := availability.ParseClock(clock)
	if err != nil {
		return time.Time{}, ErrInvalidClock
	}

	local := from.In(loc)
	daysAhead := (int(day) - int(local.Weekday()) + 7) % 7

	candidate := time.Date(local.Year(), local.Month(), local.Day(), minutes/60, minutes%60, 0, 0, loc)
	candidate = candidate.AddDate(0, 0, daysAhead)
	if !candidate.After(from) {
		candidate = candidate.AddDate(0, 0, 7)
	}

	return candidate, nil
}

// SlotOccurrence resolves the next occurrence of a template slot's start time.
func SlotOccurrence(from time.Time, day availability.Weekday, slot availability.TimeSlot, timezone string) (time.Time, error) {
	return NextOccurrence(from, day.Time(), slot.StartTime, timezone)
}
