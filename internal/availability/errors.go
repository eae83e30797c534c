package availability

import "fmt"

// DuplicateDayError reports an attempt to add a weekday already present in
// the template.
type DuplicateDayError struct {
	Day Weekday
}

func (e *DuplicateDayError) Error() string {
	return fmt.Sprintf("availability: day %s already present", e.Day)
}

// UnknownDayError reports an operation against a weekday the template does
// not contain.
type UnknownDayError struct {
	Day Weekday
}

func (e *UnknownDayError) Error() string {
	return fmt.Sprintf("availability: day %s not present", e.Day)
}

// SlotIndexError reports a slot index outside the day's slot sequence.
type SlotIndexError struct {
	Day   Weekday
	Index int
}

func (e *SlotIndexError) Error() string {
	return fmt.Sprintf("availability: day %s has no slot %d", e.Day, e.Index)
}
