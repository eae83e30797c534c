package availability

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a lowercase weekday name as stored in availability templates.
type Weekday string

const (
	Sunday    Weekday = "sunday"
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
)

var weekdays = map[Weekday]time.Weekday{
	Sunday:    time.Sunday,
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
}

// ParseWeekday maps a wire value onto a known weekday name.
func ParseWeekday(value string) (Weekday, bool) {
	day := Weekday(strings.ToLower(strings.TrimSpace(value)))
	_, ok := weekdays[day]
	return day, ok
}

// Time returns the time.Weekday corresponding to the template weekday.
func (d Weekday) Time() time.Weekday {
	return weekdays[d]
}

// TimeSlot is a start/end local-time pair within one weekday. Times use the
// "HH:MM" form and stay unvalidated until save-time normalization.
type TimeSlot struct {
	StartTime string
	EndTime   string
	Available bool
}

func (s TimeSlot) empty() bool {
	return strings.TrimSpace(s.StartTime) == "" || strings.TrimSpace(s.EndTime) == ""
}

// DayAvailability groups the slots published for a single weekday.
type DayAvailability struct {
	Day   Weekday
	Slots []TimeSlot
}

// Template is a mentor's recurring weekly schedule. Editing operations mutate
// only in-memory state; persistence happens wholesale on save.
type Template struct {
	Timezone string
	Schedule []DayAvailability
}

// AddDay inserts a new day with one empty, available slot.
func (t *Template) AddDay(day Weekday) error {
	if t.findDay(day) >= 0 {
		return &DuplicateDayError{Day: day}
	}
	t.Schedule = append(t.Schedule, DayAvailability{
		Day:   day,
		Slots: []TimeSlot{{Available: true}},
	})
	return nil
}

// RemoveDay removes the day and all its slots. Removing an absent day is a
// no-op.
func (t *Template) RemoveDay(day Weekday) {
	idx := t.findDay(day)
	if idx < 0 {
		return
	}
	t.Schedule = append(t.Schedule[:idx], t.Schedule[idx+1:]...)
}

// AddSlot appends an empty, available slot to an existing day.
func (t *Template) AddSlot(day Weekday) error {
	idx := t.findDay(day)
	if idx < 0 {
		return &UnknownDayError{Day: day}
	}
	t.Schedule[idx].Slots = append(t.Schedule[idx].Slots, TimeSlot{Available: true})
	return nil
}

// RemoveSlot removes the slot at index from the day.
func (t *Template) RemoveSlot(day Weekday, index int) error {
	idx := t.findDay(day)
	if idx < 0 {
		return &UnknownDayError{Day: day}
	}
	slots := t.Schedule[idx].Slots
	if index < 0 || index >= len(slots) {
		return &SlotIndexError{Day: day, Index: index}
	}
	t.Schedule[idx].Slots = append(slots[:index], slots[index+1:]...)
	return nil
}

// SetSlotStart updates a slot's start time without validating it.
func (t *Template) SetSlotStart(day Weekday, index int, value string) error {
	slot, err := t.slot(day, index)
	if err != nil {
		return err
	}
	slot.StartTime = value
	return nil
}

// SetSlotEnd updates a slot's end time without validating it.
func (t *Template) SetSlotEnd(day Weekday, index int, value string) error {
	slot, err := t.slot(day, index)
	if err != nil {
		return err
	}
	slot.EndTime = value
	return nil
}

// SetSlotAvailable toggles whether a slot may be booked.
func (t *Template) SetSlotAvailable(day Weekday, index int, available bool) error {
	slot, err := t.slot(day, index)
	if err != nil {
		return err
	}
	slot.Available = available
	return nil
}

// Day returns the availability published for the given weekday.
func (t *Template) Day(day Weekday) (DayAvailability, bool) {
	idx := t.findDay(day)
	if idx < 0 {
		return DayAvailability{}, false
	}
	return t.Schedule[idx], true
}

// Slot returns the slot at index within the given day.
func (t *Template) Slot(day Weekday, index int) (TimeSlot, error) {
	slot, err := t.slot(day, index)
	if err != nil {
		return TimeSlot{}, err
	}
	return *slot, nil
}

// Normalize drops slots with an empty start or end time, then drops any day
// left without slots. The result is what save persists; a normalized template
// never carries an empty slot or an empty day.
func (t *Template) Normalize() {
	schedule := make([]DayAvailability, 0, len(t.Schedule))
	for _, day := range t.Schedule {
		slots := make([]TimeSlot, 0, len(day.Slots))
		for _, slot := range day.Slots {
			if slot.empty() {
				continue
			}
			slots = append(slots, slot)
		}
		if len(slots) == 0 {
			continue
		}
		day.Slots = slots
		schedule = append(schedule, day)
	}
	t.Schedule = schedule
}

// Clone returns a deep copy of the template.
func (t *Template) Clone() Template {
	out := Template{Timezone: t.Timezone, Schedule: make([]DayAvailability, 0, len(t.Schedule))}
	for _, day := range t.Schedule {
		slots := make([]TimeSlot, len(day.Slots))
		copy(slots, day.Slots)
		out.Schedule = append(out.Schedule, DayAvailability{Day: day.Day, Slots: slots})
	}
	return out
}

// Issue describes a slot that violates the desired (unenforced) invariants:
// start before end and no overlap within a day.
type Issue struct {
	Day     Weekday
	Index   int
	Message string
}

// Validate reports invariant violations on the normalized form of the
// template. Violations are surfaced as warnings rather than blocking a save.
func (t *Template) Validate() []Issue {
	issues := make([]Issue, 0)
	for _, day := range t.Schedule {
		type span struct {
			start, end int
			index      int
		}
		spans := make([]span, 0, len(day.Slots))
		for i, slot := range day.Slots {
			if slot.empty() {
				continue
			}
			start, err := ParseClock(slot.StartTime)
			if err != nil {
				issues = append(issues, Issue{Day: day.Day, Index: i, Message: err.Error()})
				continue
			}
			end, err := ParseClock(slot.EndTime)
			if err != nil {
				issues = append(issues, Issue{Day: day.Day, Index: i, Message: err.Error()})
				continue
			}
			if start >= end {
				issues = append(issues, Issue{Day: day.Day, Index: i, Message: "start must be before end"})
				continue
			}
			spans = append(spans, span{start: start, end: end, index: i})
		}
		for i := 0; i < len(spans); i++ {
			for j := i + 1; j < len(spans); j++ {
				if spans[i].start < spans[j].end && spans[j].start < spans[i].end {
					issues = append(issues, Issue{
						Day:     day.Day,
						Index:   spans[j].index,
						Message: fmt.Sprintf("overlaps slot %d", spans[i].index),
					})
				}
			}
		}
	}
	if len(issues) == 0 {
		return nil
	}
	return issues
}

// ParseClock parses an "HH:MM" value into minutes since midnight.
func ParseClock(value string) (int, error) {
	value = strings.TrimSpace(value)
	var hour, minute int
	if _, err := fmt.Sscanf(value, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("availability: invalid time %q", value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("availability: invalid time %q", value)
	}
	return hour*60 + minute, nil
}

func (t *Template) findDay(day Weekday) int {
	for i, entry := range t.Schedule {
		if entry.Day == day {
			return i
		}
	}
	return -1
}

func (t *Template) slot(day Weekday, index int) (*TimeSlot, error) {
	idx := t.findDay(day)
	if idx < 0 {
		return nil, &UnknownDayError{Day: day}
	}
	if index < 0 || index >= len(t.Schedule[idx].Slots) {
		return nil, &SlotIndexError{Day: day, Index: index}
	}
	return &t.Schedule[idx].Slots[index], nil
}
