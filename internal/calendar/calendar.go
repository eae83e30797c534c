// Package calendar merges sessions and independent events into one
// display-oriented timeline. Items form a tagged union so the two sites that
// must distinguish them (colour selection, detail payload) handle both kinds
// exhaustively.
package calendar

import (
	"sort"
	"strings"
	"time"

	"github.com/example/mentorhub/internal/lifecycle"
)

// SessionSpan is the fixed display duration applied to every session item
// regardless of the session's requested duration.
const SessionSpan = 60 * time.Minute

// Kind tags the origin of a calendar item.
type Kind string

const (
	KindSession Kind = "session"
	KindEvent   Kind = "event"
)

// Color is the closed set of display colours.
type Color string

const (
	ColorGreen  Color = "green"
	ColorBlue   Color = "blue"
	ColorRed    Color = "red"
	ColorOrange Color = "orange"
	ColorPink   Color = "pink"
	ColorGrey   Color = "grey"
)

// EventType is the closed set of event categories that influence colour.
type EventType string

const (
	EventReminder EventType = "reminder"
	EventDeadline EventType = "deadline"
)

// SessionInput is the session projection the aggregator consumes.
type SessionInput struct {
	ID          string
	Title       string
	Description string
	Status      lifecycle.Status
	ScheduledAt time.Time
}

// EventInput is the event projection the aggregator consumes.
type EventInput struct {
	ID          string
	Title       string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	Type        string
}

// Item is one entry in the aggregated timeline.
type Item struct {
	Kind        Kind
	ID          string
	Title       string
	Description string
	Start       time.Time
	End         time.Time
	Color       Color

	// seq preserves insertion order so sorting stays stable across repeats.
	seq int
}

// SessionColor maps a session status to its display colour. The mapping is
// total: every status renders, completed green, cancelled red, everything
// upcoming blue.
func SessionColor(status lifecycle.Status) Color {
	switch status {
	case lifecycle.StatusCompleted:
		return ColorGreen
	case lifecycle.StatusCancelled:
		return ColorRed
	case lifecycle.StatusScheduled, lifecycle.StatusConfirmed, lifecycle.StatusInProgress:
		return ColorBlue
	default:
		return ColorBlue
	}
}

// EventColor maps an event type to its display colour, defaulting to grey
// for categories outside the closed set.
func EventColor(eventType string) Color {
	switch EventType(eventType) {
	case EventReminder:
		return ColorOrange
	case EventDeadline:
		return ColorPink
	default:
		return ColorGrey
	}
}

// FromSession projects a session onto a calendar item with the fixed span.
func FromSession(session SessionInput) Item {
	return Item{
		Kind:        KindSession,
		ID:          session.ID,
		Title:       session.Title,
		Description: session.Description,
		Start:       session.ScheduledAt,
		End:         session.ScheduledAt.Add(SessionSpan),
		Color:       SessionColor(session.Status),
	}
}

// FromEvent projects an event onto a calendar item with its own span.
func FromEvent(event EventInput) Item {
	return Item{
		Kind:        KindEvent,
		ID:          event.ID,
		Title:       event.Title,
		Description: event.Description,
		Start:       event.StartAt,
		End:         event.EndAt,
		Color:       EventColor(event.Type),
	}
}

// Merge combines sessions and events into one sequence sorted ascending by
// start. Ties keep insertion order (sessions first, then events), and
// re-sorting an already sorted sequence yields the same order.
func Merge(sessions []SessionInput, events []EventInput) []Item {
	items := make([]Item, 0, len(sessions)+len(events))
	for _, session := range sessions {
		item := FromSession(session)
		item.seq = len(items)
		items = append(items, item)
	}
	for _, event := range events {
		item := FromEvent(event)
		item.seq = len(items)
		items = append(items, item)
	}
	Sort(items)
	return items
}

// Sort orders items ascending by start, stably.
func Sort(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Start.Equal(items[j].Start) {
			return items[i].seq < items[j].seq
		}
		return items[i].Start.Before(items[j].Start)
	})
}

// Filter narrows the item set. Query matches case-insensitively against
// title and description; Kind restricts to one side of the union. Both
// conditions compose with logical AND.
type Filter struct {
	Query string
	Kind  Kind
}

// Apply returns the items satisfying the filter, preserving order.
func (f Filter) Apply(items []Item) []Item {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if f.Kind != "" && item.Kind != f.Kind {
			continue
		}
		if query != "" {
			title := strings.ToLower(item.Title)
			description := strings.ToLower(item.Description)
			if !strings.Contains(title, query) && !strings.Contains(description, query) {
				continue
			}
		}
		out = append(out, item)
	}
	return out
}

// DayCellLimit caps how many items a month-grid cell surfaces directly.
const DayCellLimit = 3

// Cell is one cell of the month grid. Leading blank cells carry Day == 0.
type Cell struct {
	Day   int
	Items []Item
	More  int
}

// Grid is a 7-column month view: leading blanks equal to the weekday offset
// of the first of the month (Sunday-indexed), then one cell per day.
type Grid struct {
	Year  int
	Month time.Month
	Cells []Cell
}

// MonthGrid buckets items into the calendar month containing anchor. An item
// lands on the cell whose date its start falls on, evaluated in the anchor's
// location; at most DayCellLimit items are surfaced per cell with the
// remainder counted in More.
func MonthGrid(items []Item, anchor time.Time) Grid {
	loc := anchor.Location()
	first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, loc)
	daysInMonth := first.AddDate(0, 1, -1).Day()

	grid := Grid{
		Year:  first.Year(),
		Month: first.Month(),
		Cells: make([]Cell, 0, int(first.Weekday())+daysInMonth),
	}

	for i := 0; i < int(first.Weekday()); i++ {
		grid.Cells = append(grid.Cells, Cell{})
	}

	byDay := make(map[int][]Item, daysInMonth)
	for _, item := range items {
		start := item.Start.In(loc)
		if start.Year() != first.Year() || start.Month() != first.Month() {
			continue
		}
		byDay[start.Day()] = append(byDay[start.Day()], item)
	}

	for day := 1; day <= daysInMonth; day++ {
		cell := Cell{Day: day}
		bucket := byDay[day]
		if len(bucket) > DayCellLimit {
			cell.Items = bucket[:DayCellLimit]
			cell.More = len(bucket) - DayCellLimit
		} else {
			cell.Items = bucket
		}
		grid.Cells = append(grid.Cells, cell)
	}

	return grid
}
