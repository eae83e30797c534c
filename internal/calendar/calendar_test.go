package calendar

import (
	"testing"
	"time"

	"github.com/example/mentorhub/internal/lifecycle"
)

func ts(t *testing.T, day, hour int) time.Time {
	t.Helper()
	return time.Date(2026, 4, day, hour, 0, 0, 0, time.UTC)
}

func TestMerge_SortsAndColours(t *testing.T) {
	t.Parallel()

	sessions := []SessionInput{
		{ID: "s-1", Title: "Review", Status: lifecycle.StatusCompleted, ScheduledAt: ts(t, 10, 15)},
		{ID: "s-2", Title: "Kickoff", Status: lifecycle.StatusCancelled, ScheduledAt: ts(t, 8, 9)},
	}
	events := []EventInput{
		{ID: "e-1", Title: "Project due", StartAt: ts(t, 9, 12), EndAt: ts(t, 9, 13), Type: "deadline"},
	}

	items := Merge(sessions, events)

	if len(items) != 3 {
		t.Fatalf("merged %d items, want 3", len(items))
	}
	wantOrder := []string{"s-2", "e-1", "s-1"}
	wantColor := []Color{ColorRed, ColorPink, ColorGreen}
	for i, item := range items {
		if item.ID != wantOrder[i] {
			t.Errorf("items[%d] = %s, want %s", i, item.ID, wantOrder[i])
		}
		if item.Color != wantColor[i] {
			t.Errorf("items[%d] colour = %s, want %s", i, item.Color, wantColor[i])
		}
	}
}

func TestMerge_FixedSessionSpan(t *testing.T) {
	t.Parallel()

	items := Merge([]SessionInput{
		{ID: "s-1", Status: lifecycle.StatusScheduled, ScheduledAt: ts(t, 8, 9)},
	}, nil)

	if got := items[0].End.Sub(items[0].Start); got != SessionSpan {
		t.Fatalf("session span = %v, want %v", got, SessionSpan)
	}
}

func TestSort_StableAndIdempotent(t *testing.T) {
	t.Parallel()

	// Three items sharing one start instant; insertion order must survive
	// repeated sorting.
	same := ts(t, 8, 9)
	items := Merge([]SessionInput{
		{ID: "s-1", Status: lifecycle.StatusScheduled, ScheduledAt: same},
		{ID: "s-2", Status: lifecycle.StatusScheduled, ScheduledAt: same},
	}, []EventInput{
		{ID: "e-1", StartAt: same, EndAt: same.Add(time.Hour), Type: "reminder"},
	})

	first := make([]string, len(items))
	for i, item := range items {
		first[i] = item.ID
	}

	Sort(items)
	Sort(items)

	for i, item := range items {
		if item.ID != first[i] {
			t.Fatalf("order changed after re-sort: %v vs %v", item.ID, first[i])
		}
	}
	if first[0] != "s-1" || first[1] != "s-2" || first[2] != "e-1" {
		t.Fatalf("tie order = %v, want insertion order", first)
	}
}

func TestEventColor_Defaults(t *testing.T) {
	t.Parallel()

	if got := EventColor("reminder"); got != ColorOrange {
		t.Errorf("reminder colour = %s", got)
	}
	if got := EventColor("deadline"); got != ColorPink {
		t.Errorf("deadline colour = %s", got)
	}
	if got := EventColor("workshop"); got != ColorGrey {
		t.Errorf("unknown type colour = %s, want grey", got)
	}
}

func TestFilter_QueryAndKindCompose(t *testing.T) {
	t.Parallel()

	items := Merge([]SessionInput{
		{ID: "s-1", Title: "Go basics", Description: "slices and maps", Status: lifecycle.StatusScheduled, ScheduledAt: ts(t, 8, 9)},
		{ID: "s-2", Title: "Interview prep", Status: lifecycle.StatusScheduled, ScheduledAt: ts(t, 9, 9)},
	}, []EventInput{
		{ID: "e-1", Title: "Go meetup", StartAt: ts(t, 10, 18), EndAt: ts(t, 10, 20), Type: "reminder"},
	})

	got := Filter{Query: "go"}.Apply(items)
	if len(got) != 2 {
		t.Fatalf("query filter kept %d items, want 2", len(got))
	}

	got = Filter{Query: "GO", Kind: KindSession}.Apply(items)
	if len(got) != 1 || got[0].ID != "s-1" {
		t.Fatalf("composed filter = %+v, want only s-1", got)
	}

	got = Filter{Query: "slices"}.Apply(items)
	if len(got) != 1 || got[0].ID != "s-1" {
		t.Fatalf("description filter = %+v, want only s-1", got)
	}

	got = Filter{}.Apply(items)
	if len(got) != 3 {
		t.Fatalf("empty filter kept %d items, want all", len(got))
	}
}

func TestMonthGrid_WednesdayStart(t *testing.T) {
	t.Parallel()

	// April 2026 has 30 days and begins on a Wednesday.
	anchor := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	grid := MonthGrid(nil, anchor)

	if len(grid.Cells) != 33 {
		t.Fatalf("grid has %d cells, want 3 blanks + 30 days", len(grid.Cells))
	}
	for i := 0; i < 3; i++ {
		if grid.Cells[i].Day != 0 {
			t.Fatalf("cell %d = %+v, want leading blank", i, grid.Cells[i])
		}
	}
	for i := 3; i < 33; i++ {
		if grid.Cells[i].Day != i-2 {
			t.Fatalf("cell %d day = %d, want %d", i, grid.Cells[i].Day, i-2)
		}
	}
}

func TestMonthGrid_BucketsAndOverflow(t *testing.T) {
	t.Parallel()

	sessions := make([]SessionInput, 0, 5)
	for i := 0; i < 5; i++ {
		sessions = append(sessions, SessionInput{
			ID:          string(rune('a' + i)),
			Status:      lifecycle.StatusScheduled,
			ScheduledAt: ts(t, 15, 9+i),
		})
	}
	// Outside the anchor month; must not appear.
	sessions = append(sessions, SessionInput{ID: "other", Status: lifecycle.StatusScheduled, ScheduledAt: time.Date(2026, 5, 15, 9, 0, 0, 0, time.UTC)})

	grid := MonthGrid(Merge(sessions, nil), time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC))

	var cell Cell
	for _, c := range grid.Cells {
		if c.Day == 15 {
			cell = c
		}
		if c.Day == 0 {
			continue
		}
		if c.Day != 15 && (len(c.Items) != 0 || c.More != 0) {
			t.Fatalf("day %d unexpectedly populated: %+v", c.Day, c)
		}
	}

	if len(cell.Items) != DayCellLimit {
		t.Fatalf("day 15 surfaces %d items, want %d", len(cell.Items), DayCellLimit)
	}
	if cell.More != 2 {
		t.Fatalf("day 15 overflow = %d, want 2", cell.More)
	}
}
