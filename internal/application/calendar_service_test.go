package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/mentorhub/internal/calendar"
	"github.com/example/mentorhub/internal/lifecycle"
)

type eventSourceStub struct {
	events []Event
	err    error
	calls  int
}

func (s *eventSourceStub) ListEvents(ctx context.Context) ([]Event, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.events, nil
}

func aprilEvent(id string, day int, eventType calendar.EventType) Event {
	start := time.Date(2026, 4, day, 15, 0, 0, 0, time.UTC)
	return Event{
		ID:      id,
		Title:   "Cohort deadline",
		StartAt: start,
		EndAt:   start.Add(time.Hour),
		Type:    eventType,
	}
}

func TestCalendarService_MonthView_MergesSessionsAndEvents(t *testing.T) {
	t.Parallel()

	repo := newSessionRepoStub(
		storedSession("sess-1", lifecycle.StatusCompleted),
		storedSession("sess-2", lifecycle.StatusScheduled),
	)
	events := &eventSourceStub{events: []Event{aprilEvent("ev-1", 10, calendar.EventDeadline)}}
	svc := NewCalendarService(repo, events, time.UTC, time.Minute, fixedNow(t), nil)

	view, err := svc.MonthView(context.Background(), CalendarParams{
		Principal: Principal{ActorID: "mentor-1", Role: lifecycle.RoleMentor},
		Month:     "2026-04",
	})
	if err != nil {
		t.Fatalf("MonthView failed: %v", err)
	}

	if len(view.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(view.Items))
	}
	if view.Grid.Year != 2026 || view.Grid.Month != time.April {
		t.Errorf("expected April 2026 grid, got %d-%d", view.Grid.Year, view.Grid.Month)
	}
	// April 2026 starts on a Wednesday: 3 leading blanks plus 30 days.
	if len(view.Grid.Cells) != 33 {
		t.Errorf("expected 33 cells, got %d", len(view.Grid.Cells))
	}

	var deadline *calendar.Item
	for i := range view.Items {
		if view.Items[i].Kind == calendar.KindEvent {
			deadline = &view.Items[i]
		}
	}
	if deadline == nil {
		t.Fatal("expected the event to appear in the merged items")
	}
	if deadline.Color != calendar.ColorPink {
		t.Errorf("expected deadline pink, got %s", deadline.Color)
	}
}

func TestCalendarService_MonthView_AppliesFilters(t *testing.T) {
	t.Parallel()

	repo := newSessionRepoStub(storedSession("sess-1", lifecycle.StatusScheduled))
	events := &eventSourceStub{events: []Event{aprilEvent("ev-1", 10, calendar.EventReminder)}}
	svc := NewCalendarService(repo, events, time.UTC, time.Minute, fixedNow(t), nil)

	principal := Principal{ActorID: "mentor-1", Role: lifecycle.RoleMentor}

	view, err := svc.MonthView(context.Background(), CalendarParams{
		Principal: principal,
		Month:     "2026-04",
		Kind:      calendar.KindEvent,
	})
	if err != nil {
		t.Fatalf("MonthView failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].Kind != calendar.KindEvent {
		t.Errorf("expected only the event, got %+v", view.Items)
	}

	view, err = svc.MonthView(context.Background(), CalendarParams{
		Principal: principal,
		Month:     "2026-04",
		Query:     "check-in",
	})
	if err != nil {
		t.Fatalf("MonthView failed: %v", err)
	}
	if len(view.Items) != 1 || view.Items[0].ID != "sess-1" {
		t.Errorf("expected only the matching session, got %+v", view.Items)
	}
}

func TestCalendarService_MonthView_CachesMergedItems(t *testing.T) {
	t.Parallel()

	repo := newSessionRepoStub(storedSession("sess-1", lifecycle.StatusScheduled))
	events := &eventSourceStub{}
	svc := NewCalendarService(repo, events, time.UTC, time.Minute, fixedNow(t), nil)

	principal := Principal{ActorID: "mentor-1", Role: lifecycle.RoleMentor}
	params := CalendarParams{Principal: principal, Month: "2026-04"}

	if _, err := svc.MonthView(context.Background(), params); err != nil {
		t.Fatalf("MonthView failed: %v", err)
	}
	if _, err := svc.MonthView(context.Background(), params); err != nil {
		t.Fatalf("MonthView failed: %v", err)
	}
	if events.calls != 1 {
		t.Errorf("expected 1 source fetch thanks to the cache, got %d", events.calls)
	}

	svc.InvalidateCache()
	if _, err := svc.MonthView(context.Background(), params); err != nil {
		t.Fatalf("MonthView failed: %v", err)
	}
	if events.calls != 2 {
		t.Errorf("expected a refetch after invalidation, got %d calls", events.calls)
	}
}

func TestCalendarService_MonthView_RejectsBadMonth(t *testing.T) {
	t.Parallel()

	svc := NewCalendarService(newSessionRepoStub(), &eventSourceStub{}, time.UTC, time.Minute, fixedNow(t), nil)

	_, err := svc.MonthView(context.Background(), CalendarParams{
		Principal: Principal{ActorID: "mentor-1", Role: lifecycle.RoleMentor},
		Month:     "April 2026",
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["month"]; !ok {
		t.Errorf("expected month field error, got %v", vErr.FieldErrors)
	}
}

func TestCalendarService_MonthView_PropagatesSourceErrors(t *testing.T) {
	t.Parallel()

	sourceErr := errors.New("event feed unavailable")
	svc := NewCalendarService(newSessionRepoStub(), &eventSourceStub{err: sourceErr}, time.UTC, time.Minute, fixedNow(t), nil)

	_, err := svc.MonthView(context.Background(), CalendarParams{
		Principal: Principal{ActorID: "mentor-1", Role: lifecycle.RoleMentor},
		Month:     "2026-04",
	})
	if !errors.Is(err, sourceErr) {
		t.Errorf("expected the source error to surface, got %v", err)
	}
}

func TestErrorKindLabels(t *testing.T) {
	t.Parallel()

	vErr := &ValidationError{}
	vErr.add("field", "bad")

	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrUnauthorized, "unauthorized"},
		{ErrNotFound, "not_found"},
		{ErrEmptySelection, "empty_selection"},
		{vErr, "validation"},
		{&lifecycle.IllegalTransitionError{}, "illegal_transition"},
		{&lifecycle.ForbiddenActorError{}, "forbidden_actor"},
		{&lifecycle.MissingPayloadError{}, "missing_payload"},
		{errors.New("boom"), "unexpected"},
	}
	for _, tc := range tests {
		if got := ErrorKind(tc.err); got != tc.want {
			t.Errorf("ErrorKind(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
