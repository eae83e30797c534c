package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/mentorhub/internal/calendar"
	"github.com/example/mentorhub/internal/lifecycle"
)

// EventSource exposes the calendar event listing the aggregator consumes.
type EventSource interface {
	ListEvents(ctx context.Context) ([]Event, error)
}

// CalendarService assembles the month view from the principal's sessions and
// the shared event feed. Both sources are fetched concurrently and the merged
// result is cached briefly per principal and month.
type CalendarService struct {
	sessions SessionRepository
	events   EventSource
	timezone *time.Location
	cache    *itemCache
	now      func() time.Time
	logger   *slog.Logger
}

// NewCalendarService wires dependencies for calendar aggregation. The
// timezone anchors month boundaries and day bucketing; nil falls back to UTC.
func NewCalendarService(sessions SessionRepository, events EventSource, timezone *time.Location, cacheTTL time.Duration, now func() time.Time, logger *slog.Logger) *CalendarService {
	if timezone == nil {
		timezone = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &CalendarService{
		sessions: sessions,
		events:   events,
		timezone: timezone,
		cache:    newItemCache(cacheTTL, 0, now),
		now:      now,
		logger:   defaultLogger(logger),
	}
}

// MonthView builds the filtered month grid for the principal. Month uses the
// "YYYY-MM" form and defaults to the current month when empty.
func (s *CalendarService) MonthView(ctx context.Context, params CalendarParams) (CalendarView, error) {
	if s == nil {
		return CalendarView{}, fmt.Errorf("CalendarService is nil")
	}
	if params.Principal.ActorID == "" {
		return CalendarView{}, ErrUnauthorized
	}

	anchor, err := s.parseMonth(params.Month)
	if err != nil {
		vErr := &ValidationError{}
		vErr.add("month", "month must use the YYYY-MM form")
		return CalendarView{}, vErr
	}

	logger := serviceLogger(ctx, s.logger, "calendar", "month_view",
		"actor_id", params.Principal.ActorID, "month", anchor.Format("2006-01"))

	items, err := s.monthItems(ctx, params.Principal, anchor)
	if err != nil {
		logger.Error("calendar aggregation failed", "error", err)
		return CalendarView{}, err
	}

	filtered := calendar.Filter{Query: params.Query, Kind: params.Kind}.Apply(items)
	grid := calendar.MonthGrid(filtered, anchor)

	logger.Info("calendar assembled", "items", len(items), "filtered", len(filtered))
	return CalendarView{Grid: grid, Items: filtered}, nil
}

// InvalidateCache drops cached month items. Mutating handlers call this after
// a booking, transition, or bulk completion.
func (s *CalendarService) InvalidateCache() {
	if s == nil {
		return
	}
	s.cache.Invalidate()
}

// monthItems fetches and merges the two sources, consulting the cache first.
func (s *CalendarService) monthItems(ctx context.Context, principal Principal, anchor time.Time) ([]calendar.Item, error) {
	key := calendarCacheKey(principal, anchor)
	if items, ok := s.cache.Get(key); ok {
		return items, nil
	}

	var (
		wg          sync.WaitGroup
		sessions    []Session
		events      []Event
		sessionsErr error
		eventsErr   error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sessions, sessionsErr = s.listPrincipalSessions(ctx, principal)
	}()
	go func() {
		defer wg.Done()
		events, eventsErr = s.events.ListEvents(ctx)
	}()
	wg.Wait()

	if sessionsErr != nil {
		return nil, sessionsErr
	}
	if eventsErr != nil {
		return nil, eventsErr
	}

	sessionInputs := make([]calendar.SessionInput, 0, len(sessions))
	for _, session := range sessions {
		sessionInputs = append(sessionInputs, calendar.SessionInput{
			ID:          session.ID,
			Title:       session.Title,
			Description: session.Description,
			Status:      session.Status,
			ScheduledAt: session.ScheduledAt,
		})
	}
	eventInputs := make([]calendar.EventInput, 0, len(events))
	for _, event := range events {
		eventInputs = append(eventInputs, calendar.EventInput{
			ID:          event.ID,
			Title:       event.Title,
			Description: event.Description,
			StartAt:     event.StartAt,
			EndAt:       event.EndAt,
			Type:        string(event.Type),
		})
	}

	items := calendar.Merge(sessionInputs, eventInputs)
	s.cache.Store(key, items)
	return items, nil
}

func (s *CalendarService) listPrincipalSessions(ctx context.Context, principal Principal) ([]Session, error) {
	filter := SessionFilter{}
	switch principal.Role {
	case lifecycle.RoleMentor:
		filter.MentorID = principal.ActorID
	case lifecycle.RoleStudent:
		filter.StudentID = principal.ActorID
	default:
		return nil, ErrUnauthorized
	}
	return s.sessions.ListSessions(ctx, filter)
}

func (s *CalendarService) parseMonth(month string) (time.Time, error) {
	if strings.TrimSpace(month) == "" {
		now := s.now().In(s.timezone)
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.timezone), nil
	}
	parsed, err := time.ParseInLocation("2006-01", month, s.timezone)
	if err != nil {
		return time.Time{}, err
	}
	return parsed, nil
}

func calendarCacheKey(principal Principal, anchor time.Time) string {
	builder := strings.Builder{}
	builder.WriteString(principal.ActorID)
	builder.WriteString("|")
	builder.WriteString(string(principal.Role))
	builder.WriteString("|")
	builder.WriteString(anchor.Format("2006-01"))
	return builder.String()
}
