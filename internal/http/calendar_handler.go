package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/mentorhub/internal/application"
	"github.com/example/mentorhub/internal/calendar"
)

type calendarService interface {
	MonthView(ctx context.Context, params application.CalendarParams) (application.CalendarView, error)
}

type eventLister interface {
	ListEvents(ctx context.Context) ([]application.Event, error)
}

// CalendarHandler serves the aggregated month view and the raw event feed.
type CalendarHandler struct {
	calendar  calendarService
	events    eventLister
	responder responder
}

func NewCalendarHandler(calendar calendarService, events eventLister, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{calendar: calendar, events: events, responder: newResponder(logger)}
}

type itemDTO struct {
	Kind        string    `json:"kind"`
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	Color       string    `json:"color"`
}

type cellDTO struct {
	Day   int       `json:"day"`
	Items []itemDTO `json:"items"`
	More  int       `json:"more,omitempty"`
}

type calendarResponse struct {
	Year  int       `json:"year"`
	Month int       `json:"month"`
	Cells []cellDTO `json:"cells"`
	Items []itemDTO `json:"items"`
}

type eventDTO struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartAt     time.Time `json:"startAt"`
	EndAt       time.Time `json:"endAt"`
	Type        string    `json:"type"`
}

type listEventsResponse struct {
	Events []eventDTO `json:"events"`
}

// Month assembles the filtered month grid for the acting principal.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.calendar == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())
	query := r.URL.Query()

	view, err := h.calendar.MonthView(r.Context(), application.CalendarParams{
		Principal: principal,
		Month:     query.Get("month"),
		Query:     query.Get("q"),
		Kind:      calendar.Kind(query.Get("type")),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toCalendarResponse(view))
}

// ListEvents returns the shared event feed.
func (h *CalendarHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.events == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	events, err := h.events.ListEvents(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, eventDTO{
			ID:          event.ID,
			Title:       event.Title,
			Description: event.Description,
			StartAt:     event.StartAt,
			EndAt:       event.EndAt,
			Type:        string(event.Type),
		})
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: out})
}

func toCalendarResponse(view application.CalendarView) calendarResponse {
	response := calendarResponse{
		Year:  view.Grid.Year,
		Month: int(view.Grid.Month),
		Cells: make([]cellDTO, 0, len(view.Grid.Cells)),
		Items: toItemDTOs(view.Items),
	}
	for _, cell := range view.Grid.Cells {
		response.Cells = append(response.Cells, cellDTO{
			Day:   cell.Day,
			Items: toItemDTOs(cell.Items),
			More:  cell.More,
		})
	}
	return response
}

func toItemDTOs(items []calendar.Item) []itemDTO {
	out := make([]itemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, itemDTO{
			Kind:        string(item.Kind),
			ID:          item.ID,
			Title:       item.Title,
			Description: item.Description,
			Start:       item.Start,
			End:         item.End,
			Color:       string(item.Color),
		})
	}
	return out
}
