package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/example/mentorhub/internal/application"
	"github.com/example/mentorhub/internal/availability"
	"github.com/example/mentorhub/internal/lifecycle"
	"github.com/example/mentorhub/internal/metrics"
)

type sessionService interface {
	ListSessions(ctx context.Context, params application.ListSessionsParams) ([]application.Session, error)
	Transition(ctx context.Context, params application.TransitionParams) (application.Session, error)
	BulkComplete(ctx context.Context, params application.BulkCompleteParams) ([]application.Session, error)
}

type bookingService interface {
	BookSession(ctx context.Context, params application.BookSessionParams) (application.Session, []application.ConflictWarning, error)
}

// SessionHandler serves both the mentor and student session routes.
type SessionHandler struct {
	sessions  sessionService
	booking   bookingService
	recorder  metrics.Recorder
	onMutate  func()
	responder responder
}

// NewSessionHandler wires the session routes. onMutate runs after every
// successful write so the calendar cache can be invalidated; nil is allowed.
func NewSessionHandler(sessions sessionService, booking bookingService, recorder metrics.Recorder, onMutate func(), logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		booking:   booking,
		recorder:  recorder,
		onMutate:  onMutate,
		responder: newResponder(logger),
	}
}

type sessionDTO struct {
	ID             string     `json:"id"`
	MentorID       string     `json:"mentorId"`
	StudentID      string     `json:"studentId"`
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	ScheduledAt    time.Time  `json:"scheduledAt"`
	Duration       int        `json:"duration"`
	SessionType    string     `json:"sessionType"`
	Status         string     `json:"status"`
	ActualDuration *int       `json:"actualDuration,omitempty"`
	MentorRating   *int       `json:"mentorRating,omitempty"`
	MentorNotes    *string    `json:"mentorNotes,omitempty"`
	MentorFeedback *string    `json:"mentorFeedback,omitempty"`
	CompletedAt    *time.Time `json:"completedAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

type warningDTO struct {
	SessionID   string    `json:"sessionId"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Type        string    `json:"type"`
}

type listSessionsResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}

type sessionResponse struct {
	Session  sessionDTO   `json:"session"`
	Warnings []warningDTO `json:"warnings,omitempty"`
}

type bookSessionRequest struct {
	MentorID      string     `json:"mentorId"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	ScheduledDate *time.Time `json:"scheduledDate"`
	Day           string     `json:"day"`
	SlotIndex     int        `json:"slotIndex"`
	SessionType   string     `json:"sessionType"`
	Duration      int        `json:"duration"`
}

type transitionRequest struct {
	Status         string `json:"status"`
	ActualDuration int    `json:"actualDuration"`
	MentorRating   int    `json:"mentorRating"`
	MentorNotes    string `json:"mentorNotes"`
	MentorFeedback string `json:"mentorFeedback"`
}

type bulkCompleteRequest struct {
	SessionIDs []string `json:"sessionIds"`
	Duration   int      `json:"duration"`
	Rating     int      `json:"rating"`
	Notes      string   `json:"notes"`
	Feedback   string   `json:"feedback"`
}

type bulkCompleteResponse struct {
	Completed []sessionDTO `json:"completed"`
}

// List returns the acting principal's sessions, optionally narrowed by a
// comma-separated status query parameter.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.sessions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	var statuses []lifecycle.Status
	if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
		for _, value := range strings.Split(raw, ",") {
			status, ok := lifecycle.ParseStatus(strings.TrimSpace(value))
			if !ok {
				vErr := &application.ValidationError{FieldErrors: map[string]string{"status": "unknown status"}}
				h.responder.handleServiceError(r.Context(), w, vErr)
				return
			}
			statuses = append(statuses, status)
		}
	}

	sessions, err := h.sessions.ListSessions(r.Context(), application.ListSessionsParams{
		Principal: principal,
		Statuses:  statuses,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{Sessions: toSessionDTOs(sessions)})
}

// Book creates a session from an available template slot.
func (h *SessionHandler) Book(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.booking == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bookSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	session, warnings, err := h.booking.BookSession(r.Context(), application.BookSessionParams{
		Principal: principal,
		Input: application.BookingInput{
			MentorID:      req.MentorID,
			Title:         req.Title,
			Description:   req.Description,
			ScheduledDate: req.ScheduledDate,
			Day:           availability.Weekday(req.Day),
			SlotIndex:     req.SlotIndex,
			SessionType:   application.SessionType(req.SessionType),
			Duration:      req.Duration,
		},
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordBooking(len(warnings))
	}
	h.mutated()

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{
		Session:  toSessionDTO(session),
		Warnings: toWarningDTOs(warnings),
	})
}

// Transition moves a session to the requested status. Completion fields are
// read from the same body when the target is completed.
func (h *SessionHandler) Transition(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.sessions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	if strings.TrimSpace(sessionID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	var req transitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	target, ok := lifecycle.ParseStatus(req.Status)
	if !ok {
		vErr := &application.ValidationError{FieldErrors: map[string]string{"status": "unknown status"}}
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	session, err := h.sessions.Transition(r.Context(), application.TransitionParams{
		Principal:  principal,
		SessionID:  sessionID,
		Target:     target,
		Completion: req.completionPayload(),
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordTransition(string(target))
	}
	h.mutated()

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

// Cancel is the student-facing cancellation route; it is a transition to
// cancelled with no body.
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.sessions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID := chi.URLParam(r, "id")
	if strings.TrimSpace(sessionID) == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	session, err := h.sessions.Transition(r.Context(), application.TransitionParams{
		Principal: principal,
		SessionID: sessionID,
		Target:    lifecycle.StatusCancelled,
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordTransition(string(lifecycle.StatusCancelled))
	}
	h.mutated()

	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: toSessionDTO(session)})
}

// BulkComplete applies one completion payload to all selected sessions.
func (h *SessionHandler) BulkComplete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.sessions == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req bulkCompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	principal, _ := PrincipalFromContext(r.Context())

	completed, err := h.sessions.BulkComplete(r.Context(), application.BulkCompleteParams{
		Principal:  principal,
		SessionIDs: req.SessionIDs,
		Input: application.BulkCompletionInput{
			ActualDuration: req.Duration,
			Rating:         req.Rating,
			Notes:          req.Notes,
			Feedback:       req.Feedback,
		},
	})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if h.recorder != nil {
		h.recorder.RecordBulkCompletion(len(completed))
	}
	h.mutated()

	h.responder.writeJSON(r.Context(), w, http.StatusOK, bulkCompleteResponse{Completed: toSessionDTOs(completed)})
}

func (h *SessionHandler) mutated() {
	if h.onMutate != nil {
		h.onMutate()
	}
}

func (req transitionRequest) completionPayload() *lifecycle.CompletionPayload {
	if req.ActualDuration == 0 && req.MentorRating == 0 && req.MentorNotes == "" && req.MentorFeedback == "" {
		return nil
	}
	return &lifecycle.CompletionPayload{
		ActualDuration: req.ActualDuration,
		Rating:         req.MentorRating,
		Notes:          req.MentorNotes,
		Feedback:       req.MentorFeedback,
	}
}

func toSessionDTO(session application.Session) sessionDTO {
	return sessionDTO{
		ID:             session.ID,
		MentorID:       session.MentorID,
		StudentID:      session.StudentID,
		Title:          session.Title,
		Description:    session.Description,
		ScheduledAt:    session.ScheduledAt,
		Duration:       session.Duration,
		SessionType:    string(session.SessionType),
		Status:         string(session.Status),
		ActualDuration: session.ActualDuration,
		MentorRating:   session.MentorRating,
		MentorNotes:    session.MentorNotes,
		MentorFeedback: session.MentorFeedback,
		CompletedAt:    session.CompletedAt,
		CreatedAt:      session.CreatedAt,
		UpdatedAt:      session.UpdatedAt,
	}
}

func toSessionDTOs(sessions []application.Session) []sessionDTO {
	out := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, toSessionDTO(session))
	}
	return out
}

func toWarningDTOs(warnings []application.ConflictWarning) []warningDTO {
	if len(warnings) == 0 {
		return nil
	}
	out := make([]warningDTO, 0, len(warnings))
	for _, warning := range warnings {
		out = append(out, warningDTO{
			SessionID:   warning.SessionID,
			ScheduledAt: warning.ScheduledAt,
			Type:        warning.Type,
		})
	}
	return out
}
