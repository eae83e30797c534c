package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/mentorhub/internal/availability"
	"github.com/example/mentorhub/internal/lifecycle"
	"github.com/example/mentorhub/internal/persistence"
	"github.com/example/mentorhub/internal/recurrence"
)

// SessionRepository captures the persistence interactions needed by the
// booking and session services.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	UpdateSession(ctx context.Context, session Session) error
	ListSessions(ctx context.Context, filter SessionFilter) ([]Session, error)
	BulkComplete(ctx context.Context, ids []string, completion lifecycle.CompletionPayload, updatedAt time.Time) error
}

// SessionFilter narrows session queries issued to the repository.
type SessionFilter struct {
	MentorID  string
	StudentID string
	Statuses  []lifecycle.Status
}

// BookingService turns an available template slot into a scheduled session.
type BookingService struct {
	sessions    SessionRepository
	templates   TemplateRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewBookingService wires dependencies for booking operations.
func NewBookingService(sessions SessionRepository, templates TemplateRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *BookingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &BookingService{
		sessions:    sessions,
		templates:   templates,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

// BookSession validates the booking request and creates the session in
// scheduled status. The start instant comes from the explicit scheduledDate
// when given, otherwise from the slot's next occurrence in the mentor's
// timezone. Overlaps with existing sessions are returned as warnings, never
// as failures.
func (s *BookingService) BookSession(ctx context.Context, params BookSessionParams) (Session, []ConflictWarning, error) {
	if s == nil {
		return Session{}, nil, fmt.Errorf("BookingService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "booking", "book_session",
		"student_id", params.Principal.ActorID, "mentor_id", params.Input.MentorID)

	if params.Principal.Role != lifecycle.RoleStudent {
		logger.Warn("booking rejected", "error_kind", ErrorKind(ErrUnauthorized))
		return Session{}, nil, ErrUnauthorized
	}

	input := params.Input
	vErr := &ValidationError{}
	if input.MentorID == "" {
		vErr.add("mentorId", "mentor id is required")
	}
	if strings.TrimSpace(input.Title) == "" {
		vErr.add("title", "title is required")
	}
	if _, ok := ParseSessionType(string(input.SessionType)); !ok {
		vErr.add("sessionType", "unknown session type")
	}
	if input.Duration <= 0 {
		vErr.add("duration", "duration must be positive")
	}

	hasDate := input.ScheduledDate != nil && !input.ScheduledDate.IsZero()
	switch {
	case hasDate && input.Day != "":
		vErr.add("scheduledDate", "provide either scheduledDate or day and slotIndex, not both")
	case !hasDate && input.Day == "":
		vErr.add("scheduledDate", "scheduledDate or day and slotIndex is required")
	case !hasDate:
		if _, ok := availability.ParseWeekday(string(input.Day)); !ok {
			vErr.add("day", "unknown day")
		}
	}
	if vErr.HasErrors() {
		logger.Warn("booking rejected", "error_kind", ErrorKind(vErr))
		return Session{}, nil, vErr
	}

	var scheduledAt time.Time
	if hasDate {
		scheduledAt = input.ScheduledDate.UTC()
	} else {
		stored, err := s.templates.GetTemplate(ctx, input.MentorID)
		if err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				logger.Warn("booking rejected", "error_kind", ErrorKind(ErrNotFound))
				return Session{}, nil, ErrNotFound
			}
			return Session{}, nil, err
		}

		slot, err := stored.Template.Slot(input.Day, input.SlotIndex)
		if err != nil {
			vErr.add("slotIndex", "slot does not exist")
			logger.Warn("booking rejected", "error_kind", ErrorKind(vErr))
			return Session{}, nil, vErr
		}
		if !slot.Available {
			vErr.add("slotIndex", "slot is not available")
			logger.Warn("booking rejected", "error_kind", ErrorKind(vErr))
			return Session{}, nil, vErr
		}

		scheduledAt, err = recurrence.SlotOccurrence(s.now(), input.Day, slot, stored.Template.Timezone)
		if err != nil {
			vErr.add("slotIndex", err.Error())
			logger.Warn("booking rejected", "error_kind", ErrorKind(vErr))
			return Session{}, nil, vErr
		}
	}

	createdAt := s.now()
	session := Session{
		ID:          s.idGenerator(),
		MentorID:    input.MentorID,
		StudentID:   params.Principal.ActorID,
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		ScheduledAt: scheduledAt,
		Duration:    input.Duration,
		SessionType: input.SessionType,
		Status:      lifecycle.StatusScheduled,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	warnings, err := s.detectConflicts(ctx, session)
	if err != nil {
		return Session{}, nil, err
	}

	if err := s.sessions.CreateSession(ctx, session); err != nil {
		logger.Error("booking failed", "error", err)
		return Session{}, nil, err
	}

	logger.Info("session booked", "session_id", session.ID,
		"scheduled_at", session.ScheduledAt, "warnings", len(warnings))
	return session, warnings, nil
}

// detectConflicts scans the mentor's and student's open sessions for windows
// overlapping the new booking.
func (s *BookingService) detectConflicts(ctx context.Context, session Session) ([]ConflictWarning, error) {
	openStatuses := []lifecycle.Status{
		lifecycle.StatusScheduled,
		lifecycle.StatusConfirmed,
		lifecycle.StatusInProgress,
	}

	mentorSessions, err := s.sessions.ListSessions(ctx, SessionFilter{
		MentorID: session.MentorID,
		Statuses: openStatuses,
	})
	if err != nil {
		return nil, err
	}
	studentSessions, err := s.sessions.ListSessions(ctx, SessionFilter{
		StudentID: session.StudentID,
		Statuses:  openStatuses,
	})
	if err != nil {
		return nil, err
	}

	warnings := make([]ConflictWarning, 0)
	seen := make(map[string]struct{})
	appendOverlaps := func(candidates []Session, conflictType string) {
		for _, other := range candidates {
			if other.ID == session.ID {
				continue
			}
			if _, ok := seen[other.ID]; ok {
				continue
			}
			if !overlaps(session, other) {
				continue
			}
			seen[other.ID] = struct{}{}
			warnings = append(warnings, ConflictWarning{
				SessionID:   other.ID,
				ScheduledAt: other.ScheduledAt,
				Type:        conflictType,
			})
		}
	}
	appendOverlaps(mentorSessions, ConflictTypeMentor)
	appendOverlaps(studentSessions, ConflictTypeStudent)

	if len(warnings) == 0 {
		return nil, nil
	}
	return warnings, nil
}

func overlaps(a, b Session) bool {
	aEnd := a.ScheduledAt.Add(time.Duration(a.Duration) * time.Minute)
	bEnd := b.ScheduledAt.Add(time.Duration(b.Duration) * time.Minute)
	return a.ScheduledAt.Before(bEnd) && b.ScheduledAt.Before(aEnd)
}
