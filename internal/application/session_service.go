package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/mentorhub/internal/lifecycle"
	"github.com/example/mentorhub/internal/persistence"
)

// SessionService drives sessions through their lifecycle.
type SessionService struct {
	sessions SessionRepository
	now      func() time.Time
	logger   *slog.Logger
}

// NewSessionService wires dependencies for session lifecycle operations.
func NewSessionService(sessions SessionRepository, now func() time.Time, logger *slog.Logger) *SessionService {
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		sessions: sessions,
		now:      now,
		logger:   defaultLogger(logger),
	}
}

// ListSessions returns the principal's own sessions, optionally narrowed to a
// status set. Mentors see sessions they teach; students see sessions they
// booked.
func (s *SessionService) ListSessions(ctx context.Context, params ListSessionsParams) ([]Session, error) {
	if s == nil {
		return nil, fmt.Errorf("SessionService is nil")
	}
	if params.Principal.ActorID == "" {
		return nil, ErrUnauthorized
	}

	filter := SessionFilter{Statuses: params.Statuses}
	switch params.Principal.Role {
	case lifecycle.RoleMentor:
		filter.MentorID = params.Principal.ActorID
	case lifecycle.RoleStudent:
		filter.StudentID = params.Principal.ActorID
	default:
		return nil, ErrUnauthorized
	}

	return s.sessions.ListSessions(ctx, filter)
}

// GetSession loads a single session the principal participates in.
func (s *SessionService) GetSession(ctx context.Context, principal Principal, id string) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("SessionService is nil")
	}

	session, err := s.sessions.GetSession(ctx, id)
	if err != nil {
		return Session{}, mapSessionRepoError(err)
	}
	if !owns(principal, session) {
		return Session{}, ErrUnauthorized
	}
	return session, nil
}

// Transition moves a session to the target status on behalf of the principal.
// The transition table decides legality; a completion payload is required and
// validated only on the completing edge.
func (s *SessionService) Transition(ctx context.Context, params TransitionParams) (Session, error) {
	if s == nil {
		return Session{}, fmt.Errorf("SessionService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "session", "transition",
		"session_id", params.SessionID, "target", string(params.Target))

	session, err := s.sessions.GetSession(ctx, params.SessionID)
	if err != nil {
		return Session{}, mapSessionRepoError(err)
	}

	if !owns(params.Principal, session) {
		logger.Warn("transition rejected", "error_kind", ErrorKind(ErrUnauthorized))
		return Session{}, ErrUnauthorized
	}

	if err := lifecycle.Validate(session.Status, params.Target, params.Principal.Role, params.Completion); err != nil {
		logger.Warn("transition rejected", "from", string(session.Status), "error_kind", ErrorKind(err))
		return Session{}, err
	}

	now := s.now()
	session.Status = params.Target
	session.UpdatedAt = now
	if params.Target == lifecycle.StatusCompleted {
		payload := params.Completion
		completedAt := payload.CompletedAt
		if completedAt.IsZero() {
			completedAt = now
		}
		session.ActualDuration = &payload.ActualDuration
		session.MentorRating = &payload.Rating
		if payload.Notes != "" {
			session.MentorNotes = &payload.Notes
		}
		if payload.Feedback != "" {
			session.MentorFeedback = &payload.Feedback
		}
		session.CompletedAt = &completedAt
	}

	if err := s.sessions.UpdateSession(ctx, session); err != nil {
		logger.Error("transition persist failed", "error", err)
		return Session{}, mapSessionRepoError(err)
	}

	logger.Info("session transitioned", "status", string(session.Status))
	return session, nil
}

// SelectInProgress lists the mentor's in-progress sessions, the candidate set
// for a bulk completion.
func (s *SessionService) SelectInProgress(ctx context.Context, principal Principal) ([]Session, error) {
	if s == nil {
		return nil, fmt.Errorf("SessionService is nil")
	}
	if principal.Role != lifecycle.RoleMentor || principal.ActorID == "" {
		return nil, ErrUnauthorized
	}
	return s.sessions.ListSessions(ctx, SessionFilter{
		MentorID: principal.ActorID,
		Statuses: []lifecycle.Status{lifecycle.StatusInProgress},
	})
}

// BulkComplete applies one completion payload to every selected session in a
// single transaction. Every id must name an in-progress session owned by the
// mentor; any other id fails the whole batch.
func (s *SessionService) BulkComplete(ctx context.Context, params BulkCompleteParams) ([]Session, error) {
	if s == nil {
		return nil, fmt.Errorf("SessionService is nil")
	}
	logger := serviceLogger(ctx, s.logger, "session", "bulk_complete",
		"mentor_id", params.Principal.ActorID, "count", len(params.SessionIDs))

	if params.Principal.Role != lifecycle.RoleMentor || params.Principal.ActorID == "" {
		logger.Warn("bulk completion rejected", "error_kind", ErrorKind(ErrUnauthorized))
		return nil, ErrUnauthorized
	}
	if len(params.SessionIDs) == 0 {
		logger.Warn("bulk completion rejected", "error_kind", ErrorKind(ErrEmptySelection))
		return nil, ErrEmptySelection
	}

	// Notes and feedback are optional; only duration and rating gate the batch.
	input := params.Input
	vErr := &ValidationError{}
	if input.ActualDuration <= 0 {
		vErr.add("actualDuration", "actual duration must be positive")
	}
	if input.Rating < 1 || input.Rating > 5 {
		vErr.add("mentorRating", "rating must be between 1 and 5")
	}
	if vErr.HasErrors() {
		logger.Warn("bulk completion rejected", "error_kind", ErrorKind(vErr))
		return nil, vErr
	}

	inProgress, err := s.SelectInProgress(ctx, params.Principal)
	if err != nil {
		return nil, err
	}
	eligible := make(map[string]struct{}, len(inProgress))
	for _, session := range inProgress {
		eligible[session.ID] = struct{}{}
	}
	for _, id := range params.SessionIDs {
		if _, ok := eligible[id]; !ok {
			logger.Warn("bulk completion rejected", "session_id", id, "error_kind", ErrorKind(ErrNotFound))
			return nil, ErrNotFound
		}
	}

	now := s.now()
	payload := lifecycle.CompletionPayload{
		ActualDuration: input.ActualDuration,
		Rating:         input.Rating,
		Notes:          input.Notes,
		Feedback:       input.Feedback,
		CompletedAt:    now,
	}
	if err := s.sessions.BulkComplete(ctx, params.SessionIDs, payload, now); err != nil {
		logger.Error("bulk completion failed", "error", err)
		return nil, mapSessionRepoError(err)
	}

	completed := make([]Session, 0, len(params.SessionIDs))
	for _, id := range params.SessionIDs {
		session, err := s.sessions.GetSession(ctx, id)
		if err != nil {
			return nil, mapSessionRepoError(err)
		}
		completed = append(completed, session)
	}

	logger.Info("sessions bulk completed", "completed", len(completed))
	return completed, nil
}

func owns(principal Principal, session Session) bool {
	switch principal.Role {
	case lifecycle.RoleMentor:
		return principal.ActorID == session.MentorID
	case lifecycle.RoleStudent:
		return principal.ActorID == session.StudentID
	}
	return false
}

func mapSessionRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	return err
}
