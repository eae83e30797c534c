package persistence

import (
	"context"
	"time"
)

// AvailabilityRepository stores mentor availability templates wholesale.
type AvailabilityRepository interface {
	// SaveTemplate replaces the mentor's entire template in one transaction.
	SaveTemplate(ctx context.Context, template AvailabilityTemplate) error
	GetTemplate(ctx context.Context, mentorID string) (AvailabilityTemplate, error)
}

// SessionFilter narrows session queries.
type SessionFilter struct {
	MentorID  string
	StudentID string
	Statuses  []string
}

// SessionRepository stores sessions and their completion data.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	UpdateSession(ctx context.Context, session Session) error
	ListSessions(ctx context.Context, filter SessionFilter) ([]Session, error)
	// BulkComplete marks every listed session completed with the shared
	// payload inside a single transaction. A missing or non-in-progress id
	// fails the whole batch.
	BulkComplete(ctx context.Context, ids []string, completion Completion, updatedAt time.Time) error
}

// EventRepository stores calendar events. Events are read-only to the
// scheduling core; CreateEvent exists for seeding and tests.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	ListEvents(ctx context.Context) ([]Event, error)
}
