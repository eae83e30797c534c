package application

import (
	"time"

	"github.com/example/mentorhub/internal/availability"
	"github.com/example/mentorhub/internal/calendar"
	"github.com/example/mentorhub/internal/lifecycle"
)

// Principal represents the acting user invoking a service method.
type Principal struct {
	ActorID string
	Role    lifecycle.Role
}

// SessionType identifies how a mentorship session is conducted.
type SessionType string

const (
	SessionTypeVideoCall SessionType = "video_call"
	SessionTypeChat      SessionType = "chat"
	SessionTypePhone     SessionType = "phone"
	SessionTypeEmail     SessionType = "email"
)

// ParseSessionType validates a caller supplied session type.
func ParseSessionType(raw string) (SessionType, bool) {
	switch SessionType(raw) {
	case SessionTypeVideoCall, SessionTypeChat, SessionTypePhone, SessionTypeEmail:
		return SessionType(raw), true
	}
	return "", false
}

// MentorTemplate pairs a mentor with their stored weekly availability.
type MentorTemplate struct {
	MentorID  string
	Template  availability.Template
	UpdatedAt time.Time
}

// TemplateIssue surfaces a non-blocking problem found in a saved template.
type TemplateIssue struct {
	Day     availability.Weekday
	Slot    int
	Message string
}

// Session represents a persisted mentorship session.
type Session struct {
	ID             string
	MentorID       string
	StudentID      string
	Title          string
	Description    string
	ScheduledAt    time.Time
	Duration       int
	SessionType    SessionType
	Status         lifecycle.Status
	ActualDuration *int
	MentorRating   *int
	MentorNotes    *string
	MentorFeedback *string
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Event represents a calendar entry outside the session lifecycle.
type Event struct {
	ID          string
	Title       string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	Type        calendar.EventType
	CreatedAt   time.Time
}

// ConflictWarning describes a scheduling overlap that is surfaced to callers
// without blocking the booking.
type ConflictWarning struct {
	SessionID   string
	ScheduledAt time.Time
	Type        string
}

const (
	// ConflictTypeMentor marks an overlap with another session of the mentor.
	ConflictTypeMentor = "mentor_overlap"
	// ConflictTypeStudent marks an overlap with another session of the student.
	ConflictTypeStudent = "student_overlap"
)

// SaveTemplateParams wraps the data required to replace a mentor's template.
type SaveTemplateParams struct {
	Principal Principal
	Template  availability.Template
}

// BookingInput captures caller provided booking fields. Exactly one of the
// two scheduling modes must be used: an explicit ScheduledDate, or a day and
// slot index addressing a window in the mentor's availability template.
type BookingInput struct {
	MentorID      string
	Title         string
	Description   string
	ScheduledDate *time.Time
	Day           availability.Weekday
	SlotIndex     int
	SessionType   SessionType
	Duration      int
}

// BookSessionParams wraps the data required to book a session.
type BookSessionParams struct {
	Principal Principal
	Input     BookingInput
}

// TransitionParams wraps the data required to move a session between
// lifecycle statuses.
type TransitionParams struct {
	Principal  Principal
	SessionID  string
	Target     lifecycle.Status
	Completion *lifecycle.CompletionPayload
}

// BulkCompletionInput is the shared payload applied to every selected session.
type BulkCompletionInput struct {
	ActualDuration int
	Rating         int
	Notes          string
	Feedback       string
}

// BulkCompleteParams wraps the data required to complete several sessions.
type BulkCompleteParams struct {
	Principal  Principal
	SessionIDs []string
	Input      BulkCompletionInput
}

// ListSessionsParams wraps the data required to list a principal's sessions.
type ListSessionsParams struct {
	Principal Principal
	Statuses  []lifecycle.Status
}

// CalendarParams selects and filters one month of calendar items for the
// acting principal.
type CalendarParams struct {
	Principal Principal
	Month     string
	Query     string
	Kind      calendar.Kind
}

// CalendarView is the assembled month response.
type CalendarView struct {
	Grid  calendar.Grid
	Items []calendar.Item
}
