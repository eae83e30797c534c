package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/mentorhub/internal/application"
	"github.com/example/mentorhub/internal/availability"
	"github.com/example/mentorhub/internal/calendar"
	"github.com/example/mentorhub/internal/lifecycle"
	"github.com/example/mentorhub/internal/persistence"
)

var (
	sessionCounter  uint64
	templateCounter uint64
	eventCounter    uint64
)

// referenceTime is a Monday morning, so weekday arithmetic in dependent
// fixtures stays easy to reason about.
var referenceTime = time.Date(2026, time.April, 6, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ---------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic mentorship session record that
// can be materialised for application or persistence tests.
type SessionFixture struct {
	ID             string
	MentorID       string
	StudentID      string
	Title          string
	Description    string
	ScheduledAt    time.Time
	Duration       int
	SessionType    application.SessionType
	Status         lifecycle.Status
	ActualDuration *int
	MentorRating   *int
	MentorNotes    *string
	MentorFeedback *string
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic session fixture with optional
// overrides. Each call schedules one hour later than the previous one.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	scheduled := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := SessionFixture{
		ID:          fmt.Sprintf("session-%03d", idx),
		MentorID:    "mentor-001",
		StudentID:   "student-001",
		Title:       fmt.Sprintf("Session %03d", idx),
		ScheduledAt: scheduled,
		Duration:    60,
		SessionType: application.SessionTypeVideoCall,
		Status:      lifecycle.StatusScheduled,
		CreatedAt:   referenceTime,
		UpdatedAt:   referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionID overrides the generated session ID.
func WithSessionID(id string) SessionOption {
	return func(f *SessionFixture) {
		f.ID = id
	}
}

// WithSessionMentor sets the mentor the session belongs to.
func WithSessionMentor(mentorID string) SessionOption {
	return func(f *SessionFixture) {
		f.MentorID = mentorID
	}
}

// WithSessionStudent sets the student the session belongs to.
func WithSessionStudent(studentID string) SessionOption {
	return func(f *SessionFixture) {
		f.StudentID = studentID
	}
}

// WithSessionStatus overrides the lifecycle status.
func WithSessionStatus(status lifecycle.Status) SessionOption {
	return func(f *SessionFixture) {
		f.Status = status
	}
}

// WithSessionScheduledAt sets the scheduled start instant.
func WithSessionScheduledAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ScheduledAt = t
	}
}

// WithSessionDuration overrides the planned duration in minutes.
func WithSessionDuration(minutes int) SessionOption {
	return func(f *SessionFixture) {
		f.Duration = minutes
	}
}

// WithSessionCompletion fills the completion fields and marks the session
// completed.
func WithSessionCompletion(payload lifecycle.CompletionPayload) SessionOption {
	return func(f *SessionFixture) {
		duration := payload.ActualDuration
		rating := payload.Rating
		notes := payload.Notes
		feedback := payload.Feedback
		completed := payload.CompletedAt
		f.Status = lifecycle.StatusCompleted
		f.ActualDuration = &duration
		f.MentorRating = &rating
		f.MentorNotes = &notes
		f.MentorFeedback = &feedback
		f.CompletedAt = &completed
	}
}

// Application returns the fixture as an application.Session value.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:             f.ID,
		MentorID:       f.MentorID,
		StudentID:      f.StudentID,
		Title:          f.Title,
		Description:    f.Description,
		ScheduledAt:    f.ScheduledAt,
		Duration:       f.Duration,
		SessionType:    f.SessionType,
		Status:         f.Status,
		ActualDuration: copyIntPtr(f.ActualDuration),
		MentorRating:   copyIntPtr(f.MentorRating),
		MentorNotes:    copyStringPtr(f.MentorNotes),
		MentorFeedback: copyStringPtr(f.MentorFeedback),
		CompletedAt:    copyTimePtr(f.CompletedAt),
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Session value.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:             f.ID,
		MentorID:       f.MentorID,
		StudentID:      f.StudentID,
		Title:          f.Title,
		Description:    f.Description,
		ScheduledAt:    f.ScheduledAt,
		Duration:       f.Duration,
		SessionType:    string(f.SessionType),
		Status:         string(f.Status),
		ActualDuration: copyIntPtr(f.ActualDuration),
		MentorRating:   copyIntPtr(f.MentorRating),
		MentorNotes:    copyStringPtr(f.MentorNotes),
		MentorFeedback: copyStringPtr(f.MentorFeedback),
		CompletedAt:    copyTimePtr(f.CompletedAt),
		CreatedAt:      f.CreatedAt,
		UpdatedAt:      f.UpdatedAt,
	}
}

// --------------------------- Template fixtures ---------------------------

// TemplateFixture represents a deterministic availability template.
type TemplateFixture struct {
	MentorID  string
	Timezone  string
	Schedule  []availability.DayAvailability
	UpdatedAt time.Time
}

// TemplateOption configures the generated template fixture.
type TemplateOption func(*TemplateFixture)

// NewTemplateFixture returns a deterministic template fixture with one
// weekday morning slot, plus optional overrides.
func NewTemplateFixture(opts ...TemplateOption) TemplateFixture {
	idx := atomic.AddUint64(&templateCounter, 1)
	fixture := TemplateFixture{
		MentorID: fmt.Sprintf("mentor-%03d", idx),
		Timezone: "UTC",
		Schedule: []availability.DayAvailability{
			{
				Day: availability.Wednesday,
				Slots: []availability.TimeSlot{
					{StartTime: "09:00", EndTime: "10:00", Available: true},
				},
			},
		},
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithTemplateMentor overrides the generated mentor ID.
func WithTemplateMentor(mentorID string) TemplateOption {
	return func(f *TemplateFixture) {
		f.MentorID = mentorID
	}
}

// WithTemplateTimezone overrides the IANA timezone name.
func WithTemplateTimezone(timezone string) TemplateOption {
	return func(f *TemplateFixture) {
		f.Timezone = timezone
	}
}

// WithTemplateSchedule replaces the whole weekly schedule.
func WithTemplateSchedule(schedule []availability.DayAvailability) TemplateOption {
	return func(f *TemplateFixture) {
		f.Schedule = schedule
	}
}

// Application returns the fixture as an application.MentorTemplate value.
func (f TemplateFixture) Application() application.MentorTemplate {
	return application.MentorTemplate{
		MentorID: f.MentorID,
		Template: availability.Template{
			Timezone: f.Timezone,
			Schedule: cloneSchedule(f.Schedule),
		},
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.AvailabilityTemplate value.
func (f TemplateFixture) Persistence() persistence.AvailabilityTemplate {
	schedule := make([]persistence.DayAvailability, 0, len(f.Schedule))
	for _, day := range f.Schedule {
		slots := make([]persistence.TimeSlot, 0, len(day.Slots))
		for _, slot := range day.Slots {
			slots = append(slots, persistence.TimeSlot{
				StartTime: slot.StartTime,
				EndTime:   slot.EndTime,
				Available: slot.Available,
			})
		}
		schedule = append(schedule, persistence.DayAvailability{
			Day:   string(day.Day),
			Slots: slots,
		})
	}
	return persistence.AvailabilityTemplate{
		MentorID:  f.MentorID,
		Timezone:  f.Timezone,
		Schedule:  schedule,
		UpdatedAt: f.UpdatedAt,
	}
}

// ----------------------------- Event fixtures -----------------------------

// EventFixture represents a deterministic calendar event record.
type EventFixture struct {
	ID          string
	Title       string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	Type        calendar.EventType
	CreatedAt   time.Time
}

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture with optional
// overrides. Each call starts one day later than the previous one.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * 24 * time.Hour)
	fixture := EventFixture{
		ID:        fmt.Sprintf("event-%03d", idx),
		Title:     fmt.Sprintf("Event %03d", idx),
		StartAt:   start,
		EndAt:     start.Add(time.Hour),
		Type:      calendar.EventReminder,
		CreatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the generated event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithEventType overrides the event category.
func WithEventType(eventType calendar.EventType) EventOption {
	return func(f *EventFixture) {
		f.Type = eventType
	}
}

// WithEventWindow sets the start and end instants.
func WithEventWindow(start, end time.Time) EventOption {
	return func(f *EventFixture) {
		f.StartAt = start
		f.EndAt = end
	}
}

// Application returns the fixture as an application.Event value.
func (f EventFixture) Application() application.Event {
	return application.Event{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		StartAt:     f.StartAt,
		EndAt:       f.EndAt,
		Type:        f.Type,
		CreatedAt:   f.CreatedAt,
	}
}

// Persistence returns the fixture as a persistence.Event value.
func (f EventFixture) Persistence() persistence.Event {
	return persistence.Event{
		ID:          f.ID,
		Title:       f.Title,
		Description: f.Description,
		StartAt:     f.StartAt,
		EndAt:       f.EndAt,
		Type:        string(f.Type),
		CreatedAt:   f.CreatedAt,
	}
}

func cloneSchedule(schedule []availability.DayAvailability) []availability.DayAvailability {
	cloned := make([]availability.DayAvailability, 0, len(schedule))
	for _, day := range schedule {
		slots := make([]availability.TimeSlot, len(day.Slots))
		copy(slots, day.Slots)
		cloned = append(cloned, availability.DayAvailability{Day: day.Day, Slots: slots})
	}
	return cloned
}

func copyIntPtr(value *int) *int {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func copyStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func copyTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
