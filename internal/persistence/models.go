package persistence

import "time"

// TimeSlot is one bookable window within a template day.
type TimeSlot struct {
	StartTime string
	EndTime   string
	Available bool
}

// DayAvailability groups the persisted slots for one weekday name.
type DayAvailability struct {
	Day   string
	Slots []TimeSlot
}

// AvailabilityTemplate is a mentor's stored weekly schedule.
type AvailabilityTemplate struct {
	MentorID  string
	Timezone  string
	Schedule  []DayAvailability
	UpdatedAt time.Time
}

// Session is a scheduled mentorship meeting row.
type Session struct {
	ID             string
	MentorID       string
	StudentID      string
	Title          string
	Description    string
	ScheduledAt    time.Time
	Duration       int
	SessionType    string
	Status         string
	ActualDuration *int
	MentorRating   *int
	MentorNotes    *string
	MentorFeedback *string
	CompletedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Event is a calendar entry independent of the session lifecycle.
type Event struct {
	ID          string
	Title       string
	Description string
	StartAt     time.Time
	EndAt       time.Time
	Type        string
	CreatedAt   time.Time
}

// Completion carries the shared payload applied by a bulk completion.
type Completion struct {
	ActualDuration int
	Rating         int
	Notes          string
	Feedback       string
	CompletedAt    time.Time
}
