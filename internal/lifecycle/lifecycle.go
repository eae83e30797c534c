package lifecycle

import "time"

// Status identifies a session's position in its lifecycle.
type Status string

const (
	// StatusScheduled is the initial status assigned at booking time.
	StatusScheduled Status = "scheduled"
	// StatusConfirmed indicates the mentor accepted the booking.
	StatusConfirmed Status = "confirmed"
	// StatusInProgress indicates the session is currently running.
	StatusInProgress Status = "in-progress"
	// StatusCompleted is a terminal status carrying completion data.
	StatusCompleted Status = "completed"
	// StatusCancelled is a terminal status reachable before the session runs.
	StatusCancelled Status = "cancelled"
)

// Role identifies the kind of actor requesting a transition.
type Role string

const (
	// RoleMentor is the session's owning mentor.
	RoleMentor Role = "mentor"
	// RoleStudent is the student who booked the session.
	RoleStudent Role = "student"
)

// ParseStatus maps a wire value onto a known status.
func ParseStatus(value string) (Status, bool) {
	switch Status(value) {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled:
		return Status(value), true
	}
	return "", false
}

// ParseRole maps a wire value onto a known actor role.
func ParseRole(value string) (Role, bool) {
	switch Role(value) {
	case RoleMentor, RoleStudent:
		return Role(value), true
	}
	return "", false
}

// Terminal reports whether no further transition may leave the status.
func Terminal(status Status) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// CompletionPayload carries the data recorded when a session is completed.
// ActualDuration and Rating are mandatory; Notes and Feedback may stay empty.
type CompletionPayload struct {
	ActualDuration int
	Rating         int
	Notes          string
	Feedback       string
	CompletedAt    time.Time
}

type edge struct {
	from Status
	to   Status
}

type rule struct {
	roles           []Role
	needsCompletion bool
}

// transitions is the authoritative table of legal status transitions. An edge
// absent from the table is illegal regardless of actor; in particular there is
// no path from in-progress to cancelled.
var transitions = map[edge]rule{
	{StatusScheduled, StatusConfirmed}:  {roles: []Role{RoleMentor}},
	{StatusScheduled, StatusCancelled}:  {roles: []Role{RoleMentor, RoleStudent}},
	{StatusConfirmed, StatusInProgress}: {roles: []Role{RoleMentor}},
	{StatusConfirmed, StatusCancelled}:  {roles: []Role{RoleMentor, RoleStudent}},
	{StatusInProgress, StatusCompleted}: {roles: []Role{RoleMentor}, needsCompletion: true},
}

// CanTransition reports whether the (from, to) pair appears in the table.
func CanTransition(from, to Status) bool {
	_, ok := transitions[edge{from, to}]
	return ok
}

// RequiresCompletion reports whether the edge demands a completion payload.
func RequiresCompletion(from, to Status) bool {
	r, ok := transitions[edge{from, to}]
	return ok && r.needsCompletion
}

// Validate checks a requested transition against the table, the actor's role,
// and the completion payload requirements. It returns nil when the transition
// may proceed.
func Validate(from, to Status, role Role, payload *CompletionPayload) error {
	r, ok := transitions[edge{from, to}]
	if !ok {
		return &IllegalTransitionError{From: from, To: to}
	}

	allowed := false
	for _, candidate := range r.roles {
		if candidate == role {
			allowed = true
			break
		}
	}
	if !allowed {
		return &ForbiddenActorError{From: from, To: to, Role: role}
	}

	if r.needsCompletion {
		if err := validateCompletion(payload); err != nil {
			return err
		}
	}

	return nil
}

func validateCompletion(payload *CompletionPayload) error {
	if payload == nil {
		return &MissingPayloadError{Missing: []string{"actualDuration", "mentorRating"}}
	}
	missing := make([]string, 0, 2)
	if payload.ActualDuration <= 0 {
		missing = append(missing, "actualDuration")
	}
	if payload.Rating < 1 || payload.Rating > 5 {
		missing = append(missing, "mentorRating")
	}
	if len(missing) > 0 {
		return &MissingPayloadError{Missing: missing}
	}
	return nil
}
