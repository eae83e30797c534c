package lifecycle

import (
	"fmt"
	"strings"
)

// IllegalTransitionError reports a (from, to) pair absent from the transition
// table, including attempts to leave a terminal status.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("lifecycle: illegal transition %s -> %s", e.From, e.To)
}

// ForbiddenActorError reports a legal edge requested by a role the table does
// not permit for that edge.
type ForbiddenActorError struct {
	From Status
	To   Status
	Role Role
}

func (e *ForbiddenActorError) Error() string {
	return fmt.Sprintf("lifecycle: role %s may not transition %s -> %s", e.Role, e.From, e.To)
}

// MissingPayloadError reports completion fields absent or out of range when
// transitioning into the completed status.
type MissingPayloadError struct {
	Missing []string
}

func (e *MissingPayloadError) Error() string {
	return fmt.Sprintf("lifecycle: completion payload incomplete: %s", strings.Join(e.Missing, ", "))
}
