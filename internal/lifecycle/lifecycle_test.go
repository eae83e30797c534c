package lifecycle

import (
	"errors"
	"testing"
	"time"
)

func completePayload() *CompletionPayload {
	return &CompletionPayload{
		ActualDuration: 45,
		Rating:         5,
		Notes:          "covered generics",
		Feedback:       "great progress",
		CompletedAt:    time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestValidate_TableExhaustive(t *testing.T) {
	t.Parallel()

	statuses := []Status{StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled}
	roles := []Role{RoleMentor, RoleStudent}

	legal := map[[3]string]bool{
		{"scheduled", "confirmed", "mentor"}:    true,
		{"scheduled", "cancelled", "mentor"}:    true,
		{"scheduled", "cancelled", "student"}:   true,
		{"confirmed", "in-progress", "mentor"}:  true,
		{"confirmed", "cancelled", "mentor"}:    true,
		{"confirmed", "cancelled", "student"}:   true,
		{"in-progress", "completed", "mentor"}:  true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			for _, role := range roles {
				err := Validate(from, to, role, completePayload())
				key := [3]string{string(from), string(to), string(role)}
				if legal[key] {
					if err != nil {
						t.Errorf("Validate(%s, %s, %s) = %v, want nil", from, to, role, err)
					}
					continue
				}
				if err == nil {
					t.Errorf("Validate(%s, %s, %s) succeeded, want error", from, to, role)
					continue
				}
				var illegal *IllegalTransitionError
				var forbidden *ForbiddenActorError
				if !errors.As(err, &illegal) && !errors.As(err, &forbidden) {
					t.Errorf("Validate(%s, %s, %s) = %v, want illegal transition or forbidden actor", from, to, role, err)
				}
				if CanTransition(from, to) {
					if !errors.As(err, &forbidden) {
						t.Errorf("Validate(%s, %s, %s) = %v, want ForbiddenActorError for legal edge", from, to, role, err)
					}
				} else if !errors.As(err, &illegal) {
					t.Errorf("Validate(%s, %s, %s) = %v, want IllegalTransitionError for absent edge", from, to, role, err)
				}
			}
		}
	}
}

func TestValidate_InProgressCancelIllegal(t *testing.T) {
	t.Parallel()

	for _, role := range []Role{RoleMentor, RoleStudent} {
		err := Validate(StatusInProgress, StatusCancelled, role, nil)
		var illegal *IllegalTransitionError
		if !errors.As(err, &illegal) {
			t.Fatalf("expected IllegalTransitionError for %s, got %v", role, err)
		}
	}
}

func TestValidate_TerminalStatuses(t *testing.T) {
	t.Parallel()

	for _, from := range []Status{StatusCompleted, StatusCancelled} {
		if !Terminal(from) {
			t.Fatalf("Terminal(%s) = false", from)
		}
		for _, to := range []Status{StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled} {
			if from == to {
				continue
			}
			err := Validate(from, to, RoleMentor, completePayload())
			var illegal *IllegalTransitionError
			if !errors.As(err, &illegal) {
				t.Errorf("Validate(%s, %s) = %v, want IllegalTransitionError", from, to, err)
			}
		}
	}
}

func TestValidate_CompletionPayload(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*CompletionPayload)
		nilPay  bool
		missing []string
	}{
		{name: "nil payload", nilPay: true, missing: []string{"actualDuration", "mentorRating"}},
		{name: "zero duration", mutate: func(p *CompletionPayload) { p.ActualDuration = 0 }, missing: []string{"actualDuration"}},
		{name: "rating too low", mutate: func(p *CompletionPayload) { p.Rating = 0 }, missing: []string{"mentorRating"}},
		{name: "rating too high", mutate: func(p *CompletionPayload) { p.Rating = 6 }, missing: []string{"mentorRating"}},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			payload := completePayload()
			if tc.mutate != nil {
				tc.mutate(payload)
			}
			if tc.nilPay {
				payload = nil
			}

			err := Validate(StatusInProgress, StatusCompleted, RoleMentor, payload)
			var missingErr *MissingPayloadError
			if !errors.As(err, &missingErr) {
				t.Fatalf("expected MissingPayloadError, got %v", err)
			}
			if len(missingErr.Missing) != len(tc.missing) {
				t.Fatalf("missing fields = %v, want %v", missingErr.Missing, tc.missing)
			}
			for i, field := range tc.missing {
				if missingErr.Missing[i] != field {
					t.Fatalf("missing fields = %v, want %v", missingErr.Missing, tc.missing)
				}
			}
		})
	}

	if err := Validate(StatusInProgress, StatusCompleted, RoleMentor, completePayload()); err != nil {
		t.Fatalf("complete payload rejected: %v", err)
	}
}

func TestValidate_CompletionNotesAndFeedbackOptional(t *testing.T) {
	t.Parallel()

	payload := &CompletionPayload{ActualDuration: 45, Rating: 5}
	if err := Validate(StatusInProgress, StatusCompleted, RoleMentor, payload); err != nil {
		t.Fatalf("duration and rating alone should complete, got %v", err)
	}
}

func TestParseStatus(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"scheduled", "confirmed", "in-progress", "completed", "cancelled"} {
		if _, ok := ParseStatus(value); !ok {
			t.Errorf("ParseStatus(%q) rejected a known status", value)
		}
	}
	if _, ok := ParseStatus("paused"); ok {
		t.Error("ParseStatus accepted an unknown status")
	}
	if _, ok := ParseRole("admin"); ok {
		t.Error("ParseRole accepted an unknown role")
	}
}
