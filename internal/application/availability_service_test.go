package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/mentorhub/internal/availability"
	"github.com/example/mentorhub/internal/lifecycle"
	"github.com/example/mentorhub/internal/persistence"
)

type templateRepoStub struct {
	stored  MentorTemplate
	saved   MentorTemplate
	saveErr error
	getErr  error
}

func (s *templateRepoStub) SaveTemplate(ctx context.Context, template MentorTemplate) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = template
	return nil
}

func (s *templateRepoStub) GetTemplate(ctx context.Context, mentorID string) (MentorTemplate, error) {
	if s.getErr != nil {
		return MentorTemplate{}, s.getErr
	}
	if s.stored.MentorID == "" || s.stored.MentorID != mentorID {
		return MentorTemplate{}, persistence.ErrNotFound
	}
	return s.stored, nil
}

func fixedNow(t *testing.T) func() time.Time {
	t.Helper()
	at := time.Date(2026, 4, 6, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func weeklyTemplate() availability.Template {
	return availability.Template{
		Timezone: "America/New_York",
		Schedule: []availability.DayAvailability{
			{Day: availability.Monday, Slots: []availability.TimeSlot{
				{StartTime: "09:00", EndTime: "10:00", Available: true},
				{StartTime: "", EndTime: "", Available: true},
			}},
			{Day: availability.Wednesday, Slots: []availability.TimeSlot{
				{StartTime: "14:00", EndTime: "15:00", Available: false},
			}},
		},
	}
}

func TestAvailabilityService_SaveTemplate_NormalizesBeforePersisting(t *testing.T) {
	t.Parallel()

	repo := &templateRepoStub{}
	svc := NewAvailabilityService(repo, fixedNow(t), nil)

	saved, issues, err := svc.SaveTemplate(context.Background(), SaveTemplateParams{
		Principal: Principal{ActorID: "mentor-1", Role: lifecycle.RoleMentor},
		Template:  weeklyTemplate(),
	})
	if err != nil {
		t.Fatalf("SaveTemplate failed: %v", err)
	}
	if issues != nil {
		t.Errorf("expected no issues, got %v", issues)
	}

	// The empty monday slot must be dropped before persisting.
	monday, ok := saved.Day(availability.Monday)
	if !ok {
		t.Fatal("expected monday to survive normalization")
	}
	if len(monday.Slots) != 1 {
		t.Errorf("expected 1 monday slot after normalization, got %d", len(monday.Slots))
	}
	if repo.saved.MentorID != "mentor-1" {
		t.Errorf("expected template saved for mentor-1, got %q", repo.saved.MentorID)
	}
	if len(repo.saved.Template.Schedule) != 2 {
		t.Errorf("expected 2 days persisted, got %d", len(repo.saved.Template.Schedule))
	}
}

func TestAvailabilityService_SaveTemplate_SurfacesIssuesWithoutBlocking(t *testing.T) {
	t.Parallel()

	template := availability.Template{
		Timezone: "UTC",
		Schedule: []availability.DayAvailability{
			{Day: availability.Friday, Slots: []availability.TimeSlot{
				{StartTime: "10:00", EndTime: "09:00", Available: true},
			}},
		},
	}

	repo := &templateRepoStub{}
	svc := NewAvailabilityService(repo, fixedNow(t), nil)

	_, issues, err := svc.SaveTemplate(context.Background(), SaveTemplateParams{
		Principal: Principal{ActorID: "mentor-1", Role: lifecycle.RoleMentor},
		Template:  template,
	})
	if err != nil {
		t.Fatalf("expected invalid slot to warn, not fail: %v", err)
	}
	if len(issues) != 1 {
		t.Fatalf("expected 1 issue, got %d", len(issues))
	}
	if issues[0].Day != availability.Friday {
		t.Errorf("expected issue on friday, got %s", issues[0].Day)
	}
	if repo.saved.MentorID == "" {
		t.Error("expected the template to be persisted despite the issue")
	}
}

func TestAvailabilityService_SaveTemplate_RejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		principal Principal
		template  availability.Template
		field     string
		wantAuthz bool
	}{
		{
			name:      "students cannot publish availability",
			principal: Principal{ActorID: "student-1", Role: lifecycle.RoleStudent},
			template:  weeklyTemplate(),
			wantAuthz: true,
		},
		{
			name:      "missing timezone",
			principal: Principal{ActorID: "mentor-1", Role: lifecycle.RoleMentor},
			template:  availability.Template{},
			field:     "timezone",
		},
		{
			name:      "unknown timezone",
			principal: Principal{ActorID: "mentor-1", Role: lifecycle.RoleMentor},
			template:  availability.Template{Timezone: "Mars/Olympus"},
			field:     "timezone",
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := NewAvailabilityService(&templateRepoStub{}, fixedNow(t), nil)
			_, _, err := svc.SaveTemplate(context.Background(), SaveTemplateParams{
				Principal: tc.principal,
				Template:  tc.template,
			})

			if tc.wantAuthz {
				if !errors.Is(err, ErrUnauthorized) {
					t.Fatalf("expected ErrUnauthorized, got %v", err)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Errorf("expected field error for %q, got %v", tc.field, vErr.FieldErrors)
			}
		})
	}
}

func TestAvailabilityService_GetTemplate_MapsNotFound(t *testing.T) {
	t.Parallel()

	svc := NewAvailabilityService(&templateRepoStub{}, fixedNow(t), nil)
	_, err := svc.GetTemplate(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
